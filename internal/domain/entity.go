// Package domain provides domain models used across the application.
package domain

import "strings"

// Entity represents a business entity under watch.
type Entity struct {
	// Unique identifier for the entity
	ID string `json:"id" mapstructure:"id"`
	// Registered business name
	Name string `json:"name" mapstructure:"name"`
	// Commune (municipality) where the entity is established
	Commune string `json:"commune,omitempty" mapstructure:"commune"`
	// Raw activity sector label
	Sector string `json:"sector,omitempty" mapstructure:"sector"`
	// Official website, when known
	Website string `json:"website,omitempty" mapstructure:"website"`
}

// DisplayName returns the entity name trimmed for logging and reports.
func (e *Entity) DisplayName() string {
	return strings.TrimSpace(e.Name)
}

// HasWebsite reports whether the entity declares an official website.
func (e *Entity) HasWebsite() bool {
	return strings.TrimSpace(e.Website) != ""
}
