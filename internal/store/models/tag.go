package models

import "time"

// GlobalTag is a label that can be attached to many accounts.
type GlobalTag struct {
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
