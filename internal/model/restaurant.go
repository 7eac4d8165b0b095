package model

import "time"

// Restaurant owns one or more private dining rooms. The core treats
// restaurants as read-only catalog data; rooms reference their restaurant
// so reservations and events can carry both identifiers.
//
// Fields:
//  ID        – primary key (UUID string).
//  Name      – restaurant display name.
//  City      – city used for catalog filtering.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Restaurant struct {
	ID        string    `json:"id"`         // restaurants.id
	Name      string    `json:"name"`       // restaurants.name
	City      string    `json:"city"`       // restaurants.city
	CreatedAt time.Time `json:"created_at"` // restaurants.created_at
	UpdatedAt time.Time `json:"updated_at"` // restaurants.updated_at
}
