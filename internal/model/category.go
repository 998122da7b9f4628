package model

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products in the catalogue. Names are stored normalised
// (lower case, diacritics stripped) and are unique.
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CategoryRequest represents the request payload for creating or updating a category.
type CategoryRequest struct {
	Name string `json:"name"`
}
