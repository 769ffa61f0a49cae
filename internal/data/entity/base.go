package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the columns every mutable row has.
type Base struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BaseSimple is for append-only rows that never get updated.
type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
