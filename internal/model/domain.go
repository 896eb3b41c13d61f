package model

import (
	"time"

	"github.com/google/uuid"
)

// Domain is an interview topic area curated by an admin (e.g. "Backend
// Engineering"). Candidates pick a domain and interview against its
// question set.
type Domain struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AdminID   int       `json:"admin_id"`
	AdminName string    `json:"admin_name"`
	CreatedAt time.Time `json:"created_at"`
}
