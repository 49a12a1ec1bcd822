package models

import "time"

// Organization is the tenant boundary. Every professor and leave record is
// scoped to exactly one organization; callers always pass the scope
// explicitly.
type Organization struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
