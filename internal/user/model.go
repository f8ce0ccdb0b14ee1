package user

import "time"

// User represents a stored user record. ID and CreatedAt are assigned
// by the database on insert and never change afterwards.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
