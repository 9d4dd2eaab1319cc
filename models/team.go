package models

import "time"

type Club struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Team принадлежит либо пользователю, либо клубу (ровно одно из двух).
type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	UserID    *int      `json:"user_id,omitempty" db:"user_id"`
	ClubID    *int      `json:"club_id,omitempty" db:"club_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
