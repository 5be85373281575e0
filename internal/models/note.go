package models

import "time"

// Note は親Todoに添付されるメモです。
type Note struct {
	ID        int       `json:"id,omitempty"`
	TodoID    int       `json:"todo_id"`
	Content   string    `json:"content" binding:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type NoteCreateRequest struct {
	Content string `json:"content" binding:"required"`
}
