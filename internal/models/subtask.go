package models

import "time"

// Subtask は親Todoに属するサブタスクです。
// 所有者は親ToDoのuser_idを経由して決まります。
type Subtask struct {
	ID        int       `json:"id,omitempty"`
	TodoID    int       `json:"todo_id"`
	Title     string    `json:"title" binding:"required"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type SubtaskCreateRequest struct {
	Title     string `json:"title" binding:"required"`
	Completed bool   `json:"completed"`
}

// SubtaskUpdateRequest は部分更新用。nilは「指定なし」。
type SubtaskUpdateRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}
