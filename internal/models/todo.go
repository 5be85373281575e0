// Package modelsはTodoを定義します。
package models

import (
	"time"
)

// Todo はToDoタスクのデータベース構造体を表します。
// SubtasksとNotesは埋め込みコレクションで、常に非nilのスライスとして返します。
type Todo struct {
	ID          int        `json:"id,omitempty"`             // 主キー
	UserID      int        `json:"user_id"`                  // 所有者のユーザーID
	Title       string     `json:"title" binding:"required"` // タスクのタイトル（必須）
	Description *string    `json:"description"`              // 説明（任意）
	Completed   bool       `json:"completed"`                // 完了状態
	DueDate     *time.Time `json:"due_date"`                 // 期限（任意、カレンダー表示用）
	CreatedAt   time.Time  `json:"created_at"`               // 作成日時
	UpdatedAt   time.Time  `json:"updated_at,omitempty"`     // 更新日時
	Subtasks    []Subtask  `json:"subtasks"`                 // サブタスク（作成日時昇順）
	Notes       []Note     `json:"notes"`                    // ノート（作成日時昇順）
}

// TodoCreateRequest はToDo作成リクエストの構造体です。
// サブタスクとノートをインラインで同時作成できます。
type TodoCreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Subtasks    []SubtaskCreateRequest `json:"subtasks"`
	Notes       []NoteCreateRequest    `json:"notes"`
}

// TodoUpdateRequest は部分更新リクエストの構造体です。
// nilのフィールドは「指定なし」を意味し、既存の値を保持します。
type TodoUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
}

// CompletedTodoSummary は統計画面の「最近完了したToDo」一覧の1行です。
type CompletedTodoSummary struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoStats はユーザーごとの進捗統計です。
// CompletionRate は (完了Todo+完了Subtask)/(全Todo+全Subtask)*100 を
// 小数第2位に丸めた値で、分母が0のときは0です。
type TodoStats struct {
	TotalTodos        int                    `json:"totalTodos"`
	CompletedTodos    int                    `json:"completedTodos"`
	TotalSubtasks     int                    `json:"totalSubtasks"`
	CompletedSubtasks int                    `json:"completedSubtasks"`
	CompletionRate    float64                `json:"completionRate"`
	RecentlyCompleted []CompletedTodoSummary `json:"recentlyCompleted"`
}
