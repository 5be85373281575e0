package models

import "time"

// Post はブログ拡張のエンティティです。Authorを埋め込んで返します。
type Post struct {
	ID        int          `json:"id,omitempty"`
	UserID    int          `json:"user_id"`
	Title     string       `json:"title" binding:"required"`
	Content   *string      `json:"content"`
	Published bool         `json:"published"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
	Author    *UserSummary `json:"author,omitempty"`
}

type PostCreateRequest struct {
	Title     string  `json:"title" binding:"required"`
	Content   *string `json:"content"`
	Published bool    `json:"published"`
}

// PostUpdateRequest は部分更新用。nilは「指定なし」。
type PostUpdateRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}
