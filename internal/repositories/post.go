package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"mi-todoes/backend/internal/models"
)

// ErrPostNotFound は投稿が存在しない、または呼び出し元の所有物でない場合のエラーです。
var ErrPostNotFound = errors.New("post not found")

// PostRepository はブログ投稿のデータベース操作を行うための構造体です。
type PostRepository struct {
	DB *sql.DB
}

// NewPostRepository は新しいPostRepositoryインスタンスを作成します。
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{DB: db}
}

// Create は新しい投稿を挿入し、著者を埋め込んだ整形済みの投稿を返します。
func (r *PostRepository) Create(userID int, req *models.PostCreateRequest) (*models.Post, error) {
	query := "INSERT INTO posts (user_id, title, content, published) VALUES (?, ?, ?, ?)"
	result, err := r.DB.Exec(query, userID, req.Title, req.Content, req.Published)
	if err != nil {
		log.Printf("Failed to insert post: %v", err)
		return nil, fmt.Errorf("could not insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	return r.FindByID(int(id))
}

// FindAll はすべての投稿を作成日時の降順で、著者を埋め込んで返します。
func (r *PostRepository) FindAll() ([]*models.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.title, p.content, p.published, p.created_at, p.updated_at,
		       u.id, u.username, u.email
		FROM posts p
		JOIN users u ON p.user_id = u.id
		ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.DB.Query(query)
	if err != nil {
		log.Printf("Failed to query posts: %v", err)
		return nil, fmt.Errorf("could not query posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			log.Printf("Failed to scan post: %v", err)
			return nil, fmt.Errorf("could not scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

// FindByID は指定IDの投稿を著者を埋め込んで取得します。
func (r *PostRepository) FindByID(id int) (*models.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.title, p.content, p.published, p.created_at, p.updated_at,
		       u.id, u.username, u.email
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = ?`

	p, err := scanPost(r.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		log.Printf("Failed to query post by ID: %v", err)
		return nil, fmt.Errorf("could not query post: %w", err)
	}
	return p, nil
}

// Update は指定IDの投稿を部分更新します。nilのフィールドは保持されます。
func (r *PostRepository) Update(id int, req *models.PostUpdateRequest) (*models.Post, error) {
	current, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	title := current.Title
	if req.Title != nil {
		title = *req.Title
	}
	content := current.Content
	if req.Content != nil {
		content = req.Content
	}
	published := current.Published
	if req.Published != nil {
		published = *req.Published
	}

	query := "UPDATE posts SET title = ?, content = ?, published = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.DB.Exec(query, title, content, published, id); err != nil {
		log.Printf("Failed to update post: %v", err)
		return nil, fmt.Errorf("could not update post: %w", err)
	}
	return r.FindByID(id)
}

// Delete は指定IDの投稿を削除します。
func (r *PostRepository) Delete(id int) error {
	result, err := r.DB.Exec("DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		log.Printf("Failed to delete post: %v", err)
		return fmt.Errorf("could not delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func scanPost(s rowScanner) (*models.Post, error) {
	var p models.Post
	var content sql.NullString
	var author models.UserSummary
	err := s.Scan(&p.ID, &p.UserID, &p.Title, &content, &p.Published, &p.CreatedAt, &p.UpdatedAt,
		&author.ID, &author.Username, &author.Email)
	if err != nil {
		return nil, err
	}
	if content.Valid {
		p.Content = &content.String
	}
	p.Author = &author
	return &p, nil
}
