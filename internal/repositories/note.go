package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"mi-todoes/backend/internal/models"
)

// ErrNoteNotFound はノートが存在しない、または呼び出し元の
// 所有チェーンに属さない場合のエラーです。
var ErrNoteNotFound = errors.New("note not found")

// NoteRepository はノートのデータベース操作を行うための構造体です。
type NoteRepository struct {
	DB *sql.DB
}

// NewNoteRepository は新しいNoteRepositoryインスタンスを作成します。
func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

// Create は新しいノートを挿入し、作成後の行を読み直して返します。
func (r *NoteRepository) Create(todoID int, req *models.NoteCreateRequest) (*models.Note, error) {
	result, err := r.DB.Exec("INSERT INTO notes (todo_id, content) VALUES (?, ?)", todoID, req.Content)
	if err != nil {
		log.Printf("Failed to insert note: %v", err)
		return nil, fmt.Errorf("could not insert note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	return r.findByID(int(id))
}

// FindByTodoID は親ToDoのノートを作成日時の昇順で取得します。
func (r *NoteRepository) FindByTodoID(todoID int) ([]models.Note, error) {
	query := "SELECT id, todo_id, content, created_at, updated_at FROM notes WHERE todo_id = ? ORDER BY created_at ASC, id ASC"

	rows, err := r.DB.Query(query, todoID)
	if err != nil {
		log.Printf("Failed to query notes: %v", err)
		return nil, fmt.Errorf("could not query notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.TodoID, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			log.Printf("Failed to scan note: %v", err)
			return nil, fmt.Errorf("could not scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}
	return notes, nil
}

// FindByIDForOwner は指定IDのノートを、親ToDoを経由した所有者
// スコープで取得します。
func (r *NoteRepository) FindByIDForOwner(id, todoID, userID int) (*models.Note, error) {
	query := `
		SELECT n.id, n.todo_id, n.content, n.created_at, n.updated_at
		FROM notes n
		JOIN todos t ON n.todo_id = t.id
		WHERE n.id = ? AND n.todo_id = ? AND t.user_id = ?`

	var n models.Note
	err := r.DB.QueryRow(query, id, todoID, userID).Scan(&n.ID, &n.TodoID, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		log.Printf("Failed to query note: %v", err)
		return nil, fmt.Errorf("could not query note: %w", err)
	}
	return &n, nil
}

// Delete は指定IDのノートを削除します。
func (r *NoteRepository) Delete(id int) error {
	result, err := r.DB.Exec("DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		log.Printf("Failed to delete note: %v", err)
		return fmt.Errorf("could not delete note: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) findByID(id int) (*models.Note, error) {
	query := "SELECT id, todo_id, content, created_at, updated_at FROM notes WHERE id = ?"
	var n models.Note
	err := r.DB.QueryRow(query, id).Scan(&n.ID, &n.TodoID, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		log.Printf("Failed to query note by ID: %v", err)
		return nil, fmt.Errorf("could not query note: %w", err)
	}
	return &n, nil
}
