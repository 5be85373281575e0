package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"mi-todoes/backend/internal/models"
)

// ErrSubtaskNotFound はサブタスクが存在しない、または呼び出し元の
// 所有チェーンに属さない場合のエラーです。
var ErrSubtaskNotFound = errors.New("subtask not found")

// SubtaskRepository はサブタスクのデータベース操作を行うための構造体です。
type SubtaskRepository struct {
	DB *sql.DB
}

// NewSubtaskRepository は新しいSubtaskRepositoryインスタンスを作成します。
func NewSubtaskRepository(db *sql.DB) *SubtaskRepository {
	return &SubtaskRepository{DB: db}
}

// Create は新しいサブタスクを挿入し、作成後の行を読み直して返します。
// 親ToDoの所有チェックはサービス層で済ませておく前提です。
func (r *SubtaskRepository) Create(todoID int, req *models.SubtaskCreateRequest) (*models.Subtask, error) {
	result, err := r.DB.Exec("INSERT INTO subtasks (todo_id, title, completed) VALUES (?, ?, ?)", todoID, req.Title, req.Completed)
	if err != nil {
		log.Printf("Failed to insert subtask: %v", err)
		return nil, fmt.Errorf("could not insert subtask: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	return r.findByID(int(id))
}

// FindByTodoID は親ToDoのサブタスクを作成日時の昇順で取得します。
func (r *SubtaskRepository) FindByTodoID(todoID int) ([]models.Subtask, error) {
	query := "SELECT id, todo_id, title, completed, created_at, updated_at FROM subtasks WHERE todo_id = ? ORDER BY created_at ASC, id ASC"

	rows, err := r.DB.Query(query, todoID)
	if err != nil {
		log.Printf("Failed to query subtasks: %v", err)
		return nil, fmt.Errorf("could not query subtasks: %w", err)
	}
	defer rows.Close()

	subtasks := []models.Subtask{}
	for rows.Next() {
		var s models.Subtask
		if err := rows.Scan(&s.ID, &s.TodoID, &s.Title, &s.Completed, &s.CreatedAt, &s.UpdatedAt); err != nil {
			log.Printf("Failed to scan subtask: %v", err)
			return nil, fmt.Errorf("could not scan subtask: %w", err)
		}
		subtasks = append(subtasks, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subtasks: %w", err)
	}
	return subtasks, nil
}

// FindByIDForOwner は指定IDのサブタスクを、親ToDoを経由した所有者
// スコープで取得します。所有チェーンが一致しなければ ErrSubtaskNotFound です。
func (r *SubtaskRepository) FindByIDForOwner(id, todoID, userID int) (*models.Subtask, error) {
	query := `
		SELECT s.id, s.todo_id, s.title, s.completed, s.created_at, s.updated_at
		FROM subtasks s
		JOIN todos t ON s.todo_id = t.id
		WHERE s.id = ? AND s.todo_id = ? AND t.user_id = ?`

	var s models.Subtask
	err := r.DB.QueryRow(query, id, todoID, userID).Scan(&s.ID, &s.TodoID, &s.Title, &s.Completed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubtaskNotFound
		}
		log.Printf("Failed to query subtask: %v", err)
		return nil, fmt.Errorf("could not query subtask: %w", err)
	}
	return &s, nil
}

// Update は指定IDのサブタスクを部分更新します。nilのフィールドは保持されます。
func (r *SubtaskRepository) Update(id int, req *models.SubtaskUpdateRequest) (*models.Subtask, error) {
	current, err := r.findByID(id)
	if err != nil {
		return nil, err
	}

	title := current.Title
	if req.Title != nil {
		title = *req.Title
	}
	completed := current.Completed
	if req.Completed != nil {
		completed = *req.Completed
	}

	query := "UPDATE subtasks SET title = ?, completed = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.DB.Exec(query, title, completed, id); err != nil {
		log.Printf("Failed to update subtask: %v", err)
		return nil, fmt.Errorf("could not update subtask: %w", err)
	}
	return r.findByID(id)
}

// Delete は指定IDのサブタスクを削除します。
func (r *SubtaskRepository) Delete(id int) error {
	result, err := r.DB.Exec("DELETE FROM subtasks WHERE id = ?", id)
	if err != nil {
		log.Printf("Failed to delete subtask: %v", err)
		return fmt.Errorf("could not delete subtask: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

// CountByOwner は指定ユーザーの全ToDoに属するサブタスク総数を返します。
func (r *SubtaskRepository) CountByOwner(userID int) (int, error) {
	query := "SELECT COUNT(*) FROM subtasks s JOIN todos t ON s.todo_id = t.id WHERE t.user_id = ?"
	var count int
	if err := r.DB.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("could not count subtasks: %w", err)
	}
	return count, nil
}

// CountCompletedByOwner は指定ユーザーの完了済みサブタスク数を返します。
func (r *SubtaskRepository) CountCompletedByOwner(userID int) (int, error) {
	query := "SELECT COUNT(*) FROM subtasks s JOIN todos t ON s.todo_id = t.id WHERE t.user_id = ? AND s.completed = TRUE"
	var count int
	if err := r.DB.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("could not count completed subtasks: %w", err)
	}
	return count, nil
}

func (r *SubtaskRepository) findByID(id int) (*models.Subtask, error) {
	query := "SELECT id, todo_id, title, completed, created_at, updated_at FROM subtasks WHERE id = ?"
	var s models.Subtask
	err := r.DB.QueryRow(query, id).Scan(&s.ID, &s.TodoID, &s.Title, &s.Completed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubtaskNotFound
		}
		log.Printf("Failed to query subtask by ID: %v", err)
		return nil, fmt.Errorf("could not query subtask: %w", err)
	}
	return &s, nil
}
