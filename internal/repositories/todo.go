package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"mi-todoes/backend/internal/models"
)

// ErrTodoNotFound はToDoが存在しない、または呼び出し元の所有物でない場合のエラーです。
// 所有権違反と不存在は区別しません (他人のToDoの存在を漏らさないため)。
var ErrTodoNotFound = errors.New("todo not found")

// TodoRepository はToDoのデータベース操作を行うための構造体です。
type TodoRepository struct {
	DB *sql.DB
}

// NewTodoRepository は新しいTodoRepositoryインスタンスを作成します。
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{DB: db}
}

// Create は新しいToDoを挿入し、リクエストに含まれるサブタスク・ノートも
// 同時に作成します。作成後の行を読み直して整形済みのToDoを返します。
func (r *TodoRepository) Create(userID int, req *models.TodoCreateRequest) (*models.Todo, error) {
	// 親と子をひとつのトランザクションで挿入する (子の失敗で親だけ残さない)
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO todos (user_id, title, description, due_date) VALUES (?, ?, ?, ?)"
	result, err := tx.Exec(query, userID, req.Title, req.Description, req.DueDate)
	if err != nil {
		log.Printf("Failed to insert todo: %v", err)
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	todoID := int(id)

	for _, s := range req.Subtasks {
		if _, err := tx.Exec("INSERT INTO subtasks (todo_id, title, completed) VALUES (?, ?, ?)", todoID, s.Title, s.Completed); err != nil {
			log.Printf("Failed to insert inline subtask: %v", err)
			return nil, fmt.Errorf("could not insert subtask: %w", err)
		}
	}
	for _, n := range req.Notes {
		if _, err := tx.Exec("INSERT INTO notes (todo_id, content) VALUES (?, ?)", todoID, n.Content); err != nil {
			log.Printf("Failed to insert inline note: %v", err)
			return nil, fmt.Errorf("could not insert note: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit todo: %w", err)
	}

	return r.FindByID(todoID, userID, true)
}

// FindByID は指定IDのToDoを所有者スコープで取得します。
// IDと所有者の両方が一致しない限り ErrTodoNotFound を返します。
// withChildren が真のとき、サブタスクとノートを埋め込みます。
func (r *TodoRepository) FindByID(id, userID int, withChildren bool) (*models.Todo, error) {
	query := "SELECT id, user_id, title, description, completed, due_date, created_at, updated_at FROM todos WHERE id = ? AND user_id = ?"

	t, err := r.scanOne(r.DB.QueryRow(query, id, userID))
	if err != nil {
		return nil, err
	}
	if withChildren {
		if err := r.attachChildren(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FindByUserID は指定ユーザーのToDoを作成日時の降順で取得します。
func (r *TodoRepository) FindByUserID(userID int, withChildren bool) ([]*models.Todo, error) {
	query := "SELECT id, user_id, title, description, completed, due_date, created_at, updated_at FROM todos WHERE user_id = ? ORDER BY created_at DESC, id DESC"

	rows, err := r.DB.Query(query, userID)
	if err != nil {
		log.Printf("Failed to query todos: %v", err)
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		t, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	if withChildren {
		for _, t := range todos {
			if err := r.attachChildren(t); err != nil {
				return nil, err
			}
		}
	}
	return todos, nil
}

// Update は指定IDのToDoを部分更新します。
// nilでないフィールドだけを既存の行にマージし、updated_atを進めます。
func (r *TodoRepository) Update(id, userID int, req *models.TodoUpdateRequest) (*models.Todo, error) {
	current, err := r.FindByID(id, userID, false)
	if err != nil {
		return nil, err
	}

	title := current.Title
	if req.Title != nil {
		title = *req.Title
	}
	description := current.Description
	if req.Description != nil {
		description = req.Description
	}
	completed := current.Completed
	if req.Completed != nil {
		completed = *req.Completed
	}
	dueDate := current.DueDate
	if req.DueDate != nil {
		dueDate = req.DueDate
	}

	query := "UPDATE todos SET title = ?, description = ?, completed = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?"
	if _, err := r.DB.Exec(query, title, description, completed, dueDate, id, userID); err != nil {
		log.Printf("Failed to update todo: %v", err)
		return nil, fmt.Errorf("could not update todo: %w", err)
	}

	return r.FindByID(id, userID, true)
}

// Delete は指定IDのToDoを削除します。
// サブタスクとノートは外部キーのON DELETE CASCADEで一緒に削除されます。
func (r *TodoRepository) Delete(id, userID int) error {
	result, err := r.DB.Exec("DELETE FROM todos WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		log.Printf("Failed to delete todo: %v", err)
		return fmt.Errorf("could not delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// CountByUser は指定ユーザーのToDo総数を返します。
func (r *TodoRepository) CountByUser(userID int) (int, error) {
	var count int
	err := r.DB.QueryRow("SELECT COUNT(*) FROM todos WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("could not count todos: %w", err)
	}
	return count, nil
}

// CountCompletedByUser は指定ユーザーの完了済みToDo数を返します。
func (r *TodoRepository) CountCompletedByUser(userID int) (int, error) {
	var count int
	err := r.DB.QueryRow("SELECT COUNT(*) FROM todos WHERE user_id = ? AND completed = TRUE", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("could not count completed todos: %w", err)
	}
	return count, nil
}

// FindRecentlyCompleted は最近完了したToDoを更新日時の降順で最大limit件返します。
func (r *TodoRepository) FindRecentlyCompleted(userID, limit int) ([]models.CompletedTodoSummary, error) {
	query := "SELECT id, title, updated_at FROM todos WHERE user_id = ? AND completed = TRUE ORDER BY updated_at DESC, id DESC LIMIT ?"

	rows, err := r.DB.Query(query, userID, limit)
	if err != nil {
		log.Printf("Failed to query recently completed todos: %v", err)
		return nil, fmt.Errorf("could not query recently completed todos: %w", err)
	}
	defer rows.Close()

	summaries := []models.CompletedTodoSummary{}
	for rows.Next() {
		var s models.CompletedTodoSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("could not scan completed todo: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completed todos: %w", err)
	}
	return summaries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanOne / scanRow はNULL許容カラムをポインタに正規化して1行を整形します。
func (r *TodoRepository) scanOne(row *sql.Row) (*models.Todo, error) {
	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		log.Printf("Failed to query todo: %v", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return t, nil
}

func (r *TodoRepository) scanRow(rows *sql.Rows) (*models.Todo, error) {
	t, err := scanTodo(rows)
	if err != nil {
		log.Printf("Failed to scan todo: %v", err)
		return nil, fmt.Errorf("could not scan todo: %w", err)
	}
	return t, nil
}

func scanTodo(s rowScanner) (*models.Todo, error) {
	var t models.Todo
	var description sql.NullString
	var dueDate sql.NullTime
	err := s.Scan(&t.ID, &t.UserID, &t.Title, &description, &t.Completed, &dueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	// 埋め込みコレクションは常に非nil
	t.Subtasks = []models.Subtask{}
	t.Notes = []models.Note{}
	return &t, nil
}

// attachChildren はサブタスクとノートを作成日時の昇順で埋め込みます。
func (r *TodoRepository) attachChildren(t *models.Todo) error {
	subtasks, err := NewSubtaskRepository(r.DB).FindByTodoID(t.ID)
	if err != nil {
		return err
	}
	notes, err := NewNoteRepository(r.DB).FindByTodoID(t.ID)
	if err != nil {
		return err
	}
	t.Subtasks = subtasks
	t.Notes = notes
	return nil
}
