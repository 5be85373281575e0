package services

import (
	"mi-todoes/backend/internal/models"
	"mi-todoes/backend/internal/repositories"
)

// TodoService はToDo・サブタスク・ノートのビジネスロジックを扱います。
// 所有チェックはすべてここで行い、不存在と所有権違反は同じNotFoundとして
// 報告します (他ユーザーのリソースの存在を漏らさないため)。
type TodoService struct {
	todoRepo    *repositories.TodoRepository
	subtaskRepo *repositories.SubtaskRepository
	noteRepo    *repositories.NoteRepository
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(todoRepo *repositories.TodoRepository, subtaskRepo *repositories.SubtaskRepository, noteRepo *repositories.NoteRepository) *TodoService {
	return &TodoService{todoRepo: todoRepo, subtaskRepo: subtaskRepo, noteRepo: noteRepo}
}

// CreateTodo は新しいToDoを作成します。サブタスク・ノートの同時作成に対応します。
func (s *TodoService) CreateTodo(userID int, req *models.TodoCreateRequest) (*models.Todo, error) {
	return s.todoRepo.Create(userID, req)
}

// GetTodos はユーザーのToDoをサブタスク・ノート付きで取得します。
func (s *TodoService) GetTodos(userID int) ([]*models.Todo, error) {
	return s.todoRepo.FindByUserID(userID, true)
}

// GetTodoByID は指定IDのToDoを取得します。所有者でなければNotFoundです。
func (s *TodoService) GetTodoByID(id, userID int) (*models.Todo, error) {
	return s.todoRepo.FindByID(id, userID, true)
}

// UpdateTodo はToDoを部分更新します。
func (s *TodoService) UpdateTodo(id, userID int, req *models.TodoUpdateRequest) (*models.Todo, error) {
	return s.todoRepo.Update(id, userID, req)
}

// DeleteTodo はToDoを削除します。サブタスク・ノートも一緒に消えます。
func (s *TodoService) DeleteTodo(id, userID int) error {
	return s.todoRepo.Delete(id, userID)
}

// CreateSubtask は親ToDoの所有を確認してからサブタスクを作成します。
func (s *TodoService) CreateSubtask(todoID, userID int, req *models.SubtaskCreateRequest) (*models.Subtask, error) {
	if _, err := s.todoRepo.FindByID(todoID, userID, false); err != nil {
		return nil, err
	}
	return s.subtaskRepo.Create(todoID, req)
}

// UpdateSubtask は所有チェーンを確認してからサブタスクを部分更新します。
func (s *TodoService) UpdateSubtask(subtaskID, todoID, userID int, req *models.SubtaskUpdateRequest) (*models.Subtask, error) {
	if _, err := s.subtaskRepo.FindByIDForOwner(subtaskID, todoID, userID); err != nil {
		return nil, err
	}
	return s.subtaskRepo.Update(subtaskID, req)
}

// DeleteSubtask は所有チェーンを確認してからサブタスクを削除します。
func (s *TodoService) DeleteSubtask(subtaskID, todoID, userID int) error {
	if _, err := s.subtaskRepo.FindByIDForOwner(subtaskID, todoID, userID); err != nil {
		return err
	}
	return s.subtaskRepo.Delete(subtaskID)
}

// CreateNote は親ToDoの所有を確認してからノートを作成します。
func (s *TodoService) CreateNote(todoID, userID int, req *models.NoteCreateRequest) (*models.Note, error) {
	if _, err := s.todoRepo.FindByID(todoID, userID, false); err != nil {
		return nil, err
	}
	return s.noteRepo.Create(todoID, req)
}

// DeleteNote は所有チェーンを確認してからノートを削除します。
func (s *TodoService) DeleteNote(noteID, todoID, userID int) error {
	if _, err := s.noteRepo.FindByIDForOwner(noteID, todoID, userID); err != nil {
		return err
	}
	return s.noteRepo.Delete(noteID)
}
