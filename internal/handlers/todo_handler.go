package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mi-todoes/backend/internal/models"
	"mi-todoes/backend/internal/repositories"
	"mi-todoes/backend/internal/services"
)

// TodoHandler はToDo・サブタスク・ノート関連のハンドラーを管理します。
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// currentUserID は認証ミドルウェアがコンテキストに設定したユーザーIDを取り出します。
// 取得できない場合はエラーレスポンスを書いて false を返します。
func currentUserID(c *gin.Context) (int, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return 0, false
	}
	userID, ok := userIDVal.(int)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID type in context"})
		return 0, false
	}
	return userID, true
}

// pathID はURLパラメータを整数IDとして取り出します。
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return 0, false
	}
	return id, true
}

// notFoundSentinel は「不存在または所有権違反」を表すリポジトリエラーかどうかを判定します。
func notFoundSentinel(err error) bool {
	return errors.Is(err, repositories.ErrTodoNotFound) ||
		errors.Is(err, repositories.ErrSubtaskNotFound) ||
		errors.Is(err, repositories.ErrNoteNotFound)
}

// CreateTodoHandler は新しいToDoを作成します。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	var req models.TodoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	createdTodo, err := h.todoService.CreateTodo(userID, &req)
	if err != nil {
		log.Printf("Failed to create todo: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save todo to database"})
		return
	}
	c.JSON(http.StatusCreated, createdTodo)
}

// GetTodosHandler は認証ユーザーのToDoをサブタスク・ノート付きで取得します。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	todos, err := h.todoService.GetTodos(userID)
	if err != nil {
		log.Printf("Failed to fetch todos: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todos"})
		return
	}
	c.JSON(http.StatusOK, todos)
}

// GetTodoByIDHandler は指定IDのToDoを取得します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodoByID(id, userID)
	if err != nil {
		if notFoundSentinel(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		log.Printf("Failed to fetch todo: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todo"})
		return
	}
	c.JSON(http.StatusOK, todo)
}

// UpdateTodoHandler はToDoを部分更新します。
// ボディに含まれないフィールドは既存の値を保持します。
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.TodoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	updatedTodo, err := h.todoService.UpdateTodo(id, userID, &req)
	if err != nil {
		if notFoundSentinel(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		log.Printf("Failed to update todo: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update todo"})
		return
	}
	c.JSON(http.StatusOK, updatedTodo)
}

// DeleteTodoHandler はToDoを削除します。サブタスク・ノートも一緒に削除されます。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.todoService.DeleteTodo(id, userID); err != nil {
		if notFoundSentinel(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		log.Printf("Failed to delete todo: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}

// CreateSubtaskHandler は親ToDoにサブタスクを追加します。
func (h *TodoHandler) CreateSubtaskHandler(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SubtaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	subtask, err := h.todoService.CreateSubtask(todoID, userID, &req)
	if err != nil {
		if notFoundSentinel(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		log.Printf("Failed to create subtask: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subtask"})
		return
	}
	c.JSON(http.StatusCreated, subtask)
}

// UpdateSubtaskHandler はサブタスクを部分更新します。
func (h *TodoHandler) UpdateSubtaskHandler(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "subtaskId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SubtaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	subtask, err := h.todoService.UpdateSubtask(subtaskID, todoID, userID, &req)
	if err != nil {
		if notFoundSentinel(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
			return
		}
		log.Printf("Failed to update subtask: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subtask"})
		return
	}
	c.JSON(http.StatusOK, subtask)
}

// DeleteSubtaskHandler はサブタスクを削除します。
func (h *TodoHandler) DeleteSubtaskHandler(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	subtaskID, ok := pathID(c, "subtaskId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.todoService.DeleteSubtask(subtaskID, todoID, userID); err != nil {
		if notFoundSentinel(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
			return
		}
		log.Printf("Failed to delete subtask: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subtask"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted successfully"})
}

// CreateNoteHandler は親ToDoにノートを追加します。
func (h *TodoHandler) CreateNoteHandler(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.NoteCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	note, err := h.todoService.CreateNote(todoID, userID, &req)
	if err != nil {
		if notFoundSentinel(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		log.Printf("Failed to create note: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
		return
	}
	c.JSON(http.StatusCreated, note)
}

// DeleteNoteHandler はノートを削除します。
func (h *TodoHandler) DeleteNoteHandler(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	noteID, ok := pathID(c, "noteId")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.todoService.DeleteNote(noteID, todoID, userID); err != nil {
		if notFoundSentinel(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		log.Printf("Failed to delete note: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}
