package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"mi-todoes/backend/internal/models"
	"mi-todoes/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtaskHandlers(t *testing.T) {
	db, router, _, _ := testutil.SetupTestDB(t)
	defer db.Close()

	aliceToken, err := testutil.LoginAndGetToken(t, router, "alice@example.com", "password123")
	require.NoError(t, err)
	bobToken, err := testutil.LoginAndGetToken(t, router, "bob@example.com", "password456")
	require.NoError(t, err)

	todo := testutil.CreateTestTodo(t, router, aliceToken, "サブタスク親")

	t.Run("サブタスクを追加できる", func(t *testing.T) {
		resp := testutil.DoJSON(t, router, http.MethodPost, fmt.Sprintf("/api/todos/%d/subtasks", todo.ID), aliceToken, map[string]interface{}{
			"title": "資料を読む",
		})
		require.Equal(t, http.StatusCreated, resp.Code)

		var created models.Subtask
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, todo.ID, created.TodoID)
		assert.Equal(t, "資料を読む", created.Title)
		assert.False(t, created.Completed)
	})

	t.Run("タイトルなしは400", func(t *testing.T) {
		resp := testutil.DoJSON(t, router, http.MethodPost, fmt.Sprintf("/api/todos/%d/subtasks", todo.ID), aliceToken, map[string]interface{}{
			"completed": true,
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("他人のToDoへの追加は404", func(t *testing.T) {
		resp := testutil.DoJSON(t, router, http.MethodPost, fmt.Sprintf("/api/todos/%d/subtasks", todo.ID), bobToken, map[string]interface{}{
			"title": "侵入",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("完了フラグの部分更新でタイトルが保持される", func(t *testing.T) {
		subtask := testutil.CreateTestSubtask(t, router, aliceToken, todo.ID, "部分更新対象")

		resp := testutil.DoJSON(t, router, http.MethodPut, fmt.Sprintf("/api/todos/%d/subtasks/%d", todo.ID, subtask.ID), aliceToken, map[string]interface{}{
			"completed": true,
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var updated models.Subtask
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
		assert.True(t, updated.Completed)
		assert.Equal(t, "部分更新対象", updated.Title)
	})

	t.Run("他人のサブタスク更新は404", func(t *testing.T) {
		subtask := testutil.CreateTestSubtask(t, router, aliceToken, todo.ID, "守られるサブタスク")
		resp := testutil.DoJSON(t, router, http.MethodPut, fmt.Sprintf("/api/todos/%d/subtasks/%d", todo.ID, subtask.ID), bobToken, map[string]interface{}{
			"completed": true,
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("別のToDoに属するサブタスクIDは404", func(t *testing.T) {
		other := testutil.CreateTestTodo(t, router, aliceToken, "別の親")
		subtask := testutil.CreateTestSubtask(t, router, aliceToken, other.ID, "親が違う")

		resp := testutil.DoJSON(t, router, http.MethodPut, fmt.Sprintf("/api/todos/%d/subtasks/%d", todo.ID, subtask.ID), aliceToken, map[string]interface{}{
			"completed": true,
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("サブタスクを削除できる", func(t *testing.T) {
		subtask := testutil.CreateTestSubtask(t, router, aliceToken, todo.ID, "削除対象")
		resp := testutil.DoJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/todos/%d/subtasks/%d", todo.ID, subtask.ID), aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Subtask deleted successfully")

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM subtasks WHERE id = ?", subtask.ID).Scan(&count))
		assert.Equal(t, 0, count)
	})

	t.Run("他人のサブタスク削除は404", func(t *testing.T) {
		subtask := testutil.CreateTestSubtask(t, router, aliceToken, todo.ID, "bobには消せない")
		resp := testutil.DoJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/todos/%d/subtasks/%d", todo.ID, subtask.ID), bobToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestNoteHandlers(t *testing.T) {
	db, router, _, _ := testutil.SetupTestDB(t)
	defer db.Close()

	aliceToken, err := testutil.LoginAndGetToken(t, router, "alice@example.com", "password123")
	require.NoError(t, err)
	bobToken, err := testutil.LoginAndGetToken(t, router, "bob@example.com", "password456")
	require.NoError(t, err)

	todo := testutil.CreateTestTodo(t, router, aliceToken, "ノート親")

	t.Run("ノートを追加できる", func(t *testing.T) {
		resp := testutil.DoJSON(t, router, http.MethodPost, fmt.Sprintf("/api/todos/%d/notes", todo.ID), aliceToken, map[string]interface{}{
			"content": "打ち合わせの議事録",
		})
		require.Equal(t, http.StatusCreated, resp.Code)

		var created models.Note
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, todo.ID, created.TodoID)
		assert.Equal(t, "打ち合わせの議事録", created.Content)
	})

	t.Run("内容なしは400", func(t *testing.T) {
		resp := testutil.DoJSON(t, router, http.MethodPost, fmt.Sprintf("/api/todos/%d/notes", todo.ID), aliceToken, map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("他人のToDoへの追加は404", func(t *testing.T) {
		resp := testutil.DoJSON(t, router, http.MethodPost, fmt.Sprintf("/api/todos/%d/notes", todo.ID), bobToken, map[string]interface{}{
			"content": "侵入メモ",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("ノートは作成順で返る", func(t *testing.T) {
		ordered := testutil.CreateTestTodo(t, router, aliceToken, "順序確認")
		testutil.CreateTestNote(t, router, aliceToken, ordered.ID, "1番目")
		testutil.CreateTestNote(t, router, aliceToken, ordered.ID, "2番目")

		resp := testutil.DoJSON(t, router, http.MethodGet, "/api/todos/"+itoa(ordered.ID), aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.Code)

		var got models.Todo
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		require.Len(t, got.Notes, 2)
		assert.Equal(t, "1番目", got.Notes[0].Content)
		assert.Equal(t, "2番目", got.Notes[1].Content)
	})

	t.Run("ノートを削除できる", func(t *testing.T) {
		note := testutil.CreateTestNote(t, router, aliceToken, todo.ID, "消すメモ")
		resp := testutil.DoJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/todos/%d/notes/%d", todo.ID, note.ID), aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Note deleted successfully")
	})

	t.Run("他人のノート削除は404", func(t *testing.T) {
		note := testutil.CreateTestNote(t, router, aliceToken, todo.ID, "bobには消せないメモ")
		resp := testutil.DoJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/todos/%d/notes/%d", todo.ID, note.ID), bobToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM notes WHERE id = ?", note.ID).Scan(&count))
		assert.Equal(t, 1, count)
	})
}
