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

func TestGetStatsHandler(t *testing.T) {
	db, router, _, _ := testutil.SetupTestDB(t)
	defer db.Close()

	aliceToken, err := testutil.LoginAndGetToken(t, router, "alice@example.com", "password123")
	require.NoError(t, err)
	bobToken, err := testutil.LoginAndGetToken(t, router, "bob@example.com", "password456")
	require.NoError(t, err)

	getStats := func(t *testing.T, token, path string) models.TodoStats {
		t.Helper()
		resp := testutil.DoJSON(t, router, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		var stats models.TodoStats
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
		return stats
	}

	t.Run("ToDoゼロ件では全項目ゼロ", func(t *testing.T) {
		stats := getStats(t, aliceToken, "/api/todos/stats/overview")
		assert.Equal(t, 0, stats.TotalTodos)
		assert.Equal(t, 0, stats.CompletedTodos)
		assert.Equal(t, 0, stats.TotalSubtasks)
		assert.Equal(t, 0, stats.CompletedSubtasks)
		assert.Equal(t, 0.0, stats.CompletionRate)
		assert.NotNil(t, stats.RecentlyCompleted)
		assert.Len(t, stats.RecentlyCompleted, 0)
	})

	t.Run("完了率はサブタスクも含めて計算される", func(t *testing.T) {
		// 未完了のToDo1件 + 完了済みサブタスク1件 → (0+1)/(1+1)*100 = 50
		todo := testutil.CreateTestTodo(t, router, aliceToken, "進捗半分")
		subtask := testutil.CreateTestSubtask(t, router, aliceToken, todo.ID, "できた方")
		resp := testutil.DoJSON(t, router, http.MethodPut, fmt.Sprintf("/api/todos/%d/subtasks/%d", todo.ID, subtask.ID), aliceToken, map[string]interface{}{
			"completed": true,
		})
		require.Equal(t, http.StatusOK, resp.Code)

		stats := getStats(t, aliceToken, "/api/todos/stats/overview")
		assert.Equal(t, 1, stats.TotalTodos)
		assert.Equal(t, 0, stats.CompletedTodos)
		assert.Equal(t, 1, stats.TotalSubtasks)
		assert.Equal(t, 1, stats.CompletedSubtasks)
		assert.Equal(t, 50.0, stats.CompletionRate)
	})

	t.Run("統計は自分のデータだけを集計する", func(t *testing.T) {
		stats := getStats(t, bobToken, "/api/stats")
		assert.Equal(t, 0, stats.TotalTodos)
		assert.Equal(t, 0, stats.TotalSubtasks)
	})

	t.Run("最近完了したToDoは5件まで新しい順", func(t *testing.T) {
		for i := 1; i <= 6; i++ {
			todo := testutil.CreateTestTodo(t, router, bobToken, fmt.Sprintf("完了タスク%d", i))
			resp := testutil.DoJSON(t, router, http.MethodPut, "/api/todos/"+itoa(todo.ID), bobToken, map[string]interface{}{
				"completed": true,
			})
			require.Equal(t, http.StatusOK, resp.Code)
		}

		stats := getStats(t, bobToken, "/api/stats")
		assert.Equal(t, 6, stats.TotalTodos)
		assert.Equal(t, 6, stats.CompletedTodos)
		assert.Equal(t, 100.0, stats.CompletionRate)
		require.Len(t, stats.RecentlyCompleted, 5)
		assert.Equal(t, "完了タスク6", stats.RecentlyCompleted[0].Title)
		for i := 1; i < len(stats.RecentlyCompleted); i++ {
			assert.False(t, stats.RecentlyCompleted[i-1].UpdatedAt.Before(stats.RecentlyCompleted[i].UpdatedAt))
		}
	})

	t.Run("両方のパスで同じ統計が返る", func(t *testing.T) {
		fromTodos := getStats(t, bobToken, "/api/todos/stats/overview")
		fromStats := getStats(t, bobToken, "/api/stats")
		assert.Equal(t, fromTodos.TotalTodos, fromStats.TotalTodos)
		assert.Equal(t, fromTodos.CompletionRate, fromStats.CompletionRate)
	})

	t.Run("未認証は401", func(t *testing.T) {
		resp := testutil.DoJSON(t, router, http.MethodGet, "/api/stats", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
