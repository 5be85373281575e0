package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"mi-todoes/backend/internal/models"
	"mi-todoes/backend/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPost(t *testing.T, router *gin.Engine, token, title string) *models.Post {
	t.Helper()
	resp := testutil.DoJSON(t, router, http.MethodPost, "/api/posts", token, map[string]interface{}{"title": title})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var post models.Post
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &post))
	return &post
}

func TestPostHandlers(t *testing.T) {
	db, router, _, _ := testutil.SetupTestDB(t)
	defer db.Close()

	aliceToken, err := testutil.LoginAndGetToken(t, router, "alice@example.com", "password123")
	require.NoError(t, err)
	bobToken, err := testutil.LoginAndGetToken(t, router, "bob@example.com", "password456")
	require.NoError(t, err)

	t.Run("記事を作成できる", func(t *testing.T) {
		content := "今週やったことのまとめ。"
		resp := testutil.DoJSON(t, router, http.MethodPost, "/api/posts", aliceToken, map[string]interface{}{
			"title":     "週報",
			"content":   content,
			"published": true,
		})
		require.Equal(t, http.StatusCreated, resp.Code)

		var post models.Post
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &post))
		assert.NotZero(t, post.ID)
		assert.Equal(t, "週報", post.Title)
		require.NotNil(t, post.Content)
		assert.Equal(t, content, *post.Content)
		assert.True(t, post.Published)
		require.NotNil(t, post.Author)
		assert.Equal(t, "alice", post.Author.Username)
	})

	t.Run("タイトルなしは400", func(t *testing.T) {
		resp := testutil.DoJSON(t, router, http.MethodPost, "/api/posts", aliceToken, map[string]interface{}{
			"content": "タイトル忘れ",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("一覧は全ユーザーの記事を新しい順で返す", func(t *testing.T) {
		alicePost := createTestPost(t, router, aliceToken, "aliceの記事")
		bobPost := createTestPost(t, router, bobToken, "bobの記事")

		resp := testutil.DoJSON(t, router, http.MethodGet, "/api/posts", aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.Code)

		var posts []models.Post
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &posts))
		require.GreaterOrEqual(t, len(posts), 2)
		assert.Equal(t, bobPost.ID, posts[0].ID)
		assert.Equal(t, alicePost.ID, posts[1].ID)
		require.NotNil(t, posts[0].Author)
		assert.Equal(t, "bob", posts[0].Author.Username)
	})

	t.Run("他人の記事も閲覧はできる", func(t *testing.T) {
		post := createTestPost(t, router, aliceToken, "公開範囲の確認")
		resp := testutil.DoJSON(t, router, http.MethodGet, "/api/posts/"+itoa(post.ID), bobToken, nil)
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("部分更新で未指定フィールドが保持される", func(t *testing.T) {
		post := createTestPost(t, router, aliceToken, "下書き")
		resp := testutil.DoJSON(t, router, http.MethodPut, "/api/posts/"+itoa(post.ID), aliceToken, map[string]interface{}{
			"published": true,
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var updated models.Post
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
		assert.True(t, updated.Published)
		assert.Equal(t, "下書き", updated.Title)
	})

	t.Run("他人の記事の更新は404", func(t *testing.T) {
		post := createTestPost(t, router, aliceToken, "書き換え禁止")
		resp := testutil.DoJSON(t, router, http.MethodPut, "/api/posts/"+itoa(post.ID), bobToken, map[string]interface{}{
			"title": "乗っ取り",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("記事を削除できる", func(t *testing.T) {
		post := createTestPost(t, router, aliceToken, "削除予定")
		resp := testutil.DoJSON(t, router, http.MethodDelete, "/api/posts/"+itoa(post.ID), aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Post deleted successfully")

		resp = testutil.DoJSON(t, router, http.MethodGet, "/api/posts/"+itoa(post.ID), aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("他人の記事の削除は404", func(t *testing.T) {
		post := createTestPost(t, router, aliceToken, "消させない記事")
		resp := testutil.DoJSON(t, router, http.MethodDelete, "/api/posts/"+itoa(post.ID), bobToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM posts WHERE id = ?", post.ID).Scan(&count))
		assert.Equal(t, 1, count)
	})
}
