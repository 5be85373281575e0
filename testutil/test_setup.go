// Package testutil はハンドラーテスト用の共通セットアップを提供します。
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"mi-todoes/backend/internal/config"
	"mi-todoes/backend/internal/models"
	"mi-todoes/backend/internal/repositories"
	"mi-todoes/backend/internal/routes"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// schema はテストDBのテーブル定義です。外部キーの順に作成します。
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(255) NOT NULL UNIQUE,
	email VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS todos (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	title VARCHAR(255) NOT NULL,
	description TEXT,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	due_date DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS subtasks (
	id INT AUTO_INCREMENT PRIMARY KEY,
	todo_id INT NOT NULL,
	title VARCHAR(255) NOT NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	FOREIGN KEY (todo_id) REFERENCES todos(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS notes (
	id INT AUTO_INCREMENT PRIMARY KEY,
	todo_id INT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	FOREIGN KEY (todo_id) REFERENCES todos(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS posts (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	title VARCHAR(255) NOT NULL,
	content TEXT,
	published BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS password_reset_tokens (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	token VARCHAR(255) NOT NULL UNIQUE,
	expires_at DATETIME NOT NULL,
	used_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);`

// tables は TRUNCATE する順序 (子から親へ)。
var tables = []string{"password_reset_tokens", "notes", "subtasks", "todos", "posts", "users"}

// TestConfig はテスト用のアプリケーション設定です。
// レートリミットはテストを邪魔しないよう十分緩くします。
func TestConfig() config.Config {
	return config.Config{
		ServerPort:  "8080",
		JWTSecret:   "test_very_secret_jwt_key_here",
		FrontendURL: "http://localhost:3000",
		CORSOrigins: []string{"http://localhost:3000"},
		Limiter:     config.LimiterConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
}

// SetupTestDB はテスト用のデータベース接続を確立し、テーブルを作成し、
// テストユーザーを投入して、本物のルーターと一緒に返します。
func SetupTestDB(t *testing.T) (*sql.DB, *gin.Engine, *repositories.TodoRepository, *repositories.UserRepository) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("Warning: Could not load .env file for tests: %v", err)
	}

	dbUser := os.Getenv("TEST_DB_USER")
	dbPass := os.Getenv("TEST_DB_PASS")
	dbHost := os.Getenv("TEST_DB_HOST")
	dbPort := os.Getenv("TEST_DB_PORT")
	dbName := os.Getenv("TEST_DB_NAME")

	if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
		t.Skip("Skipping test: TEST_DB_* environment variables are not set")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true", dbUser, dbPass, dbHost, dbPort, dbName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("Failed to open database connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("Skipping test: Failed to ping database: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	// 既存データを削除してクリーンな状態にする (外部キー制約のため子テーブルから)
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS=0;"); err != nil {
		log.Printf("Failed to disable foreign key checks: %v", err)
	}
	for _, table := range tables {
		if _, err := db.Exec("TRUNCATE TABLE " + table); err != nil {
			log.Printf("Failed to truncate %s table: %v", table, err)
		}
	}
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS=1;"); err != nil {
		log.Printf("Failed to enable foreign key checks: %v", err)
	}

	// テストユーザーの挿入
	userRepo := repositories.NewUserRepository(db)
	CreateTestUser(t, userRepo, "alice", "alice@example.com", "password123")
	CreateTestUser(t, userRepo, "bob", "bob@example.com", "password456")

	gin.SetMode(gin.TestMode)
	router := routes.SetupRouter(db, TestConfig())
	todoRepo := repositories.NewTodoRepository(db)

	return db, router, todoRepo, userRepo
}

// CreateTestUser はテストユーザーを作成してデータベースに保存します。
func CreateTestUser(t *testing.T, userRepo *repositories.UserRepository, username, email, password string) *models.User {
	hashedPassword, err := repositories.HashPassword(password)
	require.NoError(t, err)

	newUser := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	createdUser, err := userRepo.Create(&newUser)
	require.NoError(t, err)
	require.NotNil(t, createdUser)
	require.NotEqual(t, 0, createdUser.ID)
	return createdUser
}

// LoginAndGetToken はログインAPIを叩いてJWTトークンを取得します。
func LoginAndGetToken(t *testing.T, router *gin.Engine, email, password string) (string, error) {
	loginPayload := map[string]string{
		"email":    email,
		"password": password,
	}
	body, _ := json.Marshal(loginPayload)

	req, _ := http.NewRequest(http.MethodPost, "/api/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", resp.Code, resp.Body.String())
	}

	var loginRes map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &loginRes); err != nil {
		return "", fmt.Errorf("failed to unmarshal login response: %w", err)
	}

	token, ok := loginRes["token"].(string)
	if !ok {
		return "", errors.New("token not found or not a string in login response")
	}
	return token, nil
}

// DoJSON は認証付きでJSONリクエストを実行するテストヘルパーです。
func DoJSON(t *testing.T, router *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestTodo はAPI経由でテスト用のToDoを作成します。
func CreateTestTodo(t *testing.T, router *gin.Engine, token, title string) *models.Todo {
	resp := DoJSON(t, router, http.MethodPost, "/api/todos", token, map[string]interface{}{
		"title": title,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "Failed to create test todo: %s", resp.Body.String())

	var createdTodo models.Todo
	err := json.Unmarshal(resp.Body.Bytes(), &createdTodo)
	require.NoError(t, err)
	return &createdTodo
}

// CreateTestSubtask はAPI経由でテスト用のサブタスクを作成します。
func CreateTestSubtask(t *testing.T, router *gin.Engine, token string, todoID int, title string) *models.Subtask {
	resp := DoJSON(t, router, http.MethodPost, fmt.Sprintf("/api/todos/%d/subtasks", todoID), token, map[string]interface{}{
		"title": title,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "Failed to create test subtask: %s", resp.Body.String())

	var createdSubtask models.Subtask
	err := json.Unmarshal(resp.Body.Bytes(), &createdSubtask)
	require.NoError(t, err)
	return &createdSubtask
}

// CreateTestNote はAPI経由でテスト用のノートを作成します。
func CreateTestNote(t *testing.T, router *gin.Engine, token string, todoID int, content string) *models.Note {
	resp := DoJSON(t, router, http.MethodPost, fmt.Sprintf("/api/todos/%d/notes", todoID), token, map[string]interface{}{
		"content": content,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "Failed to create test note: %s", resp.Body.String())

	var createdNote models.Note
	err := json.Unmarshal(resp.Body.Bytes(), &createdNote)
	require.NoError(t, err)
	return &createdNote
}
