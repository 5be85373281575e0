package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"mi-todoes/backend/internal/config"
)

// InitDB はデータベース接続を初期化します。
// 接続ハンドルは呼び出し側がリポジトリに注入します (グローバル変数は持ちません)。
func InitDB(cfg config.DBConfig) *sql.DB {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Fatalf("Fatal: Failed to open database connection: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		log.Fatalf("Fatal: Failed to ping database: %v", err)
	}
	log.Println("Successfully connected to MySQL database!")
	return db
}
