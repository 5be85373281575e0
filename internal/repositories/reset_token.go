package repositories

import (
	"database/sql"
	"errors"
	"log"

	"mi-todoes/backend/internal/models"
)

var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetTokenRepository はパスワードリセットトークンの保存・検索を抽象化します。
type ResetTokenRepository interface {
	Save(token *models.PasswordResetToken) error
	FindByToken(token string) (*models.PasswordResetToken, error)
	MarkUsed(id uint) error
	CleanupExpired() error
}

type MySQLResetTokenRepo struct {
	DB *sql.DB
}

func NewMySQLResetTokenRepo(db *sql.DB) *MySQLResetTokenRepo {
	return &MySQLResetTokenRepo{DB: db}
}

func (r *MySQLResetTokenRepo) Save(t *models.PasswordResetToken) error {
	_, err := r.DB.Exec(
		"INSERT INTO password_reset_tokens (user_id, token, expires_at) VALUES (?, ?, ?)",
		t.UserID, t.Token, t.ExpiresAt,
	)
	return err
}

func (r *MySQLResetTokenRepo) FindByToken(token string) (*models.PasswordResetToken, error) {
	query := "SELECT id, user_id, token, expires_at, used_at FROM password_reset_tokens WHERE token = ?"
	row := r.DB.QueryRow(query, token)

	var pr models.PasswordResetToken
	var usedAt sql.NullTime
	if err := row.Scan(&pr.ID, &pr.UserID, &pr.Token, &pr.ExpiresAt, &usedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenNotFound
		}
		log.Printf("Failed to query reset token: %v", err)
		return nil, err
	}
	if usedAt.Valid {
		pr.UsedAt = &usedAt.Time
	}
	return &pr, nil
}

// CleanupExpired は使用済み・期限切れのトークンを削除します。
func (r *MySQLResetTokenRepo) CleanupExpired() error {
	_, err := r.DB.Exec(`
		DELETE FROM password_reset_tokens
		WHERE used_at IS NOT NULL
		   OR expires_at < NOW()
	`)
	if err != nil {
		log.Printf("Failed to cleanup reset tokens: %v", err)
		return err
	}
	return nil
}

func (r *MySQLResetTokenRepo) MarkUsed(id uint) error {
	_, err := r.DB.Exec(
		"UPDATE password_reset_tokens SET used_at = NOW() WHERE id = ?",
		id,
	)
	return err
}
