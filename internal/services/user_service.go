package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"mi-todoes/backend/internal/models"
	"mi-todoes/backend/internal/repositories"
)

// UserService はユーザー関連のビジネスロジックを扱います。
type UserService struct {
	userRepo       *repositories.UserRepository
	resetTokenRepo repositories.ResetTokenRepository
	mailService    *MailService
	frontendURL    string
}

// NewUserService は新しいUserServiceを作成します。
func NewUserService(userRepo *repositories.UserRepository, resetTokenRepo repositories.ResetTokenRepository, mailService *MailService, frontendURL string) *UserService {
	return &UserService{
		userRepo:       userRepo,
		resetTokenRepo: resetTokenRepo,
		mailService:    mailService,
		frontendURL:    frontendURL,
	}
}

// RegisterUser はユーザーを登録します。emailまたはusernameが既存と重複する
// 場合は repositories.ErrDuplicateUser を返します。
func (s *UserService) RegisterUser(req models.UserRegisterRequest) (*models.User, error) {
	hashedPassword, err := repositories.HashPassword(req.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}

	createdUser, err := s.userRepo.Create(newUser)
	if err != nil {
		return nil, err
	}
	createdUser.PasswordHash = "" // レスポンスにパスワードを含めない
	return createdUser, nil
}

// AuthenticateUser はユーザーを認証し、成功したらユーザーを返します。
func (s *UserService) AuthenticateUser(req models.UserLoginRequest) (*models.User, error) {
	foundUser, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := repositories.VerifyPassword(foundUser.PasswordHash, req.Password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	foundUser.PasswordHash = ""
	return foundUser, nil
}

// ForgotPasswordUser はリセットトークンを発行してメールを送ります。
// メールアドレスが未登録でも成功扱いにします (存在がバレないように)。
func (s *UserService) ForgotPasswordUser(email string) error {
	// 期限切れ・使用済みトークンの掃除はついでに行う (失敗しても続行)
	if err := s.resetTokenRepo.CleanupExpired(); err != nil {
		log.Printf("Failed to cleanup expired reset tokens: %v", err)
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		log.Printf("email not found but returning OK: %s", email)
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		log.Printf("Failed to generate reset token: %v", err)
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	// トークンをデータベースに保存（有効期限1時間）
	resetToken := &models.PasswordResetToken{
		UserID:    uint(user.ID),
		Token:     token,
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	if err := s.resetTokenRepo.Save(resetToken); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)

	// メール送信に失敗してもリクエスト自体は成功扱い
	if err := s.mailService.SendPasswordReset(email, resetURL); err != nil {
		log.Printf("failed to send reset email: %v", err)
	}

	return nil
}

// generateResetToken はパスワードリセット用のランダムトークンを生成します。
func generateResetToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// ResetPasswordUser はトークンを使ってパスワードをリセットします。
func (s *UserService) ResetPasswordUser(token, newPassword string) error {
	resetToken, err := s.resetTokenRepo.FindByToken(token)
	if err != nil {
		return fmt.Errorf("invalid or expired token")
	}

	if time.Now().After(resetToken.ExpiresAt) {
		return fmt.Errorf("token expired")
	}
	if resetToken.UsedAt != nil {
		return fmt.Errorf("token already used")
	}

	hashedPassword, err := repositories.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(resetToken.UserID, hashedPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// 使用済みマークの失敗は致命的でないので続行
	if err := s.resetTokenRepo.MarkUsed(resetToken.ID); err != nil {
		log.Printf("Failed to mark token as used: %v", err)
	}

	return nil
}
