package services

import (
	"mi-todoes/backend/internal/models"
	"mi-todoes/backend/internal/repositories"
)

// PostService はブログ投稿のビジネスロジックを扱います。
// 読み取りは認証ユーザーなら誰でも可能ですが、更新・削除は所有者だけです。
type PostService struct {
	postRepo *repositories.PostRepository
}

// NewPostService は新しいPostServiceを作成します。
func NewPostService(postRepo *repositories.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// CreatePost は新しい投稿を作成します。
func (s *PostService) CreatePost(userID int, req *models.PostCreateRequest) (*models.Post, error) {
	return s.postRepo.Create(userID, req)
}

// GetPosts はすべての投稿を著者付きで取得します。
func (s *PostService) GetPosts() ([]*models.Post, error) {
	return s.postRepo.FindAll()
}

// GetPostByID は指定IDの投稿を取得します。
func (s *PostService) GetPostByID(id int) (*models.Post, error) {
	return s.postRepo.FindByID(id)
}

// UpdatePost は所有者の投稿を部分更新します。
// 他ユーザーの投稿はNotFoundとして扱います。
func (s *PostService) UpdatePost(id, userID int, req *models.PostUpdateRequest) (*models.Post, error) {
	existing, err := s.postRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, repositories.ErrPostNotFound
	}
	return s.postRepo.Update(id, req)
}

// DeletePost は所有者の投稿を削除します。
func (s *PostService) DeletePost(id, userID int) error {
	existing, err := s.postRepo.FindByID(id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return repositories.ErrPostNotFound
	}
	return s.postRepo.Delete(id)
}
