package services

import (
	"math"

	"mi-todoes/backend/internal/models"
	"mi-todoes/backend/internal/repositories"
)

// recentlyCompletedLimit はダッシュボードに出す「最近完了したToDo」の件数です。
const recentlyCompletedLimit = 5

// StatsService はユーザーごとの進捗統計を集計します。
type StatsService struct {
	todoRepo    *repositories.TodoRepository
	subtaskRepo *repositories.SubtaskRepository
}

// NewStatsService は新しいStatsServiceを作成します。
func NewStatsService(todoRepo *repositories.TodoRepository, subtaskRepo *repositories.SubtaskRepository) *StatsService {
	return &StatsService{todoRepo: todoRepo, subtaskRepo: subtaskRepo}
}

// GetOverview はToDo・サブタスクの総数と完了数、完了率、
// 最近完了したToDoの一覧 (最大5件、更新日時降順) を返します。
func (s *StatsService) GetOverview(userID int) (*models.TodoStats, error) {
	totalTodos, err := s.todoRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	completedTodos, err := s.todoRepo.CountCompletedByUser(userID)
	if err != nil {
		return nil, err
	}
	totalSubtasks, err := s.subtaskRepo.CountByOwner(userID)
	if err != nil {
		return nil, err
	}
	completedSubtasks, err := s.subtaskRepo.CountCompletedByOwner(userID)
	if err != nil {
		return nil, err
	}
	recentlyCompleted, err := s.todoRepo.FindRecentlyCompleted(userID, recentlyCompletedLimit)
	if err != nil {
		return nil, err
	}

	return &models.TodoStats{
		TotalTodos:        totalTodos,
		CompletedTodos:    completedTodos,
		TotalSubtasks:     totalSubtasks,
		CompletedSubtasks: completedSubtasks,
		CompletionRate:    CompletionRate(completedTodos+completedSubtasks, totalTodos+totalSubtasks),
		RecentlyCompleted: recentlyCompleted,
	}, nil
}

// CompletionRate は completed/total*100 を小数第2位に丸めて返します。
// totalが0のときは0です。
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	return math.Round(rate*100) / 100
}
