package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mi-todoes/backend/internal/services"
)

// StatsHandler はダッシュボード用の統計ハンドラーを管理します。
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler は新しいStatsHandlerを作成します。
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStatsHandler は認証ユーザーの進捗統計を返します。
func (h *StatsHandler) GetStatsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.statsService.GetOverview(userID)
	if err != nil {
		log.Printf("Failed to compute stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
