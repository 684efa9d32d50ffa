package handler

import (
	"net/http"

	"GameShelf/internal/middleware"
	"GameShelf/internal/service"

	"github.com/gin-gonic/gin"
)

type RewardHandler struct {
	svc *service.RewardService
}

func NewRewardHandler(svc *service.RewardService) *RewardHandler {
	return &RewardHandler{svc: svc}
}

// Profile GET /api/profile/level 当前经验、等级与最近的奖励流水
func (h *RewardHandler) Profile(c *gin.Context) {
	profile, err := h.svc.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "profile": profile})
}
