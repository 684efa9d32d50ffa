package handler

import (
	"net/http"
	"time"

	"GameShelf/internal/middleware"
	"GameShelf/internal/service"

	"github.com/gin-gonic/gin"
)

type RoundHandler struct {
	svc *service.RoundService
}

func NewRoundHandler(svc *service.RoundService) *RoundHandler {
	return &RoundHandler{svc: svc}
}

type CreateRoundReq struct {
	NominationDeadline *time.Time `json:"nomination_deadline"`
	VotingDeadline     *time.Time `json:"voting_deadline"`
	PlayingDeadline    *time.Time `json:"playing_deadline"`
	ReviewDeadline     *time.Time `json:"review_deadline"`
}

// Create POST /api/club/:id/round
func (h *RoundHandler) Create(c *gin.Context) {
	var req CreateRoundReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	round, err := h.svc.Create(c.Request.Context(), paramID(c), middleware.UserID(c), service.RoundDeadlines{
		Nomination: req.NominationDeadline,
		Voting:     req.VotingDeadline,
		Playing:    req.PlayingDeadline,
		Review:     req.ReviewDeadline,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "round": round})
}

func (h *RoundHandler) Nominate(c *gin.Context) {
	var req struct {
		GameID uint64 `json:"game_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	nom, xp, err := h.svc.Nominate(c.Request.Context(), paramID(c), middleware.UserID(c), req.GameID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "nomination": nom, "xp_granted": xp > 0, "xp_amount": xp})
}

func (h *RoundHandler) Vote(c *gin.Context) {
	var req struct {
		NominationID uint64 `json:"nomination_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	if err := h.svc.Vote(c.Request.Context(), paramID(c), middleware.UserID(c), req.NominationID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "ok"})
}

func (h *RoundHandler) Review(c *gin.Context) {
	var req struct {
		Score   int    `json:"score" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	if err := h.svc.Review(c.Request.Context(), paramID(c), middleware.UserID(c), req.Score, req.Comment); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "ok"})
}

func (h *RoundHandler) Advance(c *gin.Context) {
	result, err := h.svc.Advance(c.Request.Context(), paramID(c), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "result": result})
}

func (h *RoundHandler) View(c *gin.Context) {
	view, err := h.svc.View(c.Request.Context(), paramID(c), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "view": view})
}
