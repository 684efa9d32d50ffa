package handler

import (
	"net/http"

	"GameShelf/internal/middleware"
	"GameShelf/internal/model"
	"GameShelf/internal/service"

	"github.com/gin-gonic/gin"
)

type DailyHandler struct {
	svc *service.DailyService
}

func NewDailyHandler(svc *service.DailyService) *DailyHandler {
	return &DailyHandler{svc: svc}
}

// TodayPoll POST /api/daily/poll 取或建今天的投票
func (h *DailyHandler) TodayPoll(c *gin.Context) {
	var req struct {
		GameIDs []uint64 `json:"game_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	poll, games, err := h.svc.TodayPoll(c.Request.Context(), req.GameIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "poll": poll, "games": games})
}

func (h *DailyHandler) CastPollVote(c *gin.Context) {
	var req struct {
		ChoiceID uint64 `json:"choice_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	xp, err := h.svc.CastPollVote(c.Request.Context(), paramID(c), middleware.UserID(c), req.ChoiceID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "xp_granted": xp > 0, "xp_amount": xp})
}

func (h *DailyHandler) PollResults(c *gin.Context) {
	results, err := h.svc.PollResults(c.Request.Context(), paramID(c), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "results": results})
}

type quizOptionReq struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// TodayQuiz POST /api/daily/quiz 取或建今天的问答
func (h *DailyHandler) TodayQuiz(c *gin.Context) {
	var req struct {
		Question string          `json:"question" binding:"required"`
		Options  []quizOptionReq `json:"options" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	options := make([]model.DailyQuizOption, 0, len(req.Options))
	for _, o := range req.Options {
		options = append(options, model.DailyQuizOption{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	quiz, opts, err := h.svc.TodayQuiz(c.Request.Context(), req.Question, options)
	if err != nil {
		fail(c, err)
		return
	}
	// 不把 is_correct 回给客户端
	type optionView struct {
		ID   uint64 `json:"id"`
		Text string `json:"text"`
	}
	views := make([]optionView, 0, len(opts))
	for _, o := range opts {
		views = append(views, optionView{ID: o.ID, Text: o.Text})
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "quiz": quiz, "options": views})
}

func (h *DailyHandler) AnswerQuiz(c *gin.Context) {
	var req struct {
		OptionID uint64 `json:"option_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	correct, xp, err := h.svc.AnswerQuiz(c.Request.Context(), paramID(c), middleware.UserID(c), req.OptionID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "correct": correct, "xp_granted": xp > 0, "xp_amount": xp})
}

func (h *DailyHandler) QuizResults(c *gin.Context) {
	results, err := h.svc.QuizResults(c.Request.Context(), paramID(c), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "results": results})
}
