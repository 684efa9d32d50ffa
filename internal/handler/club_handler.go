package handler

import (
	"net/http"
	"strconv"

	"GameShelf/internal/middleware"
	"GameShelf/internal/pkg"
	"GameShelf/internal/service"

	"github.com/gin-gonic/gin"
)

type ClubHandler struct {
	svc *service.MembershipService
}

func NewClubHandler(svc *service.MembershipService) *ClubHandler {
	return &ClubHandler{svc: svc}
}

func paramID(c *gin.Context) uint64 {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	return id
}

func fail(c *gin.Context, err error) {
	c.JSON(pkg.HTTPStatus(err), gin.H{"code": 1, "msg": err.Error()})
}

func (h *ClubHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	club, err := h.svc.CreateClub(middleware.UserID(c), req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "club": club})
}

func (h *ClubHandler) Join(c *gin.Context) {
	if err := h.svc.Join(middleware.UserID(c), paramID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "ok"})
}

func (h *ClubHandler) Leave(c *gin.Context) {
	if err := h.svc.Leave(middleware.UserID(c), paramID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "ok"})
}

func (h *ClubHandler) Invite(c *gin.Context) {
	var req struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	if err := h.svc.Invite(middleware.UserID(c), paramID(c), req.UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "ok"})
}

func (h *ClubHandler) Remove(c *gin.Context) {
	var req struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	if err := h.svc.RemoveMember(middleware.UserID(c), paramID(c), req.UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "ok"})
}

func (h *ClubHandler) Transfer(c *gin.Context) {
	var req struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": "invalid params"})
		return
	}
	if err := h.svc.TransferOwnership(middleware.UserID(c), paramID(c), req.UserID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "ok"})
}

func (h *ClubHandler) Members(c *gin.Context) {
	list, err := h.svc.Members(paramID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "members": list})
}
