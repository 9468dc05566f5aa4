package handler

import (
	"errors"
	"net/http"

	"closetube/internal/service"
	"closetube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
}

type userHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) UserHandler {
	return &userHandler{users: users}
}

type AuthRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *userHandler) Register(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			sendErrorResponse(c, http.StatusConflict, err.Error())
			return
		}
		logger.Log.WithError(err).Error("registration failed")
		sendErrorResponse(c, statusForServiceError(err), "registration failed")
		return
	}

	logger.Log.WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": user.ID, "username": user.Username}})
}

func (h *userHandler) Login(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			sendErrorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}
		logger.Log.WithError(err).Error("login failed")
		sendErrorResponse(c, statusForServiceError(err), "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token}})
}
