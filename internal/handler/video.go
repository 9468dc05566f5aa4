package handler

import (
	"net/http"
	"strconv"

	"closetube/internal/dto"
	"closetube/internal/service"
	"closetube/pkg/logger"

	"github.com/gin-gonic/gin"
)

type VideoHandler interface {
	CreateVideo(c *gin.Context)
	GetVideo(c *gin.Context)
	ListVideos(c *gin.Context)
	DeleteVideo(c *gin.Context)
	LikeVideo(c *gin.Context)
}

type videoHandler struct {
	catalog service.CatalogService
}

func NewVideoHandler(catalog service.CatalogService) VideoHandler {
	return &videoHandler{catalog: catalog}
}

type CreateVideoRequest struct {
	GroupID string `json:"group_id" binding:"required"`
	URL     string `json:"url" binding:"required"`
}

func (h *videoHandler) CreateVideo(c *gin.Context) {
	var req CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Error("create video: bad request body")
		sendErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// Uploader is optional; the optional-auth middleware sets it when a
	// valid token was presented.
	uploaderID := c.GetString("userID")
	logCtx := logger.Log.WithField("group_id", req.GroupID).WithField("uploader_id", uploaderID)
	logCtx.Info("ingesting video")

	video, err := h.catalog.CreateVideo(c.Request.Context(), req.GroupID, req.URL, uploaderID)
	if err != nil {
		logCtx.WithError(err).Error("video ingestion failed")
		sendErrorResponse(c, statusForServiceError(err), err.Error())
		return
	}
	logCtx.WithField("video_id", video.ID).Info("video ingested")

	c.JSON(http.StatusCreated, gin.H{"data": dto.ToVideoResponse(video)})
}

func (h *videoHandler) GetVideo(c *gin.Context) {
	videoID := c.Param("video_id")
	logCtx := logger.Log.WithField("video_id", videoID)

	video, err := h.catalog.GetVideo(c.Request.Context(), videoID)
	if err != nil {
		logCtx.WithError(err).Warn("video lookup failed")
		sendErrorResponse(c, statusForServiceError(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.ToVideoResponse(video)})
}

func (h *videoHandler) ListVideos(c *gin.Context) {
	groupID := c.Query("group_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logCtx := logger.Log.WithField("group_id", groupID).WithField("ip", c.ClientIP())

	videos, err := h.catalog.ListVideos(c.Request.Context(), groupID, limit, offset)
	if err != nil {
		logCtx.WithError(err).Error("video listing failed")
		sendErrorResponse(c, statusForServiceError(err), err.Error())
		return
	}

	response := make([]dto.VideoResponse, 0, len(videos))
	for i := range videos {
		response = append(response, dto.ToVideoResponse(&videos[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": response})
}

func (h *videoHandler) DeleteVideo(c *gin.Context) {
	videoID := c.Param("video_id")
	logCtx := logger.Log.WithField("video_id", videoID)

	deleted, err := h.catalog.DeleteVideo(c.Request.Context(), videoID)
	if err != nil {
		logCtx.WithError(err).Error("video deletion failed")
		sendErrorResponse(c, statusForServiceError(err), err.Error())
		return
	}
	if !deleted {
		sendErrorResponse(c, http.StatusNotFound, "video not found")
		return
	}
	logCtx.Info("video deleted")
	c.JSON(http.StatusOK, gin.H{"message": "video deleted"})
}

func (h *videoHandler) LikeVideo(c *gin.Context) {
	videoID := c.Param("video_id")
	logCtx := logger.Log.WithField("video_id", videoID)

	liked, err := h.catalog.LikeVideo(c.Request.Context(), videoID)
	if err != nil {
		logCtx.WithError(err).Error("like failed")
		sendErrorResponse(c, statusForServiceError(err), err.Error())
		return
	}
	if !liked {
		sendErrorResponse(c, http.StatusNotFound, "video not found")
		return
	}
	logCtx.Info("video liked")
	c.JSON(http.StatusOK, gin.H{"message": "like added"})
}
