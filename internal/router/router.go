package router

import (
	"net/http"
	"time"

	"closetube/internal/handler"
	"closetube/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRouter(jwtSecret string, videoHandler handler.VideoHandler, groupHandler handler.GroupHandler, userHandler handler.UserHandler) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
	})

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/videos", videoHandler.ListVideos)
		apiV1.GET("/videos/:video_id", videoHandler.GetVideo)
		apiV1.GET("/groups", groupHandler.ListGroups)

		userGroup := apiV1.Group("/users")
		{
			userGroup.POST("/register", userHandler.Register)
			userGroup.POST("/login", userHandler.Login)
		}

		// Ingestion records the uploader when a token is presented but
		// does not require one.
		apiV1.POST("/videos", middleware.OptionalAuthMiddleware(jwtSecret), videoHandler.CreateVideo)

		apiV1.POST("/videos/:video_id/like", videoHandler.LikeVideo)
		apiV1.DELETE("/videos/:video_id", videoHandler.DeleteVideo)
	}

	return r
}
