package server

import (
	"net/http"
	"time"

	"video-api/domain/dto"
	httpHandler "video-api/interfaces/http"
	"video-api/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	videoHandler httpHandler.IVideoHandler,
	healthHandler httpHandler.IHealthHandler,
	allowOrigins []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(corsConfig(allowOrigins)))

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, dto.Res{Message: "Resource not found"})
	})

	router.GET("/healthz", healthHandler.Healthz)

	video := router.Group("/video")
	{
		video.GET("/:id", videoHandler.GetVideo)
		video.PUT("/:id", videoHandler.PutVideo)
		video.PATCH("/:id", videoHandler.PatchVideo)
		video.DELETE("/:id", videoHandler.DeleteVideo)
	}

	return router
}

// corsConfig allows every origin when none are configured. Credentials are only
// allowed for an explicit origin list.
func corsConfig(allowOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowOrigins
	cfg.AllowCredentials = true
	return cfg
}
