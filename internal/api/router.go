// internal/api/router.go
package api

import (
	"fmt"
	"net/http"

	"github.com/Corphon/DramaForgeMCP/internal/backend"
	"github.com/Corphon/DramaForgeMCP/internal/config"
	"github.com/Corphon/DramaForgeMCP/internal/di"
	"github.com/Corphon/DramaForgeMCP/internal/services"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()

	// 获取依赖注入容器
	container := di.GetContainer()

	be, ok := container.Get("backend").(backend.Backend)
	if !ok {
		return nil, fmt.Errorf("后端未正确初始化")
	}

	configService, ok := container.Get("aiconfig").(*services.AIConfigService)
	if !ok {
		return nil, fmt.Errorf("AI 配置服务未正确初始化")
	}

	backupService, ok := container.Get("backup").(*services.BackupService)
	if !ok {
		return nil, fmt.Errorf("备份服务未正确初始化")
	}

	taskService, ok := container.Get("task").(*services.TaskService)
	if !ok {
		return nil, fmt.Errorf("任务服务未正确初始化")
	}

	handler := NewHandler(be, configService, backupService, taskService)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// 启用CORS
	r.Use(corsMiddleware())

	// 静态文件服务
	r.Static("/static", cfg.StaticDir)

	// WebSocket 任务进度推送
	r.GET("/ws/tasks/:id", handler.TaskProgressWebSocket)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	{
		// ===============================
		// 剧目相关路由
		// ===============================
		dramasGroup := api.Group("/dramas")
		{
			dramasGroup.GET("", handler.ListDramas)
			dramasGroup.POST("", handler.CreateDrama)
			dramasGroup.GET("/stats", handler.GetDramaStats)
			dramasGroup.GET("/:id", handler.GetDrama)
			dramasGroup.PUT("/:id", handler.UpdateDrama)
			dramasGroup.DELETE("/:id", handler.DeleteDrama)
			dramasGroup.POST("/:id/outline", handler.SaveOutline)
			dramasGroup.POST("/:id/progress", handler.SaveProgress)

			// 角色
			dramasGroup.GET("/:id/characters", handler.GetCharacters)
			dramasGroup.POST("/:id/characters", handler.SaveCharacters)
			dramasGroup.POST("/:id/characters/generate", handler.GenerateCharacters)

			// 剧集
			dramasGroup.POST("/:id/episodes", handler.SaveEpisodes)
			dramasGroup.POST("/:id/episodes/generate", handler.GenerateEpisodes)

			// 场景背景
			dramasGroup.GET("/:id/scenes", handler.ListScenes)
			dramasGroup.POST("/:id/scenes", handler.CreateScene)
		}

		// ===============================
		// 剧集相关路由
		// ===============================
		episodesGroup := api.Group("/episodes")
		{
			episodesGroup.POST("/:id/finalize", handler.FinalizeEpisode)
			episodesGroup.GET("/:id/storyboards", handler.GetStoryboards)
			episodesGroup.POST("/:id/storyboards", handler.CreateStoryboard)
			episodesGroup.POST("/:id/storyboards/generate", handler.GenerateStoryboard)
			episodesGroup.GET("/:id/backgrounds", handler.GetBackgrounds)
			episodesGroup.POST("/:id/backgrounds/extract", handler.ExtractBackgrounds)
			episodesGroup.POST("/:id/images/batch", handler.BatchGenerateImages)
			episodesGroup.POST("/:id/videos/batch", handler.BatchGenerateVideos)
		}

		// ===============================
		// 分镜和场景路由
		// ===============================
		api.PUT("/storyboards/:id", handler.UpdateStoryboard)
		api.DELETE("/storyboards/:id", handler.DeleteStoryboard)

		api.PUT("/scenes/:id", handler.UpdateScene)
		api.DELETE("/scenes/:id", handler.DeleteScene)
		api.POST("/scenes/:id/image", handler.GenerateSceneImage)

		// 角色形象图
		api.POST("/characters/image", handler.GenerateCharacterImage)

		// ===============================
		// 图片生成路由
		// ===============================
		imagesGroup := api.Group("/images")
		{
			imagesGroup.POST("", handler.GenerateImage)
			imagesGroup.GET("", handler.ListImages)
			imagesGroup.GET("/:id", handler.GetImage)
			imagesGroup.DELETE("/:id", handler.DeleteImage)
			imagesGroup.POST("/:id/video", handler.GenerateVideoFromImage)
		}

		// ===============================
		// 视频生成路由
		// ===============================
		videosGroup := api.Group("/videos")
		{
			videosGroup.POST("", handler.GenerateVideo)
			videosGroup.GET("", handler.ListVideos)
			videosGroup.GET("/:id", handler.GetVideo)
			videosGroup.DELETE("/:id", handler.DeleteVideo)
		}

		// ===============================
		// 任务查询
		// ===============================
		api.GET("/tasks/:id", handler.GetTask)

		// ===============================
		// AI 服务配置路由
		// ===============================
		configsGroup := api.Group("/configs")
		{
			configsGroup.GET("", handler.ListAIConfigs)
			configsGroup.POST("", handler.CreateAIConfig)
			configsGroup.GET("/:id", handler.GetAIConfig)
			configsGroup.PUT("/:id", handler.UpdateAIConfig)
			configsGroup.DELETE("/:id", handler.DeleteAIConfig)
		}

		// ===============================
		// 备份路由
		// ===============================
		backupGroup := api.Group("/backup")
		{
			backupGroup.GET("/export", handler.ExportBackup)
			backupGroup.POST("/import", handler.ImportBackup)
		}
	}

	return r, nil
}

// corsMiddleware 实现跨域资源共享
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
