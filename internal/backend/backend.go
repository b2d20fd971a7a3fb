// internal/backend/backend.go
package backend

import (
	"fmt"

	"github.com/Corphon/DramaForgeMCP/internal/config"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/services"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
)

// Backend 统一的业务操作入口。
// local 模式直接落到本地服务，remote 模式把同样的操作转发到远端实例，
// 上层处理器只依赖这个接口，切换存储模式不需要改动路由层。
type Backend interface {
	// 剧目
	ListDramas(query *services.DramaListQuery) (*storage.Page[models.Drama], error)
	CreateDrama(req *services.CreateDramaRequest) (*models.Drama, error)
	GetDrama(id string) (*models.Drama, error)
	UpdateDrama(id string, req *services.UpdateDramaRequest) (*models.Drama, error)
	DeleteDrama(id string) error
	DramaStats() (*models.DramaStats, error)
	SaveOutline(id string, req *services.SaveOutlineRequest) (*models.Drama, error)
	SaveProgress(id string, req *services.SaveProgressRequest) error

	// 角色
	GetCharacters(dramaID string) ([]models.Character, error)
	SaveCharacters(dramaID string, characters []models.Character) ([]models.Character, error)
	GenerateCharacters(req *services.GenerateCharactersRequest) (*models.TaskHandle, error)

	// 剧集
	SaveEpisodes(dramaID string, episodes []models.Episode) ([]models.Episode, error)
	GenerateEpisodes(dramaID string, count int) ([]models.Episode, error)
	FinalizeEpisode(episodeID string) error

	// 分镜
	GetStoryboards(episodeID string) ([]services.StoryboardView, error)
	CreateStoryboard(episodeID string, sb models.Storyboard) (*models.Storyboard, error)
	UpdateStoryboard(storyboardID string, req *services.UpdateStoryboardRequest) (*models.Storyboard, error)
	DeleteStoryboard(storyboardID string) error
	GenerateStoryboard(episodeID string) (*models.TaskHandle, error)

	// 场景背景
	ListScenes(dramaID string) ([]models.Scene, error)
	CreateScene(dramaID string, scene models.Scene) (*models.Scene, error)
	UpdateScene(sceneID string, req *services.UpdateSceneRequest) (*models.Scene, error)
	DeleteScene(sceneID string) error
	ExtractBackgrounds(episodeID string) (*models.TaskHandle, error)
	GetBackgrounds(episodeID string) ([]models.Scene, error)

	// 图片生成
	GenerateImage(req *services.GenerateImageRequest) (*models.ImageGeneration, error)
	GenerateSceneImage(sceneID, prompt, model string) (*models.ImageGeneration, error)
	GenerateCharacterImage(characterID int, dramaID, prompt string) (*models.ImageGeneration, error)
	BatchGenerateImages(episodeID string) ([]models.ImageGeneration, error)
	GetImage(id int) (*models.ImageGeneration, error)
	ListImages(query *services.ImageListQuery) (*storage.Page[models.ImageGeneration], error)
	DeleteImage(id int) error

	// 视频生成
	GenerateVideo(req *services.GenerateVideoRequest) (*models.VideoGeneration, error)
	GenerateVideoFromImage(imageGenID int, dramaID, prompt string) (*models.VideoGeneration, error)
	BatchGenerateVideos(episodeID string) ([]models.VideoGeneration, error)
	GetVideo(id int) (*models.VideoGeneration, error)
	ListVideos(query *services.VideoListQuery) (*storage.Page[models.VideoGeneration], error)
	DeleteVideo(id int) error

	// 任务
	GetTask(taskID string) (*models.Task, error)
}

// LocalDeps 本地后端依赖的服务集合
type LocalDeps struct {
	Dramas     *services.DramaService
	Images     *services.ImageGenerationService
	Videos     *services.VideoGenerationService
	Generation *services.GenerationService
	Tasks      *services.TaskService
}

// New 根据配置的存储模式创建后端实例
func New(cfg *config.AppConfig, deps *LocalDeps) (Backend, error) {
	switch cfg.StorageMode {
	case config.StorageModeRemote:
		if cfg.RemoteBaseURL == "" {
			return nil, fmt.Errorf("远程存储模式需要设置 remote_base_url")
		}
		return NewRemoteBackend(cfg.RemoteBaseURL), nil
	case config.StorageModeLocal, "":
		if deps == nil {
			return nil, fmt.Errorf("本地存储模式需要注入服务依赖")
		}
		return NewLocalBackend(deps), nil
	default:
		return nil, fmt.Errorf("未知的存储模式: %s", cfg.StorageMode)
	}
}
