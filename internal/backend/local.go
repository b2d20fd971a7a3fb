// internal/backend/local.go
package backend

import (
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/services"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
)

// LocalBackend 直接委托给本地服务层
type LocalBackend struct {
	dramas     *services.DramaService
	images     *services.ImageGenerationService
	videos     *services.VideoGenerationService
	generation *services.GenerationService
	tasks      *services.TaskService
}

// NewLocalBackend 创建本地后端
func NewLocalBackend(deps *LocalDeps) *LocalBackend {
	return &LocalBackend{
		dramas:     deps.Dramas,
		images:     deps.Images,
		videos:     deps.Videos,
		generation: deps.Generation,
		tasks:      deps.Tasks,
	}
}

func (b *LocalBackend) ListDramas(query *services.DramaListQuery) (*storage.Page[models.Drama], error) {
	return b.dramas.List(query)
}

func (b *LocalBackend) CreateDrama(req *services.CreateDramaRequest) (*models.Drama, error) {
	return b.dramas.Create(req)
}

func (b *LocalBackend) GetDrama(id string) (*models.Drama, error) {
	return b.dramas.Get(id)
}

func (b *LocalBackend) UpdateDrama(id string, req *services.UpdateDramaRequest) (*models.Drama, error) {
	return b.dramas.UpdateDramaInfo(id, req)
}

func (b *LocalBackend) DeleteDrama(id string) error {
	return b.dramas.Delete(id)
}

func (b *LocalBackend) DramaStats() (*models.DramaStats, error) {
	return b.dramas.Stats()
}

func (b *LocalBackend) SaveOutline(id string, req *services.SaveOutlineRequest) (*models.Drama, error) {
	return b.dramas.SaveOutline(id, req.Title, req.Summary, req.Genre, req.Tags)
}

func (b *LocalBackend) SaveProgress(id string, req *services.SaveProgressRequest) error {
	return b.dramas.SaveProgress(id, req.CurrentStep, req.StepData)
}

func (b *LocalBackend) GetCharacters(dramaID string) ([]models.Character, error) {
	return b.dramas.GetCharacters(dramaID)
}

func (b *LocalBackend) SaveCharacters(dramaID string, characters []models.Character) ([]models.Character, error) {
	return b.dramas.SaveCharacters(dramaID, characters)
}

func (b *LocalBackend) GenerateCharacters(req *services.GenerateCharactersRequest) (*models.TaskHandle, error) {
	return b.generation.GenerateCharacters(req)
}

func (b *LocalBackend) SaveEpisodes(dramaID string, episodes []models.Episode) ([]models.Episode, error) {
	return b.dramas.SaveEpisodes(dramaID, episodes)
}

func (b *LocalBackend) GenerateEpisodes(dramaID string, count int) ([]models.Episode, error) {
	return b.dramas.GenerateEpisodes(dramaID, count)
}

func (b *LocalBackend) FinalizeEpisode(episodeID string) error {
	return b.dramas.FinalizeEpisode(episodeID)
}

func (b *LocalBackend) GetStoryboards(episodeID string) ([]services.StoryboardView, error) {
	return b.dramas.GetStoryboards(episodeID)
}

func (b *LocalBackend) CreateStoryboard(episodeID string, sb models.Storyboard) (*models.Storyboard, error) {
	return b.dramas.CreateStoryboard(episodeID, sb)
}

func (b *LocalBackend) UpdateStoryboard(storyboardID string, req *services.UpdateStoryboardRequest) (*models.Storyboard, error) {
	return b.dramas.PatchStoryboard(storyboardID, req)
}

func (b *LocalBackend) DeleteStoryboard(storyboardID string) error {
	return b.dramas.DeleteStoryboard(storyboardID)
}

func (b *LocalBackend) GenerateStoryboard(episodeID string) (*models.TaskHandle, error) {
	return b.generation.GenerateStoryboard(episodeID)
}

func (b *LocalBackend) ListScenes(dramaID string) ([]models.Scene, error) {
	return b.dramas.ListScenes(dramaID)
}

func (b *LocalBackend) CreateScene(dramaID string, scene models.Scene) (*models.Scene, error) {
	return b.dramas.CreateScene(dramaID, scene)
}

func (b *LocalBackend) UpdateScene(sceneID string, req *services.UpdateSceneRequest) (*models.Scene, error) {
	return b.dramas.PatchScene(sceneID, req)
}

func (b *LocalBackend) DeleteScene(sceneID string) error {
	return b.dramas.DeleteScene(sceneID)
}

func (b *LocalBackend) ExtractBackgrounds(episodeID string) (*models.TaskHandle, error) {
	return b.generation.ExtractBackgrounds(episodeID)
}

// GetBackgrounds 返回剧集所属剧目的全部场景背景
func (b *LocalBackend) GetBackgrounds(episodeID string) ([]models.Scene, error) {
	drama, _, err := b.dramas.FindEpisode(episodeID)
	if err != nil {
		return nil, err
	}
	return b.dramas.ListScenes(drama.ID)
}

func (b *LocalBackend) GenerateImage(req *services.GenerateImageRequest) (*models.ImageGeneration, error) {
	return b.images.Generate(req)
}

func (b *LocalBackend) GenerateSceneImage(sceneID, prompt, model string) (*models.ImageGeneration, error) {
	return b.images.GenerateSceneImage(sceneID, prompt, model)
}

func (b *LocalBackend) GenerateCharacterImage(characterID int, dramaID, prompt string) (*models.ImageGeneration, error) {
	return b.images.GenerateForCharacter(characterID, dramaID, prompt)
}

func (b *LocalBackend) BatchGenerateImages(episodeID string) ([]models.ImageGeneration, error) {
	return b.images.BatchGenerateForEpisode(episodeID)
}

func (b *LocalBackend) GetImage(id int) (*models.ImageGeneration, error) {
	return b.images.Get(id)
}

func (b *LocalBackend) ListImages(query *services.ImageListQuery) (*storage.Page[models.ImageGeneration], error) {
	return b.images.List(query)
}

func (b *LocalBackend) DeleteImage(id int) error {
	return b.images.Delete(id)
}

func (b *LocalBackend) GenerateVideo(req *services.GenerateVideoRequest) (*models.VideoGeneration, error) {
	return b.videos.Generate(req)
}

func (b *LocalBackend) GenerateVideoFromImage(imageGenID int, dramaID, prompt string) (*models.VideoGeneration, error) {
	return b.videos.GenerateFromImage(imageGenID, dramaID, prompt)
}

func (b *LocalBackend) BatchGenerateVideos(episodeID string) ([]models.VideoGeneration, error) {
	return b.videos.BatchGenerateForEpisode(episodeID)
}

func (b *LocalBackend) GetVideo(id int) (*models.VideoGeneration, error) {
	return b.videos.Get(id)
}

func (b *LocalBackend) ListVideos(query *services.VideoListQuery) (*storage.Page[models.VideoGeneration], error) {
	return b.videos.List(query)
}

func (b *LocalBackend) DeleteVideo(id int) error {
	return b.videos.Delete(id)
}

func (b *LocalBackend) GetTask(taskID string) (*models.Task, error) {
	return b.tasks.Get(taskID)
}
