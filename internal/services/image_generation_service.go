// internal/services/image_generation_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/genai"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
)

// imageGenerator 生成单张图片的最小接口，便于测试替换
type imageGenerator interface {
	Generate(ctx context.Context, prompt string, opts genai.ImageGenerateOptions) (*genai.ImageGenerateResult, error)
}

// ImageGenerationService 图片生成任务引擎。
// 提交后立即返回 pending 记录，实际生成在工作池中异步执行
type ImageGenerationService struct {
	images  *storage.Collection[models.ImageGeneration]
	ids     *storage.IDGenerator
	dramas  *DramaService
	configs *AIConfigService
	pool    pond.Pool

	// 客户端缓存按配置 ID 复用，配置更新时间变化即重建
	clientMu sync.Mutex
	clients  map[string]cachedImageClient

	// 工厂可注入，测试时替换为桩实现
	newClient func(config *models.AIServiceConfig) imageGenerator
}

// NewImageGenerationService 创建图片生成引擎
func NewImageGenerationService(store storage.Store, dramas *DramaService, configs *AIConfigService, pool pond.Pool) *ImageGenerationService {
	return &ImageGenerationService{
		images: storage.NewCollection(store, storage.KeyImages,
			func(g *models.ImageGeneration) string { return fmt.Sprintf("%d", g.ID) }),
		ids:     storage.NewIDGenerator(store),
		dramas:  dramas,
		configs: configs,
		pool:    pool,
		clients: make(map[string]cachedImageClient),
		newClient: func(config *models.AIServiceConfig) imageGenerator {
			return genai.NewImageClient(config)
		},
	}
}

// GenerateImageRequest 图片生成请求
type GenerateImageRequest struct {
	DramaID        string  `json:"drama_id" binding:"required"`
	StoryboardID   string  `json:"storyboard_id"`
	SceneID        string  `json:"scene_id"`
	CharacterID    int     `json:"character_id"`
	ImageType      string  `json:"image_type"`
	FrameType      string  `json:"frame_type"`
	Prompt         string  `json:"prompt" binding:"required"`
	NegativePrompt string  `json:"negative_prompt"`
	Provider       string  `json:"provider"`
	Model          string  `json:"model"`
	Size           string  `json:"size"`
	Quality        string  `json:"quality"`
	Style          string  `json:"style"`
	Steps          int     `json:"steps"`
	CfgScale       float64 `json:"cfg_scale"`
	Seed           int     `json:"seed"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

// ImageListQuery 图片记录列表筛选
type ImageListQuery struct {
	DramaID      string
	SceneID      string
	StoryboardID string
	FrameType    string
	Status       string
	Page         int
	PageSize     int
}

// Generate 创建图片生成记录并提交到工作池。
// 没有可用配置时记录保留并标记 failed，错误同步返回
func (s *ImageGenerationService) Generate(req *GenerateImageRequest) (*models.ImageGeneration, error) {
	if _, err := s.dramas.Get(req.DramaID); err != nil {
		return nil, err
	}

	provider := req.Provider
	if provider == "" {
		provider = "openai"
	}
	imageType := req.ImageType
	if imageType == "" {
		imageType = models.ImageTypeStoryboard
	}

	id, err := s.ids.Next("image")
	if err != nil {
		return nil, err
	}

	record := models.ImageGeneration{
		ID:             id,
		DramaID:        req.DramaID,
		StoryboardID:   req.StoryboardID,
		SceneID:        req.SceneID,
		CharacterID:    req.CharacterID,
		ImageType:      imageType,
		FrameType:      req.FrameType,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Provider:       provider,
		Model:          req.Model,
		Size:           req.Size,
		Quality:        req.Quality,
		Style:          req.Style,
		Steps:          req.Steps,
		CfgScale:       req.CfgScale,
		Seed:           req.Seed,
		Width:          req.Width,
		Height:         req.Height,
		Status:         models.TaskStatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	saved, err := s.images.Add(record)
	if err != nil {
		return nil, err
	}

	// 配置缺失在提交前就能确定，不进入工作池
	if _, err := s.configs.GetActiveConfig(models.ServiceTypeImage, req.Model); err != nil {
		s.fail(saved.ID, err.Error())
		return nil, err
	}

	s.pool.Submit(func() {
		s.process(saved.ID)
	})
	return saved, nil
}

// GenerateForScene 为场景生成背景图。
// 提示词优先用场景自带 prompt，缺失时回退到地点+时间
func (s *ImageGenerationService) GenerateForScene(sceneID string) (*models.ImageGeneration, error) {
	drama, scene, err := s.dramas.FindScene(sceneID)
	if err != nil {
		return nil, err
	}

	prompt := scene.Prompt
	if prompt == "" {
		prompt = fmt.Sprintf("%s场景，%s", scene.Location, scene.Time)
	}

	return s.Generate(&GenerateImageRequest{
		DramaID:   drama.ID,
		SceneID:   sceneID,
		ImageType: models.ImageTypeScene,
		Prompt:    prompt,
	})
}

// GenerateSceneImage 为场景生成电影感背景图。
// 提示词回退顺序：调用方指定 > 场景自带 prompt > 地点+时间，
// 统一追加电影感画面后缀
func (s *ImageGenerationService) GenerateSceneImage(sceneID, prompt, model string) (*models.ImageGeneration, error) {
	drama, scene, err := s.dramas.FindScene(sceneID)
	if err != nil {
		return nil, err
	}

	if prompt == "" {
		prompt = scene.Prompt
		if prompt == "" {
			prompt = fmt.Sprintf("%s场景，%s", scene.Location, scene.Time)
		}
	}
	prompt += ", cinematic scene, wide shot, detailed environment"
	prompt += ", high quality, professional photography, film still"

	return s.Generate(&GenerateImageRequest{
		DramaID:   drama.ID,
		SceneID:   sceneID,
		ImageType: models.ImageTypeScene,
		Prompt:    prompt,
		Model:     model,
		Size:      "2560x1440",
		Quality:   "standard",
	})
}

// GenerateForCharacter 为角色生成形象图
func (s *ImageGenerationService) GenerateForCharacter(characterID int, dramaID, prompt string) (*models.ImageGeneration, error) {
	return s.Generate(&GenerateImageRequest{
		DramaID:     dramaID,
		CharacterID: characterID,
		ImageType:   models.ImageTypeCharacter,
		Prompt:      prompt,
	})
}

// BatchGenerateForEpisode 为集数的所有分镜批量生成图片。
// 没有 image_prompt 的分镜跳过，单个分镜失败不中断批次
func (s *ImageGenerationService) BatchGenerateForEpisode(episodeID string) ([]models.ImageGeneration, error) {
	drama, episode, err := s.dramas.FindEpisode(episodeID)
	if err != nil {
		return nil, err
	}

	log.Printf("[Image] 批量生成集数图片: episode=%s storyboards=%d", episodeID, len(episode.Storyboards))

	var results []models.ImageGeneration
	for _, sb := range episode.Storyboards {
		if sb.ImagePrompt == "" {
			log.Printf("[Image] 分镜缺少 image_prompt，跳过: %s", sb.ID)
			continue
		}

		record, err := s.Generate(&GenerateImageRequest{
			DramaID:      drama.ID,
			StoryboardID: sb.ID,
			ImageType:    models.ImageTypeStoryboard,
			Prompt:       sb.ImagePrompt,
		})
		if err != nil {
			log.Printf("[Image] 分镜图片生成提交失败: %s: %v", sb.ID, err)
			continue
		}
		results = append(results, *record)
	}
	return results, nil
}

// Get 获取图片生成记录
func (s *ImageGenerationService) Get(id int) (*models.ImageGeneration, error) {
	record, found, err := s.images.GetByID(fmt.Sprintf("%d", id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("图片生成记录不存在", nil)
	}
	return record, nil
}

// List 按条件筛选图片生成记录，按创建时间倒序分页返回
func (s *ImageGenerationService) List(query *ImageListQuery) (*storage.Page[models.ImageGeneration], error) {
	items, err := s.images.Filter(func(g *models.ImageGeneration) bool {
		if query.DramaID != "" && g.DramaID != query.DramaID {
			return false
		}
		if query.SceneID != "" && g.SceneID != query.SceneID {
			return false
		}
		if query.StoryboardID != "" && g.StoryboardID != query.StoryboardID {
			return false
		}
		if query.FrameType != "" && g.FrameType != query.FrameType {
			return false
		}
		if query.Status != "" && g.Status != query.Status {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	page := storage.Paginate(items, query.Page, query.PageSize)
	return &page, nil
}

// Delete 删除图片生成记录
func (s *ImageGenerationService) Delete(id int) error {
	found, err := s.images.Delete(fmt.Sprintf("%d", id))
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFoundError("图片生成记录不存在", nil)
	}
	return nil
}

// process 执行图片生成：记录先进入 processing，再调用服务商
func (s *ImageGenerationService) process(id int) {
	record, err := s.Get(id)
	if err != nil {
		log.Printf("[Image] 图片生成记录不存在: %d", id)
		return
	}

	s.updateRecord(id, func(g *models.ImageGeneration) {
		g.Status = models.TaskStatusProcessing
	})

	log.Printf("[Image] 开始图片生成: id=%d provider=%s model=%s", id, record.Provider, record.Model)

	config, err := s.configs.GetActiveConfig(models.ServiceTypeImage, record.Model)
	if err != nil {
		s.fail(id, err.Error())
		return
	}

	client := s.clientFor(config)
	result, err := client.Generate(context.Background(), record.Prompt, genai.ImageGenerateOptions{
		Model:   record.Model,
		Size:    record.Size,
		Quality: record.Quality,
	})
	if err != nil {
		s.fail(id, err.Error())
		return
	}
	if result.ImageURL == "" {
		s.fail(id, "服务商未返回图片地址")
		return
	}

	s.complete(id, result.ImageURL)
}

// complete 完成图片生成并回写关联实体。
// 扇出只走一个方向：分镜 > 场景 > 角色，按首个命中的关联
func (s *ImageGenerationService) complete(id int, imageURL string) {
	record, err := s.Get(id)
	if err != nil {
		return
	}

	s.updateRecord(id, func(g *models.ImageGeneration) {
		g.Status = models.TaskStatusCompleted
		g.ImageURL = imageURL
		completedAt := time.Now()
		g.CompletedAt = &completedAt
	})

	log.Printf("[Image] 图片生成完成: id=%d", id)

	switch {
	case record.StoryboardID != "":
		if err := s.dramas.UpdateStoryboardComposedImage(record.StoryboardID, imageURL); err != nil {
			log.Printf("[Image] 回写分镜合成图失败: %v", err)
		}
	case record.SceneID != "" && record.ImageType == models.ImageTypeScene:
		if err := s.dramas.UpdateSceneImage(record.SceneID, imageURL, models.SceneStatusGenerated); err != nil {
			log.Printf("[Image] 回写场景图片失败: %v", err)
		}
	case record.CharacterID != 0:
		if err := s.dramas.UpdateCharacterImage(record.CharacterID, imageURL); err != nil {
			log.Printf("[Image] 回写角色形象失败: %v", err)
		}
	}
}

// fail 标记图片生成失败。
// 关联场景标记为 failed，但不清除已有的图片地址
func (s *ImageGenerationService) fail(id int, errorMsg string) {
	record, err := s.Get(id)
	if err != nil {
		return
	}

	s.updateRecord(id, func(g *models.ImageGeneration) {
		g.Status = models.TaskStatusFailed
		g.ErrorMsg = errorMsg
	})

	log.Printf("[Image] 图片生成失败: id=%d error=%s", id, errorMsg)

	if record.SceneID != "" {
		if err := s.dramas.UpdateSceneImage(record.SceneID, "", models.SceneStatusFailed); err != nil {
			log.Printf("[Image] 回写场景失败状态出错: %v", err)
		}
	}
}

func (s *ImageGenerationService) updateRecord(id int, apply func(*models.ImageGeneration)) {
	_, _, err := s.images.Update(fmt.Sprintf("%d", id), func(g *models.ImageGeneration) {
		apply(g)
		g.UpdatedAt = time.Now()
	})
	if err != nil {
		log.Printf("[Image] 更新图片生成记录失败: %d: %v", id, err)
	}
}

type cachedImageClient struct {
	updatedAt time.Time
	client    imageGenerator
}

func (s *ImageGenerationService) clientFor(config *models.AIServiceConfig) imageGenerator {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()

	if cached, ok := s.clients[config.ID]; ok && cached.updatedAt.Equal(config.UpdatedAt) {
		return cached.client
	}
	client := s.newClient(config)
	s.clients[config.ID] = cachedImageClient{updatedAt: config.UpdatedAt, client: client}
	return client
}
