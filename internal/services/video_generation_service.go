// internal/services/video_generation_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/genai"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
)

// VideoGenerationService 视频生成任务引擎。
// 提交后立即返回 pending 记录，调度和轮询在工作池中异步执行
type VideoGenerationService struct {
	videos *storage.Collection[models.VideoGeneration]
	images *storage.Collection[models.ImageGeneration]
	ids    *storage.IDGenerator

	dramas  *DramaService
	configs *AIConfigService
	pool    pond.Pool

	// 轮询参数，测试时可缩短
	pollInterval    time.Duration
	maxPollAttempts int

	// 客户端缓存按配置 ID 复用，配置更新时间变化即重建
	clientMu sync.Mutex
	clients  map[string]cachedVideoClient

	newClient func(config *models.AIServiceConfig, model string) genai.VideoClient
}

// NewVideoGenerationService 创建视频生成引擎
func NewVideoGenerationService(store storage.Store, dramas *DramaService, configs *AIConfigService, pool pond.Pool) *VideoGenerationService {
	return &VideoGenerationService{
		videos: storage.NewCollection(store, storage.KeyVideos,
			func(g *models.VideoGeneration) string { return fmt.Sprintf("%d", g.ID) }),
		images: storage.NewCollection(store, storage.KeyImages,
			func(g *models.ImageGeneration) string { return fmt.Sprintf("%d", g.ID) }),
		ids:             storage.NewIDGenerator(store),
		dramas:          dramas,
		configs:         configs,
		pool:            pool,
		pollInterval:    5 * time.Second,
		maxPollAttempts: 60,
		clients:         make(map[string]cachedVideoClient),
		newClient:       genai.NewVideoClient,
	}
}

// GenerateVideoRequest 视频生成请求
type GenerateVideoRequest struct {
	DramaID      string `json:"drama_id" binding:"required"`
	StoryboardID string `json:"storyboard_id"`
	SceneID      string `json:"scene_id"`
	ImageGenID   int    `json:"image_gen_id"`
	Prompt       string `json:"prompt" binding:"required"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`

	ReferenceMode      string   `json:"reference_mode"`
	ImageURL           string   `json:"image_url"`
	FirstFrameURL      string   `json:"first_frame_url"`
	LastFrameURL       string   `json:"last_frame_url"`
	ReferenceImageURLs []string `json:"reference_image_urls"`

	Duration     int    `json:"duration"`
	FPS          int    `json:"fps"`
	AspectRatio  string `json:"aspect_ratio"`
	Style        string `json:"style"`
	MotionLevel  int    `json:"motion_level"`
	CameraMotion string `json:"camera_motion"`
	Seed         int    `json:"seed"`
}

// VideoListQuery 视频记录列表筛选。
// Status 支持逗号分隔的多状态
type VideoListQuery struct {
	DramaID      string
	StoryboardID string
	Status       string
	Page         int
	PageSize     int
}

// Generate 创建视频生成记录并提交到工作池。
// 引用的分镜必须存在且属于指定剧目；
// 没有可用配置时记录保留并标记 failed，错误同步返回
func (s *VideoGenerationService) Generate(req *GenerateVideoRequest) (*models.VideoGeneration, error) {
	drama, err := s.dramas.Get(req.DramaID)
	if err != nil {
		return nil, err
	}

	if req.StoryboardID != "" {
		found := false
		for i := range drama.Episodes {
			for j := range drama.Episodes[i].Storyboards {
				if drama.Episodes[i].Storyboards[j].ID == req.StoryboardID {
					found = true
				}
			}
		}
		if !found {
			return nil, apperrors.NewNotFoundError("分镜不存在或不属于该剧本", nil)
		}
	}

	provider := req.Provider
	if provider == "" {
		provider = "doubao"
	}

	id, err := s.ids.Next("video")
	if err != nil {
		return nil, err
	}

	record := models.VideoGeneration{
		ID:           id,
		DramaID:      req.DramaID,
		StoryboardID: req.StoryboardID,
		SceneID:      req.SceneID,
		ImageGenID:   req.ImageGenID,
		Prompt:       req.Prompt,
		Provider:     provider,
		Model:        req.Model,
		Duration:     req.Duration,
		FPS:          req.FPS,
		AspectRatio:  req.AspectRatio,
		Style:        req.Style,
		MotionLevel:  req.MotionLevel,
		CameraMotion: req.CameraMotion,
		Seed:         req.Seed,
		Status:       models.TaskStatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	applyReferenceMode(&record, req)

	saved, err := s.videos.Add(record)
	if err != nil {
		return nil, err
	}

	// 配置缺失在提交前就能确定，不进入工作池
	if _, err := s.configs.GetActiveConfig(models.ServiceTypeVideo, req.Model); err != nil {
		s.fail(saved.ID, err.Error())
		return nil, err
	}

	s.pool.Submit(func() {
		s.process(saved.ID)
	})
	return saved, nil
}

// applyReferenceMode 按参考图模式挑选生效的 URL 字段。
// 模式缺失时根据提供的字段反推：单图 > 首尾帧 > 组图
func applyReferenceMode(record *models.VideoGeneration, req *GenerateVideoRequest) {
	record.ReferenceMode = req.ReferenceMode

	switch req.ReferenceMode {
	case models.ReferenceModeSingle:
		record.ImageURL = req.ImageURL
	case models.ReferenceModeFirstLast:
		record.FirstFrameURL = req.FirstFrameURL
		record.LastFrameURL = req.LastFrameURL
	case models.ReferenceModeMultiple:
		record.ReferenceImageURLs = req.ReferenceImageURLs
	case models.ReferenceModeNone:
		// 纯文本生成
	default:
		switch {
		case req.ImageURL != "":
			record.ImageURL = req.ImageURL
			record.ReferenceMode = models.ReferenceModeSingle
		case req.FirstFrameURL != "" || req.LastFrameURL != "":
			record.FirstFrameURL = req.FirstFrameURL
			record.LastFrameURL = req.LastFrameURL
			record.ReferenceMode = models.ReferenceModeFirstLast
		case len(req.ReferenceImageURLs) > 0:
			record.ReferenceImageURLs = req.ReferenceImageURLs
			record.ReferenceMode = models.ReferenceModeMultiple
		}
	}
}

// GenerateFromImage 以已完成的图片生成记录为参考图生成视频
func (s *VideoGenerationService) GenerateFromImage(imageGenID int, dramaID, prompt string) (*models.VideoGeneration, error) {
	image, found, err := s.images.GetByID(fmt.Sprintf("%d", imageGenID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("图片生成记录不存在", nil)
	}

	return s.Generate(&GenerateVideoRequest{
		DramaID:       dramaID,
		ImageGenID:    imageGenID,
		Prompt:        prompt,
		ReferenceMode: models.ReferenceModeSingle,
		ImageURL:      image.ImageURL,
	})
}

// BatchGenerateForEpisode 为集数的所有分镜批量生成视频。
// 既无 video_prompt 也无合成图的分镜跳过，单个失败不中断批次
func (s *VideoGenerationService) BatchGenerateForEpisode(episodeID string) ([]models.VideoGeneration, error) {
	drama, episode, err := s.dramas.FindEpisode(episodeID)
	if err != nil {
		return nil, err
	}

	log.Printf("[Video] 批量生成集数视频: episode=%s storyboards=%d", episodeID, len(episode.Storyboards))

	var results []models.VideoGeneration
	for _, sb := range episode.Storyboards {
		if sb.VideoPrompt == "" && sb.ComposedImage == "" {
			log.Printf("[Video] 分镜缺少 video_prompt 和合成图，跳过: %s", sb.ID)
			continue
		}

		record, err := s.Generate(&GenerateVideoRequest{
			DramaID:      drama.ID,
			StoryboardID: sb.ID,
			Prompt:       sb.VideoPrompt,
			ImageURL:     sb.ComposedImage,
		})
		if err != nil {
			log.Printf("[Video] 分镜视频生成提交失败: %s: %v", sb.ID, err)
			continue
		}
		results = append(results, *record)
	}
	return results, nil
}

// Get 获取视频生成记录
func (s *VideoGenerationService) Get(id int) (*models.VideoGeneration, error) {
	record, found, err := s.videos.GetByID(fmt.Sprintf("%d", id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("视频生成记录不存在", nil)
	}
	return record, nil
}

// List 按条件筛选视频生成记录，按创建时间倒序分页返回
func (s *VideoGenerationService) List(query *VideoListQuery) (*storage.Page[models.VideoGeneration], error) {
	var statuses []string
	if query.Status != "" {
		for _, st := range strings.Split(query.Status, ",") {
			if trimmed := strings.TrimSpace(st); trimmed != "" {
				statuses = append(statuses, trimmed)
			}
		}
	}

	items, err := s.videos.Filter(func(g *models.VideoGeneration) bool {
		if query.DramaID != "" && g.DramaID != query.DramaID {
			return false
		}
		if query.StoryboardID != "" && g.StoryboardID != query.StoryboardID {
			return false
		}
		if len(statuses) > 0 {
			matched := false
			for _, st := range statuses {
				if g.Status == st {
					matched = true
				}
			}
			if !matched {
				return false
			}
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

// Delete 删除视频生成记录
func (s *VideoGenerationService) Delete(id int) error {
	found, err := s.videos.Delete(fmt.Sprintf("%d", id))
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFoundError("视频生成记录不存在", nil)
	}
	return nil
}

// process 执行视频生成：记录先进入 processing，再调度服务商
func (s *VideoGenerationService) process(id int) {
	record, err := s.Get(id)
	if err != nil {
		log.Printf("[Video] 视频生成记录不存在: %d", id)
		return
	}

	s.updateRecord(id, func(g *models.VideoGeneration) {
		g.Status = models.TaskStatusProcessing
	})

	log.Printf("[Video] 开始视频生成: id=%d provider=%s model=%s", id, record.Provider, record.Model)

	config, err := s.configs.GetActiveConfig(models.ServiceTypeVideo, record.Model)
	if err != nil {
		s.fail(id, err.Error())
		return
	}

	client := s.clientFor(config, record.Model)
	result, err := client.Generate(context.Background(), &genai.VideoGenerateRequest{
		Prompt:             record.Prompt,
		Model:              record.Model,
		ImageURL:           record.ImageURL,
		FirstFrameURL:      record.FirstFrameURL,
		LastFrameURL:       record.LastFrameURL,
		ReferenceImageURLs: record.ReferenceImageURLs,
		Duration:           record.Duration,
		FPS:                record.FPS,
		AspectRatio:        record.AspectRatio,
		Style:              record.Style,
		MotionLevel:        record.MotionLevel,
		CameraMotion:       record.CameraMotion,
		Seed:               record.Seed,
		ReferenceMode:      record.ReferenceMode,
	})
	if err != nil {
		s.fail(id, err.Error())
		return
	}

	// 异步任务句柄：保存 task_id 后进入轮询
	if result.TaskID != "" && result.VideoURL == "" {
		s.updateRecord(id, func(g *models.VideoGeneration) {
			g.TaskID = result.TaskID
		})
		s.pollTask(id, result.TaskID, client)
		return
	}

	if result.VideoURL != "" {
		s.complete(id, result)
		return
	}

	s.fail(id, "no task ID or video URL returned")
}

// pollTask 轮询异步任务直到拿到视频地址或超出次数上限。
// 瞬时错误吞掉继续轮询；错误信息含 not found 或 failed 时立即终止
func (s *VideoGenerationService) pollTask(id int, taskID string, client genai.VideoClient) {
	log.Printf("[Video] 开始轮询任务: id=%d task=%s", id, taskID)

	for attempt := 0; attempt < s.maxPollAttempts; attempt++ {
		time.Sleep(s.pollInterval)

		result, err := client.PollTaskStatus(context.Background(), taskID)
		if err != nil {
			log.Printf("[Video] 轮询出错: id=%d attempt=%d: %v", id, attempt+1, err)
			msg := err.Error()
			if strings.Contains(msg, "not found") || strings.Contains(msg, "failed") {
				s.fail(id, msg)
				return
			}
			continue
		}

		if result.VideoURL != "" {
			log.Printf("[Video] 任务完成: id=%d task=%s", id, taskID)
			s.complete(id, result)
			return
		}

		log.Printf("[Video] 任务处理中: id=%d task=%s attempt=%d", id, taskID, attempt+1)
	}

	s.fail(id, "视频生成超时")
}

// complete 完成视频生成并回写关联分镜的视频地址
func (s *VideoGenerationService) complete(id int, result *genai.VideoGenerateResponse) {
	record, err := s.Get(id)
	if err != nil {
		return
	}

	s.updateRecord(id, func(g *models.VideoGeneration) {
		g.Status = models.TaskStatusCompleted
		g.VideoURL = result.VideoURL
		if result.Duration > 0 {
			g.Duration = result.Duration
		}
		g.Width = result.Width
		g.Height = result.Height
		completedAt := time.Now()
		g.CompletedAt = &completedAt
	})

	log.Printf("[Video] 视频生成完成: id=%d", id)

	if record.StoryboardID != "" {
		if err := s.dramas.UpdateStoryboardVideoURL(record.StoryboardID, result.VideoURL); err != nil {
			log.Printf("[Video] 回写分镜视频地址失败: %v", err)
		}
	}
}

// fail 标记视频生成失败，不触碰关联实体的媒体字段
func (s *VideoGenerationService) fail(id int, errorMsg string) {
	s.updateRecord(id, func(g *models.VideoGeneration) {
		g.Status = models.TaskStatusFailed
		g.ErrorMsg = errorMsg
	})
	log.Printf("[Video] 视频生成失败: id=%d error=%s", id, errorMsg)
}

func (s *VideoGenerationService) updateRecord(id int, apply func(*models.VideoGeneration)) {
	_, _, err := s.videos.Update(fmt.Sprintf("%d", id), func(g *models.VideoGeneration) {
		apply(g)
		g.UpdatedAt = time.Now()
	})
	if err != nil {
		log.Printf("[Video] 更新视频生成记录失败: %d: %v", id, err)
	}
}

type cachedVideoClient struct {
	updatedAt time.Time
	client    genai.VideoClient
}

func (s *VideoGenerationService) clientFor(config *models.AIServiceConfig, model string) genai.VideoClient {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()

	if cached, ok := s.clients[config.ID]; ok && cached.updatedAt.Equal(config.UpdatedAt) {
		return cached.client
	}
	client := s.newClient(config, model)
	s.clients[config.ID] = cachedVideoClient{updatedAt: config.UpdatedAt, client: client}
	return client
}
