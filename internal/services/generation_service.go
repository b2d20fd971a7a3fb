// internal/services/generation_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/Corphon/DramaForgeMCP/internal/genai"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
	"github.com/Corphon/DramaForgeMCP/internal/utils"
)

// textGenerator 文本生成的最小接口，便于测试替换
type textGenerator interface {
	Generate(ctx context.Context, prompt string, opts genai.TextGenerateOptions) (string, error)
}

// GenerationService 基于文本模型的内容生成任务：
// 角色提取、分镜拆解、场景背景提取。
// 每个操作创建任务记录后立即返回句柄，实际生成在工作池中执行
type GenerationService struct {
	dramas  *DramaService
	configs *AIConfigService
	tasks   *TaskService
	pool    pond.Pool

	clientMu sync.Mutex
	clients  map[string]textGenerator

	newClient func(config *models.AIServiceConfig) textGenerator
}

// NewGenerationService 创建内容生成服务
func NewGenerationService(dramas *DramaService, configs *AIConfigService, tasks *TaskService, pool pond.Pool) *GenerationService {
	return &GenerationService{
		dramas:  dramas,
		configs: configs,
		tasks:   tasks,
		pool:    pool,
		clients: make(map[string]textGenerator),
		newClient: func(config *models.AIServiceConfig) textGenerator {
			return genai.NewTextClient(config)
		},
	}
}

// GenerateCharactersRequest 角色生成请求
type GenerateCharactersRequest struct {
	DramaID     string  `json:"drama_id" binding:"required"`
	Outline     string  `json:"outline"`
	Count       int     `json:"count"`
	Temperature float64 `json:"temperature"`
}

// GenerateCharacters 提交角色生成任务
func (s *GenerationService) GenerateCharacters(req *GenerateCharactersRequest) (*models.TaskHandle, error) {
	if _, err := s.dramas.Get(req.DramaID); err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(models.TaskTypeGenerateCharacters, "正在生成角色...")
	if err != nil {
		return nil, err
	}

	s.pool.Submit(func() {
		s.processCharacterGeneration(task.ID, req)
	})

	return &models.TaskHandle{
		TaskID:  task.ID,
		Status:  models.TaskStatusPending,
		Message: "角色生成任务已创建，正在后台处理...",
	}, nil
}

// GenerateStoryboard 提交分镜生成任务
func (s *GenerationService) GenerateStoryboard(episodeID string) (*models.TaskHandle, error) {
	if _, _, err := s.dramas.FindEpisode(episodeID); err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(models.TaskTypeGenerateStoryboard, "分镜生成任务已创建，正在后台处理...")
	if err != nil {
		return nil, err
	}

	s.pool.Submit(func() {
		s.processStoryboardGeneration(task.ID, episodeID)
	})

	return &models.TaskHandle{
		TaskID:  task.ID,
		Status:  models.TaskStatusPending,
		Message: "分镜生成任务已创建，正在后台处理...",
	}, nil
}

// ExtractBackgrounds 提交场景背景提取任务
func (s *GenerationService) ExtractBackgrounds(episodeID string) (*models.TaskHandle, error) {
	if _, _, err := s.dramas.FindEpisode(episodeID); err != nil {
		return nil, err
	}

	task, err := s.tasks.Create(models.TaskTypeBackgroundExtraction, "正在提取场景...")
	if err != nil {
		return nil, err
	}

	s.pool.Submit(func() {
		s.processBackgroundExtraction(task.ID, episodeID)
	})

	return &models.TaskHandle{
		TaskID:  task.ID,
		Status:  models.TaskStatusPending,
		Message: "场景提取任务已创建，正在后台处理...",
	}, nil
}

// ---------- 角色生成 ----------

type aiCharacter struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Personality string `json:"personality"`
	Appearance  string `json:"appearance"`
	VoiceStyle  string `json:"voice_style"`
}

func (s *GenerationService) processCharacterGeneration(taskID string, req *GenerateCharactersRequest) {
	log.Printf("[Generation] 开始角色生成: task=%s drama=%s", taskID, req.DramaID)

	s.tasks.UpdateProgress(taskID, 20, "正在分析剧本内容...")

	count := req.Count
	if count == 0 {
		count = 5
	}
	outline := req.Outline
	if outline == "" {
		outline = "请根据剧本主题创作角色"
	}

	userPrompt := fmt.Sprintf("剧本内容：\n%s\n\n请从剧本中提取并整理最多 %d 个主要角色的详细设定。", outline, count)

	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	response, err := s.generateText(userPrompt, genai.TextGenerateOptions{
		SystemPrompt: characterSystemPrompt,
		Temperature:  temperature,
		MaxTokens:    3000,
	})
	if err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}

	var result struct {
		Characters []aiCharacter `json:"characters"`
	}
	if err := utils.ExtractJSON(response, &result); err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}

	incoming := make([]models.Character, 0, len(result.Characters))
	for _, c := range result.Characters {
		incoming = append(incoming, models.Character{
			Name:        c.Name,
			Role:        c.Role,
			Description: c.Description,
			Personality: c.Personality,
			Appearance:  c.Appearance,
			VoiceStyle:  c.VoiceStyle,
		})
	}

	merged, err := s.dramas.MergeCharacters(req.DramaID, incoming)
	if err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}

	s.tasks.Complete(taskID, fmt.Sprintf("成功生成 %d 个角色", len(merged)),
		map[string]interface{}{"characters": merged, "total": len(merged)})
	log.Printf("[Generation] 角色生成完成: task=%s total=%d", taskID, len(merged))
}

// ---------- 分镜生成 ----------

// flexID 兼容模型输出中数字或字符串形式的 ID
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if len(trimmed) >= 2 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	*f = flexID(trimmed)
	return nil
}

type aiStoryboard struct {
	ShotNumber  int    `json:"shot_number"`
	Title       string `json:"title"`
	ShotType    string `json:"shot_type"`
	Angle       string `json:"angle"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	SceneID     flexID `json:"scene_id"`
	Movement    string `json:"movement"`
	Action      string `json:"action"`
	Dialogue    string `json:"dialogue"`
	Result      string `json:"result"`
	Atmosphere  string `json:"atmosphere"`
	Emotion     string `json:"emotion"`
	Duration    int    `json:"duration"`
	BGMPrompt   string `json:"bgm_prompt"`
	SoundFX     string `json:"sound_effect"`
	Characters  []int  `json:"characters"`
	IsPrimary   *bool  `json:"is_primary"`
}

func (s *GenerationService) processStoryboardGeneration(taskID, episodeID string) {
	log.Printf("[Generation] 开始分镜生成: task=%s episode=%s", taskID, episodeID)

	s.tasks.UpdateProgress(taskID, 10, "开始生成分镜...")

	drama, episode, err := s.dramas.FindEpisode(episodeID)
	if err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}

	scriptContent := episodeScript(episode)
	if scriptContent == "" {
		s.tasks.Fail(taskID, "剧本内容为空，请先生成剧集内容")
		return
	}

	s.tasks.UpdateProgress(taskID, 20, "正在分析剧本...")

	characterList := "无角色"
	if len(drama.Characters) > 0 {
		entries := make([]string, 0, len(drama.Characters))
		for _, c := range drama.Characters {
			entries = append(entries, fmt.Sprintf(`{"id": %d, "name": "%s"}`, c.ID, c.Name))
		}
		characterList = "[" + strings.Join(entries, ", ") + "]"
	}

	sceneList := "无场景"
	if len(drama.Scenes) > 0 {
		entries := make([]string, 0, len(drama.Scenes))
		for _, sc := range drama.Scenes {
			entries = append(entries, fmt.Sprintf(`{"id": "%s", "location": "%s", "time": "%s"}`, sc.ID, sc.Location, sc.Time))
		}
		sceneList = "[" + strings.Join(entries, ", ") + "]"
	}

	s.tasks.UpdateProgress(taskID, 30, "正在调用AI生成分镜...")

	prompt := strings.NewReplacer(
		"{CHARACTER_LIST}", characterList,
		"{SCENE_LIST}", sceneList,
		"{SCRIPT_CONTENT}", scriptContent,
	).Replace(storyboardPromptTemplate)

	response, err := s.generateText(prompt, genai.TextGenerateOptions{})
	if err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}

	s.tasks.UpdateProgress(taskID, 70, "正在解析分镜结果...")

	var result struct {
		Storyboards []aiStoryboard `json:"storyboards"`
	}
	if err := utils.ExtractJSON(response, &result); err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}
	if len(result.Storyboards) == 0 {
		s.tasks.Fail(taskID, "解析分镜结果失败")
		return
	}

	s.tasks.UpdateProgress(taskID, 85, "正在保存分镜...")

	totalDuration := 0
	storyboards := make([]models.Storyboard, 0, len(result.Storyboards))
	for i, sb := range result.Storyboards {
		duration := sb.Duration
		if duration == 0 {
			duration = 6
		}
		totalDuration += duration

		number := sb.ShotNumber
		if number == 0 {
			number = i + 1
		}
		title := sb.Title
		if title == "" {
			title = fmt.Sprintf("分镜 %d", i+1)
		}

		description := fmt.Sprintf("【镜头类型】%s\n【运镜】%s\n【动作】%s\n【对话】%s\n【结果】%s\n【情绪】%s",
			sb.ShotType, sb.Movement, sb.Action, sb.Dialogue, sb.Result, sb.Emotion)

		storyboard := models.Storyboard{
			StoryboardNumber: number,
			Title:            title,
			Description:      description,
			ShotType:         sb.ShotType,
			Angle:            sb.Angle,
			Time:             sb.Time,
			Location:         sb.Location,
			SceneID:          string(sb.SceneID),
			Movement:         sb.Movement,
			Action:           sb.Action,
			Dialogue:         sb.Dialogue,
			Result:           sb.Result,
			Atmosphere:       sb.Atmosphere,
			Emotion:          sb.Emotion,
			Duration:         duration,
			BGMPrompt:        sb.BGMPrompt,
			SoundFX:          sb.SoundFX,
			Characters:       sb.Characters,
			IsPrimary:        sb.IsPrimary == nil || *sb.IsPrimary,
			Status:           models.SceneStatusDraft,
		}
		storyboard.ImagePrompt = utils.BuildImagePrompt(&storyboard)
		storyboard.VideoPrompt = utils.BuildVideoPrompt(&storyboard)
		storyboards = append(storyboards, storyboard)
	}

	saved, err := s.saveStoryboards(drama.ID, episodeID, storyboards, totalDuration)
	if err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}

	s.tasks.Complete(taskID, fmt.Sprintf("成功生成 %d 个分镜", len(saved)),
		map[string]interface{}{"storyboards": saved, "total": len(saved)})
	log.Printf("[Generation] 分镜生成完成: task=%s total=%d duration=%ds", taskID, len(saved), totalDuration)
}

// saveStoryboards 整体替换集数的分镜列表，集数时长按镜头总秒数向上取整为分钟
func (s *GenerationService) saveStoryboards(dramaID, episodeID string, storyboards []models.Storyboard, totalDurationSeconds int) ([]models.Storyboard, error) {
	for i := range storyboards {
		storyboards[i].ID = storage.GenerateID("sb")
		storyboards[i].EpisodeID = episodeID
		storyboards[i].CreatedAt = time.Now()
		storyboards[i].UpdatedAt = time.Now()
	}

	_, err := s.dramas.MutateDrama(dramaID, func(d *models.Drama) {
		for i := range d.Episodes {
			if d.Episodes[i].ID == episodeID {
				d.Episodes[i].Storyboards = storyboards
				d.Episodes[i].StoryboardCount = len(storyboards)
				d.Episodes[i].Duration = (totalDurationSeconds + 59) / 60
				d.Episodes[i].UpdatedAt = time.Now()
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return storyboards, nil
}

// ---------- 场景背景提取 ----------

type aiBackground struct {
	Location   string `json:"location"`
	Time       string `json:"time"`
	Atmosphere string `json:"atmosphere"`
	Prompt     string `json:"prompt"`
}

func (s *GenerationService) processBackgroundExtraction(taskID, episodeID string) {
	log.Printf("[Generation] 开始背景提取: task=%s episode=%s", taskID, episodeID)

	_, episode, err := s.dramas.FindEpisode(episodeID)
	if err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}

	scriptContent := episodeScript(episode)
	if scriptContent == "" {
		s.tasks.Fail(taskID, "剧本内容为空，无法提取场景")
		return
	}

	s.tasks.UpdateProgress(taskID, 20, "正在分析剧本内容...")

	userPrompt := fmt.Sprintf("【剧本内容】\n%s\n\n请从以上剧本中提取所有场景背景信息。", scriptContent)

	response, err := s.generateText(userPrompt, genai.TextGenerateOptions{
		SystemPrompt: backgroundExtractionPrompt,
		Temperature:  0.7,
		MaxTokens:    8000,
	})
	if err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}

	var result struct {
		Backgrounds []aiBackground `json:"backgrounds"`
	}
	if err := utils.ExtractJSON(response, &result); err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}

	scenes := make([]models.Scene, 0, len(result.Backgrounds))
	for _, bg := range result.Backgrounds {
		scenes = append(scenes, models.Scene{
			Location:   bg.Location,
			Time:       bg.Time,
			Atmosphere: bg.Atmosphere,
			Prompt:     bg.Prompt,
			Status:     models.SceneStatusPending,
		})
	}

	saved, err := s.dramas.ReplaceEpisodeScenes(episodeID, scenes)
	if err != nil {
		s.tasks.Fail(taskID, err.Error())
		return
	}

	s.tasks.Complete(taskID, fmt.Sprintf("成功提取 %d 个场景", len(saved)),
		map[string]interface{}{"backgrounds": saved, "total": len(saved)})
	log.Printf("[Generation] 背景提取完成: task=%s total=%d", taskID, len(saved))
}

// ---------- 公共辅助 ----------

// episodeScript 取集数的剧本文本，按 script_content > content > description 回退
func episodeScript(episode *models.Episode) string {
	if episode.ScriptContent != "" {
		return episode.ScriptContent
	}
	if episode.Content != "" {
		return episode.Content
	}
	return episode.Description
}

func (s *GenerationService) generateText(prompt string, opts genai.TextGenerateOptions) (string, error) {
	config, err := s.configs.GetActiveConfig(models.ServiceTypeText, opts.Model)
	if err != nil {
		return "", err
	}

	s.clientMu.Lock()
	client, ok := s.clients[config.ID]
	if !ok {
		client = s.newClient(config)
		s.clients[config.ID] = client
	}
	s.clientMu.Unlock()

	return client.Generate(context.Background(), prompt, opts)
}
