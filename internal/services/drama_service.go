// internal/services/drama_service.go
package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
	"github.com/Corphon/DramaForgeMCP/internal/utils"
)

// DramaService 是内容图仓库：以 Drama 为根聚合的嵌套文档树。
// 所有写入都经过 MutateDrama 单一原语，冗余副本在同一次变更内修复
type DramaService struct {
	dramas *storage.Collection[models.Drama]
	ids    *storage.IDGenerator
}

// NewDramaService 创建内容图仓库
func NewDramaService(store storage.Store) *DramaService {
	return &DramaService{
		dramas: storage.NewCollection(store, storage.KeyDramas,
			func(d *models.Drama) string { return d.ID }),
		ids: storage.NewIDGenerator(store),
	}
}

// DramaListQuery 列表筛选参数
type DramaListQuery struct {
	Status   string
	Genre    string
	Keyword  string
	Page     int
	PageSize int
}

// CreateDramaRequest 创建请求
type CreateDramaRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Tags        string `json:"tags"` // 逗号分隔
}

// MutateDrama 对指定剧目应用变更并整体写回。
// 这是图的唯一写入原语：读出根文档、应用变更、覆盖保存
func (s *DramaService) MutateDrama(id string, apply func(*models.Drama)) (*models.Drama, error) {
	drama, found, err := s.dramas.Update(id, func(d *models.Drama) {
		apply(d)
		d.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("剧本不存在", nil)
	}
	return drama, nil
}

// Create 创建剧目
func (s *DramaService) Create(req *CreateDramaRequest) (*models.Drama, error) {
	var tags []string
	if req.Tags != "" {
		for _, t := range strings.Split(req.Tags, ",") {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
	}

	drama := models.Drama{
		ID:          storage.GenerateID("drama"),
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Tags:        tags,
		Status:      models.DramaStatusDraft,
		Characters:  []models.Character{},
		Episodes:    []models.Episode{},
		Scenes:      []models.Scene{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	return s.dramas.Add(drama)
}

// Get 读取剧目。
// 读取时整理返回值：episodes 按集数排序、storyboards 按镜头号排序、
// episode 的角色副本用剧级权威列表覆盖、统计字段重新计算
func (s *DramaService) Get(id string) (*models.Drama, error) {
	drama, found, err := s.dramas.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("剧本不存在", nil)
	}

	sort.SliceStable(drama.Episodes, func(i, j int) bool {
		return drama.Episodes[i].EpisodeNumber < drama.Episodes[j].EpisodeNumber
	})
	for i := range drama.Episodes {
		ep := &drama.Episodes[i]
		sort.SliceStable(ep.Storyboards, func(a, b int) bool {
			return ep.Storyboards[a].StoryboardNumber < ep.Storyboards[b].StoryboardNumber
		})
		ep.Characters = drama.Characters
	}

	drama.TotalEpisodes = len(drama.Episodes)
	drama.TotalScenes = len(drama.Scenes)
	return drama, nil
}

// List 按条件筛选剧目，按更新时间倒序分页返回
func (s *DramaService) List(query *DramaListQuery) (*storage.Page[models.Drama], error) {
	items, err := s.dramas.Filter(func(d *models.Drama) bool {
		if query.Status != "" && d.Status != query.Status {
			return false
		}
		if query.Genre != "" && d.Genre != query.Genre {
			return false
		}
		if query.Keyword != "" {
			keyword := strings.ToLower(query.Keyword)
			if !strings.Contains(strings.ToLower(d.Title), keyword) &&
				!strings.Contains(strings.ToLower(d.Description), keyword) {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})

	page := storage.Paginate(items, query.Page, query.PageSize)
	return &page, nil
}

// Update 更新剧目基本信息
func (s *DramaService) Update(id string, apply func(*models.Drama)) (*models.Drama, error) {
	return s.MutateDrama(id, apply)
}

// Delete 删除剧目，嵌套的集数/角色/场景随根文档一并删除。
// 独立集合中的生成记录不级联
func (s *DramaService) Delete(id string) error {
	found, err := s.dramas.Delete(id)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFoundError("剧本不存在", nil)
	}
	return nil
}

// Stats 按状态统计剧目数量
func (s *DramaService) Stats() (*models.DramaStats, error) {
	items, err := s.dramas.GetAll()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var order []string
	for i := range items {
		if _, seen := counts[items[i].Status]; !seen {
			order = append(order, items[i].Status)
		}
		counts[items[i].Status]++
	}

	stats := &models.DramaStats{Total: len(items)}
	for _, status := range order {
		stats.ByStatus = append(stats.ByStatus, models.DramaStatusStat{
			Status: status,
			Count:  counts[status],
		})
	}
	return stats, nil
}

// SaveOutline 保存大纲信息
func (s *DramaService) SaveOutline(id, title, summary, genre string, tags []string) (*models.Drama, error) {
	return s.MutateDrama(id, func(d *models.Drama) {
		d.Title = title
		d.Description = summary
		if genre != "" {
			d.Genre = genre
		}
		if tags != nil {
			d.Tags = tags
		}
	})
}

// SaveProgress 记录创作流程的当前步骤到 metadata
func (s *DramaService) SaveProgress(id, currentStep string, stepData interface{}) error {
	_, err := s.MutateDrama(id, func(d *models.Drama) {
		if d.Metadata == nil {
			d.Metadata = make(map[string]interface{})
		}
		d.Metadata["current_step"] = currentStep
		if stepData != nil {
			d.Metadata["step_data"] = stepData
		}
	})
	return err
}

// ---------- 角色 ----------

// GetCharacters 返回剧级角色列表
func (s *DramaService) GetCharacters(dramaID string) ([]models.Character, error) {
	drama, found, err := s.dramas.GetByID(dramaID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("剧本不存在", nil)
	}
	return drama.Characters, nil
}

// SaveCharacters 整体替换剧级角色列表，并把副本同步到所有集数。
// 没有 ID 的角色分配新的数字 ID
func (s *DramaService) SaveCharacters(dramaID string, characters []models.Character) ([]models.Character, error) {
	for i := range characters {
		if characters[i].ID == 0 {
			id, err := s.ids.Next("character")
			if err != nil {
				return nil, err
			}
			characters[i].ID = id
			characters[i].CreatedAt = time.Now()
		}
		characters[i].DramaID = dramaID
		characters[i].SortOrder = i
		characters[i].UpdatedAt = time.Now()
	}

	_, err := s.MutateDrama(dramaID, func(d *models.Drama) {
		d.Characters = characters
		for i := range d.Episodes {
			d.Episodes[i].Characters = characters
		}
	})
	if err != nil {
		return nil, err
	}
	return characters, nil
}

// MergeCharacters 合并角色到剧级列表：同名角色保留原有条目，
// 新角色追加，副本同步到所有集数。返回最终参与合并的角色
func (s *DramaService) MergeCharacters(dramaID string, incoming []models.Character) ([]models.Character, error) {
	drama, found, err := s.dramas.GetByID(dramaID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("剧本不存在", nil)
	}

	existingByName := make(map[string]models.Character)
	for _, c := range drama.Characters {
		existingByName[c.Name] = c
	}

	var merged []models.Character
	for _, char := range incoming {
		if existing, ok := existingByName[char.Name]; ok {
			log.Printf("[Drama] 角色已存在，跳过: %s", char.Name)
			merged = append(merged, existing)
			continue
		}
		id, err := s.ids.Next("character")
		if err != nil {
			return nil, err
		}
		char.ID = id
		char.DramaID = dramaID
		char.CreatedAt = time.Now()
		char.UpdatedAt = time.Now()
		merged = append(merged, char)
	}

	mergedNames := make(map[string]bool)
	for _, c := range merged {
		mergedNames[c.Name] = true
	}

	_, err = s.MutateDrama(dramaID, func(d *models.Drama) {
		var kept []models.Character
		for _, c := range d.Characters {
			if !mergedNames[c.Name] {
				kept = append(kept, c)
			}
		}
		d.Characters = append(kept, merged...)
		for i := range d.Episodes {
			d.Episodes[i].Characters = d.Characters
		}
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// ---------- 集数 ----------

// FindEpisode 在所有剧目中查找集数，返回所属剧目
func (s *DramaService) FindEpisode(episodeID string) (*models.Drama, *models.Episode, error) {
	items, err := s.dramas.GetAll()
	if err != nil {
		return nil, nil, err
	}
	for i := range items {
		for j := range items[i].Episodes {
			if items[i].Episodes[j].ID == episodeID {
				return &items[i], &items[i].Episodes[j], nil
			}
		}
	}
	return nil, nil, apperrors.NewNotFoundError("剧集不存在", nil)
}

// SaveEpisodes 整体替换剧目的集数列表
func (s *DramaService) SaveEpisodes(dramaID string, episodes []models.Episode) ([]models.Episode, error) {
	for i := range episodes {
		if episodes[i].ID == "" {
			episodes[i].ID = storage.GenerateID("ep")
		}
		episodes[i].DramaID = dramaID
		if episodes[i].EpisodeNumber == 0 {
			episodes[i].EpisodeNumber = i + 1
		}
		if episodes[i].Status == "" {
			episodes[i].Status = models.DramaStatusDraft
		}
		if episodes[i].Storyboards == nil {
			episodes[i].Storyboards = []models.Storyboard{}
		}
		if episodes[i].Scenes == nil {
			episodes[i].Scenes = []models.Scene{}
		}
		episodes[i].CreatedAt = time.Now()
		episodes[i].UpdatedAt = time.Now()
	}

	_, err := s.MutateDrama(dramaID, func(d *models.Drama) {
		d.Episodes = episodes
		d.TotalEpisodes = len(episodes)
	})
	if err != nil {
		return nil, err
	}
	return episodes, nil
}

// GenerateEpisodes 生成 1..n 的模板集数并替换现有列表
func (s *DramaService) GenerateEpisodes(dramaID string, count int) ([]models.Episode, error) {
	if count <= 0 {
		return nil, apperrors.NewValidationError("集数必须大于0", nil)
	}

	episodes := make([]models.Episode, 0, count)
	for i := 1; i <= count; i++ {
		episodes = append(episodes, models.Episode{
			Title:         fmt.Sprintf("第%d集", i),
			EpisodeNumber: i,
			Description:   fmt.Sprintf("第%d集的内容", i),
		})
	}
	return s.SaveEpisodes(dramaID, episodes)
}

// FinalizeEpisode 标记集数制作完成
func (s *DramaService) FinalizeEpisode(episodeID string) error {
	drama, _, err := s.FindEpisode(episodeID)
	if err != nil {
		return err
	}

	_, err = s.MutateDrama(drama.ID, func(d *models.Drama) {
		for i := range d.Episodes {
			if d.Episodes[i].ID == episodeID {
				d.Episodes[i].Status = models.DramaStatusCompleted
				d.Episodes[i].TimelineStatus = models.DramaStatusCompleted
				d.Episodes[i].UpdatedAt = time.Now()
				return
			}
		}
	})
	return err
}

// ---------- 分镜 ----------

// StoryboardContext 分镜及其所属的集数和剧目
type StoryboardContext struct {
	Drama      *models.Drama
	Episode    *models.Episode
	Storyboard *models.Storyboard
}

// FindStoryboardContext 在所有剧目中查找分镜，返回完整上下文
func (s *DramaService) FindStoryboardContext(storyboardID string) (*StoryboardContext, error) {
	items, err := s.dramas.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range items {
		for j := range items[i].Episodes {
			ep := &items[i].Episodes[j]
			for k := range ep.Storyboards {
				if ep.Storyboards[k].ID == storyboardID {
					return &StoryboardContext{
						Drama:      &items[i],
						Episode:    ep,
						Storyboard: &ep.Storyboards[k],
					}, nil
				}
			}
		}
	}
	return nil, apperrors.NewNotFoundError("分镜不存在", nil)
}

// CreateStoryboard 在集数下新建分镜，镜头号默认取现有最大值加一
func (s *DramaService) CreateStoryboard(episodeID string, sb models.Storyboard) (*models.Storyboard, error) {
	drama, episode, err := s.FindEpisode(episodeID)
	if err != nil {
		return nil, err
	}

	if sb.StoryboardNumber == 0 {
		maxNumber := 0
		for _, existing := range episode.Storyboards {
			if existing.StoryboardNumber > maxNumber {
				maxNumber = existing.StoryboardNumber
			}
		}
		sb.StoryboardNumber = maxNumber + 1
	}
	sb.ID = storage.GenerateID("sb")
	sb.EpisodeID = episodeID
	if sb.Duration == 0 {
		sb.Duration = 5
	}
	sb.CreatedAt = time.Now()
	sb.UpdatedAt = time.Now()

	_, err = s.MutateDrama(drama.ID, func(d *models.Drama) {
		for i := range d.Episodes {
			if d.Episodes[i].ID == episodeID {
				d.Episodes[i].Storyboards = append(d.Episodes[i].Storyboards, sb)
				d.Episodes[i].StoryboardCount = len(d.Episodes[i].Storyboards)
				d.Episodes[i].UpdatedAt = time.Now()
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return &sb, nil
}

// UpdateStoryboard 更新分镜并重新生成 video_prompt。
// image_prompt 不自动更新，可能已对应生成好的帧图片
func (s *DramaService) UpdateStoryboard(storyboardID string, apply func(*models.Storyboard)) (*models.Storyboard, error) {
	ctx, err := s.FindStoryboardContext(storyboardID)
	if err != nil {
		return nil, err
	}

	var updated models.Storyboard
	_, err = s.MutateDrama(ctx.Drama.ID, func(d *models.Drama) {
		for i := range d.Episodes {
			for j := range d.Episodes[i].Storyboards {
				sb := &d.Episodes[i].Storyboards[j]
				if sb.ID == storyboardID {
					apply(sb)
					sb.VideoPrompt = utils.BuildVideoPrompt(sb)
					sb.UpdatedAt = time.Now()
					updated = *sb
					return
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteStoryboard 删除分镜并维护集数的分镜计数
func (s *DramaService) DeleteStoryboard(storyboardID string) error {
	ctx, err := s.FindStoryboardContext(storyboardID)
	if err != nil {
		return err
	}

	_, err = s.MutateDrama(ctx.Drama.ID, func(d *models.Drama) {
		for i := range d.Episodes {
			ep := &d.Episodes[i]
			for j := range ep.Storyboards {
				if ep.Storyboards[j].ID == storyboardID {
					ep.Storyboards = append(ep.Storyboards[:j], ep.Storyboards[j+1:]...)
					ep.StoryboardCount = len(ep.Storyboards)
					ep.UpdatedAt = time.Now()
					return
				}
			}
		}
	})
	return err
}

// SceneRef 分镜解析出的场景背景引用
type SceneRef struct {
	ID       string `json:"id"`
	Location string `json:"location"`
	Time     string `json:"time"`
	ImageURL string `json:"image_url,omitempty"`
	Status   string `json:"status"`
}

// CharacterRef 分镜解析出的角色引用
type CharacterRef struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// StoryboardView 分镜及解析后的弱引用对象
type StoryboardView struct {
	models.Storyboard
	Background    *SceneRef      `json:"background,omitempty"`
	CharacterRefs []CharacterRef `json:"character_refs,omitempty"`
}

// GetStoryboards 返回集数下的分镜，按镜头号排序。
// scene_id/characters 弱引用解析为对象，悬空引用按未找到处理直接跳过
func (s *DramaService) GetStoryboards(episodeID string) ([]StoryboardView, error) {
	drama, episode, err := s.FindEpisode(episodeID)
	if err != nil {
		return nil, err
	}

	sceneByID := make(map[string]*models.Scene)
	for i := range drama.Scenes {
		sceneByID[drama.Scenes[i].ID] = &drama.Scenes[i]
	}
	charByID := make(map[int]*models.Character)
	for i := range drama.Characters {
		charByID[drama.Characters[i].ID] = &drama.Characters[i]
	}

	storyboards := make([]models.Storyboard, len(episode.Storyboards))
	copy(storyboards, episode.Storyboards)
	sort.SliceStable(storyboards, func(i, j int) bool {
		return storyboards[i].StoryboardNumber < storyboards[j].StoryboardNumber
	})

	views := make([]StoryboardView, 0, len(storyboards))
	for _, sb := range storyboards {
		view := StoryboardView{Storyboard: sb}
		if sb.SceneID != "" {
			if scene, ok := sceneByID[sb.SceneID]; ok {
				view.Background = &SceneRef{
					ID:       scene.ID,
					Location: scene.Location,
					Time:     scene.Time,
					ImageURL: scene.ImageURL,
					Status:   scene.Status,
				}
			}
		}
		for _, charID := range sb.Characters {
			if char, ok := charByID[charID]; ok {
				view.CharacterRefs = append(view.CharacterRefs, CharacterRef{
					ID:       char.ID,
					Name:     char.Name,
					ImageURL: char.ImageURL,
				})
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// ---------- 场景 ----------

// CreateScene 在剧目下新建场景背景
func (s *DramaService) CreateScene(dramaID string, scene models.Scene) (*models.Scene, error) {
	scene.ID = storage.GenerateID("scene")
	scene.DramaID = dramaID
	if scene.Status == "" {
		scene.Status = models.SceneStatusDraft
	}
	scene.CreatedAt = time.Now()
	scene.UpdatedAt = time.Now()

	_, err := s.MutateDrama(dramaID, func(d *models.Drama) {
		d.Scenes = append(d.Scenes, scene)
		d.TotalScenes = len(d.Scenes)
	})
	if err != nil {
		return nil, err
	}
	return &scene, nil
}

// ListScenes 返回剧目的全部场景
func (s *DramaService) ListScenes(dramaID string) ([]models.Scene, error) {
	drama, found, err := s.dramas.GetByID(dramaID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("剧本不存在", nil)
	}
	return drama.Scenes, nil
}

// FindScene 在所有剧目中查找场景
func (s *DramaService) FindScene(sceneID string) (*models.Drama, *models.Scene, error) {
	items, err := s.dramas.GetAll()
	if err != nil {
		return nil, nil, err
	}
	for i := range items {
		for j := range items[i].Scenes {
			if items[i].Scenes[j].ID == sceneID {
				return &items[i], &items[i].Scenes[j], nil
			}
		}
	}
	return nil, nil, apperrors.NewNotFoundError("场景不存在", nil)
}

// UpdateScene 更新场景，并把副本同步到所属集数
func (s *DramaService) UpdateScene(sceneID string, apply func(*models.Scene)) (*models.Scene, error) {
	drama, _, err := s.FindScene(sceneID)
	if err != nil {
		return nil, err
	}

	var updated models.Scene
	_, err = s.MutateDrama(drama.ID, func(d *models.Drama) {
		for i := range d.Scenes {
			if d.Scenes[i].ID == sceneID {
				apply(&d.Scenes[i])
				d.Scenes[i].UpdatedAt = time.Now()
				updated = d.Scenes[i]
				break
			}
		}
		syncSceneReplicas(d, &updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteScene 删除场景。指向它的分镜 scene_id 变为悬空引用
func (s *DramaService) DeleteScene(sceneID string) error {
	drama, _, err := s.FindScene(sceneID)
	if err != nil {
		return err
	}

	_, err = s.MutateDrama(drama.ID, func(d *models.Drama) {
		for i := range d.Scenes {
			if d.Scenes[i].ID == sceneID {
				d.Scenes = append(d.Scenes[:i], d.Scenes[i+1:]...)
				break
			}
		}
		d.TotalScenes = len(d.Scenes)
	})
	return err
}

// ReplaceEpisodeScenes 用新场景替换集数的全部场景。
// 剧级列表中该集数的旧场景删除，新场景追加，副本同步
func (s *DramaService) ReplaceEpisodeScenes(episodeID string, scenes []models.Scene) ([]models.Scene, error) {
	drama, _, err := s.FindEpisode(episodeID)
	if err != nil {
		return nil, err
	}

	for i := range scenes {
		if scenes[i].ID == "" {
			scenes[i].ID = storage.GenerateID("scene")
		}
		scenes[i].DramaID = drama.ID
		scenes[i].EpisodeID = episodeID
		if scenes[i].Status == "" {
			scenes[i].Status = models.SceneStatusPending
		}
		scenes[i].CreatedAt = time.Now()
		scenes[i].UpdatedAt = time.Now()
	}

	_, err = s.MutateDrama(drama.ID, func(d *models.Drama) {
		var kept []models.Scene
		for _, scene := range d.Scenes {
			if scene.EpisodeID != episodeID {
				kept = append(kept, scene)
			}
		}
		d.Scenes = append(kept, scenes...)
		d.TotalScenes = len(d.Scenes)

		for i := range d.Episodes {
			if d.Episodes[i].ID == episodeID {
				d.Episodes[i].Scenes = scenes
				d.Episodes[i].UpdatedAt = time.Now()
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return scenes, nil
}

// ---------- 生成结果回写 ----------

// UpdateStoryboardVideoURL 回写分镜的视频地址
func (s *DramaService) UpdateStoryboardVideoURL(storyboardID, videoURL string) error {
	ctx, err := s.FindStoryboardContext(storyboardID)
	if err != nil {
		return err
	}

	_, err = s.MutateDrama(ctx.Drama.ID, func(d *models.Drama) {
		for i := range d.Episodes {
			for j := range d.Episodes[i].Storyboards {
				if d.Episodes[i].Storyboards[j].ID == storyboardID {
					d.Episodes[i].Storyboards[j].VideoURL = videoURL
					d.Episodes[i].Storyboards[j].UpdatedAt = time.Now()
					return
				}
			}
		}
	})
	if err == nil {
		log.Printf("[Drama] 已更新分镜视频地址: %s", storyboardID)
	}
	return err
}

// UpdateStoryboardComposedImage 回写分镜的合成图地址
func (s *DramaService) UpdateStoryboardComposedImage(storyboardID, imageURL string) error {
	ctx, err := s.FindStoryboardContext(storyboardID)
	if err != nil {
		return err
	}

	_, err = s.MutateDrama(ctx.Drama.ID, func(d *models.Drama) {
		for i := range d.Episodes {
			for j := range d.Episodes[i].Storyboards {
				if d.Episodes[i].Storyboards[j].ID == storyboardID {
					d.Episodes[i].Storyboards[j].ComposedImage = imageURL
					d.Episodes[i].Storyboards[j].UpdatedAt = time.Now()
					return
				}
			}
		}
	})
	return err
}

// UpdateSceneImage 回写场景图片和状态，副本同步到集数。
// 失败时 imageURL 传空串，已有图片地址不会被清除
func (s *DramaService) UpdateSceneImage(sceneID, imageURL, status string) error {
	drama, _, err := s.FindScene(sceneID)
	if err != nil {
		return err
	}

	var updated models.Scene
	_, err = s.MutateDrama(drama.ID, func(d *models.Drama) {
		for i := range d.Scenes {
			if d.Scenes[i].ID == sceneID {
				if imageURL != "" {
					d.Scenes[i].ImageURL = imageURL
				}
				d.Scenes[i].Status = status
				d.Scenes[i].UpdatedAt = time.Now()
				updated = d.Scenes[i]
				break
			}
		}
		syncSceneReplicas(d, &updated)
	})
	return err
}

// UpdateCharacterImage 回写角色形象图，副本同步到集数
func (s *DramaService) UpdateCharacterImage(characterID int, imageURL string) error {
	items, err := s.dramas.GetAll()
	if err != nil {
		return err
	}

	for i := range items {
		for j := range items[i].Characters {
			if items[i].Characters[j].ID == characterID {
				_, err = s.MutateDrama(items[i].ID, func(d *models.Drama) {
					for k := range d.Characters {
						if d.Characters[k].ID == characterID {
							d.Characters[k].ImageURL = imageURL
							d.Characters[k].UpdatedAt = time.Now()
						}
					}
					for e := range d.Episodes {
						for k := range d.Episodes[e].Characters {
							if d.Episodes[e].Characters[k].ID == characterID {
								d.Episodes[e].Characters[k].ImageURL = imageURL
							}
						}
					}
				})
				return err
			}
		}
	}
	return apperrors.NewNotFoundError("角色不存在", nil)
}

// syncSceneReplicas 把场景变更同步到所属集数的副本列表
func syncSceneReplicas(d *models.Drama, scene *models.Scene) {
	if scene.ID == "" {
		return
	}
	for i := range d.Episodes {
		for j := range d.Episodes[i].Scenes {
			if d.Episodes[i].Scenes[j].ID == scene.ID {
				d.Episodes[i].Scenes[j] = *scene
			}
		}
	}
}
