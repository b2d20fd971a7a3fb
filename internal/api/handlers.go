// internal/api/handlers.go
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Corphon/DramaForgeMCP/internal/backend"
	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/services"
	"github.com/gin-gonic/gin"
)

// Handler 聚合全部 API 处理器。
// 业务操作走 Backend 接口，AI 配置和备份只在本地实例上管理
type Handler struct {
	backend backend.Backend
	configs *services.AIConfigService
	backups *services.BackupService
	tasks   *services.TaskService
}

// NewHandler 创建 API 处理器
func NewHandler(b backend.Backend, configs *services.AIConfigService, backups *services.BackupService, tasks *services.TaskService) *Handler {
	return &Handler{
		backend: b,
		configs: configs,
		backups: backups,
		tasks:   tasks,
	}
}

// writeError 按错误类型映射 HTTP 状态码
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrorTypeValidation, apperrors.ErrorTypeConfigMissing:
			status = http.StatusBadRequest
		case apperrors.ErrorTypeTimeout:
			status = http.StatusGatewayTimeout
		case apperrors.ErrorTypeProvider, apperrors.ErrorTypeParse:
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": appErr.Message, "type": string(appErr.Type)})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// bindError 请求体解析失败的统一响应
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "请求参数无效: " + err.Error(),
		"type":  string(apperrors.ErrorTypeValidation),
	})
}

func queryInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.Query(key))
	return v
}

func pathInt(c *gin.Context, key string) (int, bool) {
	v, err := strconv.Atoi(c.Param(key))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的数字 ID: " + c.Param(key),
			"type":  string(apperrors.ErrorTypeValidation),
		})
		return 0, false
	}
	return v, true
}

// ===============================
// 剧目
// ===============================

// ListDramas 分页查询剧目列表
func (h *Handler) ListDramas(c *gin.Context) {
	query := &services.DramaListQuery{
		Status:   c.Query("status"),
		Genre:    c.Query("genre"),
		Keyword:  c.Query("keyword"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}

	page, err := h.backend.ListDramas(query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateDrama 创建剧目
func (h *Handler) CreateDrama(c *gin.Context) {
	var req services.CreateDramaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	drama, err := h.backend.CreateDrama(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, drama)
}

// GetDrama 获取剧目详情
func (h *Handler) GetDrama(c *gin.Context) {
	drama, err := h.backend.GetDrama(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, drama)
}

// UpdateDrama 更新剧目基础信息
func (h *Handler) UpdateDrama(c *gin.Context) {
	var req services.UpdateDramaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	drama, err := h.backend.UpdateDrama(c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, drama)
}

// DeleteDrama 删除剧目
func (h *Handler) DeleteDrama(c *gin.Context) {
	if err := h.backend.DeleteDrama(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// GetDramaStats 统计概览
func (h *Handler) GetDramaStats(c *gin.Context) {
	stats, err := h.backend.DramaStats()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SaveOutline 保存剧目大纲
func (h *Handler) SaveOutline(c *gin.Context) {
	var req services.SaveOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	drama, err := h.backend.SaveOutline(c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, drama)
}

// SaveProgress 保存创作进度
func (h *Handler) SaveProgress(c *gin.Context) {
	var req services.SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.backend.SaveProgress(c.Param("id"), &req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "进度已保存"})
}

// ===============================
// 角色
// ===============================

// GetCharacters 获取剧目角色列表
func (h *Handler) GetCharacters(c *gin.Context) {
	characters, err := h.backend.GetCharacters(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, characters)
}

// SaveCharacters 整体保存角色列表
func (h *Handler) SaveCharacters(c *gin.Context) {
	var req struct {
		Characters []models.Character `json:"characters" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	saved, err := h.backend.SaveCharacters(c.Param("id"), req.Characters)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GenerateCharacters 提交角色生成任务
func (h *Handler) GenerateCharacters(c *gin.Context) {
	var req services.GenerateCharactersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.DramaID = c.Param("id")

	handle, err := h.backend.GenerateCharacters(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, handle)
}

// ===============================
// 剧集
// ===============================

// SaveEpisodes 整体保存剧集列表
func (h *Handler) SaveEpisodes(c *gin.Context) {
	var req struct {
		Episodes []models.Episode `json:"episodes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	saved, err := h.backend.SaveEpisodes(c.Param("id"), req.Episodes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GenerateEpisodes 生成占位剧集
func (h *Handler) GenerateEpisodes(c *gin.Context) {
	var req struct {
		Count int `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	episodes, err := h.backend.GenerateEpisodes(c.Param("id"), req.Count)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, episodes)
}

// FinalizeEpisode 定稿剧集
func (h *Handler) FinalizeEpisode(c *gin.Context) {
	if err := h.backend.FinalizeEpisode(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "剧集已定稿"})
}

// ===============================
// 分镜
// ===============================

// GetStoryboards 获取剧集分镜列表
func (h *Handler) GetStoryboards(c *gin.Context) {
	views, err := h.backend.GetStoryboards(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// CreateStoryboard 手动创建分镜
func (h *Handler) CreateStoryboard(c *gin.Context) {
	var sb models.Storyboard
	if err := c.ShouldBindJSON(&sb); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.backend.CreateStoryboard(c.Param("id"), sb)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateStoryboard 部分更新分镜
func (h *Handler) UpdateStoryboard(c *gin.Context) {
	var req services.UpdateStoryboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.backend.UpdateStoryboard(c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteStoryboard 删除分镜
func (h *Handler) DeleteStoryboard(c *gin.Context) {
	if err := h.backend.DeleteStoryboard(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// GenerateStoryboard 提交分镜拆解任务
func (h *Handler) GenerateStoryboard(c *gin.Context) {
	handle, err := h.backend.GenerateStoryboard(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, handle)
}

// ===============================
// 场景背景
// ===============================

// ListScenes 获取剧目场景列表
func (h *Handler) ListScenes(c *gin.Context) {
	scenes, err := h.backend.ListScenes(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenes)
}

// CreateScene 手动创建场景
func (h *Handler) CreateScene(c *gin.Context) {
	var scene models.Scene
	if err := c.ShouldBindJSON(&scene); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.backend.CreateScene(c.Param("id"), scene)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateScene 部分更新场景
func (h *Handler) UpdateScene(c *gin.Context) {
	var req services.UpdateSceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.backend.UpdateScene(c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteScene 删除场景
func (h *Handler) DeleteScene(c *gin.Context) {
	if err := h.backend.DeleteScene(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// ExtractBackgrounds 提交场景背景提取任务
func (h *Handler) ExtractBackgrounds(c *gin.Context) {
	handle, err := h.backend.ExtractBackgrounds(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, handle)
}

// GetBackgrounds 获取剧集所属剧目的场景背景
func (h *Handler) GetBackgrounds(c *gin.Context) {
	scenes, err := h.backend.GetBackgrounds(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenes)
}

// GenerateSceneImage 为场景生成背景图
func (h *Handler) GenerateSceneImage(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
		Model  string `json:"model"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.backend.GenerateSceneImage(c.Param("id"), req.Prompt, req.Model)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, record)
}

// ===============================
// 图片生成
// ===============================

// GenerateImage 提交图片生成
func (h *Handler) GenerateImage(c *gin.Context) {
	var req services.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.backend.GenerateImage(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, record)
}

// GenerateCharacterImage 为角色生成形象图
func (h *Handler) GenerateCharacterImage(c *gin.Context) {
	var req struct {
		CharacterID int    `json:"character_id" binding:"required"`
		DramaID     string `json:"drama_id" binding:"required"`
		Prompt      string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.backend.GenerateCharacterImage(req.CharacterID, req.DramaID, req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, record)
}

// BatchGenerateImages 为剧集的全部分镜批量生成图片
func (h *Handler) BatchGenerateImages(c *gin.Context) {
	records, err := h.backend.BatchGenerateImages(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, records)
}

// GetImage 获取图片生成记录
func (h *Handler) GetImage(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	record, err := h.backend.GetImage(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListImages 分页查询图片生成记录
func (h *Handler) ListImages(c *gin.Context) {
	query := &services.ImageListQuery{
		DramaID:      c.Query("drama_id"),
		SceneID:      c.Query("scene_id"),
		StoryboardID: c.Query("storyboard_id"),
		FrameType:    c.Query("frame_type"),
		Status:       c.Query("status"),
		Page:         queryInt(c, "page"),
		PageSize:     queryInt(c, "page_size"),
	}

	page, err := h.backend.ListImages(query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeleteImage 删除图片生成记录
func (h *Handler) DeleteImage(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	if err := h.backend.DeleteImage(id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// ===============================
// 视频生成
// ===============================

// GenerateVideo 提交视频生成
func (h *Handler) GenerateVideo(c *gin.Context) {
	var req services.GenerateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.backend.GenerateVideo(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, record)
}

// GenerateVideoFromImage 以已生成图片为首帧提交视频生成
func (h *Handler) GenerateVideoFromImage(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	var req struct {
		DramaID string `json:"drama_id" binding:"required"`
		Prompt  string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.backend.GenerateVideoFromImage(id, req.DramaID, req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, record)
}

// BatchGenerateVideos 为剧集的全部分镜批量生成视频
func (h *Handler) BatchGenerateVideos(c *gin.Context) {
	records, err := h.backend.BatchGenerateVideos(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, records)
}

// GetVideo 获取视频生成记录
func (h *Handler) GetVideo(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	record, err := h.backend.GetVideo(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListVideos 分页查询视频生成记录
func (h *Handler) ListVideos(c *gin.Context) {
	query := &services.VideoListQuery{
		DramaID:      c.Query("drama_id"),
		StoryboardID: c.Query("storyboard_id"),
		Status:       c.Query("status"),
		Page:         queryInt(c, "page"),
		PageSize:     queryInt(c, "page_size"),
	}

	page, err := h.backend.ListVideos(query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeleteVideo 删除视频生成记录
func (h *Handler) DeleteVideo(c *gin.Context) {
	id, ok := pathInt(c, "id")
	if !ok {
		return
	}

	if err := h.backend.DeleteVideo(id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// ===============================
// 任务
// ===============================

// GetTask 查询任务状态
func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.backend.GetTask(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ===============================
// AI 配置
// ===============================

// ListAIConfigs 获取全部 AI 服务配置
func (h *Handler) ListAIConfigs(c *gin.Context) {
	configs, err := h.configs.List()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, configs)
}

// GetAIConfig 获取单个 AI 服务配置
func (h *Handler) GetAIConfig(c *gin.Context) {
	cfg, err := h.configs.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// CreateAIConfig 新增 AI 服务配置
func (h *Handler) CreateAIConfig(c *gin.Context) {
	var cfg models.AIServiceConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.configs.Create(&cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateAIConfig 更新 AI 服务配置
func (h *Handler) UpdateAIConfig(c *gin.Context) {
	var incoming models.AIServiceConfig
	if err := c.ShouldBindJSON(&incoming); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.configs.Update(c.Param("id"), func(cfg *models.AIServiceConfig) {
		id := cfg.ID
		*cfg = incoming
		cfg.ID = id
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteAIConfig 删除 AI 服务配置
func (h *Handler) DeleteAIConfig(c *gin.Context) {
	if err := h.configs.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// ===============================
// 备份
// ===============================

// ExportBackup 导出全部数据
func (h *Handler) ExportBackup(c *gin.Context) {
	bak, err := h.backups.Export()
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="dramaforge-backup.json"`)
	c.JSON(http.StatusOK, bak)
}

// ImportBackup 导入备份数据
func (h *Handler) ImportBackup(c *gin.Context) {
	var bak services.Backup
	if err := c.ShouldBindJSON(&bak); err != nil {
		bindError(c, err)
		return
	}

	if err := h.backups.Import(&bak); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "导入成功"})
}
