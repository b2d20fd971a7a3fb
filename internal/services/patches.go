// internal/services/patches.go
package services

import (
	"github.com/Corphon/DramaForgeMCP/internal/models"
)

// UpdateDramaRequest 剧目部分更新，nil 字段不变更
type UpdateDramaRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Genre       *string  `json:"genre,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// UpdateDramaInfo 应用剧目部分更新
func (s *DramaService) UpdateDramaInfo(id string, req *UpdateDramaRequest) (*models.Drama, error) {
	return s.MutateDrama(id, func(d *models.Drama) {
		if req.Title != nil {
			d.Title = *req.Title
		}
		if req.Description != nil {
			d.Description = *req.Description
		}
		if req.Genre != nil {
			d.Genre = *req.Genre
		}
		if req.Tags != nil {
			d.Tags = req.Tags
		}
		if req.Status != nil {
			d.Status = *req.Status
		}
	})
}

// UpdateStoryboardRequest 分镜部分更新，nil 字段不变更
type UpdateStoryboardRequest struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	ShotType      *string `json:"shot_type,omitempty"`
	Angle         *string `json:"angle,omitempty"`
	Time          *string `json:"time,omitempty"`
	Location      *string `json:"location,omitempty"`
	SceneID       *string `json:"scene_id,omitempty"`
	Movement      *string `json:"movement,omitempty"`
	Action        *string `json:"action,omitempty"`
	Dialogue      *string `json:"dialogue,omitempty"`
	Result        *string `json:"result,omitempty"`
	Atmosphere    *string `json:"atmosphere,omitempty"`
	Emotion       *string `json:"emotion,omitempty"`
	Duration      *int    `json:"duration,omitempty"`
	BGMPrompt     *string `json:"bgm_prompt,omitempty"`
	SoundFX       *string `json:"sound_effect,omitempty"`
	Characters    []int   `json:"characters,omitempty"`
	IsPrimary     *bool   `json:"is_primary,omitempty"`
	ImagePrompt   *string `json:"image_prompt,omitempty"`
	ComposedImage *string `json:"composed_image,omitempty"`
	Status        *string `json:"status,omitempty"`
}

// PatchStoryboard 应用分镜部分更新，video_prompt 随之重算
func (s *DramaService) PatchStoryboard(storyboardID string, req *UpdateStoryboardRequest) (*models.Storyboard, error) {
	return s.UpdateStoryboard(storyboardID, func(sb *models.Storyboard) {
		if req.Title != nil {
			sb.Title = *req.Title
		}
		if req.Description != nil {
			sb.Description = *req.Description
		}
		if req.ShotType != nil {
			sb.ShotType = *req.ShotType
		}
		if req.Angle != nil {
			sb.Angle = *req.Angle
		}
		if req.Time != nil {
			sb.Time = *req.Time
		}
		if req.Location != nil {
			sb.Location = *req.Location
		}
		if req.SceneID != nil {
			sb.SceneID = *req.SceneID
		}
		if req.Movement != nil {
			sb.Movement = *req.Movement
		}
		if req.Action != nil {
			sb.Action = *req.Action
		}
		if req.Dialogue != nil {
			sb.Dialogue = *req.Dialogue
		}
		if req.Result != nil {
			sb.Result = *req.Result
		}
		if req.Atmosphere != nil {
			sb.Atmosphere = *req.Atmosphere
		}
		if req.Emotion != nil {
			sb.Emotion = *req.Emotion
		}
		if req.Duration != nil {
			sb.Duration = *req.Duration
		}
		if req.BGMPrompt != nil {
			sb.BGMPrompt = *req.BGMPrompt
		}
		if req.SoundFX != nil {
			sb.SoundFX = *req.SoundFX
		}
		if req.Characters != nil {
			sb.Characters = req.Characters
		}
		if req.IsPrimary != nil {
			sb.IsPrimary = *req.IsPrimary
		}
		if req.ImagePrompt != nil {
			sb.ImagePrompt = *req.ImagePrompt
		}
		if req.ComposedImage != nil {
			sb.ComposedImage = *req.ComposedImage
		}
		if req.Status != nil {
			sb.Status = *req.Status
		}
	})
}

// UpdateSceneRequest 场景部分更新，nil 字段不变更
type UpdateSceneRequest struct {
	Title       *string `json:"title,omitempty"`
	Location    *string `json:"location,omitempty"`
	Time        *string `json:"time,omitempty"`
	Atmosphere  *string `json:"atmosphere,omitempty"`
	Prompt      *string `json:"prompt,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// PatchScene 应用场景部分更新
func (s *DramaService) PatchScene(sceneID string, req *UpdateSceneRequest) (*models.Scene, error) {
	return s.UpdateScene(sceneID, func(sc *models.Scene) {
		if req.Title != nil {
			sc.Title = *req.Title
		}
		if req.Location != nil {
			sc.Location = *req.Location
		}
		if req.Time != nil {
			sc.Time = *req.Time
		}
		if req.Atmosphere != nil {
			sc.Atmosphere = *req.Atmosphere
		}
		if req.Prompt != nil {
			sc.Prompt = *req.Prompt
		}
		if req.Description != nil {
			sc.Description = *req.Description
		}
		if req.Status != nil {
			sc.Status = *req.Status
		}
		if req.ImageURL != nil {
			sc.ImageURL = *req.ImageURL
		}
	})
}

// SaveOutlineRequest 大纲保存请求
type SaveOutlineRequest struct {
	Title   string   `json:"title" binding:"required"`
	Summary string   `json:"summary"`
	Genre   string   `json:"genre"`
	Tags    []string `json:"tags"`
}

// SaveProgressRequest 创作进度保存请求
type SaveProgressRequest struct {
	CurrentStep string      `json:"current_step" binding:"required"`
	StepData    interface{} `json:"step_data"`
}
