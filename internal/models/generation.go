// internal/models/generation.go
package models

import "time"

// 参考图模式
const (
	ReferenceModeSingle    = "single"
	ReferenceModeFirstLast = "first_last"
	ReferenceModeMultiple  = "multiple"
	ReferenceModeNone      = "none"
)

// 图片用途
const (
	ImageTypeStoryboard = "storyboard"
	ImageTypeScene      = "scene"
	ImageTypeCharacter  = "character"
)

// ImageGeneration 表示一次图片生成作业
// 引用的图节点只在作业完成时被回写，反向不成立
type ImageGeneration struct {
	ID           int    `json:"id"`
	DramaID      string `json:"drama_id"`
	StoryboardID string `json:"storyboard_id,omitempty"`
	SceneID      string `json:"scene_id,omitempty"`
	CharacterID  int    `json:"character_id,omitempty"`

	ImageType      string  `json:"image_type"`
	FrameType      string  `json:"frame_type,omitempty"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	Provider       string  `json:"provider"`
	Model          string  `json:"model,omitempty"`
	Size           string  `json:"size,omitempty"`
	Quality        string  `json:"quality,omitempty"`
	Style          string  `json:"style,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	CfgScale       float64 `json:"cfg_scale,omitempty"`
	Seed           int     `json:"seed,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`

	Status   string `json:"status"`
	TaskID   string `json:"task_id,omitempty"` // 服务商侧任务句柄
	ImageURL string `json:"image_url,omitempty"`
	ErrorMsg string `json:"error_msg,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// VideoGeneration 表示一次视频生成作业
type VideoGeneration struct {
	ID           int    `json:"id"`
	DramaID      string `json:"drama_id"`
	StoryboardID string `json:"storyboard_id,omitempty"`
	SceneID      string `json:"scene_id,omitempty"`
	ImageGenID   int    `json:"image_gen_id,omitempty"`

	Provider string `json:"provider"`
	Prompt   string `json:"prompt"`
	Model    string `json:"model,omitempty"`

	ReferenceMode      string   `json:"reference_mode,omitempty"`
	ImageURL           string   `json:"image_url,omitempty"`
	FirstFrameURL      string   `json:"first_frame_url,omitempty"`
	LastFrameURL       string   `json:"last_frame_url,omitempty"`
	ReferenceImageURLs []string `json:"reference_image_urls,omitempty"`

	Duration     int    `json:"duration,omitempty"`
	FPS          int    `json:"fps,omitempty"`
	AspectRatio  string `json:"aspect_ratio,omitempty"`
	Style        string `json:"style,omitempty"`
	MotionLevel  int    `json:"motion_level,omitempty"`
	CameraMotion string `json:"camera_motion,omitempty"`
	Seed         int    `json:"seed,omitempty"`

	Status   string `json:"status"`
	TaskID   string `json:"task_id,omitempty"` // 服务商侧任务句柄
	VideoURL string `json:"video_url,omitempty"`
	ErrorMsg string `json:"error_msg,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
