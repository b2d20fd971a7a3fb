// internal/models/drama.go
package models

import "time"

// Drama 状态
const (
	DramaStatusDraft      = "draft"
	DramaStatusInProgress = "in_progress"
	DramaStatusCompleted  = "completed"
)

// Scene 状态
const (
	SceneStatusDraft     = "draft"
	SceneStatusPending   = "pending"
	SceneStatusGenerated = "generated"
	SceneStatusFailed    = "failed"
)

// Drama 表示一部短剧，是内容图的根聚合
// characters/scenes 为剧级权威列表，episodes 中的同名列表是副本
type Drama struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Genre       string   `json:"genre,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Status      string   `json:"status"`

	// 统计字段在读取时重新计算，不作为权威数据
	TotalEpisodes int `json:"total_episodes"`
	TotalDuration int `json:"total_duration"`
	TotalScenes   int `json:"total_scenes"`

	Characters []Character `json:"characters"`
	Episodes   []Episode   `json:"episodes"`
	Scenes     []Scene     `json:"scenes"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Episode 表示剧集
// scenes/characters 是剧级列表的副本，任何剧级变更后必须整体覆盖
type Episode struct {
	ID             string `json:"id"`
	DramaID        string `json:"drama_id"`
	EpisodeNumber  int    `json:"episode_number"`
	Title          string `json:"title,omitempty"`
	Content        string `json:"content,omitempty"`
	Description    string `json:"description,omitempty"`
	ScriptContent  string `json:"script_content,omitempty"`
	Duration       int    `json:"duration,omitempty"` // 分钟
	Status         string `json:"status"`
	TimelineStatus string `json:"timeline_status,omitempty"`

	StoryboardCount int          `json:"storyboard_count,omitempty"`
	Storyboards     []Storyboard `json:"storyboards"`
	Scenes          []Scene      `json:"scenes"`
	Characters      []Character  `json:"characters"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Storyboard 表示分镜
// SceneID/Characters 是指向剧级 scenes/characters 的弱引用，
// 目标被删除后引用悬空，查找时按"未找到"处理
type Storyboard struct {
	ID               string `json:"id"`
	EpisodeID        string `json:"episode_id"`
	StoryboardNumber int    `json:"storyboard_number"`
	Title            string `json:"title,omitempty"`
	Description      string `json:"description,omitempty"`

	ShotType   string `json:"shot_type,omitempty"`
	Angle      string `json:"angle,omitempty"`
	Time       string `json:"time,omitempty"`
	Location   string `json:"location,omitempty"`
	SceneID    string `json:"scene_id,omitempty"`
	Movement   string `json:"movement,omitempty"`
	Action     string `json:"action,omitempty"`
	Dialogue   string `json:"dialogue,omitempty"`
	Result     string `json:"result,omitempty"`
	Atmosphere string `json:"atmosphere,omitempty"`
	Emotion    string `json:"emotion,omitempty"`
	Duration   int    `json:"duration,omitempty"` // 秒
	BGMPrompt  string `json:"bgm_prompt,omitempty"`
	SoundFX    string `json:"sound_effect,omitempty"`

	Characters []int `json:"characters,omitempty"`
	IsPrimary  bool  `json:"is_primary"`

	ImagePrompt   string `json:"image_prompt,omitempty"`
	VideoPrompt   string `json:"video_prompt,omitempty"`
	ComposedImage string `json:"composed_image,omitempty"`
	VideoURL      string `json:"video_url,omitempty"`
	Status        string `json:"status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scene 表示场景背景
type Scene struct {
	ID          string `json:"id"`
	DramaID     string `json:"drama_id"`
	EpisodeID   string `json:"episode_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Location    string `json:"location"`
	Time        string `json:"time,omitempty"`
	Atmosphere  string `json:"atmosphere,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	ImageURL    string `json:"image_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Character 表示剧中角色
type Character struct {
	ID              int      `json:"id"`
	DramaID         string   `json:"drama_id"`
	Name            string   `json:"name"`
	Role            string   `json:"role,omitempty"`
	Description     string   `json:"description,omitempty"`
	Personality     string   `json:"personality,omitempty"`
	Appearance      string   `json:"appearance,omitempty"`
	VoiceStyle      string   `json:"voice_style,omitempty"`
	Background      string   `json:"background,omitempty"`
	ReferenceImages []string `json:"reference_images,omitempty"`
	SeedValue       int      `json:"seed_value,omitempty"`
	SortOrder       int      `json:"sort_order,omitempty"`

	ImageURL              string `json:"image_url,omitempty"`
	ImageGenerationStatus string `json:"image_generation_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DramaStats 按状态统计
type DramaStats struct {
	Total    int               `json:"total"`
	ByStatus []DramaStatusStat `json:"by_status"`
}

type DramaStatusStat struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
