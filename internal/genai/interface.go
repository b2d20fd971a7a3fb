// internal/genai/interface.go

// Package genai 封装各视频/图片/文本生成服务商的 HTTP 适配器。
// 所有适配器把厂商差异折叠进统一的请求/响应结构，
// 上层引擎只依赖 VideoClient 接口
package genai

import (
	"context"
	"log"

	"github.com/Corphon/DramaForgeMCP/internal/models"
)

// VideoGenerateRequest 视频生成请求，字段为空表示不传
type VideoGenerateRequest struct {
	Prompt             string   `json:"prompt"`
	Model              string   `json:"model,omitempty"`
	ImageURL           string   `json:"image_url,omitempty"`
	FirstFrameURL      string   `json:"first_frame_url,omitempty"`
	LastFrameURL       string   `json:"last_frame_url,omitempty"`
	ReferenceImageURLs []string `json:"reference_image_urls,omitempty"`
	Duration           int      `json:"duration,omitempty"`
	FPS                int      `json:"fps,omitempty"`
	AspectRatio        string   `json:"aspect_ratio,omitempty"`
	Style              string   `json:"style,omitempty"`
	MotionLevel        int      `json:"motion_level,omitempty"`
	CameraMotion       string   `json:"camera_motion,omitempty"`
	Seed               int      `json:"seed,omitempty"`
	ReferenceMode      string   `json:"reference_mode,omitempty"`
}

// VideoGenerateResponse 视频生成响应。
// VideoURL 与 TaskID 至少有一个非空：直接返回结果或返回异步任务句柄
type VideoGenerateResponse struct {
	VideoURL string `json:"video_url"`
	TaskID   string `json:"task_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// VideoClient 视频生成客户端接口
type VideoClient interface {
	// Generate 提交生成请求，可能同步返回结果或返回任务句柄
	Generate(ctx context.Context, req *VideoGenerateRequest) (*VideoGenerateResponse, error)
	// PollTaskStatus 查询异步任务状态
	PollTaskStatus(ctx context.Context, taskID string) (*VideoGenerateResponse, error)
}

// NewVideoClient 根据配置创建对应服务商的视频客户端。
// 未识别的 provider 回退到 Chatfire 格式（OpenAI 兼容中转站最常见）
func NewVideoClient(config *models.AIServiceConfig, model string) VideoClient {
	if model == "" {
		model = config.DefaultModel()
	}

	switch config.Provider {
	case "chatfire":
		return NewChatfireClient(config.BaseURL, config.APIKey, model, config.Endpoint, config.QueryEndpoint)
	case "doubao", "volcengine", "volces":
		return NewVolcesClient(config.BaseURL, config.APIKey, model, config.Endpoint, config.QueryEndpoint)
	case "openai":
		return NewSoraClient(config.BaseURL, config.APIKey, model, config.Endpoint, config.QueryEndpoint)
	case "runway":
		return NewRunwayClient(config.BaseURL, config.APIKey, model)
	case "pika":
		return NewPikaClient(config.BaseURL, config.APIKey, model)
	case "minimax":
		return NewMinimaxClient(config.BaseURL, config.APIKey, model)
	default:
		log.Printf("[GenAI] 未知的视频服务商: %s，使用 Chatfire 格式", config.Provider)
		return NewChatfireClient(config.BaseURL, config.APIKey, model, config.Endpoint, config.QueryEndpoint)
	}
}
