// internal/genai/pika.go
package genai

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"
)

// PikaClient 对接 Pika 的视频生成接口
type PikaClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewPikaClient 创建 Pika 视频客户端
func NewPikaClient(baseURL, apiKey, model string) *PikaClient {
	return &PikaClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: defaultHTTPClient,
	}
}

// Generate 提交视频生成请求
func (c *PikaClient) Generate(ctx context.Context, req *VideoGenerateRequest) (*VideoGenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	body := map[string]interface{}{
		"model":      model,
		"promptText": req.Prompt,
	}
	if req.ImageURL != "" {
		body["image"] = req.ImageURL
	}
	if req.Style != "" {
		body["style"] = req.Style
	}
	if req.MotionLevel > 0 {
		body["motion"] = req.MotionLevel
	}
	if req.AspectRatio != "" {
		body["aspectRatio"] = req.AspectRatio
	}

	respBody, err := postJSON(ctx, c.httpClient, joinURL(c.baseURL, "/generate"), c.apiKey, body)
	if err != nil {
		return nil, err
	}

	data := gjson.ParseBytes(respBody)
	return &VideoGenerateResponse{
		VideoURL: firstString(data, "video.url", "video_url"),
		TaskID:   firstString(data, "id", "task_id"),
		Status:   data.Get("status").String(),
	}, nil
}

// PollTaskStatus 查询任务状态
func (c *PikaClient) PollTaskStatus(ctx context.Context, taskID string) (*VideoGenerateResponse, error) {
	respBody, err := getJSON(ctx, c.httpClient, joinURL(c.baseURL, "/job/"+taskID), c.apiKey)
	if err != nil {
		return nil, err
	}

	data := gjson.ParseBytes(respBody)
	return &VideoGenerateResponse{
		VideoURL: firstString(data, "video.url", "video_url"),
		TaskID:   taskID,
		Status:   data.Get("status").String(),
	}, nil
}
