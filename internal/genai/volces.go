// internal/genai/volces.go
package genai

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"
)

// VolcesClient 对接火山引擎方舟的视频生成任务接口
type VolcesClient struct {
	baseURL       string
	apiKey        string
	model         string
	endpoint      string
	queryEndpoint string
	httpClient    *http.Client
}

// NewVolcesClient 创建火山引擎视频客户端
func NewVolcesClient(baseURL, apiKey, model, endpoint, queryEndpoint string) *VolcesClient {
	if endpoint == "" {
		endpoint = "/contents/generations/tasks"
	}
	if queryEndpoint == "" {
		queryEndpoint = "/contents/generations/tasks/{taskId}"
	}
	return &VolcesClient{
		baseURL:       baseURL,
		apiKey:        apiKey,
		model:         model,
		endpoint:      endpoint,
		queryEndpoint: queryEndpoint,
		httpClient:    defaultHTTPClient,
	}
}

// Generate 提交视频生成任务
func (c *VolcesClient) Generate(ctx context.Context, req *VideoGenerateRequest) (*VideoGenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	content := []chatfireContentItem{{Type: "text", Text: req.Prompt}}

	// 参考图放在 content 数组最前面
	if req.ImageURL != "" {
		content = append([]chatfireContentItem{{Type: "image_url", ImageURL: &chatfireImageURL{URL: req.ImageURL}}}, content...)
	} else if req.FirstFrameURL != "" {
		content = append([]chatfireContentItem{{Type: "image_url", ImageURL: &chatfireImageURL{URL: req.FirstFrameURL}}}, content...)
	}

	body := map[string]interface{}{
		"model":   model,
		"content": content,
	}
	if req.Duration > 0 {
		body["duration"] = req.Duration
	}
	if req.AspectRatio != "" {
		body["aspect_ratio"] = req.AspectRatio
	}
	if req.Seed > 0 {
		body["seed"] = req.Seed
	}

	respBody, err := postJSON(ctx, c.httpClient, joinURL(c.baseURL, c.endpoint), c.apiKey, body)
	if err != nil {
		return nil, err
	}

	data := gjson.ParseBytes(respBody)
	return &VideoGenerateResponse{
		VideoURL: firstString(data, "data.video_url", "video_url"),
		TaskID:   firstString(data, "data.task_id", "task_id", "id"),
		Status:   firstString(data, "data.status", "status"),
		Duration: firstInt(data, "data.duration", "duration"),
		Width:    firstInt(data, "data.width", "width"),
		Height:   firstInt(data, "data.height", "height"),
	}, nil
}

// PollTaskStatus 查询任务状态。
// 结果可能在 data 包裹层内，视频地址可能嵌在 output 下
func (c *VolcesClient) PollTaskStatus(ctx context.Context, taskID string) (*VideoGenerateResponse, error) {
	url := joinURL(c.baseURL, resolveTaskPath(c.queryEndpoint, taskID))
	respBody, err := getJSON(ctx, c.httpClient, url, c.apiKey)
	if err != nil {
		return nil, err
	}

	data := gjson.ParseBytes(respBody)
	videoData := data
	if d := data.Get("data"); d.Exists() {
		videoData = d
	}

	return &VideoGenerateResponse{
		VideoURL: firstString(videoData, "video_url", "output.video_url"),
		TaskID:   taskID,
		Status:   firstString(videoData, "status", "task_status"),
		Duration: firstInt(videoData, "duration", "output.duration"),
		Width:    firstInt(videoData, "width", "output.width"),
		Height:   firstInt(videoData, "height", "output.height"),
	}, nil
}
