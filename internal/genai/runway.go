// internal/genai/runway.go
package genai

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"
)

// RunwayClient 对接 Runway 的视频生成接口
type RunwayClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewRunwayClient 创建 Runway 视频客户端
func NewRunwayClient(baseURL, apiKey, model string) *RunwayClient {
	return &RunwayClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: defaultHTTPClient,
	}
}

// Generate 提交视频生成请求
func (c *RunwayClient) Generate(ctx context.Context, req *VideoGenerateRequest) (*VideoGenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	body := map[string]interface{}{
		"model":       model,
		"text_prompt": req.Prompt,
	}
	if req.ImageURL != "" {
		body["init_image"] = req.ImageURL
	}
	if req.Duration > 0 {
		body["seconds"] = req.Duration
	}
	if req.Seed > 0 {
		body["seed"] = req.Seed
	}

	respBody, err := postJSON(ctx, c.httpClient, joinURL(c.baseURL, "/generations"), c.apiKey, body)
	if err != nil {
		return nil, err
	}
	return parseRunwayResponse(gjson.ParseBytes(respBody), ""), nil
}

// PollTaskStatus 查询任务状态
func (c *RunwayClient) PollTaskStatus(ctx context.Context, taskID string) (*VideoGenerateResponse, error) {
	respBody, err := getJSON(ctx, c.httpClient, joinURL(c.baseURL, "/generations/"+taskID), c.apiKey)
	if err != nil {
		return nil, err
	}
	return parseRunwayResponse(gjson.ParseBytes(respBody), taskID), nil
}

// parseRunwayResponse 成品地址在 output 数组首元素，兼容 video_url
func parseRunwayResponse(data gjson.Result, fallbackTaskID string) *VideoGenerateResponse {
	taskID := data.Get("id").String()
	if taskID == "" {
		taskID = fallbackTaskID
	}
	return &VideoGenerateResponse{
		VideoURL: firstString(data, "output.0", "video_url"),
		TaskID:   taskID,
		Status:   data.Get("status").String(),
	}
}
