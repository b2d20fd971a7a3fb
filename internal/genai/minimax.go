// internal/genai/minimax.go
package genai

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"
)

// MinimaxClient 对接 Minimax 的视频生成接口
type MinimaxClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewMinimaxClient 创建 Minimax 视频客户端
func NewMinimaxClient(baseURL, apiKey, model string) *MinimaxClient {
	return &MinimaxClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: defaultHTTPClient,
	}
}

// Generate 提交视频生成请求
func (c *MinimaxClient) Generate(ctx context.Context, req *VideoGenerateRequest) (*VideoGenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	body := map[string]interface{}{
		"model":  model,
		"prompt": req.Prompt,
	}
	if req.ImageURL != "" {
		body["first_frame_image"] = req.ImageURL
	}

	respBody, err := postJSON(ctx, c.httpClient, joinURL(c.baseURL, "/video_generation"), c.apiKey, body)
	if err != nil {
		return nil, err
	}

	data := gjson.ParseBytes(respBody)
	return &VideoGenerateResponse{
		VideoURL: data.Get("video_url").String(),
		TaskID:   data.Get("task_id").String(),
		Status:   data.Get("status").String(),
	}, nil
}

// PollTaskStatus 查询任务状态。
// 完成后返回 file_id，需要拼成文件下载地址
func (c *MinimaxClient) PollTaskStatus(ctx context.Context, taskID string) (*VideoGenerateResponse, error) {
	url := joinURL(c.baseURL, "/query/video_generation") + "?task_id=" + taskID
	respBody, err := getJSON(ctx, c.httpClient, url, c.apiKey)
	if err != nil {
		return nil, err
	}

	data := gjson.ParseBytes(respBody)
	videoURL := ""
	if fileID := data.Get("file_id").String(); fileID != "" {
		videoURL = joinURL(c.baseURL, "/files/retrieve") + "?file_id=" + fileID
	}

	return &VideoGenerateResponse{
		VideoURL: videoURL,
		TaskID:   taskID,
		Status:   data.Get("status").String(),
	}, nil
}
