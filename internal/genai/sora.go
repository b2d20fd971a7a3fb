// internal/genai/sora.go
package genai

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/tidwall/gjson"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
)

// SoraClient 对接 OpenAI Sora 视频接口，提交使用 multipart/form-data
type SoraClient struct {
	baseURL       string
	apiKey        string
	model         string
	endpoint      string
	queryEndpoint string
	httpClient    *http.Client
}

// NewSoraClient 创建 OpenAI Sora 视频客户端
func NewSoraClient(baseURL, apiKey, model, endpoint, queryEndpoint string) *SoraClient {
	if endpoint == "" {
		endpoint = "/videos"
	}
	if queryEndpoint == "" {
		queryEndpoint = "/videos/{taskId}"
	}
	return &SoraClient{
		baseURL:       baseURL,
		apiKey:        apiKey,
		model:         model,
		endpoint:      endpoint,
		queryEndpoint: queryEndpoint,
		httpClient:    defaultHTTPClient,
	}
}

// Generate 提交视频生成请求
func (c *SoraClient) Generate(ctx context.Context, req *VideoGenerateRequest) (*VideoGenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"model":  model,
		"prompt": req.Prompt,
	}
	if req.ImageURL != "" {
		fields["input_reference"] = req.ImageURL
	}
	if req.Duration > 0 {
		fields["seconds"] = fmt.Sprintf("%d", req.Duration)
	}
	if req.AspectRatio != "" {
		fields["size"] = aspectRatioToSize(req.AspectRatio)
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("构建表单字段失败: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("关闭表单写入器失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(c.baseURL, c.endpoint), &buf)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	respBody, err := doRequest(c.httpClient, httpReq)
	if err != nil {
		return nil, err
	}

	data := gjson.ParseBytes(respBody)
	if msg := data.Get("error.message"); msg.Exists() && msg.String() != "" {
		return nil, apperrors.NewProviderError(http.StatusOK, msg.String())
	}

	return parseSoraResponse(data, ""), nil
}

// PollTaskStatus 查询任务状态
func (c *SoraClient) PollTaskStatus(ctx context.Context, taskID string) (*VideoGenerateResponse, error) {
	url := joinURL(c.baseURL, resolveTaskPath(c.queryEndpoint, taskID))
	respBody, err := getJSON(ctx, c.httpClient, url, c.apiKey)
	if err != nil {
		return nil, err
	}
	return parseSoraResponse(gjson.ParseBytes(respBody), taskID), nil
}

// parseSoraResponse 优先读 video_url，兼容 video.url 嵌套结构
func parseSoraResponse(data gjson.Result, fallbackTaskID string) *VideoGenerateResponse {
	taskID := data.Get("id").String()
	if taskID == "" {
		taskID = fallbackTaskID
	}
	return &VideoGenerateResponse{
		VideoURL: firstString(data, "video_url", "video.url"),
		TaskID:   taskID,
		Status:   data.Get("status").String(),
		Duration: firstInt(data, "duration"),
		Width:    firstInt(data, "width"),
		Height:   firstInt(data, "height"),
	}
}
