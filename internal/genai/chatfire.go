// internal/genai/chatfire.go
package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ChatfireClient 对接 Chatfire 中转站的视频生成接口。
// 同一个端点背后聚合了多家模型，请求体格式按模型名选择：
// doubao/seedance 用豆包 content 数组格式，sora 用 Sora 格式，
// 其余用默认扁平格式
type ChatfireClient struct {
	baseURL       string
	apiKey        string
	model         string
	endpoint      string
	queryEndpoint string
	httpClient    *http.Client
}

// NewChatfireClient 创建 Chatfire 视频客户端
func NewChatfireClient(baseURL, apiKey, model, endpoint, queryEndpoint string) *ChatfireClient {
	if endpoint == "" {
		endpoint = "/video/generations"
	}
	if queryEndpoint == "" {
		queryEndpoint = "/video/task/{taskId}"
	}
	return &ChatfireClient{
		baseURL:       baseURL,
		apiKey:        apiKey,
		model:         model,
		endpoint:      endpoint,
		queryEndpoint: queryEndpoint,
		httpClient:    defaultHTTPClient,
	}
}

// Generate 提交视频生成请求
func (c *ChatfireClient) Generate(ctx context.Context, req *VideoGenerateRequest) (*VideoGenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	var body interface{}
	switch {
	case strings.Contains(model, "doubao") || strings.Contains(model, "seedance"):
		body = c.buildDoubaoRequest(model, req)
	case strings.Contains(model, "sora"):
		body = c.buildSoraRequest(model, req)
	default:
		body = c.buildDefaultRequest(model, req)
	}

	respBody, err := postJSON(ctx, c.httpClient, joinURL(c.baseURL, c.endpoint), c.apiKey, body)
	if err != nil {
		return nil, err
	}
	return parseChatfireResponse(respBody, ""), nil
}

// PollTaskStatus 查询任务状态
func (c *ChatfireClient) PollTaskStatus(ctx context.Context, taskID string) (*VideoGenerateResponse, error) {
	url := joinURL(c.baseURL, resolveTaskPath(c.queryEndpoint, taskID))
	respBody, err := getJSON(ctx, c.httpClient, url, c.apiKey)
	if err != nil {
		return nil, err
	}
	return parseChatfireResponse(respBody, taskID), nil
}

type chatfireContentItem struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	ImageURL *chatfireImageURL `json:"image_url,omitempty"`
	Role     string            `json:"role,omitempty"`
}

type chatfireImageURL struct {
	URL string `json:"url"`
}

// buildDoubaoRequest 构建豆包/火山格式请求体。
// 时长和画幅作为 prompt 尾部参数传递，参考图按模式附加 role
func (c *ChatfireClient) buildDoubaoRequest(model string, req *VideoGenerateRequest) interface{} {
	promptText := req.Prompt
	if req.AspectRatio != "" {
		promptText += fmt.Sprintf("  --ratio %s", req.AspectRatio)
	}
	if req.Duration > 0 {
		promptText += fmt.Sprintf("  --dur %d", req.Duration)
	}

	content := []chatfireContentItem{{Type: "text", Text: promptText}}

	switch {
	case len(req.ReferenceImageURLs) > 0:
		// 组图参考模式
		for _, refURL := range req.ReferenceImageURLs {
			content = append(content, chatfireContentItem{
				Type:     "image_url",
				ImageURL: &chatfireImageURL{URL: refURL},
				Role:     "reference_image",
			})
		}
	case req.FirstFrameURL != "" && req.LastFrameURL != "":
		// 首尾帧模式
		content = append(content,
			chatfireContentItem{Type: "image_url", ImageURL: &chatfireImageURL{URL: req.FirstFrameURL}, Role: "first_frame"},
			chatfireContentItem{Type: "image_url", ImageURL: &chatfireImageURL{URL: req.LastFrameURL}, Role: "last_frame"})
	case req.ImageURL != "":
		// 单图模式不带 role
		content = append(content, chatfireContentItem{Type: "image_url", ImageURL: &chatfireImageURL{URL: req.ImageURL}})
	case req.FirstFrameURL != "":
		content = append(content, chatfireContentItem{Type: "image_url", ImageURL: &chatfireImageURL{URL: req.FirstFrameURL}, Role: "first_frame"})
	}

	return map[string]interface{}{"model": model, "content": content}
}

func (c *ChatfireClient) buildSoraRequest(model string, req *VideoGenerateRequest) interface{} {
	seconds := "5"
	if req.Duration > 0 {
		seconds = fmt.Sprintf("%d", req.Duration)
	}
	return map[string]interface{}{
		"model":           model,
		"prompt":          req.Prompt,
		"seconds":         seconds,
		"size":            aspectRatioToSize(req.AspectRatio),
		"input_reference": req.ImageURL,
	}
}

func (c *ChatfireClient) buildDefaultRequest(model string, req *VideoGenerateRequest) interface{} {
	duration := req.Duration
	if duration == 0 {
		duration = 5
	}
	size := req.AspectRatio
	if size == "" {
		size = "16:9"
	}
	return map[string]interface{}{
		"model":     model,
		"prompt":    req.Prompt,
		"image_url": req.ImageURL,
		"duration":  duration,
		"size":      size,
	}
}

// parseChatfireResponse 解析 Chatfire 响应。
// 任务 ID 优先级 id > task_id，data.id 存在时覆盖；
// 视频地址优先级 video_url > data.video_url > content.video_url
func parseChatfireResponse(body []byte, fallbackTaskID string) *VideoGenerateResponse {
	data := gjson.ParseBytes(body)

	taskID := firstString(data, "id", "task_id")
	if v := data.Get("data.id"); v.Exists() && v.String() != "" {
		taskID = v.String()
	}
	if taskID == "" {
		taskID = fallbackTaskID
	}

	status := data.Get("status").String()
	if status == "" {
		status = data.Get("data.status").String()
	}

	return &VideoGenerateResponse{
		VideoURL: firstString(data, "video_url", "data.video_url", "content.video_url"),
		TaskID:   taskID,
		Status:   status,
		Duration: firstInt(data, "duration", "data.duration"),
		Width:    firstInt(data, "width", "data.width"),
		Height:   firstInt(data, "height", "data.height"),
	}
}

// aspectRatioToSize 把画幅比例转换为分辨率尺寸
func aspectRatioToSize(aspectRatio string) string {
	switch aspectRatio {
	case "", "16:9":
		return "1280x720"
	case "9:16":
		return "720x1280"
	default:
		return aspectRatio
	}
}
