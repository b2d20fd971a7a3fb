// internal/genai/image.go
package genai

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/Corphon/DramaForgeMCP/internal/models"
)

// ImageGenerateOptions 图片生成可选参数
type ImageGenerateOptions struct {
	Model   string
	Size    string
	Quality string
	N       int
}

// ImageGenerateResult 图片生成结果
type ImageGenerateResult struct {
	ImageURL      string `json:"image_url"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// ImageClient 调用 OpenAI 兼容的图片生成接口
type ImageClient struct {
	baseURL    string
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewImageClient 根据配置创建图片生成客户端
func NewImageClient(config *models.AIServiceConfig) *ImageClient {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = "/images/generations"
	}
	return &ImageClient{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		model:      config.DefaultModel(),
		endpoint:   endpoint,
		httpClient: defaultHTTPClient,
	}
}

// Generate 生成图片，返回图片地址（URL 或 base64 数据）
func (c *ImageClient) Generate(ctx context.Context, prompt string, opts ImageGenerateOptions) (*ImageGenerateResult, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	size := opts.Size
	if size == "" {
		size = "2048x2048"
	}
	quality := opts.Quality
	if quality == "" {
		quality = "standard"
	}
	n := opts.N
	if n == 0 {
		n = 1
	}

	body := map[string]interface{}{
		"model":   model,
		"prompt":  prompt,
		"size":    size,
		"quality": quality,
		"n":       n,
	}

	respBody, err := postJSON(ctx, c.httpClient, joinURL(c.baseURL, c.endpoint), c.apiKey, body)
	if err != nil {
		return nil, err
	}

	data := gjson.ParseBytes(respBody)
	imageData := data.Get("data.0")
	return &ImageGenerateResult{
		ImageURL:      firstString(imageData, "url", "b64_json"),
		RevisedPrompt: imageData.Get("revised_prompt").String(),
	}, nil
}
