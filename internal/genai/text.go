// internal/genai/text.go
package genai

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/Corphon/DramaForgeMCP/internal/models"
)

// TextGenerateOptions 文本生成可选参数
type TextGenerateOptions struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// TextClient 调用 OpenAI 兼容的对话补全接口生成文本
type TextClient struct {
	baseURL    string
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewTextClient 根据配置创建文本生成客户端
func NewTextClient(config *models.AIServiceConfig) *TextClient {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = "/chat/completions"
	}
	return &TextClient{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		model:      config.DefaultModel(),
		endpoint:   endpoint,
		httpClient: defaultHTTPClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate 生成文本，返回模型输出内容
func (c *TextClient) Generate(ctx context.Context, prompt string, opts TextGenerateOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4000
	}

	var messages []chatMessage
	if opts.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}

	respBody, err := postJSON(ctx, c.httpClient, joinURL(c.baseURL, c.endpoint), c.apiKey, body)
	if err != nil {
		return "", err
	}

	return gjson.GetBytes(respBody, "choices.0.message.content").String(), nil
}
