// internal/genai/text_test.go
package genai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestTextGenerateDefaults(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Write([]byte(`{"choices": [{"message": {"content": "生成的剧本大纲"}}]}`))
	}))
	defer server.Close()

	client := NewTextClient(&models.AIServiceConfig{
		BaseURL: server.URL,
		APIKey:  "k",
		Models:  []string{"gpt-4o"},
	})

	out, err := client.Generate(context.Background(), "写一个大纲", TextGenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "生成的剧本大纲", out)

	body := gjson.Parse(captured)
	assert.Equal(t, "gpt-4o", body.Get("model").String())
	assert.Equal(t, 0.7, body.Get("temperature").Float())
	assert.Equal(t, int64(4000), body.Get("max_tokens").Int())
	assert.Equal(t, "user", body.Get("messages.0.role").String())
	assert.Equal(t, "写一个大纲", body.Get("messages.0.content").String())
}

func TestTextGenerateSystemPrompt(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer server.Close()

	client := NewTextClient(&models.AIServiceConfig{BaseURL: server.URL, APIKey: "k"})
	_, err := client.Generate(context.Background(), "继续", TextGenerateOptions{
		Model:        "deepseek-chat",
		SystemPrompt: "你是编剧助手",
		Temperature:  0.3,
		MaxTokens:    800,
	})
	require.NoError(t, err)

	body := gjson.Parse(captured)
	assert.Equal(t, "deepseek-chat", body.Get("model").String())
	assert.Equal(t, 0.3, body.Get("temperature").Float())
	assert.Equal(t, int64(800), body.Get("max_tokens").Int())
	assert.Equal(t, "system", body.Get("messages.0.role").String())
	assert.Equal(t, "你是编剧助手", body.Get("messages.0.content").String())
	assert.Equal(t, "user", body.Get("messages.1.role").String())
}
