// internal/genai/image_test.go
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

func TestImageGenerateDefaults(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		assert.Equal(t, "/images/generations", r.URL.Path)
		w.Write([]byte(`{"data": [{"url": "https://img.example.com/out.png", "revised_prompt": "refined"}]}`))
	}))
	defer server.Close()

	client := NewImageClient(&models.AIServiceConfig{
		BaseURL: server.URL,
		APIKey:  "k",
		Models:  []string{"dall-e-3"},
	})

	result, err := client.Generate(context.Background(), "分镜首帧", ImageGenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/out.png", result.ImageURL)
	assert.Equal(t, "refined", result.RevisedPrompt)

	body := gjson.Parse(captured)
	assert.Equal(t, "dall-e-3", body.Get("model").String())
	assert.Equal(t, "2048x2048", body.Get("size").String())
	assert.Equal(t, "standard", body.Get("quality").String())
	assert.Equal(t, int64(1), body.Get("n").Int())
}

func TestImageGenerateBase64Fallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"b64_json": "aGVsbG8="}]}`))
	}))
	defer server.Close()

	client := NewImageClient(&models.AIServiceConfig{BaseURL: server.URL, APIKey: "k"})
	result, err := client.Generate(context.Background(), "x", ImageGenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", result.ImageURL)
}

func TestImageGenerateEmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewImageClient(&models.AIServiceConfig{BaseURL: server.URL, APIKey: "k"})
	result, err := client.Generate(context.Background(), "x", ImageGenerateOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.ImageURL)
}
