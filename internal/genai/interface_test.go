// internal/genai/interface_test.go
package genai

import (
	"testing"

	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/stretchr/testify/assert"
)

func videoConfig(provider string) *models.AIServiceConfig {
	return &models.AIServiceConfig{
		ID:          "cfg_1",
		ServiceType: models.ServiceTypeVideo,
		Provider:    provider,
		BaseURL:     "https://api.example.com/v1",
		APIKey:      "k",
		Models:      []string{"default-model"},
	}
}

func TestNewVideoClientProviderMapping(t *testing.T) {
	tests := []struct {
		provider string
		want     interface{}
	}{
		{"chatfire", &ChatfireClient{}},
		{"doubao", &VolcesClient{}},
		{"volcengine", &VolcesClient{}},
		{"volces", &VolcesClient{}},
		{"openai", &SoraClient{}},
		{"runway", &RunwayClient{}},
		{"pika", &PikaClient{}},
		{"minimax", &MinimaxClient{}},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			client := NewVideoClient(videoConfig(tt.provider), "")
			assert.IsType(t, tt.want, client)
		})
	}
}

func TestNewVideoClientUnknownProviderFallsBack(t *testing.T) {
	client := NewVideoClient(videoConfig("some-new-vendor"), "")
	assert.IsType(t, &ChatfireClient{}, client)
}

func TestNewVideoClientModelOverride(t *testing.T) {
	client := NewVideoClient(videoConfig("chatfire"), "custom-model")
	assert.Equal(t, "custom-model", client.(*ChatfireClient).model)

	// 未指定模型时回退配置的默认模型
	client = NewVideoClient(videoConfig("chatfire"), "")
	assert.Equal(t, "default-model", client.(*ChatfireClient).model)
}
