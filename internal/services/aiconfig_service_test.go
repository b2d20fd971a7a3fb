// internal/services/aiconfig_service_test.go
package services

import (
	"testing"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAIConfigService(t *testing.T) *AIConfigService {
	t.Helper()
	return NewAIConfigService(storage.NewMemoryStore())
}

func addConfig(t *testing.T, s *AIConfigService, cfg models.AIServiceConfig) *models.AIServiceConfig {
	t.Helper()
	created, err := s.Create(&cfg)
	require.NoError(t, err)
	return created
}

func TestAIConfigCreateAndGet(t *testing.T) {
	s := newTestAIConfigService(t)

	created := addConfig(t, s, models.AIServiceConfig{
		ServiceType: models.ServiceTypeText,
		Provider:    "openai",
		BaseURL:     "https://api.example.com/v1",
	})
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "openai", got.Provider)
}

func TestAIConfigCreateValidation(t *testing.T) {
	s := newTestAIConfigService(t)

	_, err := s.Create(&models.AIServiceConfig{Provider: "openai"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = s.Create(&models.AIServiceConfig{ServiceType: models.ServiceTypeText})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestAIConfigGetMissing(t *testing.T) {
	s := newTestAIConfigService(t)

	_, err := s.Get("nope")
	assert.True(t, apperrors.IsNotFoundError(err))

	err = s.Delete("nope")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestAIConfigUpdate(t *testing.T) {
	s := newTestAIConfigService(t)
	created := addConfig(t, s, models.AIServiceConfig{
		ServiceType: models.ServiceTypeVideo,
		Provider:    "chatfire",
	})

	updated, err := s.Update(created.ID, func(c *models.AIServiceConfig) {
		c.Priority = 9
		c.IsActive = true
	})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Priority)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestGetActiveConfigPicksHighestPriority(t *testing.T) {
	s := newTestAIConfigService(t)
	addConfig(t, s, models.AIServiceConfig{
		ServiceType: models.ServiceTypeVideo, Provider: "chatfire", Priority: 1, IsActive: true,
	})
	high := addConfig(t, s, models.AIServiceConfig{
		ServiceType: models.ServiceTypeVideo, Provider: "runway", Priority: 5, IsActive: true,
	})
	// 更高优先级但未启用
	addConfig(t, s, models.AIServiceConfig{
		ServiceType: models.ServiceTypeVideo, Provider: "pika", Priority: 10, IsActive: false,
	})

	got, err := s.GetActiveConfig(models.ServiceTypeVideo, "")
	require.NoError(t, err)
	assert.Equal(t, high.ID, got.ID)
}

func TestGetActiveConfigPrefersModelMatch(t *testing.T) {
	s := newTestAIConfigService(t)
	addConfig(t, s, models.AIServiceConfig{
		ServiceType: models.ServiceTypeVideo, Provider: "chatfire", Priority: 5, IsActive: true,
		Models: []string{"doubao-seedance"},
	})
	match := addConfig(t, s, models.AIServiceConfig{
		ServiceType: models.ServiceTypeVideo, Provider: "openai", Priority: 1, IsActive: true,
		Models: []string{"sora-2"},
	})

	got, err := s.GetActiveConfig(models.ServiceTypeVideo, "sora-2")
	require.NoError(t, err)
	assert.Equal(t, match.ID, got.ID)

	// 没有配置包含该模型时回退最高优先级
	got, err = s.GetActiveConfig(models.ServiceTypeVideo, "unknown-model")
	require.NoError(t, err)
	assert.Equal(t, "chatfire", got.Provider)
}

func TestGetActiveConfigMissing(t *testing.T) {
	s := newTestAIConfigService(t)
	addConfig(t, s, models.AIServiceConfig{
		ServiceType: models.ServiceTypeText, Provider: "openai", IsActive: true,
	})

	_, err := s.GetActiveConfig(models.ServiceTypeVideo, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigMissingError(err))
	assert.Contains(t, err.Error(), "未配置 video 类型的 AI 服务")
}
