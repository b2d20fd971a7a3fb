// internal/services/aiconfig_service.go
package services

import (
	"fmt"
	"sort"
	"time"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
)

// AIConfigService 管理 AI 服务配置
type AIConfigService struct {
	configs *storage.Collection[models.AIServiceConfig]
}

// NewAIConfigService 创建 AI 配置服务
func NewAIConfigService(store storage.Store) *AIConfigService {
	return &AIConfigService{
		configs: storage.NewCollection(store, storage.KeyAIConfigs,
			func(c *models.AIServiceConfig) string { return c.ID }),
	}
}

// List 返回全部配置
func (s *AIConfigService) List() ([]models.AIServiceConfig, error) {
	return s.configs.GetAll()
}

// Get 按 ID 获取配置
func (s *AIConfigService) Get(id string) (*models.AIServiceConfig, error) {
	config, found, err := s.configs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("AI配置不存在", nil)
	}
	return config, nil
}

// Create 创建新配置
func (s *AIConfigService) Create(config *models.AIServiceConfig) (*models.AIServiceConfig, error) {
	if config.ServiceType == "" || config.Provider == "" {
		return nil, apperrors.NewValidationError("service_type 和 provider 不能为空", nil)
	}
	if config.ID == "" {
		config.ID = storage.GenerateID("aiconfig")
	}
	config.CreatedAt = time.Now()
	config.UpdatedAt = time.Now()
	return s.configs.Add(*config)
}

// Update 更新配置
func (s *AIConfigService) Update(id string, apply func(*models.AIServiceConfig)) (*models.AIServiceConfig, error) {
	config, found, err := s.configs.Update(id, func(c *models.AIServiceConfig) {
		apply(c)
		c.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("AI配置不存在", nil)
	}
	return config, nil
}

// Delete 删除配置
func (s *AIConfigService) Delete(id string) error {
	found, err := s.configs.Delete(id)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFoundError("AI配置不存在", nil)
	}
	return nil
}

// GetActiveConfig 按服务类型选出优先级最高的启用配置。
// 指定 model 时优先返回包含该模型的配置，没有匹配则回退到最高优先级
func (s *AIConfigService) GetActiveConfig(serviceType, model string) (*models.AIServiceConfig, error) {
	candidates, err := s.configs.Filter(func(c *models.AIServiceConfig) bool {
		return c.ServiceType == serviceType && c.IsActive
	})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewConfigMissingError(
			fmt.Sprintf("未配置 %s 类型的 AI 服务，请先添加 AI 配置", serviceType))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	if model != "" {
		for i := range candidates {
			if candidates[i].HasModel(model) {
				return &candidates[i], nil
			}
		}
	}
	return &candidates[0], nil
}
