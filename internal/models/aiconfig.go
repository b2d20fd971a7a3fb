// internal/models/aiconfig.go
package models

import "time"

// AI 服务类型
const (
	ServiceTypeText  = "text"
	ServiceTypeImage = "image"
	ServiceTypeVideo = "video"
)

// AIServiceConfig 表示一条 AI 服务配置
// 引擎按 service_type 选择 priority 最高的启用配置
type AIServiceConfig struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	ServiceType string `json:"service_type"`
	Provider    string `json:"provider"`
	BaseURL     string `json:"base_url"`
	APIKey      string `json:"api_key"`

	// 支持的模型，第一个为默认模型
	Models []string `json:"models,omitempty"`

	// 可选的自定义端点；轮询端点支持 {taskId} 占位符
	Endpoint      string `json:"endpoint,omitempty"`
	QueryEndpoint string `json:"query_endpoint,omitempty"`

	Priority int  `json:"priority"`
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultModel 返回配置的默认模型
func (c *AIServiceConfig) DefaultModel() string {
	if len(c.Models) > 0 {
		return c.Models[0]
	}
	return ""
}

// HasModel 判断配置是否包含指定模型
func (c *AIServiceConfig) HasModel(model string) bool {
	for _, m := range c.Models {
		if m == model {
			return true
		}
	}
	return false
}
