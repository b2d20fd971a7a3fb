// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// 存储模式
const (
	StorageModeLocal  = "local"
	StorageModeRemote = "remote"
)

// 当前配置的单例实例
var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AppConfig 包含应用程序的所有配置
type AppConfig struct {
	// 基础配置
	Port      string `json:"port"`
	DataDir   string `json:"data_dir"`
	StaticDir string `json:"static_dir"`
	LogDir    string `json:"log_dir"`
	DebugMode bool   `json:"debug_mode"`

	// 存储后端配置，local 使用本地文件存储，remote 转发到远端服务
	StorageMode   string `json:"storage_mode"`
	RemoteBaseURL string `json:"remote_base_url,omitempty"`
}

// Config 存储应用配置
type Config struct {
	Port          string
	DataDir       string
	StaticDir     string
	LogDir        string
	DebugMode     bool
	StorageMode   string
	RemoteBaseURL string
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	// 创建配置
	config := &Config{
		Port:          getEnv("PORT", "8080"),
		DataDir:       getEnvPath("DATA_DIR", "data"),
		StaticDir:     getEnvPath("STATIC_DIR", "static"),
		LogDir:        getEnvPath("LOG_DIR", "logs"),
		DebugMode:     getEnvBool("DEBUG_MODE", true),
		StorageMode:   getEnv("STORAGE_MODE", StorageModeLocal),
		RemoteBaseURL: getEnv("REMOTE_BASE_URL", ""),
	}

	// 远程模式必须提供远端地址
	if config.StorageMode == StorageModeRemote && config.RemoteBaseURL == "" {
		return nil, fmt.Errorf("远程存储模式需要设置 REMOTE_BASE_URL")
	}
	if config.StorageMode != StorageModeLocal && config.StorageMode != StorageModeRemote {
		log.Printf("警告: 未知的存储模式 %s，回退到 local", config.StorageMode)
		config.StorageMode = StorageModeLocal
	}

	return config, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	// 确保目录存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err = os.MkdirAll(path, 0755)
		if err != nil {
			fmt.Printf("警告: 创建目录失败 %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// InitConfig 初始化配置管理器
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	// 加载基础配置
	baseConfig, err := Load()
	if err != nil {
		return err
	}

	// 创建初始配置
	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = &AppConfig{
		Port:          baseConfig.Port,
		DataDir:       baseConfig.DataDir,
		StaticDir:     baseConfig.StaticDir,
		LogDir:        baseConfig.LogDir,
		DebugMode:     baseConfig.DebugMode,
		StorageMode:   baseConfig.StorageMode,
		RemoteBaseURL: baseConfig.RemoteBaseURL,
	}

	// 尝试从文件加载已保存的配置
	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		data, err := os.ReadFile(configFile)
		if err == nil {
			var savedConfig AppConfig
			if json.Unmarshal(data, &savedConfig) == nil {
				// 合并配置，保留文件中的存储设置，但使用最新的基础配置
				savedConfig.Port = baseConfig.Port
				savedConfig.DataDir = baseConfig.DataDir
				savedConfig.StaticDir = baseConfig.StaticDir
				savedConfig.LogDir = baseConfig.LogDir
				savedConfig.DebugMode = baseConfig.DebugMode

				if savedConfig.StorageMode == "" {
					savedConfig.StorageMode = baseConfig.StorageMode
				}
				if savedConfig.RemoteBaseURL == "" {
					savedConfig.RemoteBaseURL = baseConfig.RemoteBaseURL
				}

				currentConfig = &savedConfig
			}
		}
	}

	// 保存初始配置到文件
	return SaveConfig()
}

// GetCurrentConfig 返回当前配置的副本
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		// 紧急情况，返回一个基本配置
		baseConfig, _ := Load()
		return &AppConfig{
			Port:          baseConfig.Port,
			DataDir:       baseConfig.DataDir,
			StaticDir:     baseConfig.StaticDir,
			LogDir:        baseConfig.LogDir,
			DebugMode:     baseConfig.DebugMode,
			StorageMode:   baseConfig.StorageMode,
			RemoteBaseURL: baseConfig.RemoteBaseURL,
		}
	}

	// 返回配置的副本
	configCopy := *currentConfig
	return &configCopy
}

// UpdateStorageConfig 更新存储后端配置
func UpdateStorageConfig(mode, remoteBaseURL string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("配置系统未初始化")
	}
	if mode != StorageModeLocal && mode != StorageModeRemote {
		return fmt.Errorf("无效的存储模式: %s", mode)
	}
	if mode == StorageModeRemote && remoteBaseURL == "" {
		return fmt.Errorf("远程存储模式需要设置远端地址")
	}

	currentConfig.StorageMode = mode
	currentConfig.RemoteBaseURL = remoteBaseURL

	return SaveConfig()
}

// SaveConfig 保存当前配置到文件
func SaveConfig() error {
	if currentConfig == nil {
		return fmt.Errorf("没有配置可保存")
	}

	// 确保目录存在
	dir := filepath.Dir(configFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}

	// 序列化并保存
	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	return os.WriteFile(configFile, data, 0644)
}
