// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Corphon/DramaForgeMCP/internal/api"
	"github.com/Corphon/DramaForgeMCP/internal/backend"
	"github.com/Corphon/DramaForgeMCP/internal/config"
	"github.com/Corphon/DramaForgeMCP/internal/di"
	"github.com/Corphon/DramaForgeMCP/internal/services"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
	"github.com/alitto/pond/v2"
)

// 后台生成任务的工作池大小
const workerPoolSize = 8

// serverController 抽象 HTTP 服务器，便于测试替换
type serverController interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App 应用程序实例
type App struct {
	config   *config.AppConfig
	router   http.Handler
	server   serverController
	pool     pond.Pool
	stopChan chan os.Signal
}

// 全局应用实例（单例模式）
var instance *App

// GetApp 获取应用实例
func GetApp() *App {
	if instance == nil {
		instance = &App{
			stopChan: make(chan os.Signal, 1),
		}
	}
	return instance
}

// GetConfig 返回应用配置
func (a *App) GetConfig() *config.AppConfig {
	return a.config
}

// GetDIContainer 获取依赖注入容器
func GetDIContainer() *di.Container {
	return di.GetContainer()
}

// IsDebugMode 检查是否处于调试模式
func IsDebugMode() bool {
	if instance == nil || instance.config == nil {
		return false
	}
	return instance.config.DebugMode
}

// Initialize 初始化应用：配置、日志、服务、路由
func Initialize() error {
	app := GetApp()

	// 加载配置
	baseConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := config.InitConfig(baseConfig.DataDir); err != nil {
		return fmt.Errorf("初始化配置失败: %w", err)
	}
	app.config = config.GetCurrentConfig()

	// 初始化日志系统
	if err := initLogger(app.config.LogDir); err != nil {
		return fmt.Errorf("初始化日志系统失败: %w", err)
	}

	// 初始化服务
	if err := InitServices(); err != nil {
		return fmt.Errorf("初始化服务失败: %w", err)
	}

	// 配置路由
	router, err := api.SetupRouter()
	if err != nil {
		return fmt.Errorf("配置路由失败: %w", err)
	}
	app.router = router

	return nil
}

// InitServices 按依赖顺序创建服务并注册到容器
func InitServices() error {
	app := GetApp()
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()

	// 存储层
	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("初始化存储失败: %w", err)
	}
	container.Register("store", store)

	// 基础服务
	configService := services.NewAIConfigService(store)
	container.Register("aiconfig", configService)

	dramaService := services.NewDramaService(store)
	container.Register("drama", dramaService)

	taskService := services.NewTaskService(store)
	container.Register("task", taskService)

	backupService := services.NewBackupService(store)
	container.Register("backup", backupService)

	// 后台生成任务共享一个工作池
	pool := pond.NewPool(workerPoolSize)
	app.pool = pool
	container.Register("pool", pool)

	imageService := services.NewImageGenerationService(store, dramaService, configService, pool)
	container.Register("image", imageService)

	videoService := services.NewVideoGenerationService(store, dramaService, configService, pool)
	container.Register("video", videoService)

	generationService := services.NewGenerationService(dramaService, configService, taskService, pool)
	container.Register("generation", generationService)

	// 按存储模式选择后端
	be, err := backend.New(cfg, &backend.LocalDeps{
		Dramas:     dramaService,
		Images:     imageService,
		Videos:     videoService,
		Generation: generationService,
		Tasks:      taskService,
	})
	if err != nil {
		return fmt.Errorf("初始化后端失败: %w", err)
	}
	container.Register("backend", be)

	log.Printf("[App] 服务初始化完成，存储模式: %s", cfg.StorageMode)
	return nil
}

// initLogger 初始化日志输出，同时写入文件和标准输出
func initLogger(logDir string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	logFile := filepath.Join(logDir, fmt.Sprintf("app_%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, file))
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	return nil
}

// Run 启动 HTTP 服务并等待退出信号
func Run() error {
	app := GetApp()

	if app.server == nil {
		app.server = &http.Server{
			Addr:         ":" + app.config.Port,
			Handler:      app.router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
		}
	}

	go func() {
		log.Printf("[App] 服务启动，监听端口 %s", app.config.Port)
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[App] 服务异常退出: %v", err)
			app.stopChan <- syscall.SIGTERM
		}
	}()

	signal.Notify(app.stopChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-app.stopChan
	log.Printf("[App] 收到信号 %v，开始关闭", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}

	app.cleanup()
	log.Println("[App] 服务已关闭")
	return nil
}

// cleanup 释放资源，等待在途后台任务结束
func (a *App) cleanup() {
	if a.pool != nil {
		a.pool.StopAndWait()
	}
}
