// internal/services/task_service.go
package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
)

// TaskUpdate 推送给订阅者的任务进度更新
type TaskUpdate struct {
	TaskID   string `json:"task_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// TaskService 管理后台任务的持久化状态和进度订阅。
// 任务记录落盘，订阅通道只存在于内存中
type TaskService struct {
	tasks *storage.Collection[models.Task]

	mu          sync.RWMutex
	subscribers map[string]map[chan TaskUpdate]bool // taskID -> channels
}

// NewTaskService 创建任务服务
func NewTaskService(store storage.Store) *TaskService {
	return &TaskService{
		tasks: storage.NewCollection(store, storage.KeyTasks,
			func(t *models.Task) string { return t.ID }),
		subscribers: make(map[string]map[chan TaskUpdate]bool),
	}
}

// Create 创建任务记录并返回任务句柄
func (s *TaskService) Create(taskType, message string) (*models.Task, error) {
	task := models.Task{
		ID:        storage.GenerateID("task"),
		Type:      taskType,
		Status:    models.TaskStatusPending,
		Progress:  0,
		Message:   message,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return s.tasks.Add(task)
}

// Get 获取任务
func (s *TaskService) Get(taskID string) (*models.Task, error) {
	task, found, err := s.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError("任务不存在", nil)
	}
	return task, nil
}

// UpdateProgress 更新任务进度，终态任务不再变更
func (s *TaskService) UpdateProgress(taskID string, progress int, message string) {
	s.mutate(taskID, func(t *models.Task) {
		t.Status = models.TaskStatusProcessing
		if progress > t.Progress {
			t.Progress = progress
		}
		if message != "" {
			t.Message = message
		}
	})
}

// Complete 标记任务完成，result 序列化为 JSON 存入任务记录
func (s *TaskService) Complete(taskID, message string, result interface{}) {
	var resultStr string
	if result != nil {
		if data, err := json.Marshal(result); err == nil {
			resultStr = string(data)
		}
	}

	s.mutate(taskID, func(t *models.Task) {
		t.Status = models.TaskStatusCompleted
		t.Progress = 100
		if message != "" {
			t.Message = message
		}
		if resultStr != "" {
			t.Result = resultStr
		}
		completedAt := time.Now()
		t.CompletedAt = &completedAt
	})
}

// Fail 标记任务失败
func (s *TaskService) Fail(taskID, errorMsg string) {
	s.mutate(taskID, func(t *models.Task) {
		t.Status = models.TaskStatusFailed
		t.Error = errorMsg
	})
}

// mutate 应用任务变更并通知订阅者。
// 终态单调性：completed/failed 之后的变更被丢弃
func (s *TaskService) mutate(taskID string, apply func(*models.Task)) {
	updated, found, err := s.tasks.Update(taskID, func(t *models.Task) {
		if t.IsTerminal() {
			return
		}
		apply(t)
		t.UpdatedAt = time.Now()
	})
	if err != nil {
		log.Printf("[Task] 更新任务 %s 失败: %v", taskID, err)
		return
	}
	if !found {
		log.Printf("[Task] 任务不存在: %s", taskID)
		return
	}

	s.notify(TaskUpdate{
		TaskID:   updated.ID,
		Status:   updated.Status,
		Progress: updated.Progress,
		Message:  updated.Message,
		Error:    updated.Error,
	})
}

// Subscribe 订阅任务进度更新
func (s *TaskService) Subscribe(taskID string) chan TaskUpdate {
	ch := make(chan TaskUpdate, 10)

	s.mu.Lock()
	if s.subscribers[taskID] == nil {
		s.subscribers[taskID] = make(map[chan TaskUpdate]bool)
	}
	s.subscribers[taskID][ch] = true
	s.mu.Unlock()

	return ch
}

// Unsubscribe 取消订阅并关闭通道
func (s *TaskService) Unsubscribe(taskID string, ch chan TaskUpdate) {
	s.mu.Lock()
	if subs, ok := s.subscribers[taskID]; ok {
		if subs[ch] {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(s.subscribers, taskID)
		}
	}
	s.mu.Unlock()
}

func (s *TaskService) notify(update TaskUpdate) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers[update.TaskID] {
		// 非阻塞发送，通道已满则跳过
		select {
		case ch <- update:
		default:
		}
	}
}
