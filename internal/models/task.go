// internal/models/task.go
package models

import "time"

// 任务状态，进入 completed/failed 后不再变更
const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)

// 任务类型
const (
	TaskTypeGenerateCharacters   = "generate_characters"
	TaskTypeGenerateStoryboard   = "generate_storyboard"
	TaskTypeBackgroundExtraction = "background_extraction"
	TaskTypeGenerateImage        = "generate_image"
	TaskTypeGenerateVideo        = "generate_video"
)

// Task 表示一次后台生成任务的持久化记录
type Task struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Progress int    `json:"progress"` // 0-100
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Result   string `json:"result,omitempty"` // 序列化后的结果载荷

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal 判断任务是否已终结
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// TaskHandle 是提交任务后立即返回给调用方的句柄
type TaskHandle struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
