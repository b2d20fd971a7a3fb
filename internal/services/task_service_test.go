// internal/services/task_service_test.go
package services

import (
	"testing"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTaskService(t *testing.T) *TaskService {
	t.Helper()
	return NewTaskService(storage.NewMemoryStore())
}

func TestTaskCreateAndGet(t *testing.T) {
	s := newTestTaskService(t)

	task, err := s.Create(models.TaskTypeGenerateVideo, "开始生成视频")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, 0, task.Progress)

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "开始生成视频", got.Message)

	_, err = s.Get("task_missing")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestTaskProgressMonotonic(t *testing.T) {
	s := newTestTaskService(t)
	task, err := s.Create(models.TaskTypeGenerateImage, "")
	require.NoError(t, err)

	s.UpdateProgress(task.ID, 40, "生成中")
	s.UpdateProgress(task.ID, 20, "回退的进度")

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusProcessing, got.Status)
	// 进度只升不降，消息照常更新
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, "回退的进度", got.Message)
}

func TestTaskCompleteStoresResult(t *testing.T) {
	s := newTestTaskService(t)
	task, err := s.Create(models.TaskTypeGenerateVideo, "")
	require.NoError(t, err)

	s.Complete(task.ID, "完成", map[string]string{"video_url": "https://v/1.mp4"})

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Contains(t, got.Result, "https://v/1.mp4")
	require.NotNil(t, got.CompletedAt)
}

func TestTaskTerminalStateFrozen(t *testing.T) {
	s := newTestTaskService(t)
	task, err := s.Create(models.TaskTypeGenerateVideo, "")
	require.NoError(t, err)

	s.Fail(task.ID, "服务商超时")
	s.UpdateProgress(task.ID, 90, "不应生效")
	s.Complete(task.ID, "不应生效", nil)

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Equal(t, "服务商超时", got.Error)
	assert.Equal(t, 0, got.Progress)
}

func TestTaskSubscribeReceivesUpdates(t *testing.T) {
	s := newTestTaskService(t)
	task, err := s.Create(models.TaskTypeGenerateImage, "")
	require.NoError(t, err)

	ch := s.Subscribe(task.ID)
	defer s.Unsubscribe(task.ID, ch)

	s.UpdateProgress(task.ID, 50, "一半了")

	update := <-ch
	assert.Equal(t, task.ID, update.TaskID)
	assert.Equal(t, models.TaskStatusProcessing, update.Status)
	assert.Equal(t, 50, update.Progress)
	assert.Equal(t, "一半了", update.Message)
}

func TestTaskNotifyDoesNotBlockOnFullChannel(t *testing.T) {
	s := newTestTaskService(t)
	task, err := s.Create(models.TaskTypeGenerateImage, "")
	require.NoError(t, err)

	ch := s.Subscribe(task.ID)
	defer s.Unsubscribe(task.ID, ch)

	// 通道缓冲 10，超出部分直接丢弃而不阻塞
	for i := 1; i <= 15; i++ {
		s.UpdateProgress(task.ID, i, "")
	}

	assert.Len(t, ch, 10)
}

func TestTaskUnsubscribeClosesChannel(t *testing.T) {
	s := newTestTaskService(t)
	task, err := s.Create(models.TaskTypeGenerateImage, "")
	require.NoError(t, err)

	ch := s.Subscribe(task.ID)
	s.Unsubscribe(task.ID, ch)

	_, open := <-ch
	assert.False(t, open)

	// 重复取消订阅是幂等的
	s.Unsubscribe(task.ID, ch)
}
