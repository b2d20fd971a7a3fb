// internal/api/websocket.go
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/Corphon/DramaForgeMCP/internal/models"
	"github.com/Corphon/DramaForgeMCP/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 在生产环境中应该进行更严格的检查
		return true
	},
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// TaskProgressWebSocket 推送任务进度更新。
// 连接建立后先发送当前任务快照，之后转发订阅到的进度更新，
// 任务进入终态或客户端断开时关闭连接
func (h *Handler) TaskProgressWebSocket(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.tasks.Get(taskID)
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] 升级连接失败: %v", err)
		return
	}
	defer conn.Close()

	ch := h.tasks.Subscribe(taskID)
	defer h.tasks.Unsubscribe(taskID, ch)

	// 先推送当前状态，订阅建立前发生的更新不会丢失终态
	snapshot := services.TaskUpdate{
		TaskID:   task.ID,
		Status:   task.Status,
		Progress: task.Progress,
		Message:  task.Message,
		Error:    task.Error,
	}
	if err := writeUpdate(conn, snapshot); err != nil {
		return
	}
	if task.IsTerminal() {
		return
	}

	// 读取循环只用于感知客户端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case update, ok := <-ch:
			if !ok {
				return
			}
			if err := writeUpdate(conn, update); err != nil {
				return
			}
			if update.Status == models.TaskStatusCompleted || update.Status == models.TaskStatusFailed {
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeUpdate(conn *websocket.Conn, update services.TaskUpdate) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(update)
}
