// internal/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
)

// 视频生成提交可能较慢，超时放宽到 5 分钟
var defaultHTTPClient = &http.Client{Timeout: 5 * time.Minute}

// joinURL 拼接 baseURL 与 endpoint，规范化中间的斜杠
func joinURL(baseURL, endpoint string) string {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return base + endpoint
}

// resolveTaskPath 替换轮询端点中的任务 ID 占位符。
// 支持 {taskId} 和 {task_id}，都没有时追加到路径末尾
func resolveTaskPath(queryEndpoint, taskID string) string {
	switch {
	case strings.Contains(queryEndpoint, "{taskId}"):
		return strings.ReplaceAll(queryEndpoint, "{taskId}", taskID)
	case strings.Contains(queryEndpoint, "{task_id}"):
		return strings.ReplaceAll(queryEndpoint, "{task_id}", taskID)
	default:
		return queryEndpoint + "/" + taskID
	}
}

// postJSON 发送 JSON POST 请求，非 2xx 返回服务商错误
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	return doRequest(client, req)
}

// getJSON 发送 GET 请求，非 2xx 返回服务商错误
func getJSON(ctx context.Context, client *http.Client, url, apiKey string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	return doRequest(client, req)
}

func doRequest(client *http.Client, req *http.Request) ([]byte, error) {
	if client == nil {
		client = defaultHTTPClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewProviderError(resp.StatusCode, string(body))
	}
	return body, nil
}

// firstString 按优先级顺序返回第一个非空字符串字段
func firstString(data gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := data.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// firstInt 按优先级顺序返回第一个存在的整数字段
func firstInt(data gjson.Result, paths ...string) int {
	for _, p := range paths {
		if v := data.Get(p); v.Exists() {
			return int(v.Int())
		}
	}
	return 0
}
