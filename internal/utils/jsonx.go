// internal/utils/jsonx.go
package utils

import (
	"encoding/json"
	"strings"

	apperrors "github.com/Corphon/DramaForgeMCP/internal/errors"
)

// ExtractJSON 从模型自由文本输出中抽取 JSON 对象并解析到 v。
// 先剥掉可能的 markdown 代码块包装，再截取第一个 '{' 到最后一个 '}'
// 之间的内容；解析失败返回携带原始文本的解析错误，绝不静默返回空结构
func ExtractJSON(text string, v interface{}) error {
	jsonStr := StripCodeFence(text)

	start := strings.Index(jsonStr, "{")
	end := strings.LastIndex(jsonStr, "}")
	if start != -1 && end != -1 && end > start {
		jsonStr = jsonStr[start : end+1]
	}

	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return apperrors.NewParseError("解析AI输出JSON失败", text, err)
	}
	return nil
}

// StripCodeFence 移除包裹整段文本的 ```json ... ``` 代码块标记
func StripCodeFence(text string) string {
	jsonStr := strings.TrimSpace(text)
	if !strings.HasPrefix(jsonStr, "```") {
		return jsonStr
	}

	lines := strings.Split(jsonStr, "\n")
	// 去掉第一行 (```json 或 ```)
	lines = lines[1:]
	// 去掉最后一行的孤立 ```
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
