// internal/errors/errors_test.go
package errors

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypeCheckers(t *testing.T) {
	assert.True(t, IsNotFoundError(NewNotFoundError("剧本不存在", nil)))
	assert.True(t, IsConfigMissingError(NewConfigMissingError("未配置服务")))
	assert.True(t, IsProviderError(NewProviderError(500, "internal error")))
	assert.True(t, IsTimeoutError(NewTimeoutError("超时")))
	assert.True(t, IsValidationError(NewValidationError("参数无效", nil)))

	assert.False(t, IsNotFoundError(NewTimeoutError("超时")))
	assert.False(t, IsNotFoundError(fmt.Errorf("普通错误")))
	assert.False(t, IsNotFoundError(nil))
}

func TestCheckersSeeThroughWrapping(t *testing.T) {
	inner := NewNotFoundError("剧本不存在", nil)
	wrapped := fmt.Errorf("加载失败: %w", inner)

	assert.True(t, IsNotFoundError(wrapped))
}

func TestProviderErrorMessage(t *testing.T) {
	err := NewProviderError(429, "rate limited")
	assert.Equal(t, "provider request failed: 429 - rate limited", err.Error())
}

func TestParseErrorTruncatesRawText(t *testing.T) {
	raw := strings.Repeat("a", 300)
	err := NewParseError("解析失败", raw, nil)

	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), strings.Repeat("a", 200)+"...")
	assert.NotContains(t, err.Error(), strings.Repeat("a", 201))
}

func TestParseErrorTruncatesOnRuneBoundary(t *testing.T) {
	// 截断点落在多字节字符中间时整字符丢弃，保持合法 UTF-8
	raw := strings.Repeat("错", 100)
	err := NewParseError("解析失败", raw, nil)

	assert.True(t, utf8.ValidString(err.Error()))
	assert.Contains(t, err.Error(), "...")
}

func TestWrapErrorPreservesType(t *testing.T) {
	inner := NewNotFoundError("剧集不存在", nil)
	wrapped := WrapError(inner, "保存分镜失败", ErrorTypeValidation)

	// 已是 AppError 时保留原类型
	assert.True(t, IsNotFoundError(wrapped))
	assert.Contains(t, wrapped.Error(), "保存分镜失败")

	plain := WrapError(fmt.Errorf("io error"), "读取失败", ErrorTypeProvider)
	assert.True(t, IsProviderError(plain))

	assert.Nil(t, WrapError(nil, "无", ErrorTypeProvider))
}
