// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrorType 定义错误类型
type ErrorType string

const (
	// 引用的实体不存在，立即返回调用方，不重试
	ErrorTypeNotFound ErrorType = "not_found"
	// 请求的能力没有可用的 AI 服务配置
	ErrorTypeConfigMissing ErrorType = "config_missing"
	// 服务商返回非成功状态或响应格式异常
	ErrorTypeProvider ErrorType = "provider_error"
	// 模型输出无法解析为结构化结果
	ErrorTypeParse ErrorType = "parse_error"
	// 轮询次数耗尽
	ErrorTypeTimeout ErrorType = "timeout"
	// 请求参数校验失败
	ErrorTypeValidation ErrorType = "validation_error"
)

// AppError 应用程序错误结构
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 实现错误链接
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建新的 AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
	}
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewConfigMissingError 创建配置缺失错误
func NewConfigMissingError(message string) *AppError {
	return NewAppError(ErrorTypeConfigMissing, message, nil)
}

// NewProviderError 创建服务商错误，消息中包含 HTTP 状态码和响应体
func NewProviderError(statusCode int, body string) *AppError {
	return NewAppError(ErrorTypeProvider,
		fmt.Sprintf("provider request failed: %d - %s", statusCode, body), nil)
}

// NewParseError 创建解析错误，原始文本附在错误上便于排查
func NewParseError(message string, rawText string, originalError error) *AppError {
	return &AppError{
		Type:    ErrorTypeParse,
		Message: fmt.Sprintf("%s (raw: %s)", message, truncate(rawText, 200)),
		Err:     originalError,
	}
}

// NewTimeoutError 创建超时错误
func NewTimeoutError(message string) *AppError {
	return NewAppError(ErrorTypeTimeout, message, nil)
}

// NewValidationError 创建验证错误
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// IsNotFoundError 检查是否为未找到错误
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsConfigMissingError 检查是否为配置缺失错误
func IsConfigMissingError(err error) bool {
	return isType(err, ErrorTypeConfigMissing)
}

// IsProviderError 检查是否为服务商错误
func IsProviderError(err error) bool {
	return isType(err, ErrorTypeProvider)
}

// IsParseError 检查是否为解析错误
func IsParseError(err error) bool {
	return isType(err, ErrorTypeParse)
}

// IsTimeoutError 检查是否为超时错误
func IsTimeoutError(err error) bool {
	return isType(err, ErrorTypeTimeout)
}

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

func isType(err error, errType ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == errType
	}
	return false
}

// WrapError 包装现有错误；已是 AppError 时保留其类型
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
		}
	}

	return NewAppError(errType, message, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// 截断点退回到字符边界，不切开多字节字符
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
