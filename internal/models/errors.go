package models

import "fmt"

// TransportError 连接层错误(重试次数耗尽后才会返回)
type TransportError struct {
	URL      string
	Attempts int
	Err      error
}

// Error 实现error接口
func (e *TransportError) Error() string {
	return fmt.Sprintf("请求失败 [%s] (已尝试%d次): %v", e.URL, e.Attempts, e.Err)
}

// Unwrap 支持errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ContentLayoutError 页面结构不符合预期(缺少标志文本或表格结构)
type ContentLayoutError struct {
	URL      string
	Landmark string
	Reason   string
}

// Error 实现error接口
func (e *ContentLayoutError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("页面结构错误 [%s]: %s", e.Landmark, e.Reason)
	}
	return fmt.Sprintf("页面结构错误 [%s] %s: %s", e.Landmark, e.URL, e.Reason)
}

// FieldParseError 字段值无法解析为数值
type FieldParseError struct {
	Field string
	Value string
	Err   error
}

// Error 实现error接口
func (e *FieldParseError) Error() string {
	return fmt.Sprintf("字段解析失败 [%s=%q]: %v", e.Field, e.Value, e.Err)
}

// Unwrap 支持errors.Unwrap
func (e *FieldParseError) Unwrap() error {
	return e.Err
}

// ValidationError 头部验证错误
type ValidationError struct {
	Field      string // "name" 或 "value"
	HeaderName string
	Reason     string
	Suggestion string // 修复建议(可选)
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("头部验证失败 [%s]: %s", e.HeaderName, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (建议: %s)", e.Suggestion)
	}
	return msg
}

// ConfigError 配置文件错误
type ConfigError struct {
	FilePath string
	Cause    error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置文件错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
