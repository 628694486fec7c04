package crawlers

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"time"
)

// RetryPolicy 连接失败时的重试策略
// MaxAttempts 为0表示无限重试; 每次失败后的等待时间从 BaseDelay 开始翻倍, 不超过 MaxDelay
type RetryPolicy struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// DefaultRetryPolicy 默认策略: 无限重试, 1秒起步, 最长30秒
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 0,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Exhausted 已尝试 attempts 次后是否应放弃
func (p RetryPolicy) Exhausted(attempts int) bool {
	return p.MaxAttempts > 0 && attempts >= p.MaxAttempts
}

// Delay 第 failures 次失败后的等待时间(failures 从1开始)
func (p RetryPolicy) Delay(failures int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}

	d := p.BaseDelay
	for i := 1; i < failures; i++ {
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			break
		}
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// SleepContext 等待d, ctx取消时提前返回ctx的错误
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isConnectionError 判断是否为连接层错误(可重试)
// 超时、连接被拒绝/重置、读取响应时连接中断均视为连接层错误
func isConnectionError(err error) bool {
	if err == nil || errors.Is(err, ErrBodyDecode) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// 单次请求超时视为连接层错误, 外层ctx由调用方先行检查
		return errors.Is(err, context.DeadlineExceeded)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	// *url.Error 本身也实现了 net.Error, 需先排除解析错误
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
