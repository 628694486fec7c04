package utils

import (
	"net/http"
	"strings"
	"testing"
)

func TestHeaderRedactor_RedactHeaderValue(t *testing.T) {
	redactor := NewHeaderRedactor()

	tests := []struct {
		name   string
		header string
		value  string
		want   string
	}{
		{"Bearer令牌", "Authorization", "Bearer token123", "Bearer ***"},
		{"长密钥保留首尾", "X-Api-Key", "key1234567890", "key1***7890"},
		{"短密钥完全隐藏", "X-Secret", "short", "***"},
		{"空值", "Authorization", "", "***"},
		{"Cookie保留名称", "Cookie", "JSESSIONID=abc123; route=xyz", "JSESSIONID=***; route=***"},
		{"非敏感头部", "User-Agent", "PostmanRuntime/7.26.10", "PostmanRuntime/7.26.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.RedactHeaderValue(tt.header, tt.value); got != tt.want {
				t.Errorf("RedactHeaderValue(%s) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestHeaderRedactor_RedactToString(t *testing.T) {
	redactor := NewHeaderRedactor()
	headers := http.Header{
		"User-Agent":    {"PostmanRuntime/7.26.10"},
		"Accept":        {"*/*"},
		"Authorization": {"Bearer secret"},
	}

	got := redactor.RedactToString(headers)
	want := "Accept: */*, Authorization: Bearer ***, User-Agent: PostmanRuntime/7.26.10"
	if got != want {
		t.Errorf("RedactToString() = %q, want %q", got, want)
	}
	if strings.Contains(got, "secret") {
		t.Error("输出中不应包含敏感值")
	}
}
