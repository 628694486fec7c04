package core

import (
	"net/http"
	"sync"

	"github.com/RecoveryAshes/HouseSpider/internal/config"
	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
	"github.com/spf13/afero"
)

const (
	// DefaultUserAgent 默认User-Agent, 公示网站对浏览器UA有时返回验证页
	DefaultUserAgent = "PostmanRuntime/7.26.10"
)

// HeaderManager 管理HTTP请求头部
// 实现 HeaderProvider 接口, 优先级: 默认 < 配置文件 < 命令行
type HeaderManager struct {
	// defaults 系统默认头部
	defaults http.Header

	// config 从配置文件加载的头部
	config http.Header

	// cli 从命令行参数解析的头部
	cli http.Header

	validator    *utils.HeaderValidator
	redactor     *utils.HeaderRedactor
	configLoader *config.HeaderConfigLoader

	mu     sync.Mutex
	loaded bool
	merged http.Header // 验证通过后的合并结果
}

// NewHeaderManager 创建头部管理器
// configFile 为空时使用 configs/headers.yaml; cliHeaders 格式为 "Name: Value"
func NewHeaderManager(fs afero.Fs, configFile string, cliHeaders []string) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults:     DefaultHeaders(),
		config:       make(http.Header),
		validator:    utils.NewHeaderValidator(),
		redactor:     utils.NewHeaderRedactor(),
		configLoader: config.NewHeaderConfigLoader(fs, configFile),
	}

	if len(cliHeaders) > 0 {
		parsed, err := models.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, err
		}
		hm.cli = parsed
	} else {
		hm.cli = make(http.Header)
	}

	return hm, nil
}

// DefaultHeaders 返回系统默认头部
func DefaultHeaders() http.Header {
	return http.Header{
		"Accept":          []string{"*/*"},
		"Accept-Encoding": []string{"gzip, deflate, br"},
		"Connection":      []string{"keep-alive"},
		"User-Agent":      []string{DefaultUserAgent},
	}
}

// LoadConfig 加载配置文件, 已加载时跳过
func (hm *HeaderManager) LoadConfig() error {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	return hm.loadConfigLocked()
}

func (hm *HeaderManager) loadConfigLocked() error {
	if hm.loaded {
		return nil
	}

	headerConfig, err := hm.configLoader.LoadConfig()
	if err != nil {
		utils.Errorf("加载HTTP头部配置失败: %v", err)
		return err
	}

	hm.config = make(http.Header)
	for name, value := range headerConfig.Headers {
		hm.config.Set(name, value)
	}
	hm.loaded = true

	if len(headerConfig.Headers) > 0 {
		utils.Debugf("成功加载%d个HTTP头部配置: %s", len(headerConfig.Headers), hm.redactor.RedactToString(hm.config))
	}
	return nil
}

// Validate 按 默认 → 配置 → 命令行 的顺序验证头部
func (hm *HeaderManager) Validate() error {
	sources := []struct {
		name    string
		headers http.Header
	}{
		{"默认", hm.defaults},
		{"配置文件", hm.config},
		{"命令行", hm.cli},
	}

	for _, src := range sources {
		if err := hm.validator.Validate(src.headers); err != nil {
			utils.Errorf("%s头部验证失败: %v", src.name, err)
			return err
		}
	}

	utils.Debugf("所有HTTP头部验证通过")
	return nil
}

// GetMergedHeaders 按优先级合并头部
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, src := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range src {
			result[name] = values
		}
	}
	return result
}

// GetSafeHeaders 返回脱敏后的头部 (用于日志)
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider 接口
// 首次调用时加载并验证, 之后返回缓存结果的副本
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if hm.merged == nil {
		if err := hm.loadConfigLocked(); err != nil {
			return nil, err
		}
		if err := hm.Validate(); err != nil {
			return nil, err
		}
		hm.merged = hm.GetMergedHeaders()
	}

	return hm.merged.Clone(), nil
}
