package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/RecoveryAshes/HouseSpider/internal/crawlers"
	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

// EnvPrefix 环境变量前缀, 如 HOUSESPIDER_OUTPUT_BASE_DIR
const EnvPrefix = "HOUSESPIDER"

// Config 应用程序配置
type Config struct {
	Projects []models.ProjectDescriptor `mapstructure:"projects"`
	Fetch    FetchConfig                `mapstructure:"fetch"`
	Crawl    CrawlConfig                `mapstructure:"crawl"`
	Output   OutputConfig               `mapstructure:"output"`
	Logging  LoggingConfig              `mapstructure:"logging"`
}

// FetchConfig 网络获取配置
type FetchConfig struct {
	Timeout     time.Duration        `mapstructure:"timeout"`
	MaxBodySize int                  `mapstructure:"max_body_size"`
	HeadersFile string               `mapstructure:"headers_file"`
	Retry       crawlers.RetryPolicy `mapstructure:"retry"`
}

// CrawlConfig 爬取流程配置
type CrawlConfig struct {
	ContinueOnError bool          `mapstructure:"continue_on_error"` // 单个项目失败后是否继续
	ProjectDelay    time.Duration `mapstructure:"project_delay"`     // 项目之间的间隔
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	BaseDir  string `mapstructure:"base_dir"` // 缓存页面和工作簿的根目录
	Progress bool   `mapstructure:"progress"` // 是否显示房间进度条
}

// LoadConfig 加载配置文件
// 优先级: 环境变量 > 配置文件 > 默认值; 存在 .env 时先载入环境变量
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("加载.env失败: %w", err)
	}

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".housespider"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认值
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		utils.Debug("未找到配置文件, 使用默认配置")
	} else {
		utils.Debugf("使用配置文件: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if len(config.Projects) == 0 {
		config.Projects = models.DefaultProjects()
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	retry := crawlers.DefaultRetryPolicy()

	v.SetDefault("fetch.timeout", 60*time.Second)
	v.SetDefault("fetch.max_body_size", 10*1024*1024)
	v.SetDefault("fetch.headers_file", "configs/headers.yaml")
	v.SetDefault("fetch.retry.max_attempts", retry.MaxAttempts)
	v.SetDefault("fetch.retry.base_delay", retry.BaseDelay)
	v.SetDefault("fetch.retry.max_delay", retry.MaxDelay)

	v.SetDefault("crawl.continue_on_error", false)
	v.SetDefault("crawl.project_delay", time.Duration(0))

	v.SetDefault("output.base_dir", "data")
	v.SetDefault("output.progress", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	var errs []error

	if len(c.Projects) == 0 {
		errs = append(errs, fmt.Errorf("未配置任何项目"))
	}
	seen := make(map[string]bool)
	for _, p := range c.Projects {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("项目名称重复: %s", p.Name))
		}
		seen[p.Name] = true
	}

	if c.Output.BaseDir == "" {
		errs = append(errs, fmt.Errorf("output.base_dir 不能为空"))
	}
	if c.Fetch.Retry.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("fetch.retry.max_attempts 不能为负数: %d", c.Fetch.Retry.MaxAttempts))
	}
	if c.Fetch.Retry.BaseDelay < 0 || c.Fetch.Retry.MaxDelay < 0 {
		errs = append(errs, fmt.Errorf("fetch.retry 的延迟不能为负数"))
	}
	if c.Crawl.ProjectDelay < 0 {
		errs = append(errs, fmt.Errorf("crawl.project_delay 不能为负数"))
	}

	return errors.Join(errs...)
}

// ToLogConfig 转换为日志初始化配置
func (c *Config) ToLogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// ToFetcherConfig 转换为获取器配置
func (c *Config) ToFetcherConfig() crawlers.FetcherConfig {
	return crawlers.FetcherConfig{
		Timeout:     c.Fetch.Timeout,
		MaxBodySize: c.Fetch.MaxBodySize,
		Retry:       c.Fetch.Retry,
	}
}

// MergeCLIFlags 合并命令行参数到配置
// 命令行参数优先于配置文件; 零值表示未指定
func (c *Config) MergeCLIFlags(
	projects []models.ProjectDescriptor,
	outputDir string,
	logLevel string,
	maxRetries int,
	continueOnError bool,
) {
	if len(projects) > 0 {
		c.Projects = projects
	}
	if outputDir != "" {
		c.Output.BaseDir = outputDir
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if maxRetries >= 0 {
		c.Fetch.Retry.MaxAttempts = maxRetries
	}
	if continueOnError {
		c.Crawl.ContinueOnError = true
	}
}
