package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)

	require.Equal(t, "debug", config.Logging.Level)
	require.Equal(t, 60*time.Second, config.Fetch.Timeout)
	require.Equal(t, 0, config.Fetch.Retry.MaxAttempts, "默认无限重试")
	require.Equal(t, time.Second, config.Fetch.Retry.BaseDelay)
	require.Equal(t, 30*time.Second, config.Fetch.Retry.MaxDelay)
	require.Equal(t, "data", config.Output.BaseDir)
	require.True(t, config.Output.Progress)
	require.False(t, config.Crawl.ContinueOnError)
	require.Equal(t, models.DefaultProjects(), config.Projects, "未配置项目时使用内置列表")
	require.NoError(t, config.Validate())
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
projects:
  - name: 测试项目
    url: http://bjjs.zjw.beijing.gov.cn/eportal/ui?pageId=1
fetch:
  timeout: 5s
  retry:
    max_attempts: 3
    base_delay: 200ms
crawl:
  continue_on_error: true
  project_delay: 2s
output:
  base_dir: out
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, config.Projects, 1)
	require.Equal(t, "测试项目", config.Projects[0].Name)
	require.Equal(t, 5*time.Second, config.Fetch.Timeout)
	require.Equal(t, 3, config.Fetch.Retry.MaxAttempts)
	require.Equal(t, 200*time.Millisecond, config.Fetch.Retry.BaseDelay)
	require.True(t, config.Crawl.ContinueOnError)
	require.Equal(t, 2*time.Second, config.Crawl.ProjectDelay)
	require.Equal(t, "out", config.Output.BaseDir)

	fc := config.ToFetcherConfig()
	require.Equal(t, config.Fetch.Retry, fc.Retry)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("HOUSESPIDER_OUTPUT_BASE_DIR", "env_out")

	config, err := LoadConfig(writeConfig(t, "output:\n  base_dir: file_out\n"))
	require.NoError(t, err)
	require.Equal(t, "env_out", config.Output.BaseDir)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "fetch: [unclosed"))
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	config.Projects = append(config.Projects, config.Projects[0], models.ProjectDescriptor{Name: "坏项目", URL: "ftp://x"})
	config.Fetch.Retry.MaxAttempts = -1

	err = config.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "项目名称重复")
	require.Contains(t, err.Error(), "坏项目")
	require.Contains(t, err.Error(), "max_attempts")
}

func TestConfig_MergeCLIFlags(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	custom := []models.ProjectDescriptor{{Name: "命令行项目", URL: "http://example.com"}}
	config.MergeCLIFlags(custom, "cli_out", "warn", 5, true)

	require.Equal(t, custom, config.Projects)
	require.Equal(t, "cli_out", config.Output.BaseDir)
	require.Equal(t, "warn", config.Logging.Level)
	require.Equal(t, 5, config.Fetch.Retry.MaxAttempts)
	require.True(t, config.Crawl.ContinueOnError)

	config.MergeCLIFlags(nil, "", "", -1, false)
	require.Equal(t, 5, config.Fetch.Retry.MaxAttempts, "-1表示未指定")
	require.True(t, config.Crawl.ContinueOnError)
}
