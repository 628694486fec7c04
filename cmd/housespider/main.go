package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/HouseSpider/internal/core"
	"github.com/RecoveryAshes/HouseSpider/internal/crawlers"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers        []string // 自定义HTTP请求头
	validateConfig bool     // 验证配置文件

	// 爬取参数
	projectFile     string
	outputDir       string
	maxRetries      int
	continueOnError bool
)

// appConfig 在PersistentPreRunE中加载, 供子命令使用
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "housespider",
	Short: "北京住建委预售公示房源爬取工具",
	Long: `HouseSpider - 北京住建委预售公示房源爬取工具

按 项目 → 楼栋 → 房间 的层级抓取公示页面, 每个项目输出一个Excel工作簿,
每栋楼一个工作表。所有页面缓存在本地, 重复运行不会重复下载。

示例:
  # 使用配置文件中的项目列表 (configs/config.yaml)
  housespider

  # 从文件读取项目列表, 每行 "项目名 URL"
  housespider -f projects.txt -o data

  # 自定义HTTP请求头
  housespider -H "User-Agent: MyBot/1.0" -H "Cookie: JSESSIONID=xxx"

  # 验证HTTP头部配置
  housespider --validate-config

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		if verbose && logLevel == "" {
			logLevel = "debug"
		}
		config.MergeCLIFlags(nil, outputDir, logLevel, maxRetries, continueOnError)

		if err := utils.InitLogger(config.ToLogConfig()); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}

		appConfig = config
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fs := afero.NewOsFs()

		headerManager, err := core.NewHeaderManager(fs, appConfig.Fetch.HeadersFile, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		if validateConfig {
			return runValidateConfig(headerManager)
		}

		if err := ValidateFlags(projectFile, maxRetries); err != nil {
			return err
		}

		if projectFile != "" {
			projects, err := utils.ReadProjectsFromFile(fs, projectFile)
			if err != nil {
				return fmt.Errorf("读取项目文件失败: %w", err)
			}
			appConfig.MergeCLIFlags(projects, "", "", -1, false)
		}

		if err := appConfig.Validate(); err != nil {
			return fmt.Errorf("配置无效: %w", err)
		}

		// 提前加载并验证头部, 避免在第一次请求时才失败
		if _, err := headerManager.GetHeaders(); err != nil {
			return fmt.Errorf("HTTP头部配置无效: %w", err)
		}

		fetcher := crawlers.NewFetcher(appConfig.ToFetcherConfig(), headerManager)
		cache := crawlers.NewResourceCache(fs, appConfig.Output.BaseDir)
		cachedFetcher := crawlers.NewCachedFetcher(cache, fetcher)

		aggregator := core.NewProjectAggregator(cachedFetcher, fs, appConfig.Output.BaseDir, appConfig.Output.Progress)
		driver := core.NewCrawlDriver(aggregator, appConfig.Crawl.ProjectDelay, appConfig.Crawl.ContinueOnError)

		utils.Infof("输出目录: %s", appConfig.Output.BaseDir)
		if _, err := driver.Run(ctx, appConfig.Projects); err != nil {
			if ctx.Err() != nil {
				utils.Warn("收到中断信号, 已停止爬取")
			}
			return fmt.Errorf("爬取失败: %w", err)
		}

		utils.Info("✨ 爬取任务完成!")
		return nil
	},
}

// runValidateConfig 验证并显示HTTP头部配置(脱敏)
func runValidateConfig(headerManager *core.HeaderManager) error {
	utils.Info("🔍 验证HTTP头部配置...")
	if err := headerManager.LoadConfig(); err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := headerManager.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	safeHeaders := headerManager.GetSafeHeaders()
	utils.Info("✅ 配置验证通过!")
	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	for name, value := range safeHeaders {
		utils.Infof("  %s: %s", name, value)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("HouseSpider %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "列出将要爬取的项目",
	RunE: func(cmd *cobra.Command, args []string) error {
		projects := appConfig.Projects
		if projectFile != "" {
			var err error
			projects, err = utils.ReadProjectsFromFile(afero.NewOsFs(), projectFile)
			if err != nil {
				return fmt.Errorf("读取项目文件失败: %w", err)
			}
		}

		for i, p := range projects {
			fmt.Printf("%d. %s\t%s\n", i+1, p.Name, p.URL)
		}
		return nil
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件正确性")

	// 爬取参数
	rootCmd.PersistentFlags().StringVarP(&projectFile, "project-file", "f", "", "项目列表文件, 每行 '项目名 URL'")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录 (默认取配置 output.base_dir)")
	rootCmd.Flags().IntVar(&maxRetries, "max-retries", -1, "连接失败时的最大尝试次数, 0为无限重试 (默认取配置)")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "项目失败后继续处理其余项目")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(projectsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
