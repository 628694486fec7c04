package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RecoveryAshes/HouseSpider/internal/crawlers"
	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

// ProjectProcessor 单个项目的处理接口
type ProjectProcessor interface {
	ProcessProject(ctx context.Context, desc models.ProjectDescriptor) (*models.ProjectResult, error)
}

// CrawlDriver 按顺序处理项目列表
type CrawlDriver struct {
	processor     ProjectProcessor
	projectDelay  time.Duration
	continueOnErr bool
}

// ProjectOutcome 单个项目的处理结果
type ProjectOutcome struct {
	Project  models.ProjectDescriptor
	Result   *models.ProjectResult
	Err      error
	Duration float64
}

// CrawlSummary 全部项目的汇总
type CrawlSummary struct {
	TotalProjects int
	SuccessCount  int
	FailCount     int
	Stats         models.TaskStats
	TotalDuration float64
	Outcomes      []ProjectOutcome
}

// NewCrawlDriver 创建驱动器
func NewCrawlDriver(processor ProjectProcessor, projectDelay time.Duration, continueOnErr bool) *CrawlDriver {
	return &CrawlDriver{
		processor:     processor,
		projectDelay:  projectDelay,
		continueOnErr: continueOnErr,
	}
}

// Run 依次处理每个项目
// 默认遇到第一个失败即停止并返回该错误; continueOnErr 时处理完所有项目后返回合并的错误
func (d *CrawlDriver) Run(ctx context.Context, projects []models.ProjectDescriptor) (*CrawlSummary, error) {
	utils.Infof("🚀 开始爬取: %d 个项目", len(projects))

	summary := &CrawlSummary{
		TotalProjects: len(projects),
		Outcomes:      make([]ProjectOutcome, 0, len(projects)),
	}
	startTime := time.Now()
	defer func() {
		summary.TotalDuration = time.Since(startTime).Seconds()
		d.printSummary(summary)
	}()

	var errs []error
	for i, project := range projects {
		utils.Infof("==================== [%d/%d] %s ====================", i+1, len(projects), project.Name)

		outcome := d.runOne(ctx, project)
		summary.Outcomes = append(summary.Outcomes, outcome)

		if outcome.Err != nil {
			summary.FailCount++
			utils.Errorf("❌ 项目 %s 失败: %v", project.Name, outcome.Err)

			// 取消时不再继续后续项目
			if !d.continueOnErr || ctx.Err() != nil {
				return summary, outcome.Err
			}
			errs = append(errs, outcome.Err)
		} else {
			summary.SuccessCount++
			summary.Stats.Add(outcome.Result.Stats)
		}

		if i < len(projects)-1 && d.projectDelay > 0 {
			utils.Debugf("等待 %v 后处理下一个项目...", d.projectDelay)
			if err := crawlers.SleepContext(ctx, d.projectDelay); err != nil {
				return summary, err
			}
		}
	}

	return summary, errors.Join(errs...)
}

// runOne 处理单个项目
func (d *CrawlDriver) runOne(ctx context.Context, project models.ProjectDescriptor) ProjectOutcome {
	outcome := ProjectOutcome{Project: project}
	startTime := time.Now()

	result, err := d.processor.ProcessProject(ctx, project)
	if err != nil {
		outcome.Err = fmt.Errorf("项目 %s 处理失败: %w", project.Name, err)
	} else {
		outcome.Result = result
	}

	outcome.Duration = time.Since(startTime).Seconds()
	return outcome
}

// printSummary 打印爬取摘要
func (d *CrawlDriver) printSummary(summary *CrawlSummary) {
	utils.Info("==================================================")
	utils.Info("📊 爬取摘要")
	utils.Info("==================================================")
	utils.Infof("总项目数: %d", summary.TotalProjects)
	utils.Infof("✅ 成功: %d", summary.SuccessCount)
	utils.Infof("❌ 失败: %d", summary.FailCount)
	utils.Infof("🏢 楼栋: %d, 🏠 房间: %d", summary.Stats.Buildings, summary.Stats.Rooms)
	utils.Infof("📦 缓存命中: %d, 网络请求: %d, 重试: %d",
		summary.Stats.CacheHits, summary.Stats.NetworkFetches, summary.Stats.Retries)
	utils.Infof("⏱️  总耗时: %.2f秒", summary.TotalDuration)
	utils.Info("==================================================")

	if summary.FailCount > 0 {
		utils.Warn("失败的项目:")
		for _, outcome := range summary.Outcomes {
			if outcome.Err != nil {
				utils.Warnf("  - %s: %v", outcome.Project.Name, outcome.Err)
			}
		}
	}
}
