package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/RecoveryAshes/HouseSpider/internal/crawlers"
	"github.com/RecoveryAshes/HouseSpider/internal/exporter"
	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/RecoveryAshes/HouseSpider/internal/parser"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

// AllBuildingsKey "查看更多>>"指向的全部楼栋列表页的缓存名
const AllBuildingsKey = "全部楼栋"

// ProjectAggregator 处理单个项目: 发现楼栋, 逐栋聚合, 写出工作簿
type ProjectAggregator struct {
	fetcher      PageFetcher
	fs           afero.Fs
	outputDir    string
	reporter     *utils.Reporter
	showProgress bool
}

// NewProjectAggregator 创建项目聚合器
// 工作簿和报告写入 outputDir/<项目名>/
func NewProjectAggregator(fetcher PageFetcher, fs afero.Fs, outputDir string, showProgress bool) *ProjectAggregator {
	return &ProjectAggregator{
		fetcher:      fetcher,
		fs:           fs,
		outputDir:    outputDir,
		reporter:     utils.NewReporter(fs, outputDir),
		showProgress: showProgress,
	}
}

// WorkbookPath 项目工作簿路径
func (pa *ProjectAggregator) WorkbookPath(project string) string {
	name := utils.SanitizeSegment(project)
	return filepath.Join(pa.outputDir, name, name+".xlsx")
}

// ProcessProject 处理项目, 所有楼栋成功后才保存工作簿
func (pa *ProjectAggregator) ProcessProject(ctx context.Context, desc models.ProjectDescriptor) (*models.ProjectResult, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	result := &models.ProjectResult{
		Project:   desc,
		StartedAt: time.Now(),
	}
	before := pa.fetcher.Stats()

	utils.Infof("📁 开始处理项目: %s", desc.Name)

	buildingLinks, err := pa.discoverBuildings(ctx, desc)
	if err != nil {
		return nil, err
	}
	utils.Infof("项目 %s: 发现 %d 栋楼", desc.Name, len(buildingLinks))

	workbook, err := exporter.NewWorkbook()
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	buildings := NewBuildingAggregator(pa.fetcher, desc.Name, pa.showProgress)
	for i, link := range buildingLinks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sheet, err := buildings.ProcessBuilding(ctx, i, link.URL)
		if err != nil {
			return nil, fmt.Errorf("项目 %s: %w", desc.Name, err)
		}
		if _, err := workbook.AddSheet(sheet); err != nil {
			return nil, fmt.Errorf("项目 %s: %w", desc.Name, err)
		}
		result.Sheets = append(result.Sheets, sheet)
	}

	result.WorkbookPath = pa.WorkbookPath(desc.Name)
	if err := workbook.Save(pa.fs, result.WorkbookPath); err != nil {
		return nil, fmt.Errorf("项目 %s: %w", desc.Name, err)
	}

	result.FinishedAt = time.Now()
	result.Stats = pa.fetcher.Stats().Sub(before)
	result.Stats.Buildings = len(result.Sheets)
	result.Stats.Rooms = result.RoomCount()
	result.Stats.Duration = result.FinishedAt.Sub(result.StartedAt).Seconds()

	if _, err := pa.reporter.GenerateReport(result); err != nil {
		// 报告只是附加产物, 工作簿已保存
		utils.Warnf("生成报告失败 [%s]: %v", desc.Name, err)
	}

	utils.Infof("✅ 项目 %s 完成: %d 栋楼, %d 个房间 -> %s",
		desc.Name, result.Stats.Buildings, result.Stats.Rooms, result.WorkbookPath)
	return result, nil
}

// discoverBuildings 两级楼栋发现:
// 落地页存在"查看更多>>"时改为在其指向的全部楼栋页中查找, 否则直接在落地页查找
func (pa *ProjectAggregator) discoverBuildings(ctx context.Context, desc models.ProjectDescriptor) ([]parser.Link, error) {
	data, err := pa.fetcher.FetchAndCache(ctx, desc.URL, crawlers.NewKey(desc.Name, desc.Name))
	if err != nil {
		return nil, fmt.Errorf("获取项目页失败: %w", err)
	}

	page, err := parser.Parse(desc.URL, data)
	if err != nil {
		return nil, err
	}

	moreURL, found, err := page.FindLandmarkLink(parser.MoreLinkLandmark)
	if err != nil {
		return nil, err
	}

	if found {
		utils.Debugf("项目 %s: 使用全部楼栋页 %s", desc.Name, moreURL)
		data, err := pa.fetcher.FetchAndCache(ctx, moreURL, crawlers.NewKey(desc.Name, AllBuildingsKey))
		if err != nil {
			return nil, fmt.Errorf("获取全部楼栋页失败: %w", err)
		}
		page, err = parser.Parse(moreURL, data)
		if err != nil {
			return nil, err
		}
	}

	return page.FindLinks(parser.BuildingLinkPattern), nil
}
