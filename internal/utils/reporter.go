package utils

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
)

// Reporter 报告生成器
type Reporter struct {
	fs        afero.Fs
	outputDir string
}

// NewReporter 创建报告生成器
func NewReporter(fs afero.Fs, outputDir string) *Reporter {
	return &Reporter{
		fs:        fs,
		outputDir: outputDir,
	}
}

// ReportDir 项目报告目录: <outputDir>/<project>/reports
func (r *Reporter) ReportDir(project string) string {
	return filepath.Join(r.outputDir, SanitizeSegment(project), "reports")
}

// GenerateReport 生成项目爬取报告
// 输出 crawl_report.json(汇总) 和 buildings.json(全部房间明细)
func (r *Reporter) GenerateReport(result *models.ProjectResult) (*models.CrawlReport, error) {
	reportsDir := r.ReportDir(result.Project.Name)
	report := models.NewCrawlReport(result)

	data, err := report.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("序列化JSON失败: %w", err)
	}
	if err := r.saveReport(reportsDir, "crawl_report.json", data); err != nil {
		return nil, err
	}

	buildings, err := json.MarshalIndent(result.Sheets, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化JSON失败: %w", err)
	}
	if err := r.saveReport(reportsDir, "buildings.json", buildings); err != nil {
		return nil, err
	}

	Infof("✅ 报告已生成: %s", reportsDir)
	return report, nil
}

// saveReport 保存报告文件
func (r *Reporter) saveReport(dir string, filename string, data []byte) error {
	path := filepath.Join(dir, filename)

	if err := WriteFileAtomic(r.fs, path, data); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
