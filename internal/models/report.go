package models

import (
	"encoding/json"
	"time"
)

// CrawlReport 单个项目的爬取报告
type CrawlReport struct {
	// 任务信息
	TaskID     string     `json:"task_id"`
	Project    string     `json:"project"`
	ProjectURL string     `json:"project_url"`
	Status     TaskStatus `json:"status"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	Stats TaskStats `json:"stats"`

	// 楼栋明细
	Buildings []BuildingSummary `json:"buildings"`

	// 输出路径
	WorkbookPath string `json:"workbook_path"`
}

// BuildingSummary 楼栋摘要
type BuildingSummary struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Rooms int    `json:"rooms"`
}

// NewCrawlReport 根据项目结果生成报告
func NewCrawlReport(result *ProjectResult) *CrawlReport {
	buildings := make([]BuildingSummary, 0, len(result.Sheets))
	for _, sheet := range result.Sheets {
		buildings = append(buildings, BuildingSummary{
			Name:  sheet.Name,
			URL:   sheet.URL,
			Rooms: len(sheet.Rooms),
		})
	}

	return &CrawlReport{
		TaskID:       generateID(),
		Project:      result.Project.Name,
		ProjectURL:   result.Project.URL,
		Status:       TaskStatusCompleted,
		StartTime:    result.StartedAt,
		EndTime:      result.FinishedAt,
		Duration:     result.FinishedAt.Sub(result.StartedAt).Seconds(),
		Stats:        result.Stats,
		Buildings:    buildings,
		WorkbookPath: result.WorkbookPath,
	}
}

// ToJSON 序列化为JSON
func (r *CrawlReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *CrawlReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
