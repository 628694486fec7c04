package models

import (
	"fmt"
	"strings"
	"time"
)

// ProjectDescriptor 项目描述(名称 + 公示入口URL)
type ProjectDescriptor struct {
	Name string `mapstructure:"name" json:"name"`
	URL  string `mapstructure:"url" json:"url"`
}

// Validate 验证项目描述
func (p ProjectDescriptor) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("项目名称不能为空")
	}
	if err := ValidateURL(p.URL); err != nil {
		return fmt.Errorf("项目 %s 的URL无效: %w", p.Name, err)
	}
	return nil
}

// DefaultProjects 内置的项目列表(配置文件未指定projects时使用)
func DefaultProjects() []ProjectDescriptor {
	return []ProjectDescriptor{
		{
			Name: "毓润嘉园",
			URL:  "http://bjjs.zjw.beijing.gov.cn/eportal/ui?pageId=320794&projectID=6952217&systemID=2&srcId=1",
		},
		{
			Name: "安林嘉苑",
			URL:  "http://bjjs.zjw.beijing.gov.cn/eportal/ui?pageId=320801&projectID=6960917&systemID=2&srcId=1",
		},
	}
}

// ProjectResult 单个项目的处理结果
type ProjectResult struct {
	Project      ProjectDescriptor `json:"project"`
	Sheets       []*BuildingSheet  `json:"-"`
	WorkbookPath string            `json:"workbook_path"`
	Stats        TaskStats         `json:"stats"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
}

// RoomCount 返回所有楼栋的房间总数
func (r *ProjectResult) RoomCount() int {
	total := 0
	for _, sheet := range r.Sheets {
		total += len(sheet.Rooms)
	}
	return total
}
