package core

import (
	"context"
	"fmt"
	"strconv"

	"github.com/schollz/progressbar/v3"

	"github.com/RecoveryAshes/HouseSpider/internal/crawlers"
	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/RecoveryAshes/HouseSpider/internal/parser"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

// PageFetcher 带缓存的页面获取接口
type PageFetcher interface {
	FetchAndCache(ctx context.Context, rawURL string, key crawlers.Key) ([]byte, error)
	Stats() models.TaskStats
}

// BuildingAggregator 将一栋楼的所有房间页聚合为一个工作表
// 每个项目使用一个实例, 楼栋名称在项目内去重
type BuildingAggregator struct {
	fetcher      PageFetcher
	project      string
	usedNames    map[string]int
	showProgress bool
}

// NewBuildingAggregator 创建楼栋聚合器
func NewBuildingAggregator(fetcher PageFetcher, project string, showProgress bool) *BuildingAggregator {
	return &BuildingAggregator{
		fetcher:      fetcher,
		project:      project,
		usedNames:    make(map[string]int),
		showProgress: showProgress,
	}
}

// ProcessBuilding 处理第index栋楼(从0开始, 按发现顺序)
// 楼栋页缓存为 <project>/buildings/<index>, 房间页缓存为 <project>/<楼栋名>/<房间标签>
func (ba *BuildingAggregator) ProcessBuilding(ctx context.Context, index int, buildingURL string) (*models.BuildingSheet, error) {
	data, err := ba.fetcher.FetchAndCache(ctx, buildingURL, crawlers.NewKey(ba.project, "buildings", strconv.Itoa(index)))
	if err != nil {
		return nil, fmt.Errorf("获取楼栋页失败: %w", err)
	}

	page, err := parser.Parse(buildingURL, data)
	if err != nil {
		return nil, err
	}

	rawName, err := page.BuildingName()
	if err != nil {
		return nil, err
	}
	name := ba.uniqueName(rawName)

	links := page.FindLinks(parser.RoomLinkPattern)
	utils.Infof("🏢 [%d] %s: 发现 %d 个房间", index, name, len(links))

	sheet := &models.BuildingSheet{
		Name:  name,
		URL:   buildingURL,
		Rooms: make([]models.RoomRecord, 0, len(links)),
	}

	var bar *progressbar.ProgressBar
	if ba.showProgress && len(links) > 0 {
		bar = utils.NewProgressBar(len(links), name)
		defer bar.Finish()
	}

	labels := make(map[string]bool, len(links))
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := ba.processRoom(ctx, name, link, labels)
		if err != nil {
			return nil, fmt.Errorf("楼栋 %s: %w", name, err)
		}
		sheet.Rooms = append(sheet.Rooms, record)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	utils.Infof("✅ 楼栋 %s 完成: %d 个房间", name, len(sheet.Rooms))
	return sheet, nil
}

// processRoom 获取并解析单个房间页
func (ba *BuildingAggregator) processRoom(ctx context.Context, building string, link parser.Link, labels map[string]bool) (models.RoomRecord, error) {
	houseID, err := models.QueryParam(link.URL, "houseId")
	if err != nil {
		return models.RoomRecord{}, err
	}

	label := link.Text
	if label == "" {
		label = houseID
	}
	if labels[label] {
		label = label + "_" + houseID
	}
	labels[label] = true

	data, err := ba.fetcher.FetchAndCache(ctx, link.URL, crawlers.NewKey(ba.project, building, label))
	if err != nil {
		return models.RoomRecord{}, fmt.Errorf("获取房间页失败 [%s]: %w", label, err)
	}

	page, err := parser.Parse(link.URL, data)
	if err != nil {
		return models.RoomRecord{}, err
	}

	record, err := parser.ExtractRoom(page)
	if err != nil {
		return models.RoomRecord{}, fmt.Errorf("房间 %s: %w", label, err)
	}
	record.SystemID = houseID
	record.ComputeDerived()

	utils.Debugf("房间 %s: 建筑面积=%.3f 套内面积=%.3f 总价=%.3f", label, record.BuiltArea, record.InteriorArea, record.TotalPrice)
	return record, nil
}

// uniqueName 项目内重名楼栋追加 _n 后缀
func (ba *BuildingAggregator) uniqueName(raw string) string {
	name := utils.SanitizeSegment(raw)
	ba.usedNames[name]++
	if n := ba.usedNames[name]; n > 1 {
		unique := fmt.Sprintf("%s_%d", name, n)
		utils.Warnf("楼栋名称重复: %s, 重命名为 %s", raw, unique)
		ba.usedNames[unique]++
		return unique
	}
	return name
}
