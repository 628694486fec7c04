package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

// 页面中的标志文本
const (
	MoreLinkLandmark      = "查看更多>>"
	BuildingTitleLandmark = "楼盘表"
	RoomTableLandmark     = "房屋资料"
)

// 楼栋/房间链接的href模式
var (
	BuildingLinkPattern = regexp.MustCompile(`/eportal/ui\?pageId=\d+&systemId=\d+&categoryId=\d+&salePermitId=\d+&buildingId=\d+`)
	RoomLinkPattern     = regexp.MustCompile(`/eportal/ui\?pageId=\d+&houseId=\d+&houseNo=`)
)

// Link 页面中发现的链接
type Link struct {
	URL  string // 绝对URL
	Text string // 链接文本(已去除首尾空白)
}

// FindLinks 返回href匹配pattern的所有链接
// 任何带href属性的元素都会被检查; 结果按文档顺序, 相同目标只保留第一次出现
func (p *Page) FindLinks(pattern *regexp.Regexp) []Link {
	var links []Link
	seen := make(map[string]bool)

	p.Doc.Find("[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !pattern.MatchString(href) {
			return
		}

		abs, err := p.resolve(href)
		if err != nil {
			utils.Debugf("跳过无法解析的链接 %q: %v", href, err)
			return
		}
		if seen[abs] {
			return
		}
		seen[abs] = true

		links = append(links, Link{URL: abs, Text: strings.TrimSpace(s.Text())})
	})

	return links
}

// FindLandmarkLink 查找包含landmark的文本节点, 返回其所在链接的绝对URL
// 页面中没有该文本时 ok 为 false
func (p *Page) FindLandmarkLink(landmark string) (link string, ok bool, err error) {
	if len(p.Doc.Nodes) == 0 {
		return "", false, nil
	}

	textNode := findTextNode(p.Doc.Nodes[0], landmark)
	if textNode == nil {
		return "", false, nil
	}

	anchor := closestAncestor(textNode, func(n *html.Node) bool {
		_, has := attr(n, "href")
		return has
	})
	if anchor == nil {
		return "", true, &models.ContentLayoutError{URL: p.URL.String(), Landmark: landmark, Reason: "标志文本不在链接内"}
	}

	href, _ := attr(anchor, "href")
	abs, err := p.resolve(href)
	if err != nil {
		return "", true, &models.ContentLayoutError{URL: p.URL.String(), Landmark: landmark, Reason: "链接无法解析: " + err.Error()}
	}
	return abs, true, nil
}

// BuildingName 楼栋名称: 第一个包含"楼盘表"的span文本中第一个空白分隔的词
func (p *Page) BuildingName() (string, error) {
	var name string
	p.Doc.Find("span").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, BuildingTitleLandmark) {
			return true
		}
		if fields := strings.Fields(text); len(fields) > 0 {
			name = fields[0]
		}
		return false
	})

	if name == "" {
		return "", &models.ContentLayoutError{URL: p.URL.String(), Landmark: BuildingTitleLandmark, Reason: "未找到楼盘表标题"}
	}
	return name, nil
}
