package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

// fieldSetter 将规范化后的值写入房间记录
type fieldSetter func(r *models.RoomRecord, value string) error

// roomFields 表格字段名(规范化后) -> 记录字段
var roomFields = map[string]fieldSetter{
	"房间号":       stringField(func(r *models.RoomRecord) *string { return &r.RoomNumber }),
	"规划设计用途":    stringField(func(r *models.RoomRecord) *string { return &r.PlannedUse }),
	"用途":        stringField(func(r *models.RoomRecord) *string { return &r.PlannedUse }),
	"户型":        stringField(func(r *models.RoomRecord) *string { return &r.LayoutType }),
	"建筑面积":      floatField("建筑面积", func(r *models.RoomRecord) *float64 { return &r.BuiltArea }),
	"建筑面积(m2)":  floatField("建筑面积", func(r *models.RoomRecord) *float64 { return &r.BuiltArea }),
	"建筑面积（m2）":  floatField("建筑面积", func(r *models.RoomRecord) *float64 { return &r.BuiltArea }),
	"套内面积":      floatField("套内面积", func(r *models.RoomRecord) *float64 { return &r.InteriorArea }),
	"套内面积(m2)":  floatField("套内面积", func(r *models.RoomRecord) *float64 { return &r.InteriorArea }),
	"套内面积（m2）":  floatField("套内面积", func(r *models.RoomRecord) *float64 { return &r.InteriorArea }),
	"按建筑面积拟售单价": floatField("建面单价", func(r *models.RoomRecord) *float64 { return &r.PricePerBuiltArea }),
	"按套内面积拟售单价": floatField("套内单价", func(r *models.RoomRecord) *float64 { return &r.PricePerInteriorArea }),
}

func stringField(dst func(*models.RoomRecord) *string) fieldSetter {
	return func(r *models.RoomRecord, value string) error {
		*dst(r) = value
		return nil
	}
}

func floatField(column string, dst func(*models.RoomRecord) *float64) fieldSetter {
	return func(r *models.RoomRecord, value string) error {
		f, err := parseNumber(value)
		if err != nil {
			return &models.FieldParseError{Field: column, Value: value, Err: err}
		}
		*dst(r) = f
		return nil
	}
}

// numberPattern 十进制数值, 逗号只允许作为三位一组的千分位
var numberPattern = regexp.MustCompile(`^[+-]?(\d+|\d{1,3}(,\d{3})+)(\.\d+)?$`)

// parseNumber 解析数值, 允许千分位逗号
// 十六进制、科学计数法、NaN/Inf 和位置不正确的逗号均视为格式错误
func parseNumber(value string) (float64, error) {
	if value == "" {
		return 0, errors.New("空值")
	}
	if !numberPattern.MatchString(value) {
		return 0, fmt.Errorf("不是有效的数值: %q", value)
	}
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
}

// stripSpace 删除所有空白字符(含全角空格与不换行空格)
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeName 规范化字段名
func NormalizeName(s string) string {
	return stripSpace(s)
}

// NormalizeValue 规范化字段值: 删除空白, 再去掉单位"元/平方米"和"平方米"
func NormalizeValue(s string) string {
	s = stripSpace(s)
	s = strings.ReplaceAll(s, "元/平方米", "")
	return strings.ReplaceAll(s, "平方米", "")
}

// ExtractRoom 从房间页面的"房屋资料"表格提取基础字段
// 返回的记录未设置系统ID, 也未计算派生字段
func ExtractRoom(p *Page) (models.RoomRecord, error) {
	record := models.NewRoomRecord()

	block, err := p.roomTableBlock()
	if err != nil {
		return record, err
	}

	for _, row := range elementChildren(block) {
		cells := elementChildren(row)
		if len(cells) < 2 {
			continue
		}

		name := NormalizeName(textContent(cells[0]))
		value := NormalizeValue(textContent(cells[1]))

		setter, ok := roomFields[name]
		if !ok {
			utils.Debugf("忽略未知字段 [%s] %q=%q", p.URL, name, value)
			continue
		}
		if err := setter(&record, value); err != nil {
			return record, err
		}
	}

	return record, nil
}

// roomTableBlock 定位"房屋资料"所在行的父元素(通常为tbody)
func (p *Page) roomTableBlock() (*html.Node, error) {
	if len(p.Doc.Nodes) == 0 {
		return nil, &models.ContentLayoutError{URL: p.URL.String(), Landmark: RoomTableLandmark, Reason: "空文档"}
	}

	textNode := findTextNode(p.Doc.Nodes[0], RoomTableLandmark)
	if textNode == nil {
		return nil, &models.ContentLayoutError{URL: p.URL.String(), Landmark: RoomTableLandmark, Reason: "未找到标志文本"}
	}

	row := closestAncestor(textNode, func(n *html.Node) bool { return n.Data == "tr" })
	if row == nil || row.Parent == nil || row.Parent.Type != html.ElementNode {
		return nil, &models.ContentLayoutError{URL: p.URL.String(), Landmark: RoomTableLandmark, Reason: "标志文本不在表格行内"}
	}
	return row.Parent, nil
}
