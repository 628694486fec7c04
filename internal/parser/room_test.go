package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
)

const roomPageHTML = `<html><body>
<table>
 <tbody>
  <tr><td colspan="2"><b>房屋资料</b></td></tr>
  <tr><td>房间号</td><td> 1-101 </td></tr>
  <!-- 注释节点 -->
  <tr><td>规划设计用途</td><td>住宅</td></tr>
  <tr><td>户　型</td><td>三居室</td></tr>
  <tr><td>建筑面积（m2）</td><td>100 平方米</td></tr>
  <tr><td>套内面积(m2)</td><td>80平方米</td></tr>
  <tr><td>按建筑面积拟售单价</td><td>50,000　元/平方米</td></tr>
  <tr><td>按套内面积拟售单价</td><td>62500元/平方米</td></tr>
  <tr><td>朝向</td><td>南北</td></tr>
  <tr><td>单元格不足</td></tr>
 </tbody>
</table>
</body></html>`

func TestExtractRoom(t *testing.T) {
	page, err := Parse("http://host/eportal/ui?pageId=1&houseId=8848&houseNo=101", []byte(roomPageHTML))
	require.NoError(t, err)

	record, err := ExtractRoom(page)
	require.NoError(t, err)

	require.Equal(t, "1-101", record.RoomNumber)
	require.Equal(t, "住宅", record.PlannedUse)
	require.Equal(t, "三居室", record.LayoutType)
	require.Equal(t, 100.0, record.BuiltArea)
	require.Equal(t, 80.0, record.InteriorArea)
	require.Equal(t, 50000.0, record.PricePerBuiltArea)
	require.Equal(t, 62500.0, record.PricePerInteriorArea)
	require.Zero(t, record.TotalPrice, "派生字段由调用方计算")
	require.Empty(t, record.SystemID)
}

func TestExtractRoom_DefaultsWhenRowsMissing(t *testing.T) {
	html := `<table><tr><td>房屋资料</td></tr><tr><td>用途</td><td></td></tr></table>`
	page, err := Parse("http://host/", []byte(html))
	require.NoError(t, err)

	record, err := ExtractRoom(page)
	require.NoError(t, err)
	require.Equal(t, "", record.PlannedUse, "页面给出空用途时按页面值覆盖")
	require.Zero(t, record.BuiltArea)
}

func TestExtractRoom_FieldParseError(t *testing.T) {
	html := `<table><tr><td>房屋资料</td></tr><tr><td>建筑面积</td><td>待定</td></tr></table>`
	page, err := Parse("http://host/", []byte(html))
	require.NoError(t, err)

	_, err = ExtractRoom(page)
	var fpe *models.FieldParseError
	require.True(t, errors.As(err, &fpe), "应返回FieldParseError, 实际: %v", err)
	require.Equal(t, "建筑面积", fpe.Field)
	require.Equal(t, "待定", fpe.Value)
}

func TestExtractRoom_MissingLandmark(t *testing.T) {
	page, err := Parse("http://host/", []byte(`<html><body><table><tr><td>房间号</td><td>101</td></tr></table></body></html>`))
	require.NoError(t, err)

	_, err = ExtractRoom(page)
	var layoutErr *models.ContentLayoutError
	require.True(t, errors.As(err, &layoutErr))
	require.Equal(t, RoomTableLandmark, layoutErr.Landmark)
}

func TestExtractRoom_GBKPage(t *testing.T) {
	html := `<html><head><meta charset="gbk"></head><body><table>` +
		`<tr><td>房屋资料</td></tr><tr><td>房间号</td><td>2-202</td></tr></table></body></html>`
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(html)
	require.NoError(t, err)

	page, err := Parse("http://host/", []byte(encoded))
	require.NoError(t, err)

	record, err := ExtractRoom(page)
	require.NoError(t, err)
	require.Equal(t, "2-202", record.RoomNumber)
}

func TestExtractRoom_MalformedCommaNumber(t *testing.T) {
	html := `<table><tr><td>房屋资料</td></tr><tr><td>建筑面积</td><td>1,2,3平方米</td></tr></table>`
	page, err := Parse("http://host/", []byte(html))
	require.NoError(t, err)

	_, err = ExtractRoom(page)
	var fpe *models.FieldParseError
	require.True(t, errors.As(err, &fpe), "位置错误的逗号应返回FieldParseError, 实际: %v", err)
	require.Equal(t, "1,2,3", fpe.Value)
}

func TestExtractRoom_GBKPageWithoutMeta(t *testing.T) {
	html := `<html><body><table>` +
		`<tr><td>房屋资料</td></tr><tr><td>户型</td><td>两居室</td></tr></table></body></html>`
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(html)
	require.NoError(t, err)

	page, err := Parse("http://host/", []byte(encoded))
	require.NoError(t, err)

	record, err := ExtractRoom(page)
	require.NoError(t, err)
	require.Equal(t, "两居室", record.LayoutType)
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"单价去单位与全角空格", "  12,000.5　元/平方米 ", "12,000.5"},
		{"面积去单位", "89.12 平方米", "89.12"},
		{"不换行空格", "\u00a0住宅\t\n", "住宅"},
		{"无需处理", "三居室", "三居室"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeValue(tt.in))
		})
	}

	require.Equal(t, "户型", NormalizeName(" 户　型 "))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12,000.5", 12000.5, false},
		{"89.12", 89.12, false},
		{"", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"abc", 0, true},
		{"-3.5", -3.5, false},
		{"1,234,567", 1234567, false},
		{"1,2,3", 0, true},
		{",,5,", 0, true},
		{"12,00", 0, true},
		{"0x1p4", 0, true},
		{"1e3", 0, true},
		{"1.", 0, true},
	}

	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if tt.wantErr {
			require.Error(t, err, "输入 %q", tt.in)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestSynonymsCoverAllColumns(t *testing.T) {
	synonyms := map[string][]string{
		"RoomNumber":   {"房间号"},
		"PlannedUse":   {"规划设计用途", "用途"},
		"BuiltArea":    {"建筑面积", "建筑面积(m2)", "建筑面积（m2）"},
		"InteriorArea": {"套内面积", "套内面积(m2)", "套内面积（m2）"},
	}
	for field, names := range synonyms {
		for _, name := range names {
			_, ok := roomFields[name]
			require.True(t, ok, "%s 缺少同义词 %q", field, name)
		}
	}

	var r models.RoomRecord
	require.NoError(t, roomFields["建筑面积（m2）"](&r, "95.5"))
	require.NoError(t, roomFields["用途"](&r, "商业"))
	require.Equal(t, 95.5, r.BuiltArea)
	require.Equal(t, "商业", r.PlannedUse)
}
