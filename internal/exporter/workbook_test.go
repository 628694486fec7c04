package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
)

func room(number string, built, interior, price float64) models.RoomRecord {
	r := models.NewRoomRecord()
	r.RoomNumber = number
	r.BuiltArea = built
	r.InteriorArea = interior
	r.PricePerBuiltArea = price
	r.SystemID = "id-" + number
	r.ComputeDerived()
	return r
}

func openSaved(t *testing.T, fs afero.Fs, path string) *excelize.File {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWorkbook_OneSheetPerBuilding(t *testing.T) {
	wb, err := NewWorkbook()
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.AddSheet(&models.BuildingSheet{
		Name:  "1号楼",
		Rooms: []models.RoomRecord{room("101", 100, 80, 50000), room("102", 90, 72, 48000)},
	})
	require.NoError(t, err)
	_, err = wb.AddSheet(&models.BuildingSheet{Name: "2号楼"})
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, wb.Save(fs, "data/p/p.xlsx"))

	f := openSaved(t, fs, "data/p/p.xlsx")
	require.Equal(t, []string{"1号楼", "2号楼"}, f.GetSheetList())

	rows, err := f.GetRows("1号楼", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, models.RoomColumns, rows[0])
	require.Equal(t, "101", rows[1][0])
	require.Equal(t, "住宅", rows[1][1])
	require.Equal(t, "5000000", rows[1][8])
	require.Equal(t, "id-101", rows[1][9])

	ratio, err := f.GetCellValue("1号楼", "H2")
	require.NoError(t, err)
	require.Equal(t, "0.800", ratio, "数值列按三位小数显示")

	empty, err := f.GetRows("2号楼")
	require.NoError(t, err)
	require.Len(t, empty, 1, "没有房间的楼栋只有表头")
}

func TestWorkbook_NoBuildingsKeepsEmptySheet(t *testing.T) {
	wb, err := NewWorkbook()
	require.NoError(t, err)
	defer wb.Close()

	fs := afero.NewMemMapFs()
	require.NoError(t, wb.Save(fs, "out.xlsx"))

	f := openSaved(t, fs, "out.xlsx")
	require.Len(t, f.GetSheetList(), 1)
}

func TestWorkbook_DuplicateAndInvalidNames(t *testing.T) {
	wb, err := NewWorkbook()
	require.NoError(t, err)
	defer wb.Close()

	names := []string{"1号楼", "1号楼", "A/B:C", strings.Repeat("长", 40)}
	var got []string
	for _, n := range names {
		name, err := wb.AddSheet(&models.BuildingSheet{Name: n})
		require.NoError(t, err)
		got = append(got, name)
	}

	require.Equal(t, "1号楼", got[0])
	require.Equal(t, "1号楼_2", got[1])
	require.Equal(t, "A_B_C", got[2])
	require.Equal(t, strings.Repeat("长", 31), got[3])
	require.Equal(t, got, wb.SheetNames())
}

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3号楼", "3号楼"},
		{"[草稿]*?", "_草稿___"},
		{"'引号'", "引号"},
		{"   ", "Sheet"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, SanitizeSheetName(tt.in), "输入 %q", tt.in)
	}
}
