// Package exporter 将楼栋房间数据写入Excel工作簿
package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

// 数值列的显示格式(三位小数)
const floatNumFmt = "0.000"

// maxSheetNameLen Excel工作表名称最大长度
const maxSheetNameLen = 31

// Workbook 项目工作簿, 每栋楼一个工作表
type Workbook struct {
	file         *excelize.File
	defaultSheet string
	sheets       []string
	usedNames    map[string]bool // 小写名称, Excel工作表名不区分大小写
	headerStyle  int
	floatStyle   int
}

// NewWorkbook 创建空工作簿
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("创建表头样式失败: %w", err)
	}

	numFmt := floatNumFmt
	floatStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("创建数值样式失败: %w", err)
	}

	return &Workbook{
		file:         f,
		defaultSheet: f.GetSheetName(f.GetActiveSheetIndex()),
		usedNames:    make(map[string]bool),
		headerStyle:  headerStyle,
		floatStyle:   floatStyle,
	}, nil
}

// AddSheet 为一栋楼添加工作表, 返回实际使用的工作表名称
func (w *Workbook) AddSheet(sheet *models.BuildingSheet) (string, error) {
	name := w.uniqueSheetName(sheet.Name)

	if len(w.sheets) == 0 && w.defaultSheet != "" {
		// 第一栋楼直接复用默认的 Sheet1
		if err := w.file.SetSheetName(w.defaultSheet, name); err != nil {
			return "", fmt.Errorf("重命名工作表失败 [%s]: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return "", fmt.Errorf("创建工作表失败 [%s]: %w", name, err)
	}
	w.sheets = append(w.sheets, name)
	w.usedNames[strings.ToLower(name)] = true

	if err := w.writeRows(name, sheet.Rooms); err != nil {
		return "", fmt.Errorf("写入工作表失败 [%s]: %w", name, err)
	}

	utils.Debugf("工作表 [%s] 写入 %d 个房间", name, len(sheet.Rooms))
	return name, nil
}

// writeRows 写入表头和房间行, 数值列应用三位小数格式
func (w *Workbook) writeRows(sheetName string, rooms []models.RoomRecord) error {
	header := make([]interface{}, len(models.RoomColumns))
	for i, col := range models.RoomColumns {
		header[i] = col
	}
	if err := w.file.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(models.RoomColumns))
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(sheetName, "A1", lastCol+"1", w.headerStyle); err != nil {
		return err
	}

	for i, room := range rooms {
		row := room.Row()
		if err := w.file.SetSheetRow(sheetName, "A"+strconv.Itoa(i+2), &row); err != nil {
			return err
		}
	}

	if len(rooms) > 0 {
		lastRow := len(rooms) + 1
		for _, idx := range models.RoomFloatColumns {
			col, err := excelize.ColumnNumberToName(idx + 1)
			if err != nil {
				return err
			}
			if err := w.file.SetCellStyle(sheetName, col+"2", col+strconv.Itoa(lastRow), w.floatStyle); err != nil {
				return err
			}
		}
	}

	return w.file.SetColWidth(sheetName, "A", lastCol, 14)
}

// uniqueSheetName 清理非法字符并保证名称在工作簿内唯一
func (w *Workbook) uniqueSheetName(raw string) string {
	base := SanitizeSheetName(raw)
	if !w.usedNames[strings.ToLower(base)] {
		return base
	}

	for n := 2; ; n++ {
		suffix := "_" + strconv.Itoa(n)
		candidate := truncateRunes(base, maxSheetNameLen-utf8.RuneCountInString(suffix)) + suffix
		if !w.usedNames[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

// SanitizeSheetName 按Excel规则清理工作表名称
// 不能包含 []:*?/\ , 不能以单引号开头或结尾, 最长31个字符
func SanitizeSheetName(raw string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, strings.TrimSpace(raw))
	name = strings.Trim(name, "'")
	name = truncateRunes(name, maxSheetNameLen)

	if name == "" {
		return "Sheet"
	}
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// SheetNames 已添加的工作表名称(按添加顺序)
func (w *Workbook) SheetNames() []string {
	return append([]string(nil), w.sheets...)
}

// Save 保存到 path
// 没有任何楼栋时保留一个空的默认工作表
func (w *Workbook) Save(fs afero.Fs, path string) error {
	if len(w.sheets) == 0 {
		utils.Warnf("工作簿没有任何楼栋数据, 将保存空工作表: %s", path)
	} else {
		w.file.SetActiveSheet(0)
	}

	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("生成工作簿失败: %w", err)
	}
	if err := utils.WriteFileAtomic(fs, path, buf.Bytes()); err != nil {
		return fmt.Errorf("保存工作簿失败 [%s]: %w", path, err)
	}

	utils.Infof("工作簿已保存: %s (%d 个工作表)", path, len(w.sheets))
	return nil
}

// Close 释放工作簿资源
func (w *Workbook) Close() error {
	return w.file.Close()
}
