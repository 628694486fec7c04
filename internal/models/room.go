package models

// DefaultPlannedUse 规划用途默认值(页面未给出用途时视为住宅)
const DefaultPlannedUse = "住宅"

// RoomColumns 工作表列名,顺序与 RoomRecord.Row 一致
var RoomColumns = []string{
	"房号",
	"规划用途",
	"户型",
	"建筑面积",
	"套内面积",
	"建面单价",
	"套内单价",
	"得房率",
	"总价",
	"系统ID",
}

// RoomFloatColumns 需要按三位小数格式化的列(0起始下标)
var RoomFloatColumns = []int{3, 4, 5, 6, 7, 8}

// RoomRecord 单个房间的公示信息
type RoomRecord struct {
	RoomNumber           string  `json:"room_number"`             // 房号
	PlannedUse           string  `json:"planned_use"`             // 规划用途
	LayoutType           string  `json:"layout_type"`             // 户型
	BuiltArea            float64 `json:"built_area"`              // 建筑面积(平方米)
	InteriorArea         float64 `json:"interior_area"`           // 套内面积(平方米)
	PricePerBuiltArea    float64 `json:"price_per_built_area"`    // 按建筑面积拟售单价(元/平方米)
	PricePerInteriorArea float64 `json:"price_per_interior_area"` // 按套内面积拟售单价(元/平方米)
	SpaceEfficiencyRatio float64 `json:"space_efficiency_ratio"`  // 得房率
	TotalPrice           float64 `json:"total_price"`             // 总价
	SystemID             string  `json:"system_id"`               // 系统ID(来自URL中的houseId)
}

// NewRoomRecord 创建带默认值的房间记录
func NewRoomRecord() RoomRecord {
	return RoomRecord{PlannedUse: DefaultPlannedUse}
}

// ComputeDerived 计算派生字段
//   - 得房率 = 套内面积 / 建筑面积, 建筑面积为0时保持0
//   - 总价 = 建筑面积 * 建面单价
func (r *RoomRecord) ComputeDerived() {
	if r.BuiltArea != 0 {
		r.SpaceEfficiencyRatio = r.InteriorArea / r.BuiltArea
	}
	r.TotalPrice = r.BuiltArea * r.PricePerBuiltArea
}

// Row 按 RoomColumns 顺序返回单元格值
func (r RoomRecord) Row() []interface{} {
	return []interface{}{
		r.RoomNumber,
		r.PlannedUse,
		r.LayoutType,
		r.BuiltArea,
		r.InteriorArea,
		r.PricePerBuiltArea,
		r.PricePerInteriorArea,
		r.SpaceEfficiencyRatio,
		r.TotalPrice,
		r.SystemID,
	}
}

// BuildingSheet 一栋楼的房间集合,对应工作簿中的一个工作表
type BuildingSheet struct {
	Name  string       `json:"name"` // 楼栋名称(取自"楼盘表"标题)
	URL   string       `json:"url"`
	Rooms []RoomRecord `json:"rooms"`
}
