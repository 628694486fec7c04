package models

// TaskStatus 任务状态
type TaskStatus string

// TaskStatusCompleted 已完成; 报告只在项目成功后生成
const TaskStatusCompleted TaskStatus = "completed"

// TaskStats 任务统计
type TaskStats struct {
	Buildings      int     `json:"buildings"`       // 处理的楼栋数
	Rooms          int     `json:"rooms"`           // 提取的房间数
	CacheHits      int     `json:"cache_hits"`      // 命中本地缓存的页面数
	NetworkFetches int     `json:"network_fetches"` // 实际发起网络请求的页面数
	Retries        int     `json:"retries"`         // 连接失败后的重试次数
	Duration       float64 `json:"duration"`        // 总耗时(秒)
}

// Add 累加另一份统计
func (s *TaskStats) Add(other TaskStats) {
	s.Buildings += other.Buildings
	s.Rooms += other.Rooms
	s.CacheHits += other.CacheHits
	s.NetworkFetches += other.NetworkFetches
	s.Retries += other.Retries
	s.Duration += other.Duration
}

// Sub 返回 s - other, 用于计算单个项目期间的增量
func (s TaskStats) Sub(other TaskStats) TaskStats {
	return TaskStats{
		Buildings:      s.Buildings - other.Buildings,
		Rooms:          s.Rooms - other.Rooms,
		CacheHits:      s.CacheHits - other.CacheHits,
		NetworkFetches: s.NetworkFetches - other.NetworkFetches,
		Retries:        s.Retries - other.Retries,
		Duration:       s.Duration - other.Duration,
	}
}
