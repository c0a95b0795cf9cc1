package model

import "time"

// Entry 单条排班（卡片）
type Entry struct {
	Place    string `json:"place"`
	Shift    string `json:"shift"`
	CellText string `json:"cellText"`
}

// DayGroup 某一天的排班
type DayGroup struct {
	Date    time.Time `json:"date"`
	Label   string    `json:"label"` // Monday, Jun 03
	Entries []Entry   `json:"entries"`
}

// WeekGroup 一周（周一开始）的排班
type WeekGroup struct {
	Start time.Time  `json:"start"`
	Label string     `json:"label"` // Jun 03 – Jun 09
	Days  []DayGroup `json:"days"`
}

// ViewModel 分组视图，渲染与导出的唯一输入
type ViewModel struct {
	Weeks          []WeekGroup `json:"weeks"`
	DistinctDays   int         `json:"distinctDays"`
	TotalEntries   int         `json:"totalEntries"`
	DistinctPlaces int         `json:"distinctPlaces"`
}

// IsEmpty 是否没有任何记录
func (v *ViewModel) IsEmpty() bool {
	return v == nil || v.TotalEntries == 0
}
