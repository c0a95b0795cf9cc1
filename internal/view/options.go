package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonaycp/my-timesheet/internal/model"
)

// MonthMode 月份筛选方式
type MonthMode string

const (
	MonthLatest   MonthMode = "latest"   // 文件中最新的月份
	MonthSelected MonthMode = "selected" // 外部选择的月份
	MonthAll      MonthMode = "all"      // 不按月份筛选
)

// Focus 月内进一步的范围
type Focus string

const (
	FocusMonth    Focus = "month"
	FocusThisWeek Focus = "this-week"
	FocusNextWeek Focus = "next-week"
)

// Order 排序方向
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Options 视图选项，均由调用方（会话/界面）提供
type Options struct {
	Month    MonthMode
	Selected model.YearMonth // 仅 MonthSelected 使用，零值时取默认月份
	Focus    Focus
	Order    Order
	Today    time.Time // 零值时取当前时间
}

// DefaultOptions 最新月份、整月、升序
func DefaultOptions() Options {
	return Options{
		Month: MonthLatest,
		Focus: FocusMonth,
		Order: OrderAsc,
	}
}

func (o Options) today() time.Time {
	if o.Today.IsZero() {
		return time.Now()
	}
	return o.Today
}

// ParseMonthMode 解析月份模式，空字符串为 latest
func ParseMonthMode(s string) (MonthMode, error) {
	switch MonthMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MonthLatest:
		return MonthLatest, nil
	case MonthSelected:
		return MonthSelected, nil
	case MonthAll:
		return MonthAll, nil
	}
	return "", fmt.Errorf("unknown month mode %q", s)
}

// ParseFocus 解析周范围，空字符串为整月
func ParseFocus(s string) (Focus, error) {
	switch Focus(strings.ToLower(strings.TrimSpace(s))) {
	case "", FocusMonth, "all":
		return FocusMonth, nil
	case FocusThisWeek, "this":
		return FocusThisWeek, nil
	case FocusNextWeek, "next":
		return FocusNextWeek, nil
	}
	return "", fmt.Errorf("unknown focus %q", s)
}

// ParseOrder 解析排序方向，空字符串为升序
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	}
	return "", fmt.Errorf("unknown order %q", s)
}
