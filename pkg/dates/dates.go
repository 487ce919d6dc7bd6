// Package dates 提供排班窗口使用的日历日期工具。
//
// 所有计算都基于本地日历的年/月/日分量，不做 UTC 时间戳换算，
// 避免跨时区时出现日期偏移一天。
package dates

import (
	"fmt"
	"time"
)

// Layout 日期字符串格式
const Layout = "2006-01-02"

// DefaultDays 排班窗口默认天数
const DefaultDays = 14

// Range 从 start 所在的本地日历日开始，生成 days 个连续日期字符串
// days <= 0 时返回空切片
func Range(start time.Time, days int) []string {
	if days <= 0 {
		return []string{}
	}
	y, m, d := start.Date()
	loc := start.Location()

	out := make([]string, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, time.Date(y, m, d+i, 0, 0, 0, 0, loc).Format(Layout))
	}
	return out
}

// RangeFrom 解析 YYYY-MM-DD 后生成日期序列
func RangeFrom(start string, days int) ([]string, error) {
	t, err := Parse(start)
	if err != nil {
		return nil, err
	}
	return Range(t, days), nil
}

// Parse 严格解析 YYYY-MM-DD（本地时区零点）
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q: 需要 YYYY-MM-DD", s)
	}
	return t, nil
}

// Format 取 t 的本地日历日
func Format(t time.Time) string {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).Format(Layout)
}

// Today now 所在日历日的零点
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// AddDays 日期加减整天，n 可为负
func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location()).Format(Layout), nil
}

// IsDate 是否为合法的 YYYY-MM-DD
func IsDate(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}
