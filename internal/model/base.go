package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ── PostgreSQL DATE 自定义类型 ──

// Date 对应 PostgreSQL DATE，统一规范为 YYYY-MM-DD 字符串。
type Date string

const dateLayout = "2006-01-02"

// ParseDate 严格校验 YYYY-MM-DD。
func ParseDate(s string) (Date, error) {
	if len(s) != len(dateLayout) {
		return "", fmt.Errorf("无效的日期 %q", s)
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("无效的日期 %q", s)
	}
	return Date(s), nil
}

func (d Date) String() string { return string(d) }

// Scan 兼容驱动返回的 time.Time / []byte / string。
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(v.Format(dateLayout))
	case []byte:
		return d.scanText(string(v))
	case string:
		return d.scanText(v)
	default:
		return fmt.Errorf("Date.Scan: unsupported type %T", src)
	}
	return nil
}

func (d *Date) scanText(s string) error {
	if len(s) < len(dateLayout) {
		return fmt.Errorf("Date.Scan: invalid value %q", s)
	}
	// 形如 2024-06-03T00:00:00Z 的文本只取日期部分
	*d = Date(s[:len(dateLayout)])
	return nil
}

// Value 写入 YYYY-MM-DD 文本。
func (d Date) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

// ── PostgreSQL TIME 自定义类型 ──

// Clock 对应 PostgreSQL TIME，统一规范为 HH:MM。
type Clock string

// ParseClock 校验 HH:MM（00:00-23:59），也接受 24:00 作为营业结束。
func ParseClock(s string) (Clock, error) {
	if s == "24:00" {
		return Clock(s), nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return "", fmt.Errorf("无效的时间 %q", s)
	}
	return Clock(t.Format("15:04")), nil
}

func (c Clock) String() string { return string(c) }

// Minutes 距零点的分钟数，非法值返回 -1。
func (c Clock) Minutes() int {
	var h, m int
	if _, err := fmt.Sscanf(string(c), "%d:%d", &h, &m); err != nil {
		return -1
	}
	return h*60 + m
}

// Scan 兼容驱动返回的 time.Time / []byte / string（HH:MM:SS[.ffffff]）。
func (c *Clock) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case nil:
		*c = ""
		return nil
	case time.Time:
		*c = Clock(v.Format("15:04"))
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("Clock.Scan: unsupported type %T", src)
	}
	if len(s) < 5 || !strings.Contains(s, ":") {
		return fmt.Errorf("Clock.Scan: invalid value %q", s)
	}
	*c = Clock(s[:5])
	return nil
}

// Value 写入 HH:MM 文本。
func (c Clock) Value() (driver.Value, error) {
	if c == "" {
		return nil, nil
	}
	return string(c), nil
}

// MarshalJSON 空值输出 null。
func (c Clock) MarshalJSON() ([]byte, error) {
	if c == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
