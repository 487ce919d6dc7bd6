package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateScan(t *testing.T) {
	cases := []struct {
		src  interface{}
		want Date
	}{
		{time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), "2024-06-03"},
		{[]byte("2024-06-03"), "2024-06-03"},
		{"2024-06-03T00:00:00Z", "2024-06-03"},
		{nil, ""},
	}
	for _, c := range cases {
		var d Date
		if err := d.Scan(c.src); err != nil {
			t.Fatalf("Scan(%v) 失败: %v", c.src, err)
		}
		if d != c.want {
			t.Errorf("Scan(%v) = %q，期望 %q", c.src, d, c.want)
		}
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("不支持的类型应返回错误")
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-06-03"); err != nil {
		t.Errorf("合法日期不应报错: %v", err)
	}
	for _, s := range []string{"2024-6-3", "2024-02-30", "", "20240603"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) 应返回错误", s)
		}
	}
}

func TestClockScanAndMinutes(t *testing.T) {
	var c Clock
	if err := c.Scan("10:00:00"); err != nil {
		t.Fatalf("Scan 失败: %v", err)
	}
	if c != "10:00" {
		t.Errorf("期望 10:00，实际 %q", c)
	}
	if c.Minutes() != 600 {
		t.Errorf("期望 600 分钟，实际 %d", c.Minutes())
	}
	if Clock("").Minutes() != -1 {
		t.Error("空值分钟数应为 -1")
	}
}

func TestParseClock(t *testing.T) {
	for _, s := range []string{"09:00", "23:59", "24:00", "00:00"} {
		if _, err := ParseClock(s); err != nil {
			t.Errorf("ParseClock(%q) 不应报错: %v", s, err)
		}
	}
	for _, s := range []string{"9:00", "25:00", "12:60", "noon", ""} {
		if _, err := ParseClock(s); err == nil {
			t.Errorf("ParseClock(%q) 应返回错误", s)
		}
	}
}

func TestClockJSON(t *testing.T) {
	raw, _ := json.Marshal(struct {
		Start Clock `json:"start"`
		End   Clock `json:"end"`
	}{Start: "10:00"})
	if string(raw) != `{"start":"10:00","end":null}` {
		t.Errorf("JSON 输出不符: %s", raw)
	}
}
