package models

import (
	"errors"
	"strings"
	"time"
)

// ErrDateFormat 日期格式错误
var ErrDateFormat = errors.New("时间格式错误，应为: 2006-01-02 或 2006-01-02 15:04:05")

const dateOnlyLayout = "2006-01-02"

// dateLayouts 接受的日期格式，无时区时按本地时间解析
var dateLayouts = []string{"2006-01-02 15:04:05", dateOnlyLayout}

// ParseDate 解析 RFC3339 或本地时间格式的日期
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrDateFormat
}

// ParseRangeEnd 解析区间结束时间，只有日期部分时包含当天
func ParseRangeEnd(s string) (time.Time, error) {
	t, err := ParseDate(s)
	if err != nil {
		return t, err
	}
	if len(strings.TrimSpace(s)) == len(dateOnlyLayout) {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}
