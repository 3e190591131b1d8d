package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 宽容值解析器：导出文件的数值/时间格式没有任何契约保证，
// 这里的函数对每种已知写法逐一尝试，全部失败时返回 ok=false（字段缺失）。

var (
	percentPattern      = regexp.MustCompile(`^\s*([-+0-9.,]+)\s*%\s*$`)
	clockPattern        = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	timeOfDayPattern    = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})(?:\.(\d{1,3}))?$`)
	fileDatePattern     = regexp.MustCompile(`(\d{4})\.(\d{2})\.(\d{2})`)
	fileDateTimePattern = regexp.MustCompile(`(\d{4})\.(\d{2})\.(\d{2})-(\d{2})\.(\d{2})\.(\d{2})`)
)

// dateLayouts 摘要块中出现过的日期写法
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006.01.02-15.04.05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"02.01.2006 15:04:05",
	"2006-01-02",
}

// ParseLocaleNumber 解析可能带 %、空格、千分位分隔符的浮点数
func ParseLocaleNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer("%", "", " ", "", ",", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseInt 解析可能带千分位分隔符的整数
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer(",", "", " ", "").Replace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePercent 解析命中率等百分比字段，统一归一到 0-100。
// 生产方在不同版本里分别导出过比值（0-1）、百分数和疑似被错误放大 100 倍的值，
// 这里按数值区间推断写法而不做严格校验。
func ParsePercent(s string) (float64, bool) {
	if m := percentPattern.FindStringSubmatch(s); m != nil {
		v, ok := ParseLocaleNumber(m[1])
		if !ok {
			return 0, false
		}
		return clampPercent(v), true
	}

	v, ok := ParseLocaleNumber(s)
	if !ok {
		return 0, false
	}
	switch {
	case v <= 1:
		// 0-1 比值
		v *= 100
	case v > 100 && v < 1000:
		// 疑似被 ×100：缩回后若落在比值区间则按比值处理，否则按百分数处理
		scaled := v / 100
		if scaled <= 1 {
			v = scaled * 100
		} else {
			v = scaled
		}
	}
	return clampPercent(v), true
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ParseDuration 解析时长，统一归一到秒。依次尝试：
//  1. 短字符串的小数值按分钟理解（某个已知导出版本的写法）
//  2. mm:ss 时钟格式
//  3. 普通数值直接按秒理解
func ParseDuration(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if len(s) <= 4 && !strings.Contains(s, ":") {
		if v, ok := ParseLocaleNumber(s); ok && v < 10 {
			return v * 60, true
		}
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		min, _ := strconv.Atoi(m[1])
		sec, _ := strconv.Atoi(m[2])
		return float64(min*60 + sec), true
	}

	if v, ok := ParseLocaleNumber(s); ok {
		return v, true
	}
	return 0, false
}

// ParseDate 解析对局时间。依次尝试：
//  1. raw 按已知日期写法直接解析
//  2. raw 为纯时刻（HH:MM:SS[.mmm]）时与文件名中的 YYYY.MM.DD 日期组合
//  3. 从文件名中提取完整的 YYYY.MM.DD-HH.MM.SS 时间戳
func ParseDate(raw string, fileName string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)

	if raw != "" {
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
				return t, true
			}
		}

		if m := timeOfDayPattern.FindStringSubmatch(raw); m != nil {
			if d := fileDatePattern.FindStringSubmatch(fileName); d != nil {
				year, _ := strconv.Atoi(d[1])
				month, _ := strconv.Atoi(d[2])
				day, _ := strconv.Atoi(d[3])
				hour, _ := strconv.Atoi(m[1])
				min, _ := strconv.Atoi(m[2])
				sec, _ := strconv.Atoi(m[3])
				nsec := 0
				if m[4] != "" {
					ms, _ := strconv.Atoi(m[4])
					nsec = ms * int(time.Millisecond)
				}
				return time.Date(year, time.Month(month), day, hour, min, sec, nsec, time.Local), true
			}
		}
	}

	if m := fileDateTimePattern.FindStringSubmatch(fileName); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		min, _ := strconv.Atoi(m[5])
		sec, _ := strconv.Atoi(m[6])
		return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.Local), true
	}

	return time.Time{}, false
}
