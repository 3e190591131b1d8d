package parser

import (
	"path/filepath"
	"regexp"
	"strings"
)

// 同一个任务在不同日期导出的文件会带上日期戳后缀，
// 这里把各种后缀剥掉，使它们归到同一个任务名下。
var (
	challengeStatsSuffix = regexp.MustCompile(`(?i)\s*-\s*challenge\s*-\s*\d{4}\.\d{2}\.\d{2}-\d{2}\.\d{2}\.\d{2}(?:\.\d+)?\s*stats\s*$`)
	datedStatsSuffix     = regexp.MustCompile(`(?i)\s*-?\s*\d{4}\.\d{2}\.\d{2}-\d{2}\.\d{2}\.\d{2}(?:\.\d+)?\s*stats\s*$`)
	bareStatsSuffix      = regexp.MustCompile(`(?i)\s+stats\s*$`)
	innerWhitespace      = regexp.MustCompile(`\s+`)
)

// NormalizeTaskName 归一化任务名：依次剥去 Challenge 日期戳后缀、
// 普通日期戳后缀和裸 "Stats" 后缀，并折叠内部空白。
// 没有匹配后缀的输入仅做空白折叠后原样返回。
func NormalizeTaskName(name string) string {
	name = challengeStatsSuffix.ReplaceAllString(name, "")
	name = datedStatsSuffix.ReplaceAllString(name, "")
	name = bareStatsSuffix.ReplaceAllString(name, "")
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(name, " "))
}

// ScenarioFromFileName 从文件名推导场景名（文件内容中没有场景名时的回退）
func ScenarioFromFileName(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return NormalizeTaskName(base)
}
