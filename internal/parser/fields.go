package parser

import (
	"sort"
	"strings"
)

// Field 规范字段名
type Field int

const (
	FieldScenario Field = iota
	FieldScore
	FieldHits
	FieldMisses
	FieldShots
	FieldAccuracy
	FieldAvgTTK
	FieldOvershots
	FieldReloads
	FieldAvgFPS
	FieldDPI
	FieldSens
	FieldFOV
	FieldDuration
	FieldPlayedAt
)

// allFields 解析顺序（固定，保证结果与 map 迭代顺序无关）
var allFields = []Field{
	FieldScenario,
	FieldScore,
	FieldHits,
	FieldMisses,
	FieldOvershots,
	FieldShots,
	FieldAccuracy,
	FieldAvgTTK,
	FieldReloads,
	FieldAvgFPS,
	FieldDPI,
	FieldSens,
	FieldFOV,
	FieldPlayedAt,
	FieldDuration,
}

// fieldAliases 规范字段 → 已知表头写法（有序，小写）。
// 同一字段在不同导出版本里见过多种拼写，这里只收录实际出现过的。
var fieldAliases = map[Field][]string{
	FieldScenario:  {"scenario", "scenario name", "task name", "map"},
	FieldScore:     {"score", "final score", "points"},
	FieldHits:      {"hit count", "hits", "targets hit"},
	FieldMisses:    {"miss count", "misses", "shots missed"},
	FieldShots:     {"shot count", "shots fired", "shots"},
	FieldAccuracy:  {"accuracy", "avg accuracy", "hit ratio"},
	FieldAvgTTK:    {"avg ttk", "avg time to kill", "average time to kill", "kill time"},
	FieldOvershots: {"overshots", "over shots"},
	FieldReloads:   {"reloads", "reload count"},
	FieldAvgFPS:    {"avg fps", "average fps", "fps"},
	FieldDPI:       {"dpi", "mouse dpi"},
	FieldSens:      {"horiz sens", "sens scale", "sensitivity", "sens"},
	FieldFOV:       {"fov", "field of view"},
	FieldDuration:  {"duration", "challenge duration", "total time", "time elapsed"},
	FieldPlayedAt:  {"date", "played at", "timestamp", "time stamp", "datetime"},
}

// ResolveFields 把原始键值表解析为规范字段表。
// 两趟纯函数式解析：第一趟对别名做大小写不敏感的精确匹配，
// 第二趟仅对仍未命中的字段做子串匹配（原始键包含别名）。
// 精确匹配永远优先，且第一趟命中的字段与原始键都不会被第二趟改写，
// 这样带装饰的表头（多余冒号、附加词）不会把字段解析到错误的列上。
func ResolveFields(raw map[string]string) map[Field]string {
	normalized := make(map[string]string, len(raw))
	keys := make([]string, 0, len(raw))
	for k, v := range raw {
		nk := strings.ToLower(strings.TrimSpace(k))
		if nk == "" {
			continue
		}
		if _, ok := normalized[nk]; !ok {
			normalized[nk] = v
			keys = append(keys, nk)
		}
	}
	sort.Strings(keys)

	resolved := make(map[Field]string)
	claimed := make(map[string]bool)

	// 第一趟：精确匹配
	for _, f := range allFields {
		for _, alias := range fieldAliases[f] {
			if v, ok := normalized[alias]; ok {
				resolved[f] = v
				claimed[alias] = true
				break
			}
		}
	}

	// 第二趟：子串匹配，只补缺，不覆盖，且跳过已被精确匹配占用的键
	for _, f := range allFields {
		if _, ok := resolved[f]; ok {
			continue
		}
		for _, alias := range fieldAliases[f] {
			for _, k := range keys {
				if claimed[k] || !strings.Contains(k, alias) {
					continue
				}
				resolved[f] = normalized[k]
				claimed[k] = true
				break
			}
			if _, ok := resolved[f]; ok {
				break
			}
		}
	}

	return resolved
}
