package parser

import (
	"strconv"
	"strings"
	"time"
)

// RawRun 从单个导出文件提取出的一次成绩记录。
// 所有字段都可缺失：导出格式没有任何契约保证，缺失是常态而非错误。
// 不变量：Accuracy 恒为 0-100 百分比，Duration 恒为秒。
type RawRun struct {
	Scenario  string
	Score     *float64
	Hits      *int
	Misses    *int
	Shots     *int
	Kills     *int
	Accuracy  *float64
	AvgTTK    *float64
	Overshots *int
	Reloads   *int
	AvgFPS    *float64
	DPI       *int
	Sens      *float64
	FOV       *float64
	Duration  *float64
	SPM       *float64
	PlayedAt  *time.Time
}

// eventAgg 逐击杀事件表的聚合结果
type eventAgg struct {
	count     int
	shots     int
	hits      int
	overshots int
	ttkSum    float64
	ttkCount  int
	firstTS   string
	lastTS    string
}

// ExtractRun 从文件内容提取一条成绩记录。
// 两个数据源按既定策略对账：摘要块（key,value / key: value 行）优先，
// 逐击杀事件表的聚合值只用于补缺，绝不覆盖已有的摘要值。
// 任何解析失败的行/字段在对应粒度上静默跳过，不影响其余内容。
func ExtractRun(content []byte, fileName string) *RawRun {
	lines := splitLines(content)
	if len(lines) < 2 {
		return &RawRun{}
	}

	summary := scanSummary(lines)
	normalizeColonKeys(summary)
	agg := scanEvents(lines)

	return reconcile(ResolveFields(summary), agg, fileName)
}

// splitLines 切分并修整非空行（首行去除 BOM）
func splitLines(content []byte) []string {
	text := strings.TrimPrefix(string(content), "\ufeff")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// scanSummary 摘要块扫描：先试 "key, value"（恰好两列），再试 "key: value"
func scanSummary(lines []string) map[string]string {
	summary := make(map[string]string)
	for _, line := range lines {
		parts := strings.Split(line, ",")
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			if key != "" {
				summary[key] = strings.TrimSpace(parts[1])
			}
			continue
		}
		if len(parts) == 1 {
			if key, value, ok := strings.Cut(line, ":"); ok {
				key = strings.TrimSpace(key)
				if key != "" {
					summary[key] = strings.TrimSpace(value)
				}
			}
		}
	}
	return summary
}

// normalizeColonKeys 把带冒号后缀的键（如 "Score:"）归并到无冒号键上并删除，
// 避免字段映射同时看到同一字段的两种拼写而产生不确定的选择。
func normalizeColonKeys(summary map[string]string) {
	for key, value := range summary {
		trimmed := strings.TrimSpace(strings.TrimSuffix(key, ":"))
		if trimmed == key || trimmed == "" {
			continue
		}
		if _, ok := summary[trimmed]; !ok {
			summary[trimmed] = value
		}
		delete(summary, key)
	}
}

// eventColumns 事件表各列的下标（-1 表示未找到）
type eventColumns struct {
	kill, timestamp, ttk, shots, hits, accuracy, overshots int
}

// locateColumns 在表头行中按子串定位各列。
// 先定位更具体的列名（overshots 先于 shots），已占用的列不再参与后续匹配，
// 避免 "overshots" 列被 "shots" 误领。
func locateColumns(header []string) eventColumns {
	cols := eventColumns{kill: -1, timestamp: -1, ttk: -1, shots: -1, hits: -1, accuracy: -1, overshots: -1}
	claimed := make(map[int]bool)

	find := func(name string) int {
		for i, cell := range header {
			if claimed[i] {
				continue
			}
			if strings.Contains(strings.ToLower(cell), name) {
				claimed[i] = true
				return i
			}
		}
		return -1
	}

	cols.kill = find("kill")
	cols.timestamp = find("timestamp")
	cols.ttk = find("ttk")
	cols.overshots = find("overshots")
	cols.shots = find("shots")
	cols.hits = find("hits")
	cols.accuracy = find("accuracy")
	return cols
}

// scanEvents 逐击杀事件表扫描：首行视为列头，
// 之后击杀序号列能解析为整数的行逐行累加。
func scanEvents(lines []string) eventAgg {
	var agg eventAgg

	header := strings.Split(lines[0], ",")
	cols := locateColumns(header)
	if cols.kill < 0 {
		return agg
	}

	cell := func(fields []string, idx int) (string, bool) {
		if idx < 0 || idx >= len(fields) {
			return "", false
		}
		return strings.TrimSpace(fields[idx]), true
	}

	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		raw, ok := cell(fields, cols.kill)
		if !ok {
			continue
		}
		if _, ok := ParseInt(raw); !ok {
			continue
		}

		agg.count++
		if v, ok := cell(fields, cols.shots); ok {
			if n, ok := ParseInt(v); ok {
				agg.shots += n
			}
		}
		if v, ok := cell(fields, cols.hits); ok {
			if n, ok := ParseInt(v); ok {
				agg.hits += n
			}
		}
		if v, ok := cell(fields, cols.overshots); ok {
			if n, ok := ParseInt(v); ok {
				agg.overshots += n
			}
		}
		if v, ok := cell(fields, cols.ttk); ok {
			if t, ok := ParseLocaleNumber(strings.TrimSuffix(v, "s")); ok {
				agg.ttkSum += t
				agg.ttkCount++
			}
		}
		if v, ok := cell(fields, cols.timestamp); ok && v != "" {
			if agg.firstTS == "" {
				agg.firstTS = v
			}
			agg.lastTS = v
		}
	}
	return agg
}

// reconcile 按固定顺序对账摘要值与事件聚合值并产出最终记录
func reconcile(resolved map[Field]string, agg eventAgg, fileName string) *RawRun {
	run := &RawRun{Scenario: strings.TrimSpace(resolved[FieldScenario])}

	run.Score = parseFloatField(resolved, FieldScore)
	run.Hits = parseIntField(resolved, FieldHits)
	run.Misses = parseIntField(resolved, FieldMisses)
	run.Shots = parseIntField(resolved, FieldShots)
	run.Overshots = parseIntField(resolved, FieldOvershots)
	run.Reloads = parseIntField(resolved, FieldReloads)
	run.DPI = parseIntField(resolved, FieldDPI)
	run.AvgFPS = parseFloatField(resolved, FieldAvgFPS)
	run.Sens = parseFloatField(resolved, FieldSens)
	run.FOV = parseFloatField(resolved, FieldFOV)
	if v, ok := ParsePercent(resolved[FieldAccuracy]); ok {
		run.Accuracy = &v
	}
	if v, ok := ParseLocaleNumber(strings.TrimSuffix(strings.TrimSpace(resolved[FieldAvgTTK]), "s")); ok {
		run.AvgTTK = &v
	}
	if v, ok := ParseDuration(resolved[FieldDuration]); ok {
		run.Duration = &v
	}
	if t, ok := ParseDate(resolved[FieldPlayedAt], fileName); ok {
		run.PlayedAt = &t
	}

	// 摘要中的命中/脱靶数优先于一切事件聚合：两者都在且总射击数缺失时求和补上
	if run.Hits != nil && run.Misses != nil && run.Shots == nil {
		shots := *run.Hits + *run.Misses
		run.Shots = &shots
	}

	// 事件聚合只补缺
	if agg.count > 0 {
		kills := agg.count
		run.Kills = &kills
		if run.Shots == nil && agg.shots > 0 {
			v := agg.shots
			run.Shots = &v
		}
		if run.Hits == nil && agg.hits > 0 {
			v := agg.hits
			run.Hits = &v
		}
		if run.Overshots == nil && agg.overshots > 0 {
			v := agg.overshots
			run.Overshots = &v
		}
		if run.AvgTTK == nil && agg.ttkCount > 0 {
			v := agg.ttkSum / float64(agg.ttkCount)
			run.AvgTTK = &v
		}
	}

	// 命中率缺失或不合理时由命中/射击数重算
	if (run.Accuracy == nil || *run.Accuracy > 100) && run.Hits != nil && run.Shots != nil && *run.Shots > 0 {
		v := clampPercent(float64(*run.Hits) / float64(*run.Shots) * 100)
		run.Accuracy = &v
	}

	// 场景名缺失时从文件名回退
	if run.Scenario == "" {
		run.Scenario = ScenarioFromFileName(fileName)
	}

	// 时长缺失时由首末事件时刻差推导
	if run.Duration == nil && agg.firstTS != "" && agg.lastTS != "" {
		first, ok1 := clockSeconds(agg.firstTS)
		last, ok2 := clockSeconds(agg.lastTS)
		if ok1 && ok2 && last > first {
			v := last - first
			run.Duration = &v
		}
	}

	// 每分钟得分
	if run.Score != nil && run.Duration != nil && *run.Duration > 0 {
		v := *run.Score / (*run.Duration / 60)
		run.SPM = &v
	}

	return run
}

func parseFloatField(resolved map[Field]string, f Field) *float64 {
	if v, ok := ParseLocaleNumber(resolved[f]); ok {
		return &v
	}
	return nil
}

func parseIntField(resolved map[Field]string, f Field) *int {
	if v, ok := ParseInt(resolved[f]); ok {
		return &v
	}
	return nil
}

// clockSeconds 把 HH:MM:SS[.mmm] 时钟偏移解析为秒数
func clockSeconds(s string) (float64, bool) {
	m := timeOfDayPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	v := float64(hour*3600 + min*60 + sec)
	if m[4] != "" {
		frac, _ := strconv.ParseFloat("0."+m[4], 64)
		v += frac
	}
	return v, true
}
