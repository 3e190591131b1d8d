package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// ScanStats 一次目录扫描的结果统计
type ScanStats struct {
	Scanned   int // 成功走完摄取管线的文件数
	New       int // 新插入
	Duplicate int // 哈希已存在
	Failed    int // 读取/入库失败（单文件失败不中断扫描）
}

// Scanner 目录扫描器：递归遍历根目录下所有 .csv 文件并逐个摄取。
// 全量扫描用于首次启动，增量扫描以持久化的扫描游标为界，
// 补上监控不在线期间写入的文件。
type Scanner struct {
	ing  *Ingestor
	root string
}

// NewScanner 创建扫描器
func NewScanner(ing *Ingestor, root string) *Scanner {
	return &Scanner{ing: ing, root: root}
}

// ScanAll 全量扫描：无条件访问每个匹配文件
func (s *Scanner) ScanAll(ctx context.Context) (ScanStats, error) {
	return s.scan(ctx, time.Time{})
}

// ScanSince 增量扫描：只访问修改时间晚于 cutoff 的文件
func (s *Scanner) ScanSince(ctx context.Context, cutoff time.Time) (ScanStats, error) {
	return s.scan(ctx, cutoff)
}

func (s *Scanner) scan(ctx context.Context, cutoff time.Time) (ScanStats, error) {
	start := time.Now()
	var stats ScanStats

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// 不可读的目录/文件跳过，不中断整个扫描
			slog.Warn("扫描条目失败", "path", path, "error", err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !IsStatsFile(path) {
			return nil
		}

		if !cutoff.IsZero() {
			info, err := d.Info()
			if err != nil {
				slog.Warn("读取文件信息失败", "path", path, "error", err)
				stats.Failed++
				return nil
			}
			if !info.ModTime().After(cutoff) {
				return nil
			}
		}

		res, err := s.ing.IngestFile(ctx, path)
		if err != nil {
			slog.Warn("摄取文件失败", "path", path, "error", err)
			stats.Failed++
			return nil
		}

		stats.Scanned++
		if res.IsNew {
			stats.New++
		} else {
			stats.Duplicate++
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	slog.Info("目录扫描完成",
		"root", s.root,
		"scanned", stats.Scanned,
		"new", stats.New,
		"duplicate", stats.Duplicate,
		"failed", stats.Failed,
		"elapsed", time.Since(start),
	)
	return stats, nil
}

// IsStatsFile 判断是否为成绩导出文件（大小写不敏感的 .csv 扩展名）
func IsStatsFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
