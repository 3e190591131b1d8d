package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qiuyev/AimMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RunRepository 成绩记录仓储
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository 创建仓储
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// InsertIfAbsent 按内容哈希原子地"不存在则插入"。
// 唯一性由 content_hash 的唯一索引在存储层保证，插入与存在性判定是
// 同一条 ON CONFLICT DO NOTHING 语句，并发调用同一哈希时恰好一方 inserted=true。
func (r *RunRepository) InsertIfAbsent(ctx context.Context, run *schema.Run) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_hash"}},
		DoNothing: true,
	}).Create(run)
	if result.Error != nil {
		return false, fmt.Errorf("插入成绩记录失败: %w", result.Error)
	}

	inserted := result.RowsAffected > 0
	if inserted {
		slog.Debug("新成绩记录入库", "hash", run.ContentHash, "task_id", run.TaskID, "file", run.FileName)
	}
	return inserted, nil
}

// GetByHash 按内容哈希获取记录，不存在时返回 nil
func (r *RunRepository) GetByHash(ctx context.Context, hash string) (*schema.Run, error) {
	var run schema.Run
	err := r.db.WithContext(ctx).Where("content_hash = ?", hash).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询成绩记录失败: %w", err)
	}
	return &run, nil
}

// GetByTask 按任务查询成绩记录（按对局时间倒序）
func (r *RunRepository) GetByTask(ctx context.Context, taskID int64, limit int) ([]schema.Run, error) {
	var runs []schema.Run
	query := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("played_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("查询成绩记录失败: %w", err)
	}
	return runs, nil
}

// CountByTask 统计某任务的成绩记录数
func (r *RunRepository) CountByTask(ctx context.Context, taskID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&schema.Run{}).Where("task_id = ?", taskID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计成绩记录失败: %w", err)
	}
	return count, nil
}

// Count 统计成绩记录总数
func (r *RunRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&schema.Run{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计成绩记录失败: %w", err)
	}
	return count, nil
}

// RecentRuns 获取最近入库的成绩记录
func (r *RunRepository) RecentRuns(ctx context.Context, limit int) ([]schema.Run, error) {
	var runs []schema.Run
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("查询成绩记录失败: %w", err)
	}
	return runs, nil
}
