package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/qiuyev/AimMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskRepository 任务仓储
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建仓储
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindOrCreate 按归一化名称查找任务，不存在时创建。
// 插入走 ON CONFLICT DO NOTHING，与并发调用方竞争同名任务时两边都拿到同一行。
func (r *TaskRepository) FindOrCreate(ctx context.Context, name string) (*schema.Task, error) {
	task := schema.Task{Name: name}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&task).Error
	if err != nil {
		return nil, fmt.Errorf("创建任务失败: %w", err)
	}

	// 冲突跳过时 Create 不回填 ID，统一按名称重读
	var out schema.Task
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&out).Error; err != nil {
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	return &out, nil
}

// GetByName 按名称获取任务，不存在时返回 nil
func (r *TaskRepository) GetByName(ctx context.Context, name string) (*schema.Task, error) {
	var task schema.Task
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	return &task, nil
}

// GetAll 获取所有任务
func (r *TaskRepository) GetAll(ctx context.Context) ([]schema.Task, error) {
	var tasks []schema.Task
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	return tasks, nil
}

// Count 统计任务数量
func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&schema.Task{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计任务失败: %w", err)
	}
	return count, nil
}
