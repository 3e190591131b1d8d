package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qiuyev/AimMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 扫描游标相关的设置键
const (
	SettingInitialScanComplete = "ingest.initial_scan_complete"
	SettingLastScanAt          = "ingest.last_scan_at"
)

// SettingRepository 键值设置仓储（承载扫描游标）
type SettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建仓储
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetString 读取设置，缺失时返回默认值
func (r *SettingRepository) GetString(ctx context.Context, key, def string) (string, error) {
	var s schema.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return def, nil
		}
		return def, fmt.Errorf("读取设置失败: %w", err)
	}
	return s.Value, nil
}

// SetString 写入设置（存在则覆盖）
func (r *SettingRepository) SetString(ctx context.Context, key, value string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&schema.Setting{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("写入设置失败: %w", err)
	}
	return nil
}

// GetBool 读取布尔设置
func (r *SettingRepository) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	raw, err := r.GetString(ctx, key, "")
	if err != nil || raw == "" {
		return def, err
	}
	return raw == "true", nil
}

// SetBool 写入布尔设置
func (r *SettingRepository) SetBool(ctx context.Context, key string, value bool) error {
	raw := "false"
	if value {
		raw = "true"
	}
	return r.SetString(ctx, key, raw)
}

// GetTime 读取时间设置（RFC3339Nano），缺失或无法解析时返回零值
func (r *SettingRepository) GetTime(ctx context.Context, key string) (time.Time, error) {
	raw, err := r.GetString(ctx, key, "")
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	t, perr := time.Parse(time.RFC3339Nano, raw)
	if perr != nil {
		return time.Time{}, nil
	}
	return t, nil
}

// AdvanceTime 前移时间设置。游标只进不退：新值不晚于已有值时不写。
func (r *SettingRepository) AdvanceTime(ctx context.Context, key string, t time.Time) error {
	cur, err := r.GetTime(ctx, key)
	if err != nil {
		return err
	}
	if !t.After(cur) {
		return nil
	}
	return r.SetString(ctx, key, t.Format(time.RFC3339Nano))
}
