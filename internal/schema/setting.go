package schema

import "time"

// Setting 字符串键值设置
// 目前仅承载扫描游标（initial_scan_complete / last_scan_at）。
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"size:255" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
