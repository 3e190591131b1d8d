package schema

import "time"

// Task 训练任务（场景）实体
// 以归一化后的名称唯一标识，首次遇到该名称时惰性创建。
// 数据量级：百级
type Task struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"` // 归一化后的任务名
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Task) TableName() string {
	return "tasks"
}
