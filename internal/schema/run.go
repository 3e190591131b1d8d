package schema

import "time"

// Run 一次训练成绩记录
// 由文件内容哈希唯一标识：内容相同的文件无论路径/文件名如何都视为同一条记录。
// 所有成绩字段均可缺失（导出格式不保证任何字段存在），统一用指针表示。
// 数据量级：万级/年
type Run struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID      int64  `gorm:"index;not null" json:"task_id"`
	ContentHash string `gorm:"size:64;uniqueIndex;not null" json:"content_hash"` // SHA-256，去重主键
	FilePath    string `gorm:"size:1024" json:"file_path"`                       // 原始文件路径
	FileName    string `gorm:"size:255" json:"file_name"`

	Scenario string     `gorm:"size:255" json:"scenario"` // 文件中的原始场景名（未归一化）
	PlayedAt *time.Time `gorm:"index" json:"played_at"`

	Score     *float64 `json:"score"`
	Hits      *int     `json:"hits"`
	Misses    *int     `json:"misses"`
	Shots     *int     `json:"shots"`
	Kills     *int     `json:"kills"`    // 事件表行数（击杀数）
	Accuracy  *float64 `json:"accuracy"` // 恒为 0-100 百分比
	AvgTTK    *float64 `json:"avg_ttk"`  // 平均击杀耗时（秒）
	Overshots *int     `json:"overshots"`
	Reloads   *int     `json:"reloads"`
	AvgFPS    *float64 `json:"avg_fps"`
	Duration  *float64 `json:"duration"` // 恒为秒
	SPM       *float64 `json:"spm"`      // score / (duration/60)

	DPI  *int     `json:"dpi"`
	Sens *float64 `json:"sens"` // 水平灵敏度
	FOV  *float64 `json:"fov"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Run) TableName() string {
	return "runs"
}
