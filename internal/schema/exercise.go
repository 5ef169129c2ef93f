package schema

import (
	"time"
)

// Exercise 动作库条目（由 CSV 导入器写入）
// 数据量级：千级
type Exercise struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Type         string    `gorm:"size:100;index" json:"type"`   // strength, cardio, plyometrics...
	Muscle       string    `gorm:"size:100;index" json:"muscle"` // 逗号分隔的肌群列表
	Equipment    string    `gorm:"size:100" json:"equipment"`
	Difficulty   string    `gorm:"size:50;index" json:"difficulty"` // beginner, intermediate, expert
	Instructions string    `gorm:"type:text" json:"instructions"`
	VideoURL     string    `gorm:"size:500" json:"video_url"`
	ThumbnailURL string    `gorm:"size:500" json:"thumbnail_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Exercise) TableName() string {
	return "exercises"
}
