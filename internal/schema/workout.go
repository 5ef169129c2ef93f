package schema

import (
	"time"
)

// Workout 训练计划（一次训练安排）
type Workout struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Date      string    `gorm:"size:10;index" json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Workout) TableName() string {
	return "workouts"
}
