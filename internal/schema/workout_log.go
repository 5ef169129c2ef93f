package schema

import (
	"time"
)

// WorkoutLog 单组训练记录
// 数据量级：千级/年；(user_id, exercise_name) 下至多一条 is_pr = true
type WorkoutLog struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"index:idx_user_exercise;not null" json:"user_id"`
	ExerciseName string    `gorm:"size:255;index:idx_user_exercise;not null" json:"exercise_name"` // 规范名（拼写纠正后）
	MuscleGroup  string    `gorm:"size:100" json:"muscle_group"`
	Weight       float64   `gorm:"not null" json:"weight"` // 重量，单位由客户端决定
	Reps         int       `gorm:"not null" json:"reps"`
	Date         string    `gorm:"size:10;index" json:"date"`       // YYYY-MM-DD
	IsPR         bool      `gorm:"column:is_pr;index:idx_user_exercise" json:"is_pr"` // 当前最佳记录标记
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (WorkoutLog) TableName() string {
	return "workout_logs"
}

// Volume 训练容量 = 重量 × 次数，PR 判定的次级指标
func (l WorkoutLog) Volume() float64 {
	return l.Weight * float64(l.Reps)
}
