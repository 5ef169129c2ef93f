package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuqie6/GymRack/internal/schema"
	"gorm.io/gorm"
)

// WorkoutRepository 训练计划仓储
type WorkoutRepository struct {
	db *gorm.DB
}

// NewWorkoutRepository 创建训练计划仓储
func NewWorkoutRepository(db *gorm.DB) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

// Create 创建训练计划
func (r *WorkoutRepository) Create(ctx context.Context, workout *schema.Workout) error {
	if err := r.db.WithContext(ctx).Create(workout).Error; err != nil {
		return fmt.Errorf("创建训练计划失败: %w", err)
	}
	return nil
}

// List 按日期倒序列出训练计划
func (r *WorkoutRepository) List(ctx context.Context) ([]schema.Workout, error) {
	var workouts []schema.Workout
	if err := r.db.WithContext(ctx).Order("date DESC").Find(&workouts).Error; err != nil {
		return nil, fmt.Errorf("查询训练计划失败: %w", err)
	}
	return workouts, nil
}

// Delete 删除训练计划，返回被删除的行
func (r *WorkoutRepository) Delete(ctx context.Context, id int64) (*schema.Workout, error) {
	var workout schema.Workout
	err := r.db.WithContext(ctx).First(&workout, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询训练计划失败: %w", err)
	}

	if err := r.db.WithContext(ctx).Delete(&schema.Workout{}, id).Error; err != nil {
		return nil, fmt.Errorf("删除训练计划失败: %w", err)
	}

	slog.Info("训练计划已删除", "id", id, "name", workout.Name)
	return &workout, nil
}
