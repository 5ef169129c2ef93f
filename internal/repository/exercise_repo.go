package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GymRack/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExerciseRepository 动作库仓储
type ExerciseRepository struct {
	db *gorm.DB
}

// NewExerciseRepository 创建动作库仓储
func NewExerciseRepository(db *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// Upsert 按 name 插入或更新动作。返回 true 表示新插入。
func (r *ExerciseRepository) Upsert(ctx context.Context, exercise *schema.Exercise) (bool, error) {
	var existing schema.Exercise
	err := r.db.WithContext(ctx).Where("name = ?", exercise.Name).First(&existing).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return false, fmt.Errorf("查询动作失败: %w", err)
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"type", "muscle", "equipment", "difficulty", "instructions", "video_url", "thumbnail_url",
		}),
	}).Create(exercise).Error

	if err != nil {
		return false, fmt.Errorf("写入动作失败: %w", err)
	}
	return isNew, nil
}

// ExerciseFilter 动作库查询条件，零值字段不过滤
type ExerciseFilter struct {
	Muscle     string
	Type       string
	Difficulty string
}

// List 按条件查询动作库
func (r *ExerciseRepository) List(ctx context.Context, filter ExerciseFilter) ([]schema.Exercise, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if filter.Muscle != "" {
		query = query.Where("muscle LIKE ?", "%"+filter.Muscle+"%")
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}

	var exercises []schema.Exercise
	if err := query.Find(&exercises).Error; err != nil {
		return nil, fmt.Errorf("查询动作库失败: %w", err)
	}
	return exercises, nil
}

// Count 统计动作库条数
func (r *ExerciseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&schema.Exercise{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计动作库失败: %w", err)
	}
	return count, nil
}
