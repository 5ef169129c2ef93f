package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuqie6/GymRack/internal/schema"
	"gorm.io/gorm"
)

// ErrRecordStale 提交时发现当前记录已被并发写入者改动，调用方应从读取当前记录处重试
var ErrRecordStale = errors.New("当前记录已被并发修改")

// ErrNotFound 目标行不存在
var ErrNotFound = errors.New("记录不存在")

// WorkoutLogRepository 训练记录仓储
type WorkoutLogRepository struct {
	db *gorm.DB
}

// NewWorkoutLogRepository 创建训练记录仓储
func NewWorkoutLogRepository(db *gorm.DB) *WorkoutLogRepository {
	return &WorkoutLogRepository{db: db}
}

// DistinctExerciseNames 查询用户用过的全部动作名（规范名，去重）。
// 每次解析请求都要现查，不做快照缓存，否则可能基于过期词表做纠正。
// ORDER BY 让遍历顺序稳定，配合解析端的确定性平局规则。
func (r *WorkoutLogRepository) DistinctExerciseNames(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&schema.WorkoutLog{}).
		Distinct("exercise_name").
		Where("user_id = ?", userID).
		Order("exercise_name ASC").
		Pluck("exercise_name", &names).Error

	if err != nil {
		return nil, fmt.Errorf("查询动作词表失败: %w", err)
	}

	return names, nil
}

// GetCurrentRecord 查询 (user, 动作名) 下当前的最佳记录，不存在时返回 nil
func (r *WorkoutLogRepository) GetCurrentRecord(ctx context.Context, userID int64, exerciseName string) (*schema.WorkoutLog, error) {
	var log schema.WorkoutLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND exercise_name = ? AND is_pr = ?", userID, exerciseName, true).
		First(&log).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询当前记录失败: %w", err)
	}

	return &log, nil
}

// CommitRecordUpdate 原子提交一次记录变更：先降级旧记录（如有），再插入新条目。
// 降级使用 is_pr = true 守卫；影响行数为 0 说明旧记录已被并发写入者改动，
// 整个事务回滚并返回 ErrRecordStale，不会出现"旧的降了、新的没进去"的中间态。
func (r *WorkoutLogRepository) CommitRecordUpdate(ctx context.Context, entry *schema.WorkoutLog, demoteID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if demoteID > 0 {
			res := tx.Model(&schema.WorkoutLog{}).
				Where("id = ? AND is_pr = ?", demoteID, true).
				Update("is_pr", false)
			if res.Error != nil {
				return fmt.Errorf("降级旧记录失败: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrRecordStale
			}
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("写入训练记录失败: %w", err)
		}
		return nil
	})

	if err != nil {
		if !errors.Is(err, ErrRecordStale) {
			slog.Error("提交训练记录失败", "user_id", entry.UserID, "exercise", entry.ExerciseName, "error", err)
		}
		return err
	}

	slog.Debug("训练记录已提交", "user_id", entry.UserID, "exercise", entry.ExerciseName, "is_pr", entry.IsPR)
	return nil
}

// List 按日期倒序列出训练记录；userID <= 0 时不过滤用户
func (r *WorkoutLogRepository) List(ctx context.Context, userID int64, limit int) ([]schema.WorkoutLog, error) {
	var logs []schema.WorkoutLog
	query := r.db.WithContext(ctx).Order("date DESC, created_at DESC")
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("查询训练记录失败: %w", err)
	}

	return logs, nil
}

// CurrentRecords 列出用户每个动作的当前最佳记录
func (r *WorkoutLogRepository) CurrentRecords(ctx context.Context, userID int64) ([]schema.WorkoutLog, error) {
	var logs []schema.WorkoutLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_pr = ?", userID, true).
		Order("exercise_name ASC").
		Find(&logs).Error

	if err != nil {
		return nil, fmt.Errorf("查询最佳记录失败: %w", err)
	}

	return logs, nil
}

// Delete 删除一条训练记录，返回被删除的行
func (r *WorkoutLogRepository) Delete(ctx context.Context, id int64) (*schema.WorkoutLog, error) {
	var log schema.WorkoutLog
	err := r.db.WithContext(ctx).First(&log, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询训练记录失败: %w", err)
	}

	if err := r.db.WithContext(ctx).Delete(&schema.WorkoutLog{}, id).Error; err != nil {
		return nil, fmt.Errorf("删除训练记录失败: %w", err)
	}

	slog.Info("训练记录已删除", "id", id, "exercise", log.ExerciseName)
	return &log, nil
}

// CountPRFlags 统计 (user, 动作名) 下 is_pr = true 的条数，用于不变量自检
func (r *WorkoutLogRepository) CountPRFlags(ctx context.Context, userID int64, exerciseName string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&schema.WorkoutLog{}).
		Where("user_id = ? AND exercise_name = ? AND is_pr = ?", userID, exerciseName, true).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("统计记录标记失败: %w", err)
	}
	return count, nil
}
