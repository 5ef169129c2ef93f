package service

import (
	"context"

	"github.com/yuqie6/GymRack/internal/repository"
	"github.com/yuqie6/GymRack/internal/schema"
)

// 仓储依赖的最小接口集合（ISP）

type WorkoutLogRepository interface {
	DistinctExerciseNames(ctx context.Context, userID int64) ([]string, error)
	GetCurrentRecord(ctx context.Context, userID int64, exerciseName string) (*schema.WorkoutLog, error)
	CommitRecordUpdate(ctx context.Context, entry *schema.WorkoutLog, demoteID int64) error
	List(ctx context.Context, userID int64, limit int) ([]schema.WorkoutLog, error)
	CurrentRecords(ctx context.Context, userID int64) ([]schema.WorkoutLog, error)
	Delete(ctx context.Context, id int64) (*schema.WorkoutLog, error)
}

type WorkoutRepository interface {
	Create(ctx context.Context, workout *schema.Workout) error
	List(ctx context.Context) ([]schema.Workout, error)
	Delete(ctx context.Context, id int64) (*schema.Workout, error)
}

type ExerciseRepository interface {
	Upsert(ctx context.Context, exercise *schema.Exercise) (bool, error)
	List(ctx context.Context, filter repository.ExerciseFilter) ([]schema.Exercise, error)
	Count(ctx context.Context) (int64, error)
}
