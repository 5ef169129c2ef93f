package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/yuqie6/GymRack/internal/eventbus"
	"github.com/yuqie6/GymRack/internal/matching"
	"github.com/yuqie6/GymRack/internal/repository"
	"github.com/yuqie6/GymRack/internal/schema"
)

// RecordService 训练记录服务：拼写纠正 + 个人最佳记录（PR）台账。
// 不变量：任意 (user, 规范动作名) 下至多一条 is_pr = true。
type RecordService struct {
	logRepo          WorkoutLogRepository
	hub              *eventbus.Hub
	resolveThreshold float64
	suggestThreshold float64
	suggestLimit     int

	// 按 (user, 规范名) 串行化"读旧记录-判定-降级+插入"，
	// 防止快速重复提交把两条都标成当前记录
	locks sync.Map // key string -> *sync.Mutex
}

// RecordServiceOptions 阈值配置，零值使用默认
type RecordServiceOptions struct {
	ResolveThreshold float64
	SuggestThreshold float64
	SuggestLimit     int
}

// NewRecordService 创建训练记录服务。hub 可以为 nil（不推送事件）。
func NewRecordService(logRepo WorkoutLogRepository, hub *eventbus.Hub, opts RecordServiceOptions) *RecordService {
	if opts.ResolveThreshold <= 0 {
		opts.ResolveThreshold = matching.DefaultResolveThreshold
	}
	if opts.SuggestThreshold <= 0 {
		opts.SuggestThreshold = matching.DefaultSuggestThreshold
	}
	if opts.SuggestLimit <= 0 {
		opts.SuggestLimit = matching.DefaultSuggestLimit
	}

	return &RecordService{
		logRepo:          logRepo,
		hub:              hub,
		resolveThreshold: opts.ResolveThreshold,
		suggestThreshold: opts.SuggestThreshold,
		suggestLimit:     opts.SuggestLimit,
	}
}

// LogSetRequest 一次训练组提交
type LogSetRequest struct {
	UserID       int64
	ExerciseName string
	MuscleGroup  string
	Weight       float64
	Reps         int
	Date         string // YYYY-MM-DD，为空取今天
}

// RecordSnapshot 旧记录快照，用于"你要追的 PR"提示
type RecordSnapshot struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// LogSetResult 提交结果
type LogSetResult struct {
	Entry          *schema.WorkoutLog
	CanonicalName  string
	IsNewRecord    bool
	PreviousRecord *RecordSnapshot // 旧记录存在时总是返回，无论本次是否破纪录
	CorrectedFrom  string          // 发生拼写纠正时为原始输入，否则为空
}

// LogSet 记录一组训练并判定是否为新的个人最佳。
// 流程：校验 → 取词表 → 解析规范名 → 锁内读当前记录、判定、原子提交。
func (s *RecordService) LogSet(ctx context.Context, req LogSetRequest) (*LogSetResult, error) {
	if err := validateLogSet(&req); err != nil {
		return nil, err
	}

	// 词表必须现查，不能用快照：过期词表可能导致错误纠正
	vocabulary, err := s.logRepo.DistinctExerciseNames(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	canonical := req.ExerciseName
	correctedFrom := ""
	if match, ok := matching.Resolve(req.ExerciseName, vocabulary, s.resolveThreshold); ok && match != req.ExerciseName {
		// 解析结果是权威的：本次提交的所有持久化都用纠正后的名字
		canonical = match
		correctedFrom = req.ExerciseName
		slog.Info("动作名已纠正", "user_id", req.UserID, "from", req.ExerciseName, "to", canonical)
	}

	unlock := s.lockRecord(req.UserID, canonical)
	defer unlock()

	prev, err := s.logRepo.GetCurrentRecord(ctx, req.UserID, canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	isNewRecord := prev == nil || beatsRecord(req.Weight, req.Reps, prev)

	entry := &schema.WorkoutLog{
		UserID:       req.UserID,
		ExerciseName: canonical,
		MuscleGroup:  req.MuscleGroup,
		Weight:       req.Weight,
		Reps:         req.Reps,
		Date:         req.Date,
		IsPR:         isNewRecord,
	}

	demoteID := int64(0)
	if isNewRecord && prev != nil {
		demoteID = prev.ID
	}

	if err := s.logRepo.CommitRecordUpdate(ctx, entry, demoteID); err != nil {
		if errors.Is(err, repository.ErrRecordStale) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	result := &LogSetResult{
		Entry:         entry,
		CanonicalName: canonical,
		IsNewRecord:   isNewRecord,
		CorrectedFrom: correctedFrom,
	}
	if prev != nil {
		result.PreviousRecord = &RecordSnapshot{Weight: prev.Weight, Reps: prev.Reps}
	}

	if isNewRecord {
		s.hub.Publish(eventbus.Event{
			Type: eventbus.EventNewPR,
			Data: map[string]any{
				"user_id":  req.UserID,
				"exercise": canonical,
				"weight":   req.Weight,
				"reps":     req.Reps,
			},
		})
	}

	return result, nil
}

// beatsRecord PR 判定，单一有序谓词：
// 重量更大直接赢；同重量比次数；否则比容量（重量下降但次数补足时仍可破纪录）。
func beatsRecord(weight float64, reps int, prev *schema.WorkoutLog) bool {
	switch {
	case weight > prev.Weight:
		return true
	case weight == prev.Weight && reps > prev.Reps:
		return true
	case weight*float64(reps) > prev.Volume():
		return true
	default:
		return false
	}
}

// Suggestions 输入补全：按相似度降序的动作名候选
func (s *RecordService) Suggestions(ctx context.Context, userID int64, query string) ([]string, error) {
	vocabulary, err := s.logRepo.DistinctExerciseNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return matching.Suggest(query, vocabulary, s.suggestThreshold, s.suggestLimit), nil
}

// validateLogSet 输入校验，任何失败都发生在读写存储之前
func validateLogSet(req *LogSetRequest) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: user_id 必须为正数", ErrInvalidInput)
	}
	req.ExerciseName = strings.TrimSpace(req.ExerciseName)
	if req.ExerciseName == "" {
		return fmt.Errorf("%w: exercise_name 不能为空", ErrInvalidInput)
	}
	if req.Weight <= 0 || math.IsNaN(req.Weight) || math.IsInf(req.Weight, 0) {
		return fmt.Errorf("%w: weight 必须为正数", ErrInvalidInput)
	}
	if req.Reps <= 0 {
		return fmt.Errorf("%w: reps 必须为正整数", ErrInvalidInput)
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return fmt.Errorf("%w: date 格式应为 YYYY-MM-DD", ErrInvalidInput)
	}
	return nil
}

// lockRecord 获取 (user, 规范名) 的互斥锁，返回解锁函数
func (s *RecordService) lockRecord(userID int64, canonical string) func() {
	key := fmt.Sprintf("%d|%s", userID, canonical)
	v, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
