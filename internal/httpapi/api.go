package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yuqie6/GymRack/internal/enrich"
	"github.com/yuqie6/GymRack/internal/eventbus"
	"github.com/yuqie6/GymRack/internal/pkg/config"
	"github.com/yuqie6/GymRack/internal/repository"
	"github.com/yuqie6/GymRack/internal/schema"
	"github.com/yuqie6/GymRack/internal/service"
)

// defaultUserID 未带用户标识的请求落到的默认用户。
// 这是边界层策略：核心服务始终要求显式 user_id。
const defaultUserID int64 = 1

// apiServer 路由与处理器的集合
type apiServer struct {
	cfg       *config.Config
	cfgPath   string
	db        *repository.Database
	hub       *eventbus.Hub
	records   *service.RecordService
	logRepo   service.WorkoutLogRepository
	workouts  service.WorkoutRepository
	exercises service.ExerciseRepository
	ninjas    *enrich.NinjasClient
	enricher  *enrich.Enricher
	startTime time.Time
}

// Deps apiServer 的依赖
type Deps struct {
	Cfg       *config.Config
	CfgPath   string
	DB        *repository.Database
	Hub       *eventbus.Hub
	Records   *service.RecordService
	LogRepo   service.WorkoutLogRepository
	Workouts  service.WorkoutRepository
	Exercises service.ExerciseRepository
	Ninjas    *enrich.NinjasClient
	Enricher  *enrich.Enricher
}

// NewAPI 创建 apiServer
func NewAPI(deps Deps) *apiServer {
	return &apiServer{
		cfg:       deps.Cfg,
		cfgPath:   deps.CfgPath,
		db:        deps.DB,
		hub:       deps.Hub,
		records:   deps.Records,
		logRepo:   deps.LogRepo,
		workouts:  deps.Workouts,
		exercises: deps.Exercises,
		ninjas:    deps.Ninjas,
		enricher:  deps.Enricher,
		startTime: time.Now(),
	}
}

// registerRoutes 注册全部路由（路径与移动端契约保持一致）
func (a *apiServer) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", a.wrapGET(a.handleHealth))

	mux.HandleFunc("/workouts", a.workoutsCollection)
	mux.HandleFunc("/workouts/", a.wrapDELETE(a.deleteWorkout))

	mux.HandleFunc("/workout-logs", a.workoutLogsCollection)
	mux.HandleFunc("/workout-logs/", a.wrapDELETE(a.deleteWorkoutLog))

	mux.HandleFunc("/exercise-suggestions", a.wrapGET(a.getSuggestions))
	mux.HandleFunc("/exercises", a.wrapGET(a.getExercises))
	mux.HandleFunc("/personal-records", a.wrapGET(a.getPersonalRecords))

	mux.HandleFunc("/health/metrics", a.wrapPOST(a.postHealthMetrics))
	mux.HandleFunc("/steps-today", a.wrapGET(a.getStepsToday))

	mux.HandleFunc("/api/events", a.handleSSE)
	mux.HandleFunc("/settings", a.settings)
}

// ========== 方法包装 ==========

func (a *apiServer) wrapGET(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapPOST(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapDELETE(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
			return
		}
		fn(w, r)
	}
}

// writeServiceError 服务层错误分类到 HTTP 状态码的唯一映射点
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input")
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "conflict_retry")
	case errors.Is(err, service.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "upstream_unavailable")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, enrich.ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream_error")
	default:
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

// guardSafeMode 安全模式下拒绝写路径
func (a *apiServer) guardSafeMode(w http.ResponseWriter) bool {
	if a.db != nil && a.db.SafeMode {
		writeError(w, http.StatusServiceUnavailable, "maintenance_mode")
		return true
	}
	return false
}

// ========== 健康检查 ==========

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status":     "ok",
		"name":       a.cfg.App.Name,
		"version":    a.cfg.App.Version,
		"started_at": a.startTime.Format(time.RFC3339),
	}
	if a.db != nil && a.db.SafeMode {
		payload["status"] = "degraded"
		payload["migration_error"] = a.db.MigrationError
	}
	writeJSON(w, http.StatusOK, payload)
}

// ========== 训练计划 ==========

type createWorkoutRequest struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Date   string `json:"date"`
}

func (a *apiServer) workoutsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listWorkouts(w, r)
	case http.MethodPost:
		a.createWorkout(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

func (a *apiServer) listWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := a.workouts.List(r.Context())
	if err != nil {
		slog.Error("查询训练计划失败", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (a *apiServer) createWorkout(w http.ResponseWriter, r *http.Request) {
	if a.guardSafeMode(w) {
		return
	}

	var req createWorkoutRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_input")
		return
	}
	if req.UserID <= 0 {
		req.UserID = defaultUserID
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}

	workout := &schema.Workout{UserID: req.UserID, Name: req.Name, Date: req.Date}
	if err := a.workouts.Create(r.Context(), workout); err != nil {
		slog.Error("创建训练计划失败", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (a *apiServer) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	if a.guardSafeMode(w) {
		return
	}

	id, err := parseInt64Param(strings.TrimPrefix(r.URL.Path, "/workouts/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	deleted, err := a.workouts.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "workout_not_found")
			return
		}
		slog.Error("删除训练计划失败", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}

// ========== 训练记录 ==========

type logSetRequestDTO struct {
	UserID       int64   `json:"user_id"`
	ExerciseName string  `json:"exercise_name"`
	MuscleGroup  string  `json:"muscle_group"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Date         string  `json:"date"`
	IsPR         bool    `json:"is_pr"` // 兼容旧客户端字段，服务端判定为准
}

type logSetResponseDTO struct {
	ID            int64                   `json:"id"`
	UserID        int64                   `json:"user_id"`
	ExerciseName  string                  `json:"exercise_name"`
	MuscleGroup   string                  `json:"muscle_group"`
	Weight        float64                 `json:"weight"`
	Reps          int                     `json:"reps"`
	Date          string                  `json:"date"`
	IsPR          bool                    `json:"is_pr"`
	IsNewPR       bool                    `json:"is_new_pr"`
	PreviousPR    *service.RecordSnapshot `json:"previous_pr"`
	CorrectedName string                  `json:"corrected_name,omitempty"`
	OriginalName  string                  `json:"original_name,omitempty"`
}

func (a *apiServer) workoutLogsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listWorkoutLogs(w, r)
	case http.MethodPost:
		a.createWorkoutLog(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

func (a *apiServer) listWorkoutLogs(w http.ResponseWriter, r *http.Request) {
	userID := int64(0)
	if v := r.URL.Query().Get("user_id"); v != "" {
		parsed, err := parseInt64Param(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id")
			return
		}
		userID = parsed
	}

	logs, err := a.logRepo.List(r.Context(), userID, 0)
	if err != nil {
		slog.Error("查询训练记录失败", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (a *apiServer) createWorkoutLog(w http.ResponseWriter, r *http.Request) {
	if a.guardSafeMode(w) {
		return
	}

	var req logSetRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.UserID <= 0 {
		req.UserID = defaultUserID
	}

	result, err := a.records.LogSet(r.Context(), service.LogSetRequest{
		UserID:       req.UserID,
		ExerciseName: req.ExerciseName,
		MuscleGroup:  req.MuscleGroup,
		Weight:       req.Weight,
		Reps:         req.Reps,
		Date:         req.Date,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := logSetResponseDTO{
		ID:           result.Entry.ID,
		UserID:       result.Entry.UserID,
		ExerciseName: result.Entry.ExerciseName,
		MuscleGroup:  result.Entry.MuscleGroup,
		Weight:       result.Entry.Weight,
		Reps:         result.Entry.Reps,
		Date:         result.Entry.Date,
		IsPR:         result.Entry.IsPR,
		IsNewPR:      result.IsNewRecord,
		PreviousPR:   result.PreviousRecord,
	}
	if result.CorrectedFrom != "" {
		resp.CorrectedName = result.CanonicalName
		resp.OriginalName = result.CorrectedFrom
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *apiServer) deleteWorkoutLog(w http.ResponseWriter, r *http.Request) {
	if a.guardSafeMode(w) {
		return
	}

	id, err := parseInt64Param(strings.TrimPrefix(r.URL.Path, "/workout-logs/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	deleted, err := a.logRepo.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "log_not_found")
			return
		}
		slog.Error("删除训练记录失败", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}

// ========== 补全与最佳记录 ==========

func (a *apiServer) getSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	userID := defaultUserID
	if v := r.URL.Query().Get("user_id"); v != "" {
		parsed, err := parseInt64Param(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id")
			return
		}
		userID = parsed
	}

	suggestions, err := a.records.Suggestions(r.Context(), userID, query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

func (a *apiServer) getPersonalRecords(w http.ResponseWriter, r *http.Request) {
	userID := defaultUserID
	if v := r.URL.Query().Get("user_id"); v != "" {
		parsed, err := parseInt64Param(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_user_id")
			return
		}
		userID = parsed
	}

	records, err := a.logRepo.CurrentRecords(r.Context(), userID)
	if err != nil {
		slog.Error("查询最佳记录失败", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// ========== 动作库 ==========

func (a *apiServer) getExercises(w http.ResponseWriter, r *http.Request) {
	filter := repository.ExerciseFilter{
		Muscle:     r.URL.Query().Get("muscle"),
		Type:       r.URL.Query().Get("type"),
		Difficulty: r.URL.Query().Get("difficulty"),
	}

	// 本地动作库已导入时优先使用；否则代理外部数据源
	count, err := a.exercises.Count(r.Context())
	if err == nil && count > 0 {
		local, err := a.exercises.List(r.Context(), filter)
		if err != nil {
			slog.Error("查询动作库失败", "error", err)
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		writeJSON(w, http.StatusOK, local)
		return
	}

	if !a.ninjas.Configured() {
		writeError(w, http.StatusInternalServerError, "missing_api_key")
		return
	}

	remote, err := a.ninjas.Search(r.Context(), enrich.ExerciseQuery{
		Muscle:     filter.Muscle,
		Type:       filter.Type,
		Difficulty: filter.Difficulty,
	})
	if err != nil {
		slog.Error("查询外部动作数据源失败", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a.enricher.Enrich(r.Context(), remote))
}

// ========== 身体指标 ==========

type healthMetricsRequestDTO struct {
	HeightCm float64 `json:"heightCm"`
	WeightKg float64 `json:"weightKg"`
	Age      int     `json:"age"`
	Gender   string  `json:"gender"`
}

func (a *apiServer) postHealthMetrics(w http.ResponseWriter, r *http.Request) {
	var req healthMetricsRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	metrics, err := service.ComputeHealthMetrics(service.HealthMetricsRequest{
		HeightCm: req.HeightCm,
		WeightKg: req.WeightKg,
		Age:      req.Age,
		Gender:   req.Gender,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_parameters")
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (a *apiServer) getStepsToday(w http.ResponseWriter, r *http.Request) {
	// TODO: 接入 Google Fit 等真实步数来源
	writeJSON(w, http.StatusOK, map[string]any{"steps": 5423})
}

// ========== SSE 事件流 ==========

func (a *apiServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "stream not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	sub := a.hub.Subscribe(ctx, 32)

	// initial event
	_, _ = io.WriteString(w, "event: ready\n")
	_, _ = io.WriteString(w, "data: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, "event: ping\n")
			_, _ = io.WriteString(w, "data: {}\n\n")
			flusher.Flush()
		case evt, ok := <-sub:
			if !ok {
				return
			}
			b, _ := json.Marshal(evt)
			_, _ = io.WriteString(w, "event: "+sanitizeSSEName(evt.Type)+"\n")
			_, _ = io.WriteString(w, "data: ")
			_, _ = w.Write(b)
			_, _ = io.WriteString(w, "\n\n")
			flusher.Flush()
		}
	}
}

func sanitizeSSEName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return "message"
	}
	n = strings.ReplaceAll(n, "\n", "")
	n = strings.ReplaceAll(n, "\r", "")
	return n
}

// ========== 设置 ==========

type settingsDTO struct {
	ConfigPath string `json:"config_path"`

	NinjasAPIKeySet  bool `json:"ninjas_api_key_set"`
	YouTubeAPIKeySet bool `json:"youtube_api_key_set"`

	DBPath           string  `json:"db_path"`
	ResolveThreshold float64 `json:"resolve_threshold"`
	SuggestThreshold float64 `json:"suggest_threshold"`
	SuggestLimit     int     `json:"suggest_limit"`
}

type saveSettingsRequestDTO struct {
	NinjasAPIKey  *string `json:"ninjas_api_key"`
	YouTubeAPIKey *string `json:"youtube_api_key"`
}

func (a *apiServer) settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.getSettings(w, r)
	case http.MethodPut:
		a.saveSettings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
	}
}

func (a *apiServer) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsDTO{
		ConfigPath:       a.cfgPath,
		NinjasAPIKeySet:  a.cfg.Enrich.NinjasAPIKey != "",
		YouTubeAPIKeySet: a.cfg.Enrich.YouTubeAPIKey != "",
		DBPath:           a.cfg.Storage.DBPath,
		ResolveThreshold: a.cfg.Matching.ResolveThreshold,
		SuggestThreshold: a.cfg.Matching.SuggestThreshold,
		SuggestLimit:     a.cfg.Matching.SuggestLimit,
	})
}

func (a *apiServer) saveSettings(w http.ResponseWriter, r *http.Request) {
	var req saveSettingsRequestDTO
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	// API Key 写入配置文件，重启后对 enrich 客户端生效
	if req.NinjasAPIKey != nil {
		a.cfg.Enrich.NinjasAPIKey = strings.TrimSpace(*req.NinjasAPIKey)
	}
	if req.YouTubeAPIKey != nil {
		a.cfg.Enrich.YouTubeAPIKey = strings.TrimSpace(*req.YouTubeAPIKey)
	}

	if a.cfgPath != "" {
		if err := config.WriteFile(a.cfgPath, a.cfg); err != nil {
			slog.Error("写入配置失败", "path", a.cfgPath, "error", err)
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
	}
	a.getSettings(w, r)
}
