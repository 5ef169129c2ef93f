package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yuqie6/GymRack/internal/enrich"
	"github.com/yuqie6/GymRack/internal/eventbus"
	"github.com/yuqie6/GymRack/internal/pkg/config"
	"github.com/yuqie6/GymRack/internal/repository"
	"github.com/yuqie6/GymRack/internal/service"
	"github.com/yuqie6/GymRack/internal/testutil"
)

// newTestMux 用内存数据库装配完整 API，返回可直接打请求的 mux
func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	db := testutil.OpenTestDB(t)
	cfg := config.Default()
	cfg.Enrich.NinjasAPIKey = ""
	cfg.Enrich.YouTubeAPIKey = ""

	logRepo := repository.NewWorkoutLogRepository(db)
	hub := eventbus.NewHub()

	api := NewAPI(Deps{
		Cfg:       cfg,
		Hub:       hub,
		Records:   service.NewRecordService(logRepo, hub, service.RecordServiceOptions{}),
		LogRepo:   logRepo,
		Workouts:  repository.NewWorkoutRepository(db),
		Exercises: repository.NewExerciseRepository(db),
		Ninjas:    enrich.NewNinjasClient(&enrich.NinjasConfig{}),
		Enricher:  enrich.NewEnricher(enrich.NewYouTubeClient(&enrich.YouTubeConfig{})),
	})

	mux := http.NewServeMux()
	api.registerRoutes(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("编码请求体失败: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status = %v, want ok", body["status"])
	}
}

func TestCreateWorkoutLogFirstEntryIsRecord(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/workout-logs", map[string]any{
		"exercise_name": "Bench Press",
		"weight":        100,
		"reps":          5,
		"date":          "2026-08-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		ID           int64   `json:"id"`
		UserID       int64   `json:"user_id"`
		ExerciseName string  `json:"exercise_name"`
		Weight       float64 `json:"weight"`
		IsPR         bool    `json:"is_pr"`
		IsNewPR      bool    `json:"is_new_pr"`
		PreviousPR   *struct {
			Weight float64 `json:"weight"`
			Reps   int     `json:"reps"`
		} `json:"previous_pr"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	if body.ID == 0 || body.UserID != 1 {
		t.Fatalf("id = %d, user_id = %d", body.ID, body.UserID)
	}
	if !body.IsPR || !body.IsNewPR {
		t.Fatalf("首次提交应为当前记录: is_pr=%v is_new_pr=%v", body.IsPR, body.IsNewPR)
	}
	if body.PreviousPR != nil {
		t.Fatalf("首次提交不应带 previous_pr: %+v", body.PreviousPR)
	}
}

func TestCreateWorkoutLogCorrectsTypo(t *testing.T) {
	mux := newTestMux(t)

	first := doJSON(t, mux, http.MethodPost, "/workout-logs", map[string]any{
		"exercise_name": "Bench Press",
		"weight":        100,
		"reps":          5,
	})
	if first.Code != http.StatusCreated {
		t.Fatalf("首次提交 status = %d", first.Code)
	}

	second := doJSON(t, mux, http.MethodPost, "/workout-logs", map[string]any{
		"exercise_name": "Bnech Press",
		"weight":        105,
		"reps":          3,
	})
	if second.Code != http.StatusCreated {
		t.Fatalf("第二次提交 status = %d, body = %s", second.Code, second.Body.String())
	}

	var body struct {
		ExerciseName  string `json:"exercise_name"`
		IsNewPR       bool   `json:"is_new_pr"`
		CorrectedName string `json:"corrected_name"`
		OriginalName  string `json:"original_name"`
		PreviousPR    *struct {
			Weight float64 `json:"weight"`
		} `json:"previous_pr"`
	}
	if err := json.Unmarshal(second.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	if body.ExerciseName != "Bench Press" {
		t.Fatalf("exercise_name = %q, want 纠正后的规范名", body.ExerciseName)
	}
	if body.CorrectedName != "Bench Press" || body.OriginalName != "Bnech Press" {
		t.Fatalf("corrected_name = %q, original_name = %q", body.CorrectedName, body.OriginalName)
	}
	if !body.IsNewPR {
		t.Fatal("更大重量应刷新记录")
	}
	if body.PreviousPR == nil || body.PreviousPR.Weight != 100 {
		t.Fatalf("previous_pr = %+v, want weight 100", body.PreviousPR)
	}
}

func TestCreateWorkoutLogValidation(t *testing.T) {
	mux := newTestMux(t)

	cases := []map[string]any{
		{"exercise_name": "", "weight": 100, "reps": 5},
		{"exercise_name": "Squat", "weight": 0, "reps": 5},
		{"exercise_name": "Squat", "weight": 100, "reps": 0},
		{"exercise_name": "Squat", "weight": 100, "reps": 5, "date": "08/01/2026"},
	}
	for i, payload := range cases {
		rec := doJSON(t, mux, http.MethodPost, "/workout-logs", payload)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, rec.Code)
		}
	}

	// 非法 JSON
	req := httptest.NewRequest(http.MethodPost, "/workout-logs", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("非法 JSON status = %d, want 400", rec.Code)
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	mux := newTestMux(t)

	for _, name := range []string{"Squat", "Squats", "Bench Press"} {
		rec := doJSON(t, mux, http.MethodPost, "/workout-logs", map[string]any{
			"exercise_name": name,
			"weight":        100,
			"reps":          5,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("提交 %q status = %d", name, rec.Code)
		}
	}

	rec := doJSON(t, mux, http.MethodGet, "/exercise-suggestions?query=Squt", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var suggestions []string
	if err := json.Unmarshal(rec.Body.Bytes(), &suggestions); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(suggestions) == 0 || suggestions[0] != "Squat" {
		t.Fatalf("suggestions = %v, want Squat 排第一", suggestions)
	}

	// 单字符查询返回空列表而非错误
	rec = doJSON(t, mux, http.MethodGet, "/exercise-suggestions?query=S", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("短查询 status = %d", rec.Code)
	}
	suggestions = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &suggestions); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(suggestions) != 0 {
		t.Fatalf("短查询应返回空列表: %v", suggestions)
	}
}

func TestPersonalRecordsEndpoint(t *testing.T) {
	mux := newTestMux(t)

	submissions := []map[string]any{
		{"exercise_name": "Squat", "weight": 100, "reps": 5},
		{"exercise_name": "Squat", "weight": 110, "reps": 3},
		{"exercise_name": "Bench Press", "weight": 80, "reps": 8},
	}
	for _, payload := range submissions {
		rec := doJSON(t, mux, http.MethodPost, "/workout-logs", payload)
		if rec.Code != http.StatusCreated {
			t.Fatalf("提交失败: %s", rec.Body.String())
		}
	}

	rec := doJSON(t, mux, http.MethodGet, "/personal-records", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var records []struct {
		ExerciseName string  `json:"exercise_name"`
		Weight       float64 `json:"weight"`
		IsPR         bool    `json:"is_pr"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("每个动作应恰好一条当前记录: %+v", records)
	}
	for _, r := range records {
		if !r.IsPR {
			t.Fatalf("返回了非当前记录: %+v", r)
		}
		if r.ExerciseName == "Squat" && r.Weight != 110 {
			t.Fatalf("Squat 当前记录 weight = %v, want 110", r.Weight)
		}
	}
}

func TestDeleteWorkoutLog(t *testing.T) {
	mux := newTestMux(t)

	created := doJSON(t, mux, http.MethodPost, "/workout-logs", map[string]any{
		"exercise_name": "Squat",
		"weight":        100,
		"reps":          5,
	})
	var body struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}

	rec := doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/workout-logs/%d", body.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("删除 status = %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/workout-logs/%d", body.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("重复删除 status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodDelete, "/workout-logs/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("非法 id status = %d, want 400", rec.Code)
	}
}

func TestWorkoutsCRUD(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/workouts", map[string]any{"name": "推日"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("创建 status = %d", rec.Code)
	}
	var created struct {
		ID   int64  `json:"id"`
		Date string `json:"date"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if created.Date == "" {
		t.Fatal("省略 date 应默认为今天")
	}

	rec = doJSON(t, mux, http.MethodPost, "/workouts", map[string]any{"name": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("空名称 status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodGet, "/workouts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("列表 status = %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/workouts/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("删除 status = %d", rec.Code)
	}
	rec = doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/workouts/%d", created.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("重复删除 status = %d, want 404", rec.Code)
	}
}

func TestHealthMetricsEndpoint(t *testing.T) {
	mux := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/health/metrics", map[string]any{
		"heightCm": 180,
		"weightKg": 80,
		"age":      30,
		"gender":   "male",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		BMI float64 `json:"bmi"`
		BMR int     `json:"bmr"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body.BMI != 24.7 || body.BMR != 1780 {
		t.Fatalf("bmi = %v, bmr = %v", body.BMI, body.BMR)
	}

	rec = doJSON(t, mux, http.MethodPost, "/health/metrics", map[string]any{
		"weightKg": 80,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("缺参 status = %d, want 400", rec.Code)
	}
}

func TestExercisesWithoutKeyOrCatalog(t *testing.T) {
	mux := newTestMux(t)

	// 本地库为空且未配置 API Key
	rec := doJSON(t, mux, http.MethodGet, "/exercises?muscle=chest", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body["error"] != "missing_api_key" {
		t.Fatalf("error = %v, want missing_api_key", body["error"])
	}
}

func TestMethodGuards(t *testing.T) {
	mux := newTestMux(t)

	cases := []struct {
		method, path string
	}{
		{http.MethodPost, "/health"},
		{http.MethodDelete, "/workout-logs"},
		{http.MethodGet, "/health/metrics"},
		{http.MethodPost, "/exercise-suggestions"},
		{http.MethodPost, "/workout-logs/1"},
	}
	for _, c := range cases {
		rec := doJSON(t, mux, c.method, c.path, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want 405", c.method, c.path, rec.Code)
		}
	}
}
