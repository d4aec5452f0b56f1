package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gigwork-backend/internal/domain/matching"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/infrastructure/predictor"
	"github.com/ignatzorin/gigwork-backend/internal/interface/http/dto"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/task"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/worker"
)

func newWorkerHandler(workers *memWorkers, tasks *memTasks) *WorkerHandler {
	engine := matching.NewEngine(time.UTC)
	return NewWorkerHandler(
		worker.NewRegisterWorkerUseCase(workers, nil),
		worker.NewLoginWorkerUseCase(workers, stubTokens{}),
		worker.NewGetWorkerUseCase(workers),
		worker.NewSessionUseCase(workers, nil),
		worker.NewPredictHoursUseCase(workers, predictor.NewLocal()),
		task.NewRecommendTasksUseCase(tasks, workers, engine, nil, time.Minute),
		task.NewWorkerTasksUseCase(tasks),
		5<<20,
	)
}

func TestWorkerHandler_RegisterJSON(t *testing.T) {
	workers := newMemWorkers()
	h := newWorkerHandler(workers, newMemTasks())
	r := newRouter()
	r.POST("/workers/register", h.Register)

	body := map[string]interface{}{
		"name":     "Иван Петров",
		"phone":    "+7 999 123-45-67",
		"username": "ivan_p",
		"password": "Secret123",
		"skills": []map[string]interface{}{
			{"name": "Electrician", "level": "expert", "yearsOfExperience": 5},
		},
		"workingHours": map[string]string{"start": "08:00", "end": "16:00"},
	}

	w := doJSON(r, http.MethodPost, "/workers/register", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created dto.WorkerResponse
	env := decode(t, w, &created)
	assert.True(t, env.Success)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "08:00", created.WorkingHours.Start)
	require.Len(t, created.Skills, 1)
	assert.Equal(t, "expert", created.Skills[0].Level)
	assert.True(t, created.Availability.Sunday)

	w = doJSON(r, http.MethodPost, "/workers/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	env = decode(t, w, nil)
	assert.Equal(t, "CONFLICT", env.Error.Code)
}

func TestWorkerHandler_RegisterMultipartLegacySkills(t *testing.T) {
	h := newWorkerHandler(newMemWorkers(), newMemTasks())
	r := newRouter()
	r.POST("/workers/register", h.Register)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("name", "Пётр"))
	require.NoError(t, form.WriteField("phone", "89991234567"))
	require.NoError(t, form.WriteField("username", "petr"))
	require.NoError(t, form.WriteField("password", "Secret123"))
	require.NoError(t, form.WriteField("skills", "Electrician, Plumber"))
	require.NoError(t, form.WriteField("availability", "monday,tuesday"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/workers/register", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created dto.WorkerResponse
	decode(t, w, &created)
	require.Len(t, created.Skills, 2)
	assert.Equal(t, "beginner", created.Skills[1].Level)
	assert.True(t, created.Availability.Monday)
	assert.False(t, created.Availability.Friday)
	assert.Nil(t, created.PhotoURL)
}

func TestWorkerHandler_RegisterValidation(t *testing.T) {
	h := newWorkerHandler(newMemWorkers(), newMemTasks())
	r := newRouter()
	r.POST("/workers/register", h.Register)

	w := doJSON(r, http.MethodPost, "/workers/register", map[string]string{"name": "Без пароля"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/workers/register", map[string]string{
		"name": "Слабый", "phone": "89991234567", "username": "weak", "password": "password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w, nil).Error.Code)
}

func TestWorkerHandler_Login(t *testing.T) {
	workers := newMemWorkers()
	h := newWorkerHandler(workers, newMemTasks())
	r := newRouter()
	r.POST("/workers/register", h.Register)
	r.POST("/workers/login", h.Login)

	w := doJSON(r, http.MethodPost, "/workers/register", map[string]string{
		"name": "Анна", "phone": "89991234567", "username": "anna", "password": "Secret123", "skills": "Plumber",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/workers/login", map[string]string{"username": "anna", "password": "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/workers/login", map[string]string{"username": "anna", "password": "Secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	var auth dto.AuthResponse
	decode(t, w, &auth)
	assert.Equal(t, "worker", auth.Role)
	require.NotNil(t, auth.Worker)
	assert.Equal(t, "worker:"+auth.Worker.ID.String(), auth.AccessToken)
}

func TestWorkerHandler_SessionFlow(t *testing.T) {
	wk := acceptedWorker(t, "sess", "Electrician")
	workers := newMemWorkers(wk)
	h := newWorkerHandler(workers, newMemTasks())
	r := newRouter()
	me := r.Group("/me", withIdentity(wk.ID, valueobject.RoleWorker))
	me.POST("/sessions/start", h.StartSession)
	me.POST("/sessions/stop", h.StopSession)
	me.POST("/breaks/start", h.StartBreak)
	me.POST("/breaks/end", h.EndBreak)
	me.GET("", h.Me)

	w := doJSON(r, http.MethodPost, "/me/breaks/end", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/me/sessions/start", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/me/sessions/start", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/me/breaks/start", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/me/sessions/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session dto.WorkSessionDTO
	decode(t, w, &session)
	require.NotNil(t, session.EndTime)
	require.Len(t, session.Breaks, 1)
	assert.Equal(t, *session.EndTime, *session.Breaks[0].EndTime)

	w = doJSON(r, http.MethodGet, "/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile dto.WorkerResponse
	decode(t, w, &profile)
	assert.Len(t, profile.WorkHistory, 2)
}

func TestWorkerHandler_RecommendedTasks(t *testing.T) {
	wk := acceptedWorker(t, "rec", "Electrician")
	matchingTask := availableTask(t, "Electrician")
	otherTask := availableTask(t, "Welder")
	h := newWorkerHandler(newMemWorkers(wk), newMemTasks(matchingTask, otherTask))
	r := newRouter()
	r.GET("/me/tasks/recommended", withIdentity(wk.ID, valueobject.RoleWorker), h.RecommendedTasks)

	w := doJSON(r, http.MethodGet, "/me/tasks/recommended", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var recommendations []dto.RecommendationResponse
	decode(t, w, &recommendations)
	require.Len(t, recommendations, 1)
	assert.Equal(t, matchingTask.ID, recommendations[0].Task.ID)
	assert.InDelta(t, 3.5, recommendations[0].MatchDetails.SkillMatch, 1e-9)
	assert.Greater(t, recommendations[0].MatchScore, 0.0)
}

func TestWorkerHandler_PredictMyHours(t *testing.T) {
	wk := acceptedWorker(t, "pred", "Electrician")
	h := newWorkerHandler(newMemWorkers(wk), newMemTasks())
	r := newRouter()
	r.GET("/me/prediction", withIdentity(wk.ID, valueobject.RoleWorker), h.PredictMyHours)

	w := doJSON(r, http.MethodGet, "/me/prediction", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var prediction dto.PredictionResponse
	decode(t, w, &prediction)
	assert.Equal(t, wk.ID, prediction.WorkerID)
	assert.InDelta(t, 4.0, prediction.PredictedHours, 1e-9)
}

func TestWorkerHandler_Unauthorized(t *testing.T) {
	h := newWorkerHandler(newMemWorkers(), newMemTasks())
	r := newRouter()
	r.GET("/me", h.Me)
	r.GET("/me/stats", h.Stats)

	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/me/stats", nil).Code)
}

func TestWorkerHandler_MeUnknownWorker(t *testing.T) {
	h := newWorkerHandler(newMemWorkers(), newMemTasks())
	r := newRouter()
	r.GET("/me", withIdentity(uuid.New(), valueobject.RoleWorker), h.Me)

	w := doJSON(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
