package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/matching"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/interface/http/dto"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/task"
)

func newTaskHandler(workers *memWorkers, tasks *memTasks) *TaskHandler {
	engine := matching.NewEngine(time.UTC)
	return NewTaskHandler(TaskUseCases{
		Create:     task.NewCreateTaskUseCase(tasks, nil),
		Get:        task.NewGetTaskUseCase(tasks),
		List:       task.NewListTasksUseCase(tasks),
		Publish:    task.NewPublishTaskUseCase(tasks, nil),
		Cancel:     task.NewCancelTaskUseCase(tasks, nil),
		Accept:     task.NewAcceptTaskUseCase(tasks, workers, nil, nil),
		Assign:     task.NewAssignTaskUseCase(tasks, workers, engine, nil, nil),
		Start:      task.NewStartTaskUseCase(tasks),
		Complete:   task.NewCompleteTaskUseCase(tasks, workers, inlineTx{}, nil, nil),
		Rate:       task.NewRateTaskUseCase(tasks, workers, inlineTx{}, nil, nil),
		Candidates: task.NewCandidatesUseCase(tasks, workers, engine),
	})
}

// mountTasks регистрирует роуты так же, как router: рабочие и админские под разными группами.
func mountTasks(r *gin.Engine, h *TaskHandler, workerID, adminID uuid.UUID) {
	r.GET("/tasks", h.ListTasks)
	r.GET("/tasks/available", h.ListAvailableTasks)
	r.GET("/tasks/:id", h.GetTask)

	w := r.Group("/worker", withIdentity(workerID, valueobject.RoleWorker))
	w.POST("/tasks/:id/accept", h.AcceptTask)
	w.POST("/tasks/:id/start", h.StartTask)
	w.POST("/tasks/:id/complete", h.CompleteTask)

	a := r.Group("/admin", withIdentity(adminID, valueobject.RoleAdmin))
	a.POST("/tasks", h.CreateTask)
	a.POST("/tasks/:id/publish", h.PublishTask)
	a.POST("/tasks/:id/cancel", h.CancelTask)
	a.POST("/tasks/:id/assign", h.AssignTask)
	a.POST("/tasks/:id/complete", h.CompleteTask)
	a.POST("/tasks/:id/rate", h.RateTask)
	a.GET("/tasks/:id/candidates", h.Candidates)
	a.GET("/tasks/:id/best-worker", h.BestWorker)
}

func createTaskBody(publish bool) map[string]interface{} {
	return map[string]interface{}{
		"title":             "Замена розеток",
		"description":       "Заменить шесть розеток в квартире",
		"requiredSkills":    []map[string]interface{}{{"name": "Electrician", "minimumLevel": "intermediate"}},
		"difficulty":        "medium",
		"estimatedDuration": 2.5,
		"location":          map[string]interface{}{"address": "ул. Садовая, 10", "latitude": 59.93, "longitude": 30.31},
		"deadline":          time.Now().Add(96 * time.Hour).UTC().Format(time.RFC3339),
		"publish":           publish,
	}
}

func TestTaskHandler_CreatePublishAndList(t *testing.T) {
	tasks := newMemTasks()
	h := newTaskHandler(newMemWorkers(), tasks)
	r := newRouter()
	mountTasks(r, h, uuid.New(), uuid.New())

	w := doJSON(r, http.MethodPost, "/admin/tasks", createTaskBody(false))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.TaskResponse
	decode(t, w, &created)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "intermediate", created.RequiredSkills[0].MinimumLevel)

	w = doJSON(r, http.MethodGet, "/tasks?status=available", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []dto.TaskResponse
	decode(t, w, &listed)
	assert.Empty(t, listed)

	w = doJSON(r, http.MethodPost, "/admin/tasks/"+created.ID.String()+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/tasks?status=open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, "available", listed[0].Status)

	w = doJSON(r, http.MethodGet, "/tasks/available", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &listed)
	assert.Len(t, listed, 1)

	w = doJSON(r, http.MethodPost, "/admin/tasks/"+created.ID.String()+"/publish", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTaskHandler_CreateValidation(t *testing.T) {
	h := newTaskHandler(newMemWorkers(), newMemTasks())
	r := newRouter()
	mountTasks(r, h, uuid.New(), uuid.New())

	w := doJSON(r, http.MethodPost, "/admin/tasks", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := createTaskBody(true)
	body["deadline"] = "послезавтра"
	w = doJSON(r, http.MethodPost, "/admin/tasks", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = createTaskBody(true)
	body["difficulty"] = "extreme"
	w = doJSON(r, http.MethodPost, "/admin/tasks", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w, nil).Error.Code)
}

func TestTaskHandler_AcceptRequiresAcceptedWorker(t *testing.T) {
	pending, err := entity.NewWorker("Новичок", "+79990000001", "newbie", "hash", nil)
	require.NoError(t, err)
	open := availableTask(t, "Electrician")
	h := newTaskHandler(newMemWorkers(pending), newMemTasks(open))
	r := newRouter()
	mountTasks(r, h, pending.ID, uuid.New())

	w := doJSON(r, http.MethodPost, "/worker/tasks/"+open.ID.String()+"/accept", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskHandler_WorkerLifecycle(t *testing.T) {
	wk := acceptedWorker(t, "life", "Electrician")
	open := availableTask(t, "Electrician")
	workers := newMemWorkers(wk)
	tasks := newMemTasks(open)
	h := newTaskHandler(workers, tasks)
	r := newRouter()
	mountTasks(r, h, wk.ID, uuid.New())

	// смена открыта, чтобы итоги задачи записались в неё
	_, err := workers.Modify(t.Context(), wk.ID, func(w *entity.Worker) error {
		_, err := w.StartSession(time.Now().Add(-time.Hour))
		return err
	})
	require.NoError(t, err)

	path := "/worker/tasks/" + open.ID.String()
	w := doJSON(r, http.MethodPost, path+"/accept", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var accepted dto.TaskResponse
	decode(t, w, &accepted)
	assert.Equal(t, "assigned", accepted.Status)
	require.NotNil(t, accepted.AssignedWorkerID)
	assert.Equal(t, wk.ID, *accepted.AssignedWorkerID)

	w = doJSON(r, http.MethodPost, path+"/accept", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, path+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)

	rating := 5
	w = doJSON(r, http.MethodPost, path+"/complete", dto.CompleteTaskRequest{Notes: "готово", Rating: &rating})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var completed dto.TaskResponse
	decode(t, w, &completed)
	assert.Equal(t, "completed", completed.Status)
	require.NotNil(t, completed.PerformanceRating)
	assert.Equal(t, 5, *completed.PerformanceRating)

	stored, err := workers.FindByID(t.Context(), wk.ID)
	require.NoError(t, err)
	active := stored.ActiveSession()
	require.NotNil(t, active)
	require.NotNil(t, active.TaskType)
	assert.Equal(t, "Ремонт щитка", *active.TaskType)
	require.NotNil(t, active.PerformanceRating)
	assert.Equal(t, 5, *active.PerformanceRating)
}

func TestTaskHandler_CompleteByOtherWorkerForbidden(t *testing.T) {
	owner := acceptedWorker(t, "owner", "Electrician")
	stranger := acceptedWorker(t, "stranger", "Electrician")
	open := availableTask(t, "Electrician")
	require.NoError(t, open.Assign(owner.ID, time.Now()))

	workers := newMemWorkers(owner, stranger)
	h := newTaskHandler(workers, newMemTasks(open))
	adminID := uuid.New()
	r := newRouter()
	mountTasks(r, h, stranger.ID, adminID)

	w := doJSON(r, http.MethodPost, "/worker/tasks/"+open.ID.String()+"/complete", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPost, "/admin/tasks/"+open.ID.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/admin/tasks/"+open.ID.String()+"/rate", dto.RateTaskRequest{Rating: 4, Feedback: "хорошо"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rated dto.TaskResponse
	decode(t, w, &rated)
	assert.Equal(t, 4, *rated.PerformanceRating)
	assert.Equal(t, "хорошо", *rated.Feedback)

	w = doJSON(r, http.MethodPost, "/admin/tasks/"+open.ID.String()+"/rate", dto.RateTaskRequest{Rating: 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandler_AssignBestWorker(t *testing.T) {
	expert := acceptedWorker(t, "expert", "Electrician")
	novice := acceptedWorker(t, "novice", "Electrician")
	novice.Skills[0].Level = valueobject.SkillLevelBeginner
	novice.Skills[0].YearsOfExperience = 0
	open := availableTask(t, "Electrician")

	h := newTaskHandler(newMemWorkers(expert, novice), newMemTasks(open))
	r := newRouter()
	mountTasks(r, h, uuid.New(), uuid.New())

	w := doJSON(r, http.MethodGet, "/admin/tasks/"+open.ID.String()+"/best-worker", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var best dto.BestWorkerResponse
	decode(t, w, &best)
	assert.Equal(t, expert.ID, best.WorkerID)
	assert.Greater(t, best.Score, 0.0)

	w = doJSON(r, http.MethodGet, "/admin/tasks/"+open.ID.String()+"/candidates?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var candidates []dto.CandidateResponse
	decode(t, w, &candidates)
	require.Len(t, candidates, 1)
	assert.Equal(t, expert.ID, candidates[0].WorkerID)

	w = doJSON(r, http.MethodPost, "/admin/tasks/"+open.ID.String()+"/assign", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var assigned dto.TaskResponse
	decode(t, w, &assigned)
	require.NotNil(t, assigned.AssignedWorkerID)
	assert.Equal(t, expert.ID, *assigned.AssignedWorkerID)
}

func TestTaskHandler_AssignExplicitWorker(t *testing.T) {
	wk := acceptedWorker(t, "explicit", "Plumber")
	open := availableTask(t, "Electrician")
	h := newTaskHandler(newMemWorkers(wk), newMemTasks(open))
	r := newRouter()
	mountTasks(r, h, uuid.New(), uuid.New())

	bad := "nope"
	w := doJSON(r, http.MethodPost, "/admin/tasks/"+open.ID.String()+"/assign", dto.AssignTaskRequest{WorkerID: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := wk.ID.String()
	w = doJSON(r, http.MethodPost, "/admin/tasks/"+open.ID.String()+"/assign", dto.AssignTaskRequest{WorkerID: &id})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/admin/tasks/"+open.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPost, "/admin/tasks/"+open.ID.String()+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTaskHandler_BestWorkerWithoutCandidates(t *testing.T) {
	open := availableTask(t, "Electrician")
	h := newTaskHandler(newMemWorkers(), newMemTasks(open))
	r := newRouter()
	mountTasks(r, h, uuid.New(), uuid.New())

	w := doJSON(r, http.MethodGet, "/admin/tasks/"+open.ID.String()+"/best-worker", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_InvalidIDs(t *testing.T) {
	h := newTaskHandler(newMemWorkers(), newMemTasks())
	r := newRouter()
	mountTasks(r, h, uuid.New(), uuid.New())

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/tasks/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/worker/tasks/42/accept", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/tasks/"+uuid.New().String(), nil).Code)
}
