package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/http/middleware"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

type memWorkers struct {
	mu      sync.Mutex
	workers map[uuid.UUID]*entity.Worker
}

func newMemWorkers(workers ...*entity.Worker) *memWorkers {
	m := &memWorkers{workers: make(map[uuid.UUID]*entity.Worker)}
	for _, w := range workers {
		m.workers[w.ID] = cloneWorker(w)
	}
	return m
}

func (m *memWorkers) Create(ctx context.Context, w *entity.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.workers {
		if existing.Username == w.Username {
			return apperror.ErrUsernameTaken
		}
	}
	m.workers[w.ID] = cloneWorker(w)
	return nil
}

func (m *memWorkers) Update(ctx context.Context, w *entity.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workers[w.ID]; !ok {
		return apperror.ErrWorkerNotFound
	}
	m.workers[w.ID] = cloneWorker(w)
	return nil
}

func (m *memWorkers) FindByID(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.workers[id]; ok {
		return cloneWorker(w), nil
	}
	return nil, apperror.ErrWorkerNotFound
}

func (m *memWorkers) FindByUsername(ctx context.Context, username string) (*entity.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.workers {
		if w.Username == username {
			return cloneWorker(w), nil
		}
	}
	return nil, apperror.ErrWorkerNotFound
}

func (m *memWorkers) List(ctx context.Context, filter repository.WorkerFilter) ([]*entity.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.Worker
	for _, w := range m.workers {
		if filter.Status != nil && w.Status != *filter.Status {
			continue
		}
		result = append(result, cloneWorker(w))
	}
	return result, nil
}

func (m *memWorkers) Modify(ctx context.Context, id uuid.UUID, fn func(*entity.Worker) error) (*entity.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workers[id]
	if !ok {
		return nil, apperror.ErrWorkerNotFound
	}
	c := cloneWorker(w)
	if err := fn(c); err != nil {
		return nil, err
	}
	m.workers[id] = cloneWorker(c)
	return c, nil
}

func cloneWorker(w *entity.Worker) *entity.Worker {
	c := *w
	c.Skills = append([]entity.Skill(nil), w.Skills...)
	c.WorkHistory = make([]entity.WorkSession, len(w.WorkHistory))
	for i, s := range w.WorkHistory {
		s.Breaks = append([]entity.Break(nil), s.Breaks...)
		c.WorkHistory[i] = s
	}
	return &c
}

type memTasks struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*entity.Task
}

func newMemTasks(tasks ...*entity.Task) *memTasks {
	m := &memTasks{tasks: make(map[uuid.UUID]*entity.Task)}
	for _, t := range tasks {
		c := *t
		m.tasks[t.ID] = &c
	}
	return m
}

func (m *memTasks) Create(ctx context.Context, t *entity.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	m.tasks[t.ID] = &c
	return nil
}

func (m *memTasks) FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, apperror.ErrTaskNotFound
}

func (m *memTasks) List(ctx context.Context, filter repository.TaskFilter) ([]*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.Task
	for _, t := range m.tasks {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		c := *t
		result = append(result, &c)
	}
	return result, nil
}

func (m *memTasks) FindByAssignedWorker(ctx context.Context, workerID uuid.UUID, statuses ...valueobject.TaskStatus) ([]*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.Task
	for _, t := range m.tasks {
		if !t.IsAssignedTo(workerID) || (len(statuses) > 0 && !containsStatus(statuses, t.Status)) {
			continue
		}
		c := *t
		result = append(result, &c)
	}
	return result, nil
}

func (m *memTasks) Modify(ctx context.Context, id uuid.UUID, fn func(*entity.Task) error) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, apperror.ErrTaskNotFound
	}
	c := *t
	if err := fn(&c); err != nil {
		return nil, err
	}
	stored := c
	m.tasks[id] = &stored
	return &c, nil
}

func containsStatus(statuses []valueobject.TaskStatus, status valueobject.TaskStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// inlineTx выполняет fn без транзакции: фейковые репозитории не откатываются.
type inlineTx struct{}

func (inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubTokens struct{}

func (stubTokens) IssueAccess(subject uuid.UUID, role valueobject.Role) (string, time.Time, error) {
	return string(role) + ":" + subject.String(), time.Now().Add(time.Hour), nil
}

func (stubTokens) ParseAccess(token string) (uuid.UUID, valueobject.Role, error) {
	for _, role := range []valueobject.Role{valueobject.RoleWorker, valueobject.RoleAdmin} {
		prefix := string(role) + ":"
		if len(token) > len(prefix) && token[:len(prefix)] == prefix {
			id, err := uuid.Parse(token[len(prefix):])
			return id, role, err
		}
	}
	return uuid.Nil, "", apperror.ErrUnauthorized
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

func acceptedWorker(t *testing.T, username string, skill string) *entity.Worker {
	t.Helper()
	w, err := entity.NewWorker("Работник "+username, "+79990000000", username, "hash", []entity.Skill{
		{Name: skill, Level: valueobject.SkillLevelExpert, YearsOfExperience: 5},
	})
	require.NoError(t, err)
	require.NoError(t, w.Accept())

	start := time.Now().Add(-48 * time.Hour)
	_, err = w.StartSession(start)
	require.NoError(t, err)
	_, err = w.StopSession(start.Add(4 * time.Hour))
	require.NoError(t, err)
	return w
}

func availableTask(t *testing.T, skill string) *entity.Task {
	t.Helper()
	task, err := entity.NewTask(entity.NewTaskParams{
		Title:             "Ремонт щитка",
		Description:       "Заменить автоматы в щитке",
		RequiredSkills:    []entity.RequiredSkill{{Name: skill, MinimumLevel: valueobject.SkillLevelBeginner}},
		Difficulty:        valueobject.DifficultyMedium,
		EstimatedDuration: 3,
		Location:          entity.Location{Address: "ул. Мира, 5"},
		Deadline:          time.Now().Add(72 * time.Hour),
		Publish:           true,
	})
	require.NoError(t, err)
	return task
}

// withIdentity подставляет в контекст то, что положил бы AuthMiddleware.
func withIdentity(userID uuid.UUID, role valueobject.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Set(middleware.ContextRoleKey, role)
		c.Next()
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}
