package task_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

type mockTaskRepository struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*entity.Task
	order []uuid.UUID
}

func newMockTaskRepository(tasks ...*entity.Task) *mockTaskRepository {
	m := &mockTaskRepository{tasks: make(map[uuid.UUID]*entity.Task)}
	for _, t := range tasks {
		m.tasks[t.ID] = t
		m.order = append(m.order, t.ID)
	}
	return m
}

func (m *mockTaskRepository) Create(ctx context.Context, t *entity.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	m.tasks[t.ID] = &c
	m.order = append(m.order, t.ID)
	return nil
}

func (m *mockTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, apperror.ErrTaskNotFound
}

func (m *mockTaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.Task
	for _, id := range m.order {
		t := m.tasks[id]
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, t.Status) {
			continue
		}
		if filter.Skill != "" && !strings.Contains(strings.Join(t.SkillNames(), ","), filter.Skill) {
			continue
		}
		c := *t
		result = append(result, &c)
	}
	return result, nil
}

func (m *mockTaskRepository) FindByAssignedWorker(ctx context.Context, workerID uuid.UUID, statuses ...valueobject.TaskStatus) ([]*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.Task
	for _, id := range m.order {
		t := m.tasks[id]
		if !t.IsAssignedTo(workerID) || (len(statuses) > 0 && !hasStatus(statuses, t.Status)) {
			continue
		}
		c := *t
		result = append(result, &c)
	}
	return result, nil
}

func (m *mockTaskRepository) Modify(ctx context.Context, id uuid.UUID, fn func(*entity.Task) error) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tasks[id]
	if !ok {
		return nil, apperror.ErrTaskNotFound
	}
	c := *stored
	if err := fn(&c); err != nil {
		return nil, err
	}
	m.tasks[id] = &c
	result := c
	return &result, nil
}

func (m *mockTaskRepository) get(id uuid.UUID) entity.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.tasks[id]
}

func (m *mockTaskRepository) snapshot() map[uuid.UUID]*entity.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[uuid.UUID]*entity.Task, len(m.tasks))
	for id, t := range m.tasks {
		c := *t
		copied[id] = &c
	}
	return copied
}

func (m *mockTaskRepository) restore(tasks map[uuid.UUID]*entity.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = tasks
}

func hasStatus(statuses []valueobject.TaskStatus, s valueobject.TaskStatus) bool {
	for _, status := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

type mockWorkerRepository struct {
	mu      sync.Mutex
	workers map[uuid.UUID]*entity.Worker
	order   []uuid.UUID
}

func newMockWorkerRepository(workers ...*entity.Worker) *mockWorkerRepository {
	m := &mockWorkerRepository{workers: make(map[uuid.UUID]*entity.Worker)}
	for _, w := range workers {
		m.workers[w.ID] = w
		m.order = append(m.order, w.ID)
	}
	return m
}

func (m *mockWorkerRepository) Create(ctx context.Context, w *entity.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[w.ID] = cloneWorker(w)
	m.order = append(m.order, w.ID)
	return nil
}

func (m *mockWorkerRepository) Update(ctx context.Context, w *entity.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[w.ID] = cloneWorker(w)
	return nil
}

func (m *mockWorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.workers[id]; ok {
		return cloneWorker(w), nil
	}
	return nil, apperror.ErrWorkerNotFound
}

func (m *mockWorkerRepository) FindByUsername(ctx context.Context, username string) (*entity.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.workers {
		if w.Username == username {
			return cloneWorker(w), nil
		}
	}
	return nil, apperror.ErrWorkerNotFound
}

func (m *mockWorkerRepository) List(ctx context.Context, filter repository.WorkerFilter) ([]*entity.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.Worker
	for _, id := range m.order {
		w := m.workers[id]
		if filter.Status != nil && w.Status != *filter.Status {
			continue
		}
		result = append(result, cloneWorker(w))
	}
	return result, nil
}

func (m *mockWorkerRepository) Modify(ctx context.Context, id uuid.UUID, fn func(*entity.Worker) error) (*entity.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.workers[id]
	if !ok {
		return nil, apperror.ErrWorkerNotFound
	}
	w := cloneWorker(stored)
	if err := fn(w); err != nil {
		return nil, err
	}
	m.workers[id] = w
	return cloneWorker(w), nil
}

func (m *mockWorkerRepository) get(id uuid.UUID) *entity.Worker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneWorker(m.workers[id])
}

func (m *mockWorkerRepository) snapshot() map[uuid.UUID]*entity.Worker {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[uuid.UUID]*entity.Worker, len(m.workers))
	for id, w := range m.workers {
		copied[id] = cloneWorker(w)
	}
	return copied
}

func (m *mockWorkerRepository) restore(workers map[uuid.UUID]*entity.Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = workers
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

// rollbackTx эмулирует транзакцию над фейковыми репозиториями: при ошибке fn
// или при commitErr состояние обоих репозиториев возвращается к исходному.
type rollbackTx struct {
	tasks     *mockTaskRepository
	workers   *mockWorkerRepository
	commitErr error
	commits   int
}

func newRollbackTx(tasks *mockTaskRepository, workers *mockWorkerRepository) *rollbackTx {
	return &rollbackTx{tasks: tasks, workers: workers}
}

func (tx *rollbackTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tasks := tx.tasks.snapshot()
	workers := tx.workers.snapshot()

	err := fn(ctx)
	if err == nil {
		err = tx.commitErr
	}
	if err != nil {
		tx.tasks.restore(tasks)
		tx.workers.restore(workers)
		return err
	}
	tx.commits++
	return nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	version int64
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *memoryCache) Version(ctx context.Context) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *memoryCache) SetIfVersion(ctx context.Context, key string, value []byte, ttl time.Duration, version int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return false
	}
	c.entries[key] = value
	c.sets++
	return true
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	for _, k := range keys {
		delete(c.entries, k)
	}
}

func (c *memoryCache) DeleteByPrefix(ctx context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

func (c *memoryCache) has(key string) bool {
	_, ok := c.Get(context.Background(), key)
	return ok
}

type recordingEvents struct {
	mu    sync.Mutex
	names []string
	users []uuid.UUID
}

func (e *recordingEvents) Publish(userID uuid.UUID, event string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names = append(e.names, event)
	e.users = append(e.users, userID)
}

func (e *recordingEvents) Broadcast(event string, payload interface{}) {
	e.Publish(uuid.Nil, event, payload)
}

func electrician(level valueobject.SkillLevel, years float64, certs ...string) entity.Skill {
	return entity.Skill{Name: "Electrician", Level: level, YearsOfExperience: years, Certifications: certs}
}

// veteran: одобренный работник с закрытой сменой.
func veteran(username string, rating int, skills ...entity.Skill) *entity.Worker {
	start := time.Now().AddDate(0, 0, -2)
	end := start.Add(6 * time.Hour)
	return &entity.Worker{
		ID:           uuid.New(),
		Name:         username,
		Username:     username,
		Status:       valueobject.WorkerStatusAccepted,
		Skills:       skills,
		Availability: valueobject.FullWeek(),
		WorkingHours: valueobject.WorkingHours{Start: "00:00", End: "24:00"},
		WorkHistory: []entity.WorkSession{
			{ID: uuid.New(), StartedAt: start, EndedAt: &end, PerformanceRating: &rating},
		},
	}
}

func openTask(title string, required ...entity.RequiredSkill) *entity.Task {
	return &entity.Task{
		ID:                uuid.New(),
		Title:             title,
		Description:       title,
		RequiredSkills:    required,
		Difficulty:        valueobject.DifficultyMedium,
		EstimatedDuration: 4,
		Location:          entity.Location{Address: "Lenina 1"},
		Priority:          valueobject.PriorityMedium,
		Status:            valueobject.TaskStatusAvailable,
		Deadline:          time.Now().AddDate(0, 0, 3),
	}
}

func requires(name string, certs ...string) entity.RequiredSkill {
	return entity.RequiredSkill{Name: name, MinimumLevel: valueobject.SkillLevelBeginner, RequiredCertifications: certs}
}
