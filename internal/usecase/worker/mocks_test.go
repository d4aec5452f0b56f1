package worker_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

type mockWorkerRepository struct {
	mu      sync.Mutex
	workers map[uuid.UUID]*entity.Worker
}

func newMockWorkerRepository(workers ...*entity.Worker) *mockWorkerRepository {
	m := &mockWorkerRepository{workers: make(map[uuid.UUID]*entity.Worker)}
	for _, w := range workers {
		m.workers[w.ID] = w
	}
	return m
}

func (m *mockWorkerRepository) Create(ctx context.Context, w *entity.Worker) error {
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
	for _, w := range m.workers {
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

type mockPredictor struct {
	mock.Mock
}

func (m *mockPredictor) PredictHours(ctx context.Context, snapshot repository.WorkHistorySnapshot) (float64, error) {
	args := m.Called(ctx, snapshot)
	return args.Get(0).(float64), args.Error(1)
}

type stubTokens struct{}

func (stubTokens) IssueAccess(subject uuid.UUID, role valueobject.Role) (string, time.Time, error) {
	return string(role) + ":" + subject.String(), time.Now().Add(time.Hour), nil
}

type memoryPhotos struct {
	saved map[string]string
}

func (p *memoryPhotos) Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	var sb strings.Builder
	n, err := io.Copy(&sb, r)
	if err != nil {
		return "", 0, err
	}
	path := ownerID.String() + "/" + originalName
	p.saved[path] = sb.String()
	return path, n, nil
}

func (p *memoryPhotos) Delete(ctx context.Context, relativePath string) error {
	delete(p.saved, relativePath)
	return nil
}

type recordingCache struct {
	mu      sync.Mutex
	deleted []string
}

func (c *recordingCache) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }

func (c *recordingCache) Version(ctx context.Context) int64 { return 0 }

func (c *recordingCache) SetIfVersion(ctx context.Context, key string, value []byte, ttl time.Duration, version int64) bool {
	return false
}

func (c *recordingCache) Delete(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, keys...)
}

func (c *recordingCache) DeleteByPrefix(ctx context.Context, prefix string) {}

type recordedEvent struct {
	userID uuid.UUID
	name   string
}

type recordingEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (e *recordingEvents) Publish(userID uuid.UUID, event string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, recordedEvent{userID: userID, name: event})
}

func (e *recordingEvents) Broadcast(event string, payload interface{}) {
	e.Publish(uuid.Nil, event, payload)
}

func acceptedWorker(username string) *entity.Worker {
	return &entity.Worker{
		ID:           uuid.New(),
		Name:         "Ravi",
		Phone:        "+79990001122",
		Username:     username,
		Status:       valueobject.WorkerStatusAccepted,
		Availability: valueobject.FullWeek(),
		WorkingHours: valueobject.DefaultWorkingHours(),
	}
}
