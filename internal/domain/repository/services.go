package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HoursPredictor оценивает длительность следующей смены работника в часах.
type HoursPredictor interface {
	PredictHours(ctx context.Context, snapshot WorkHistorySnapshot) (float64, error)
}

type WorkHistorySnapshot struct {
	WorkerID           uuid.UUID         `json:"workerId"`
	SessionCount       int               `json:"sessionCount"`
	AverageHours       float64           `json:"averageHours"`
	AverageBreaks      float64           `json:"averageBreaks"`
	DaysSinceLastShift float64           `json:"daysSinceLastShift"`
	Sessions           []SessionSnapshot `json:"sessions"`
}

type SessionSnapshot struct {
	StartedAt         time.Time  `json:"startedAt"`
	EndedAt           *time.Time `json:"endedAt,omitempty"`
	Breaks            int        `json:"breaks"`
	TaskType          *string    `json:"taskType,omitempty"`
	TaskDifficulty    *string    `json:"taskDifficulty,omitempty"`
	PerformanceRating *int       `json:"performanceRating,omitempty"`
}

// MatchCache хранит сериализованные результаты подбора.
// Каждое удаление увеличивает версию кэша. SetIfVersion записывает значение,
// только если версия не изменилась с момента, когда её прочитал вызывающий.
type MatchCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Version(ctx context.Context) int64
	SetIfVersion(ctx context.Context, key string, value []byte, ttl time.Duration, version int64) bool
	Delete(ctx context.Context, keys ...string)
	DeleteByPrefix(ctx context.Context, prefix string)
}

// Transactor выполняет fn в одной транзакции. Операции репозиториев,
// вызванные с переданным в fn контекстом, присоединяются к ней.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher доставляет событие подключённым клиентам пользователя.
type EventPublisher interface {
	Publish(userID uuid.UUID, event string, payload interface{})
	Broadcast(event string, payload interface{})
}

const RecommendationsCachePrefix = "recommendations:"

// RecommendationsCacheKey строит ключ кэша рекомендаций работника.
func RecommendationsCacheKey(workerID uuid.UUID) string {
	return RecommendationsCachePrefix + workerID.String()
}

// Имена событий для EventPublisher.
const (
	EventTaskAssigned        = "task_assigned"
	EventTaskCompleted       = "task_completed"
	EventTaskRated           = "task_rated"
	EventWorkerStatusChanged = "worker_status_changed"
)
