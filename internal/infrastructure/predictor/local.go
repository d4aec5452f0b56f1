package predictor

import (
	"context"

	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
)

const (
	MinHours = 3.0
	MaxHours = 10.0
)

// Local оценивает часы без внешнего сервиса как среднюю длительность закрытых смен,
// ограниченная диапазоном [MinHours, MaxHours]. Без истории возвращает MinHours.
type Local struct{}

func NewLocal() *Local {
	return &Local{}
}

var _ repository.HoursPredictor = (*Local)(nil)

func (Local) PredictHours(_ context.Context, snapshot repository.WorkHistorySnapshot) (float64, error) {
	if snapshot.AverageHours <= 0 {
		return MinHours, nil
	}
	return clamp(snapshot.AverageHours, MinHours, MaxHours), nil
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
