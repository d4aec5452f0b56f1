package worker

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/logger"
)

// DefaultPredictedHours подставляется, когда предсказатель недоступен или вернул мусор.
const DefaultPredictedHours = 3.0

type PredictHoursUseCase struct {
	workerRepo repository.WorkerRepository
	predictor  repository.HoursPredictor
}

func NewPredictHoursUseCase(workerRepo repository.WorkerRepository, predictor repository.HoursPredictor) *PredictHoursUseCase {
	return &PredictHoursUseCase{workerRepo: workerRepo, predictor: predictor}
}

// Execute возвращает прогноз часов для работника. Ошибкой завершается только
// поиск работника; сбой предсказателя деградирует до DefaultPredictedHours.
func (uc *PredictHoursUseCase) Execute(ctx context.Context, workerID uuid.UUID) (float64, error) {
	worker, err := uc.workerRepo.FindByID(ctx, workerID)
	if err != nil {
		return 0, err
	}
	return uc.Predict(ctx, worker), nil
}

func (uc *PredictHoursUseCase) Predict(ctx context.Context, worker *entity.Worker) float64 {
	if uc.predictor == nil {
		return DefaultPredictedHours
	}

	hours, err := uc.predictor.PredictHours(ctx, BuildSnapshot(worker, time.Now()))
	if err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"worker_id": worker.ID,
			"error":     err.Error(),
		}).Warn("predict hours: предсказатель недоступен, используется значение по умолчанию")
		return DefaultPredictedHours
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		logger.Log.WithFields(map[string]interface{}{
			"worker_id": worker.ID,
			"value":     hours,
		}).Warn("predict hours: некорректный прогноз, используется значение по умолчанию")
		return DefaultPredictedHours
	}
	return hours
}

// BuildSnapshot собирает признаки истории смен для предсказателя.
func BuildSnapshot(worker *entity.Worker, now time.Time) repository.WorkHistorySnapshot {
	snapshot := repository.WorkHistorySnapshot{
		WorkerID:     worker.ID,
		SessionCount: len(worker.WorkHistory),
		Sessions:     make([]repository.SessionSnapshot, 0, len(worker.WorkHistory)),
	}

	var closed int
	var totalHours float64
	var totalBreaks int
	var last time.Time
	for _, s := range worker.WorkHistory {
		item := repository.SessionSnapshot{
			StartedAt:         s.StartedAt,
			EndedAt:           s.EndedAt,
			Breaks:            len(s.Breaks),
			TaskType:          s.TaskType,
			PerformanceRating: s.PerformanceRating,
		}
		if s.TaskDifficulty != nil {
			d := string(*s.TaskDifficulty)
			item.TaskDifficulty = &d
		}
		snapshot.Sessions = append(snapshot.Sessions, item)

		totalBreaks += len(s.Breaks)
		if s.StartedAt.After(last) {
			last = s.StartedAt
		}
		if s.EndedAt != nil {
			closed++
			totalHours += s.Duration().Hours()
		}
	}

	if closed > 0 {
		snapshot.AverageHours = totalHours / float64(closed)
	}
	if len(worker.WorkHistory) > 0 {
		snapshot.AverageBreaks = float64(totalBreaks) / float64(len(worker.WorkHistory))
		snapshot.DaysSinceLastShift = now.Sub(last).Hours() / 24
	}
	return snapshot
}
