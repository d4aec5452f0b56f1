package analytics

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/matching"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
)

// maxConcurrentPredictions ограничивает число одновременных обращений к предсказателю.
const maxConcurrentPredictions = 4

// HoursPredictor прогнозирует часы уже загруженного работника без возврата ошибок.
type HoursPredictor interface {
	Predict(ctx context.Context, worker *entity.Worker) float64
}

type WorkerSummary struct {
	WorkerID         uuid.UUID `json:"workerId"`
	Name             string    `json:"name"`
	HoursWorked      float64   `json:"hoursWorked"`
	Sessions         int       `json:"sessions"`
	PerformanceScore float64   `json:"performanceScore"`
	PredictedHours   float64   `json:"predictedHours"`
}

type Overview struct {
	WorkersByStatus map[valueobject.WorkerStatus]int `json:"workersByStatus"`
	TasksByStatus   map[valueobject.TaskStatus]int   `json:"tasksByStatus"`
	Workers         []WorkerSummary                  `json:"workers"`
}

type OverviewUseCase struct {
	workerRepo repository.WorkerRepository
	taskRepo   repository.TaskRepository
	predictor  HoursPredictor
}

func NewOverviewUseCase(workerRepo repository.WorkerRepository, taskRepo repository.TaskRepository, predictor HoursPredictor) *OverviewUseCase {
	return &OverviewUseCase{workerRepo: workerRepo, taskRepo: taskRepo, predictor: predictor}
}

func (uc *OverviewUseCase) Execute(ctx context.Context) (*Overview, error) {
	workers, err := uc.workerRepo.List(ctx, repository.WorkerFilter{})
	if err != nil {
		return nil, err
	}
	tasks, err := uc.taskRepo.List(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		WorkersByStatus: make(map[valueobject.WorkerStatus]int),
		TasksByStatus:   make(map[valueobject.TaskStatus]int),
	}
	for _, t := range tasks {
		overview.TasksByStatus[t.Status]++
	}

	var accepted []*entity.Worker
	for _, w := range workers {
		overview.WorkersByStatus[w.Status]++
		if w.IsAccepted() {
			accepted = append(accepted, w)
		}
	}

	overview.Workers = make([]WorkerSummary, len(accepted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPredictions)
	for i, w := range accepted {
		i, w := i, w
		g.Go(func() error {
			overview.Workers[i] = WorkerSummary{
				WorkerID:         w.ID,
				Name:             w.Name,
				HoursWorked:      w.HoursWorked(),
				Sessions:         len(w.WorkHistory),
				PerformanceScore: matching.PerformanceScore(w),
				PredictedHours:   uc.predictor.Predict(gctx, w),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(overview.Workers, func(i, j int) bool {
		return overview.Workers[i].HoursWorked > overview.Workers[j].HoursWorked
	})
	return overview, nil
}
