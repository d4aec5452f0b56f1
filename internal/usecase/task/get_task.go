package task

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
)

type GetTaskUseCase struct {
	taskRepo repository.TaskRepository
}

func NewGetTaskUseCase(taskRepo repository.TaskRepository) *GetTaskUseCase {
	return &GetTaskUseCase{taskRepo: taskRepo}
}

func (uc *GetTaskUseCase) Execute(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	return uc.taskRepo.FindByID(ctx, id)
}

type ListTasksInput struct {
	Status string
	Skill  string
	Limit  int
	Offset int
}

type ListTasksUseCase struct {
	taskRepo repository.TaskRepository
}

func NewListTasksUseCase(taskRepo repository.TaskRepository) *ListTasksUseCase {
	return &ListTasksUseCase{taskRepo: taskRepo}
}

func (uc *ListTasksUseCase) Execute(ctx context.Context, input ListTasksInput) ([]*entity.Task, error) {
	filter := repository.TaskFilter{Skill: input.Skill, Limit: input.Limit, Offset: input.Offset}
	if input.Status != "" {
		status, err := valueobject.NewTaskStatus(input.Status)
		if err != nil {
			return nil, err
		}
		filter.Statuses = []valueobject.TaskStatus{status}
	}
	return uc.taskRepo.List(ctx, filter)
}

// Available возвращает открытые для отклика задачи.
func (uc *ListTasksUseCase) Available(ctx context.Context) ([]*entity.Task, error) {
	return uc.taskRepo.List(ctx, repository.TaskFilter{Statuses: []valueobject.TaskStatus{valueobject.TaskStatusAvailable}})
}

// WorkerTasksUseCase отдаёт задачи, назначенные работнику.
type WorkerTasksUseCase struct {
	taskRepo repository.TaskRepository
}

func NewWorkerTasksUseCase(taskRepo repository.TaskRepository) *WorkerTasksUseCase {
	return &WorkerTasksUseCase{taskRepo: taskRepo}
}

func (uc *WorkerTasksUseCase) Active(ctx context.Context, workerID uuid.UUID) ([]*entity.Task, error) {
	return uc.taskRepo.FindByAssignedWorker(ctx, workerID, valueobject.TaskStatusAssigned, valueobject.TaskStatusInProgress)
}

// Completed возвращает завершённые задачи, новые первыми.
func (uc *WorkerTasksUseCase) Completed(ctx context.Context, workerID uuid.UUID) ([]*entity.Task, error) {
	tasks, err := uc.taskRepo.FindByAssignedWorker(ctx, workerID, valueobject.TaskStatusCompleted)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return completedAt(tasks[i]).After(completedAt(tasks[j]))
	})
	return tasks, nil
}

type WorkerStats struct {
	TotalTasks       int     `json:"totalTasks"`
	AverageRating    float64 `json:"averageRating"`
	OnTimeCompletion float64 `json:"onTimeCompletion"`
}

// Stats считает статистику по завершённым задачам работника.
func (uc *WorkerTasksUseCase) Stats(ctx context.Context, workerID uuid.UUID) (WorkerStats, error) {
	tasks, err := uc.taskRepo.FindByAssignedWorker(ctx, workerID, valueobject.TaskStatusCompleted)
	if err != nil {
		return WorkerStats{}, err
	}
	return ComputeStats(tasks), nil
}

func ComputeStats(completed []*entity.Task) WorkerStats {
	stats := WorkerStats{TotalTasks: len(completed)}
	if len(completed) == 0 {
		return stats
	}

	var rated, ratingSum, onTime int
	for _, t := range completed {
		if t.PerformanceRating != nil {
			rated++
			ratingSum += *t.PerformanceRating
		}
		if t.CompletedOnTime() {
			onTime++
		}
	}
	if rated > 0 {
		stats.AverageRating = float64(ratingSum) / float64(rated)
	}
	stats.OnTimeCompletion = float64(onTime) / float64(len(completed))
	return stats
}

func completedAt(t *entity.Task) time.Time {
	if t.CompletedAt == nil {
		return time.Time{}
	}
	return *t.CompletedAt
}
