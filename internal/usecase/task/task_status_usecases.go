package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/matching"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigwork-backend/internal/validation"
)

type PublishTaskUseCase struct {
	taskRepo repository.TaskRepository
	cache    repository.MatchCache
}

func NewPublishTaskUseCase(taskRepo repository.TaskRepository, cache repository.MatchCache) *PublishTaskUseCase {
	return &PublishTaskUseCase{taskRepo: taskRepo, cache: cache}
}

func (uc *PublishTaskUseCase) Execute(ctx context.Context, taskID uuid.UUID) (*entity.Task, error) {
	task, err := uc.taskRepo.Modify(ctx, taskID, (*entity.Task).Publish)
	if err != nil {
		return nil, err
	}
	invalidateAllRecommendations(ctx, uc.cache)
	return task, nil
}

type CancelTaskUseCase struct {
	taskRepo repository.TaskRepository
	cache    repository.MatchCache
}

func NewCancelTaskUseCase(taskRepo repository.TaskRepository, cache repository.MatchCache) *CancelTaskUseCase {
	return &CancelTaskUseCase{taskRepo: taskRepo, cache: cache}
}

func (uc *CancelTaskUseCase) Execute(ctx context.Context, taskID uuid.UUID) (*entity.Task, error) {
	task, err := uc.taskRepo.Modify(ctx, taskID, (*entity.Task).Cancel)
	if err != nil {
		return nil, err
	}
	invalidateAllRecommendations(ctx, uc.cache)
	return task, nil
}

// AcceptTaskUseCase: работник сам берёт открытую задачу.
type AcceptTaskUseCase struct {
	taskRepo   repository.TaskRepository
	workerRepo repository.WorkerRepository
	cache      repository.MatchCache
	events     repository.EventPublisher
}

func NewAcceptTaskUseCase(
	taskRepo repository.TaskRepository,
	workerRepo repository.WorkerRepository,
	cache repository.MatchCache,
	events repository.EventPublisher,
) *AcceptTaskUseCase {
	return &AcceptTaskUseCase{taskRepo: taskRepo, workerRepo: workerRepo, cache: cache, events: events}
}

func (uc *AcceptTaskUseCase) Execute(ctx context.Context, taskID, workerID uuid.UUID) (*entity.Task, error) {
	worker, err := uc.workerRepo.FindByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if !worker.IsAccepted() {
		return nil, apperror.ErrWorkerNotAccepted
	}

	return assign(ctx, uc.taskRepo, uc.cache, uc.events, taskID, workerID)
}

// AssignTaskUseCase: администратор назначает задачу конкретному работнику
// или, если работник не указан, лучшему кандидату по оценке подбора.
type AssignTaskUseCase struct {
	taskRepo   repository.TaskRepository
	workerRepo repository.WorkerRepository
	engine     *matching.Engine
	cache      repository.MatchCache
	events     repository.EventPublisher
}

func NewAssignTaskUseCase(
	taskRepo repository.TaskRepository,
	workerRepo repository.WorkerRepository,
	engine *matching.Engine,
	cache repository.MatchCache,
	events repository.EventPublisher,
) *AssignTaskUseCase {
	return &AssignTaskUseCase{taskRepo: taskRepo, workerRepo: workerRepo, engine: engine, cache: cache, events: events}
}

func (uc *AssignTaskUseCase) Execute(ctx context.Context, taskID uuid.UUID, workerID *uuid.UUID) (*entity.Task, error) {
	if workerID == nil {
		task, err := uc.taskRepo.FindByID(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if !task.Status.IsOpen() {
			return nil, apperror.ErrTaskNotAvailable
		}
		best, err := bestWorker(ctx, uc.workerRepo, uc.engine, task)
		if err != nil {
			return nil, err
		}
		id := best.Worker.ID
		workerID = &id
	} else {
		worker, err := uc.workerRepo.FindByID(ctx, *workerID)
		if err != nil {
			return nil, err
		}
		if !worker.IsAccepted() {
			return nil, apperror.ErrWorkerNotAccepted
		}
	}

	return assign(ctx, uc.taskRepo, uc.cache, uc.events, taskID, *workerID)
}

func assign(
	ctx context.Context,
	taskRepo repository.TaskRepository,
	cache repository.MatchCache,
	events repository.EventPublisher,
	taskID, workerID uuid.UUID,
) (*entity.Task, error) {
	task, err := taskRepo.Modify(ctx, taskID, func(t *entity.Task) error {
		return t.Assign(workerID, time.Now())
	})
	if err != nil {
		return nil, err
	}

	invalidateAllRecommendations(ctx, cache)
	if events != nil {
		events.Publish(workerID, repository.EventTaskAssigned, map[string]interface{}{
			"taskId": task.ID,
			"title":  task.Title,
		})
	}
	return task, nil
}

type StartTaskUseCase struct {
	taskRepo repository.TaskRepository
}

func NewStartTaskUseCase(taskRepo repository.TaskRepository) *StartTaskUseCase {
	return &StartTaskUseCase{taskRepo: taskRepo}
}

func (uc *StartTaskUseCase) Execute(ctx context.Context, taskID, workerID uuid.UUID) (*entity.Task, error) {
	return uc.taskRepo.Modify(ctx, taskID, func(t *entity.Task) error {
		return t.Start(workerID)
	})
}

type CompleteTaskInput struct {
	TaskID uuid.UUID
	// ActorID задаёт работника, закрывающего задачу; nil для администратора.
	ActorID *uuid.UUID
	Notes   string
	Rating  *int
}

// CompleteTaskUseCase закрывает задачу и переносит её итоги в активную смену исполнителя.
// Задача и смена сохраняются в одной транзакции.
type CompleteTaskUseCase struct {
	taskRepo   repository.TaskRepository
	workerRepo repository.WorkerRepository
	tx         repository.Transactor
	cache      repository.MatchCache
	events     repository.EventPublisher
}

func NewCompleteTaskUseCase(
	taskRepo repository.TaskRepository,
	workerRepo repository.WorkerRepository,
	tx repository.Transactor,
	cache repository.MatchCache,
	events repository.EventPublisher,
) *CompleteTaskUseCase {
	return &CompleteTaskUseCase{taskRepo: taskRepo, workerRepo: workerRepo, tx: tx, cache: cache, events: events}
}

func (uc *CompleteTaskUseCase) Execute(ctx context.Context, input CompleteTaskInput) (*entity.Task, error) {
	if err := validation.ValidateNote("заметки о выполнении", input.Notes); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if input.Rating != nil {
		if err := entity.ValidateRating(*input.Rating); err != nil {
			return nil, err
		}
	}

	var task *entity.Task
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = uc.taskRepo.Modify(ctx, input.TaskID, func(t *entity.Task) error {
			if err := t.Complete(input.ActorID, input.Notes, time.Now()); err != nil {
				return err
			}
			if input.Rating != nil {
				rating := *input.Rating
				t.PerformanceRating = &rating
			}

			// строки задачи и работника блокируются в этом порядке до фиксации
			_, err := uc.workerRepo.Modify(ctx, *t.AssignedWorkerID, func(w *entity.Worker) error {
				if sessionID, ok := w.RecordTaskOutcome(strings.TrimSpace(t.Title), t.Difficulty, input.Rating); ok {
					t.CompletedSessionID = &sessionID
				}
				return nil
			})
			return err
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	workerID := *task.AssignedWorkerID
	if uc.cache != nil {
		uc.cache.Delete(ctx, repository.RecommendationsCacheKey(workerID))
	}
	if uc.events != nil {
		uc.events.Publish(workerID, repository.EventTaskCompleted, map[string]interface{}{
			"taskId": task.ID,
			"title":  task.Title,
		})
	}
	return task, nil
}

type RateTaskInput struct {
	TaskID   uuid.UUID
	Rating   int
	Feedback string
}

// RateTaskUseCase выставляет оценку завершённой задаче и той смене, в которой она была выполнена.
type RateTaskUseCase struct {
	taskRepo   repository.TaskRepository
	workerRepo repository.WorkerRepository
	tx         repository.Transactor
	cache      repository.MatchCache
	events     repository.EventPublisher
}

func NewRateTaskUseCase(
	taskRepo repository.TaskRepository,
	workerRepo repository.WorkerRepository,
	tx repository.Transactor,
	cache repository.MatchCache,
	events repository.EventPublisher,
) *RateTaskUseCase {
	return &RateTaskUseCase{taskRepo: taskRepo, workerRepo: workerRepo, tx: tx, cache: cache, events: events}
}

func (uc *RateTaskUseCase) Execute(ctx context.Context, input RateTaskInput) (*entity.Task, error) {
	if err := validation.ValidateNote("отзыв", input.Feedback); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	var task *entity.Task
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = uc.taskRepo.Modify(ctx, input.TaskID, func(t *entity.Task) error {
			if err := t.Rate(input.Rating, input.Feedback); err != nil {
				return err
			}
			if t.AssignedWorkerID == nil || t.CompletedSessionID == nil {
				return nil
			}

			sessionID := *t.CompletedSessionID
			_, err := uc.workerRepo.Modify(ctx, *t.AssignedWorkerID, func(w *entity.Worker) error {
				w.RateSession(sessionID, input.Rating)
				return nil
			})
			return err
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if task.AssignedWorkerID != nil {
		workerID := *task.AssignedWorkerID
		if uc.cache != nil {
			uc.cache.Delete(ctx, repository.RecommendationsCacheKey(workerID))
		}
		if uc.events != nil {
			uc.events.Publish(workerID, repository.EventTaskRated, map[string]interface{}{
				"taskId": task.ID,
				"rating": input.Rating,
			})
		}
	}
	return task, nil
}
