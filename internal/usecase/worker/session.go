package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
)

// SessionUseCase управляет сменами и перерывами работника.
// Каждая операция выполняется внутри WorkerRepository.Modify, поэтому
// проверка инварианта и запись происходят атомарно.
type SessionUseCase struct {
	workerRepo repository.WorkerRepository
	cache      repository.MatchCache
	now        func() time.Time
}

func NewSessionUseCase(workerRepo repository.WorkerRepository, cache repository.MatchCache) *SessionUseCase {
	return &SessionUseCase{workerRepo: workerRepo, cache: cache, now: time.Now}
}

func (uc *SessionUseCase) StartSession(ctx context.Context, workerID uuid.UUID) (*entity.WorkSession, error) {
	var started entity.WorkSession
	_, err := uc.workerRepo.Modify(ctx, workerID, func(w *entity.Worker) error {
		s, err := w.StartSession(uc.now())
		if err != nil {
			return err
		}
		started = *s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &started, nil
}

func (uc *SessionUseCase) StopSession(ctx context.Context, workerID uuid.UUID) (*entity.WorkSession, error) {
	var stopped entity.WorkSession
	_, err := uc.workerRepo.Modify(ctx, workerID, func(w *entity.Worker) error {
		s, err := w.StopSession(uc.now())
		if err != nil {
			return err
		}
		stopped = *s
		return nil
	})
	if err != nil {
		return nil, err
	}

	// закрытая смена меняет оценку производительности
	invalidateRecommendations(ctx, uc.cache, workerID)
	return &stopped, nil
}

func (uc *SessionUseCase) StartBreak(ctx context.Context, workerID uuid.UUID) (*entity.Break, error) {
	var started entity.Break
	_, err := uc.workerRepo.Modify(ctx, workerID, func(w *entity.Worker) error {
		b, err := w.StartBreak(uc.now())
		if err != nil {
			return err
		}
		started = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &started, nil
}

func (uc *SessionUseCase) EndBreak(ctx context.Context, workerID uuid.UUID) (*entity.Break, error) {
	var ended entity.Break
	_, err := uc.workerRepo.Modify(ctx, workerID, func(w *entity.Worker) error {
		b, err := w.EndBreak(uc.now())
		if err != nil {
			return err
		}
		ended = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ended, nil
}
