package worker_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/worker"
)

func TestSessionUseCase_FullShift(t *testing.T) {
	w := acceptedWorker("ravi_k")
	repo := newMockWorkerRepository(w)
	cache := &recordingCache{}
	uc := worker.NewSessionUseCase(repo, cache)
	ctx := context.Background()

	session, err := uc.StartSession(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, session.IsOpen())

	br, err := uc.StartBreak(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, br.SessionID)

	_, err = uc.StartBreak(ctx, w.ID)
	assert.ErrorIs(t, err, apperror.ErrBreakAlreadyOpen)

	ended, err := uc.EndBreak(ctx, w.ID)
	require.NoError(t, err)
	assert.NotNil(t, ended.EndedAt)

	stopped, err := uc.StopSession(ctx, w.ID)
	require.NoError(t, err)
	assert.False(t, stopped.IsOpen())

	stored := repo.get(w.ID)
	require.Len(t, stored.WorkHistory, 1)
	assert.NotNil(t, stored.WorkHistory[0].EndedAt)
	require.Len(t, stored.WorkHistory[0].Breaks, 1)
	assert.Equal(t, []string{repository.RecommendationsCacheKey(w.ID)}, cache.deleted)
}

func TestSessionUseCase_ErrorsLeaveStateUntouched(t *testing.T) {
	w := acceptedWorker("ravi_k")
	repo := newMockWorkerRepository(w)
	uc := worker.NewSessionUseCase(repo, nil)
	ctx := context.Background()

	_, err := uc.StopSession(ctx, w.ID)
	assert.ErrorIs(t, err, apperror.ErrNoActiveSession)
	_, err = uc.StartBreak(ctx, w.ID)
	assert.ErrorIs(t, err, apperror.ErrNoActiveSession)
	_, err = uc.EndBreak(ctx, w.ID)
	assert.ErrorIs(t, err, apperror.ErrNoActiveSession)

	_, err = uc.StartSession(ctx, w.ID)
	require.NoError(t, err)
	_, err = uc.EndBreak(ctx, w.ID)
	assert.ErrorIs(t, err, apperror.ErrNoActiveBreak)

	_, err = uc.StartSession(ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))

	assert.Len(t, repo.get(w.ID).WorkHistory, 1)
}

func TestSessionUseCase_ConcurrentStartSession(t *testing.T) {
	w := acceptedWorker("ravi_k")
	repo := newMockWorkerRepository(w)
	uc := worker.NewSessionUseCase(repo, nil)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = uc.StartSession(context.Background(), w.ID)
		}(i)
	}
	close(start)
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperror.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, repo.get(w.ID).WorkHistory, 1)
}
