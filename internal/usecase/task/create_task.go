package task

import (
	"context"
	"time"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigwork-backend/internal/validation"
)

type RequiredSkillInput struct {
	Name           string
	MinimumLevel   string
	Certifications []string
}

type CreateTaskInput struct {
	Title             string
	Description       string
	RequiredSkills    []RequiredSkillInput
	Difficulty        string
	EstimatedDuration float64
	Address           string
	Latitude          float64
	Longitude         float64
	Priority          string
	Deadline          time.Time
	// Draft оставляет задачу в статусе pending до публикации.
	Draft bool
}

type CreateTaskUseCase struct {
	taskRepo repository.TaskRepository
	cache    repository.MatchCache
}

func NewCreateTaskUseCase(taskRepo repository.TaskRepository, cache repository.MatchCache) *CreateTaskUseCase {
	return &CreateTaskUseCase{taskRepo: taskRepo, cache: cache}
}

func (uc *CreateTaskUseCase) Execute(ctx context.Context, input CreateTaskInput) (*entity.Task, error) {
	params, err := input.params()
	if err != nil {
		return nil, err
	}

	task, err := entity.NewTask(params)
	if err != nil {
		return nil, err
	}

	if err := uc.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	if task.Status.IsOpen() {
		invalidateAllRecommendations(ctx, uc.cache)
	}
	return task, nil
}

func (in CreateTaskInput) params() (entity.NewTaskParams, error) {
	if err := validation.ValidateTaskTitle(in.Title); err != nil {
		return entity.NewTaskParams{}, apperror.Validation(err.Error())
	}
	if err := validation.ValidateTaskDescription(in.Description); err != nil {
		return entity.NewTaskParams{}, apperror.Validation(err.Error())
	}
	if err := validation.ValidateEstimatedDuration(in.EstimatedDuration); err != nil {
		return entity.NewTaskParams{}, apperror.Validation(err.Error())
	}
	names := make([]string, 0, len(in.RequiredSkills))
	for _, rs := range in.RequiredSkills {
		names = append(names, rs.Name)
	}
	if err := validation.ValidateSkills(names); err != nil {
		return entity.NewTaskParams{}, apperror.Validation(err.Error())
	}

	difficulty, err := valueobject.NewDifficulty(in.Difficulty)
	if err != nil {
		return entity.NewTaskParams{}, err
	}
	priority, err := valueobject.NewPriority(in.Priority)
	if err != nil {
		return entity.NewTaskParams{}, err
	}

	required := make([]entity.RequiredSkill, 0, len(in.RequiredSkills))
	for _, rs := range in.RequiredSkills {
		level, err := valueobject.NewSkillLevel(rs.MinimumLevel)
		if err != nil {
			return entity.NewTaskParams{}, err
		}
		skill, err := entity.NewRequiredSkill(rs.Name, level, rs.Certifications)
		if err != nil {
			return entity.NewTaskParams{}, err
		}
		required = append(required, skill)
	}

	return entity.NewTaskParams{
		Title:             in.Title,
		Description:       in.Description,
		RequiredSkills:    required,
		Difficulty:        difficulty,
		EstimatedDuration: in.EstimatedDuration,
		Location:          entity.Location{Address: in.Address, Latitude: in.Latitude, Longitude: in.Longitude},
		Priority:          priority,
		Deadline:          in.Deadline,
		Publish:           !in.Draft,
	}, nil
}

// invalidateAllRecommendations сбрасывает рекомендации всех работников:
// набор открытых задач изменился.
func invalidateAllRecommendations(ctx context.Context, cache repository.MatchCache) {
	if cache == nil {
		return
	}
	cache.DeleteByPrefix(ctx, repository.RecommendationsCachePrefix)
}
