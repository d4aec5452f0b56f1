package worker

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/logger"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
	"github.com/ignatzorin/gigwork-backend/internal/validation"
)

// PhotoStorage сохраняет фотографию работника и возвращает относительный путь.
type PhotoStorage interface {
	Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, relativePath string) error
}

type SkillInput struct {
	Name              string
	Level             string
	YearsOfExperience float64
	Certifications    []string
	Specialties       []string
}

type PhotoInput struct {
	FileName string
	Content  io.Reader
}

type RegisterWorkerInput struct {
	Name               string
	Phone              string
	Username           string
	Password           string
	Skills             []SkillInput
	Availability       *valueobject.Availability
	WorkStart          string
	WorkEnd            string
	PreferredTaskTypes []string
	Photo              *PhotoInput
}

type RegisterWorkerUseCase struct {
	workerRepo repository.WorkerRepository
	photos     PhotoStorage
}

func NewRegisterWorkerUseCase(workerRepo repository.WorkerRepository, photos PhotoStorage) *RegisterWorkerUseCase {
	return &RegisterWorkerUseCase{workerRepo: workerRepo, photos: photos}
}

func (uc *RegisterWorkerUseCase) Execute(ctx context.Context, input RegisterWorkerInput) (*entity.Worker, error) {
	if err := validation.ValidateName(input.Name); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidatePhone(input.Phone); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	skills, err := buildSkills(input.Skills)
	if err != nil {
		return nil, err
	}

	hours, err := valueobject.NewWorkingHours(input.WorkStart, input.WorkEnd)
	if err != nil {
		return nil, err
	}

	_, err = uc.workerRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err == nil {
		return nil, apperror.ErrUsernameTaken
	}
	if !errors.Is(err, apperror.ErrWorkerNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	worker, err := entity.NewWorker(input.Name, input.Phone, input.Username, string(hash), skills)
	if err != nil {
		return nil, err
	}
	worker.WorkingHours = hours
	worker.PreferredTaskTypes = input.PreferredTaskTypes
	if input.Availability != nil {
		worker.Availability = *input.Availability
	}

	if input.Photo != nil && uc.photos != nil {
		path, _, err := uc.photos.Save(ctx, worker.ID, input.Photo.FileName, input.Photo.Content)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось сохранить фотографию")
		}
		worker.PhotoPath = &path
	}

	if err := uc.workerRepo.Create(ctx, worker); err != nil {
		if worker.PhotoPath != nil {
			if delErr := uc.photos.Delete(ctx, *worker.PhotoPath); delErr != nil {
				logger.Log.WithError(delErr).WithField("path", *worker.PhotoPath).Warn("register: не удалось удалить фотографию")
			}
		}
		return nil, err
	}

	return worker, nil
}

func buildSkills(inputs []SkillInput) ([]entity.Skill, error) {
	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		names = append(names, in.Name)
	}
	if err := validation.ValidateSkills(names); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	skills := make([]entity.Skill, 0, len(inputs))
	for _, in := range inputs {
		level, err := valueobject.NewSkillLevel(in.Level)
		if err != nil {
			return nil, err
		}
		skill, err := entity.NewSkill(in.Name, level, in.YearsOfExperience, in.Certifications, in.Specialties)
		if err != nil {
			return nil, err
		}
		skills = append(skills, skill)
	}
	return skills, nil
}

// ParseLegacySkills разбирает навыки в старом формате "Electrician, Plumber":
// каждое имя становится навыком уровня beginner без опыта.
func ParseLegacySkills(raw string) []SkillInput {
	var skills []SkillInput
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		skills = append(skills, SkillInput{Name: name, Level: string(valueobject.SkillLevelBeginner)})
	}
	return skills
}
