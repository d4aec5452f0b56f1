package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

type Task struct {
	ID                 uuid.UUID
	Title              string
	Description        string
	RequiredSkills     []RequiredSkill
	Difficulty         valueobject.Difficulty
	EstimatedDuration  float64
	Location           Location
	Priority           valueobject.Priority
	Status             valueobject.TaskStatus
	Deadline           time.Time
	AssignedWorkerID   *uuid.UUID
	AssignedAt         *time.Time
	CompletedAt        *time.Time
	CompletionNotes    *string
	CompletedSessionID *uuid.UUID
	PerformanceRating  *int
	Feedback           *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type RequiredSkill struct {
	Name                   string
	MinimumLevel           valueobject.SkillLevel
	RequiredCertifications []string
}

type Location struct {
	Address   string
	Latitude  float64
	Longitude float64
}

type NewTaskParams struct {
	Title             string
	Description       string
	RequiredSkills    []RequiredSkill
	Difficulty        valueobject.Difficulty
	EstimatedDuration float64
	Location          Location
	Priority          valueobject.Priority
	Deadline          time.Time
	Publish           bool
}

func NewRequiredSkill(name string, minimumLevel valueobject.SkillLevel, certifications []string) (RequiredSkill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return RequiredSkill{}, apperror.Validation("название требуемого навыка обязательно")
	}
	if !minimumLevel.IsValid() {
		return RequiredSkill{}, apperror.Validation("некорректный минимальный уровень навыка")
	}
	return RequiredSkill{
		Name:                   name,
		MinimumLevel:           minimumLevel,
		RequiredCertifications: dedupe(certifications),
	}, nil
}

func NewTask(p NewTaskParams) (*Task, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, apperror.Validation("название задачи обязательно")
	}
	if strings.TrimSpace(p.Description) == "" {
		return nil, apperror.Validation("описание задачи обязательно")
	}
	if len(p.RequiredSkills) == 0 {
		return nil, apperror.Validation("задача должна требовать хотя бы один навык")
	}
	for _, rs := range p.RequiredSkills {
		if strings.TrimSpace(rs.Name) == "" {
			return nil, apperror.Validation("название требуемого навыка обязательно")
		}
	}
	if !p.Difficulty.IsValid() {
		return nil, apperror.Validation("некорректная сложность задачи")
	}
	if p.EstimatedDuration <= 0 {
		return nil, apperror.Validation("оценка длительности должна быть положительной")
	}
	if strings.TrimSpace(p.Location.Address) == "" {
		return nil, apperror.Validation("адрес задачи обязателен")
	}
	if p.Location.Latitude < -90 || p.Location.Latitude > 90 || p.Location.Longitude < -180 || p.Location.Longitude > 180 {
		return nil, apperror.Validation("некорректные координаты")
	}
	if p.Deadline.IsZero() {
		return nil, apperror.Validation("дедлайн обязателен")
	}

	priority := p.Priority
	if priority == "" {
		priority = valueobject.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, apperror.Validation("некорректный приоритет задачи")
	}

	status := valueobject.TaskStatusPending
	if p.Publish {
		status = valueobject.TaskStatusAvailable
	}

	now := time.Now()
	return &Task{
		ID:                uuid.New(),
		Title:             strings.TrimSpace(p.Title),
		Description:       strings.TrimSpace(p.Description),
		RequiredSkills:    p.RequiredSkills,
		Difficulty:        p.Difficulty,
		EstimatedDuration: p.EstimatedDuration,
		Location:          p.Location,
		Priority:          priority,
		Status:            status,
		Deadline:          p.Deadline,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (t *Task) transition(to valueobject.TaskStatus, conflict *apperror.AppError) error {
	if !t.Status.CanTransitionTo(to) {
		return conflict
	}
	t.Status = to
	t.UpdatedAt = time.Now()
	return nil
}

func (t *Task) Publish() error {
	return t.transition(valueobject.TaskStatusAvailable, apperror.Conflict("опубликовать можно только черновик задачи"))
}

// Assign переводит открытую задачу на работника.
func (t *Task) Assign(workerID uuid.UUID, now time.Time) error {
	if !t.Status.IsOpen() {
		return apperror.ErrTaskNotAvailable
	}
	if err := t.transition(valueobject.TaskStatusAssigned, apperror.ErrTaskNotAvailable); err != nil {
		return err
	}
	t.AssignedWorkerID = &workerID
	t.AssignedAt = &now
	return nil
}

func (t *Task) Start(workerID uuid.UUID) error {
	if !t.IsAssignedTo(workerID) {
		return apperror.ErrNotAssignedWorker
	}
	return t.transition(valueobject.TaskStatusInProgress, apperror.ErrTaskNotAssigned)
}

// Complete закрывает задачу. actorID проверяется только если задан (админ закрывает без проверки).
func (t *Task) Complete(actorID *uuid.UUID, notes string, now time.Time) error {
	if !t.Status.IsActive() {
		return apperror.ErrTaskNotAssigned
	}
	if actorID != nil && !t.IsAssignedTo(*actorID) {
		return apperror.ErrNotAssignedWorker
	}
	if err := t.transition(valueobject.TaskStatusCompleted, apperror.ErrTaskNotAssigned); err != nil {
		return err
	}
	t.CompletedAt = &now
	if strings.TrimSpace(notes) != "" {
		n := strings.TrimSpace(notes)
		t.CompletionNotes = &n
	}
	return nil
}

// Rate выставляет оценку завершённой задаче, статус не меняется.
func (t *Task) Rate(rating int, feedback string) error {
	if t.Status != valueobject.TaskStatusCompleted {
		return apperror.ErrTaskNotCompleted
	}
	if err := ValidateRating(rating); err != nil {
		return err
	}
	t.PerformanceRating = &rating
	if strings.TrimSpace(feedback) != "" {
		f := strings.TrimSpace(feedback)
		t.Feedback = &f
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (t *Task) Cancel() error {
	return t.transition(valueobject.TaskStatusCancelled, apperror.Conflict("задачу в текущем статусе нельзя отменить"))
}

func (t *Task) IsAssignedTo(workerID uuid.UUID) bool {
	return t.AssignedWorkerID != nil && *t.AssignedWorkerID == workerID
}

// CompletedOnTime сообщает, закрыта ли задача не позже дедлайна.
func (t *Task) CompletedOnTime() bool {
	return t.CompletedAt != nil && !t.CompletedAt.After(t.Deadline)
}

// SkillNames возвращает имена требуемых навыков.
func (t *Task) SkillNames() []string {
	names := make([]string, 0, len(t.RequiredSkills))
	for _, rs := range t.RequiredSkills {
		names = append(names, rs.Name)
	}
	return names
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperror.Validation("оценка должна быть от 1 до 5")
	}
	return nil
}
