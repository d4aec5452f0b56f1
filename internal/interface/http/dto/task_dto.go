package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/task"
)

type RequiredSkillDTO struct {
	Name                   string   `json:"name"`
	MinimumLevel           string   `json:"minimumLevel"`
	RequiredCertifications []string `json:"requiredCertifications"`
}

type LocationDTO struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CreateTaskRequest struct {
	Title             string             `json:"title" binding:"required"`
	Description       string             `json:"description" binding:"required"`
	RequiredSkills    []RequiredSkillDTO `json:"requiredSkills" binding:"required"`
	Difficulty        string             `json:"difficulty" binding:"required"`
	EstimatedDuration float64            `json:"estimatedDuration" binding:"required"`
	Location          LocationDTO        `json:"location"`
	Priority          string             `json:"priority"`
	Deadline          string             `json:"deadline" binding:"required"`
	// Publish=false создаёт черновик; по умолчанию задача сразу открыта.
	Publish *bool `json:"publish"`
}

type AssignTaskRequest struct {
	WorkerID *string `json:"workerId"`
}

type CompleteTaskRequest struct {
	Notes  string `json:"notes"`
	Rating *int   `json:"rating"`
}

type RateTaskRequest struct {
	Rating   int    `json:"rating" binding:"required"`
	Feedback string `json:"feedback"`
}

type TaskResponse struct {
	ID                uuid.UUID          `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	RequiredSkills    []RequiredSkillDTO `json:"requiredSkills"`
	Difficulty        string             `json:"difficulty"`
	EstimatedDuration float64            `json:"estimatedDuration"`
	Location          LocationDTO        `json:"location"`
	Priority          string             `json:"priority"`
	Status            string             `json:"status"`
	Deadline          time.Time          `json:"deadline"`
	AssignedWorkerID  *uuid.UUID         `json:"assignedWorkerId"`
	AssignedAt        *time.Time         `json:"assignedAt"`
	CompletedAt       *time.Time         `json:"completedAt"`
	CompletionNotes   *string            `json:"completionNotes"`
	PerformanceRating *int               `json:"performanceRating"`
	Feedback          *string            `json:"feedback"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

func (r CreateTaskRequest) ToInput() (task.CreateTaskInput, error) {
	deadline, err := time.Parse(time.RFC3339, r.Deadline)
	if err != nil {
		return task.CreateTaskInput{}, err
	}

	skills := make([]task.RequiredSkillInput, 0, len(r.RequiredSkills))
	for _, rs := range r.RequiredSkills {
		skills = append(skills, task.RequiredSkillInput{
			Name:           rs.Name,
			MinimumLevel:   rs.MinimumLevel,
			Certifications: rs.RequiredCertifications,
		})
	}

	return task.CreateTaskInput{
		Title:             r.Title,
		Description:       r.Description,
		RequiredSkills:    skills,
		Difficulty:        r.Difficulty,
		EstimatedDuration: r.EstimatedDuration,
		Address:           r.Location.Address,
		Latitude:          r.Location.Latitude,
		Longitude:         r.Location.Longitude,
		Priority:          r.Priority,
		Deadline:          deadline,
		Draft:             r.Publish != nil && !*r.Publish,
	}, nil
}

// ParseWorkerID возвращает nil, если работник не указан.
func (r AssignTaskRequest) ParseWorkerID() (*uuid.UUID, error) {
	if r.WorkerID == nil || *r.WorkerID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*r.WorkerID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func ToTaskResponse(t *entity.Task) TaskResponse {
	resp := TaskResponse{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		RequiredSkills:    make([]RequiredSkillDTO, 0, len(t.RequiredSkills)),
		Difficulty:        string(t.Difficulty),
		EstimatedDuration: t.EstimatedDuration,
		Location: LocationDTO{
			Address:   t.Location.Address,
			Latitude:  t.Location.Latitude,
			Longitude: t.Location.Longitude,
		},
		Priority:          string(t.Priority),
		Status:            string(t.Status),
		Deadline:          t.Deadline,
		AssignedWorkerID:  t.AssignedWorkerID,
		AssignedAt:        t.AssignedAt,
		CompletedAt:       t.CompletedAt,
		CompletionNotes:   t.CompletionNotes,
		PerformanceRating: t.PerformanceRating,
		Feedback:          t.Feedback,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}

	for _, rs := range t.RequiredSkills {
		resp.RequiredSkills = append(resp.RequiredSkills, RequiredSkillDTO{
			Name:                   rs.Name,
			MinimumLevel:           string(rs.MinimumLevel),
			RequiredCertifications: nonNilStrings(rs.RequiredCertifications),
		})
	}

	return resp
}

func ToTaskResponses(tasks []*entity.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, ToTaskResponse(t))
	}
	return responses
}
