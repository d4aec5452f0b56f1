package task

import (
	"context"
	"time"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
)

// SeedTasksUseCase создаёт демонстрационные задачи электрика для разработки.
type SeedTasksUseCase struct {
	create *CreateTaskUseCase
}

func NewSeedTasksUseCase(create *CreateTaskUseCase) *SeedTasksUseCase {
	return &SeedTasksUseCase{create: create}
}

func (uc *SeedTasksUseCase) Execute(ctx context.Context) ([]*entity.Task, error) {
	now := time.Now()
	created := make([]*entity.Task, 0, len(demoTasks))
	for _, demo := range demoTasks {
		input := demo.input
		input.Deadline = now.AddDate(0, 0, demo.deadlineDays)
		task, err := uc.create.Execute(ctx, input)
		if err != nil {
			return nil, err
		}
		created = append(created, task)
	}
	return created, nil
}

var demoTasks = []struct {
	input        CreateTaskInput
	deadlineDays int
}{
	{
		deadlineDays: 7,
		input: CreateTaskInput{
			Title:       "Electrician Wiring Installation",
			Description: "Install electrical wiring for a new office building",
			RequiredSkills: []RequiredSkillInput{
				{Name: "Electrician", MinimumLevel: "expert", Certifications: []string{"Electrical Safety", "Advanced Wiring"}},
			},
			Difficulty:        "hard",
			EstimatedDuration: 8,
			Address:           "123 Business Park, City",
			Latitude:          12.9716,
			Longitude:         77.5946,
			Priority:          "high",
		},
	},
	{
		deadlineDays: 2,
		input: CreateTaskInput{
			Title:       "Electrician Outlet Repair",
			Description: "Repair power outlets in a residential complex",
			RequiredSkills: []RequiredSkillInput{
				{Name: "Electrician", MinimumLevel: "beginner", Certifications: []string{"Basic Electrical Safety"}},
			},
			Difficulty:        "easy",
			EstimatedDuration: 2,
			Address:           "321 Home Street, City",
			Latitude:          12.9631,
			Longitude:         77.5933,
			Priority:          "low",
		},
	},
	{
		deadlineDays: 5,
		input: CreateTaskInput{
			Title:       "Electrician Panel Upgrade",
			Description: "Upgrade electrical panel to support new equipment",
			RequiredSkills: []RequiredSkillInput{
				{Name: "Electrician", MinimumLevel: "intermediate", Certifications: []string{"Electrical Safety", "Circuit Management"}},
			},
			Difficulty:        "medium",
			EstimatedDuration: 5,
			Address:           "456 Industrial Zone, City",
			Latitude:          12.9784,
			Longitude:         77.6408,
			Priority:          "medium",
		},
	},
	{
		deadlineDays: 4,
		input: CreateTaskInput{
			Title:       "Electrician Lighting Installation",
			Description: "Install LED lighting fixtures in a commercial space",
			RequiredSkills: []RequiredSkillInput{
				{Name: "Electrician", MinimumLevel: "intermediate", Certifications: []string{"Electrical Safety"}},
			},
			Difficulty:        "medium",
			EstimatedDuration: 4,
			Address:           "789 Commercial Complex, City",
			Latitude:          12.9850,
			Longitude:         77.7060,
			Priority:          "medium",
		},
	},
}
