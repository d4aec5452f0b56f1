package matching_test

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
)

// monday: понедельник 19.10.2026 в UTC.
func monday(hour, minute int) time.Time {
	return time.Date(2026, time.October, 19, hour, minute, 0, 0, time.UTC)
}

func electrician(level valueobject.SkillLevel, years float64, certs ...string) entity.Skill {
	return entity.Skill{
		Name:              "Electrician",
		Level:             level,
		YearsOfExperience: years,
		Certifications:    certs,
	}
}

func newWorker(skills ...entity.Skill) *entity.Worker {
	return &entity.Worker{
		ID:           uuid.New(),
		Name:         "Ravi",
		Status:       valueobject.WorkerStatusAccepted,
		Skills:       skills,
		Availability: valueobject.FullWeek(),
		WorkingHours: valueobject.DefaultWorkingHours(),
	}
}

func newTask(deadline time.Time, required ...entity.RequiredSkill) *entity.Task {
	return &entity.Task{
		ID:                uuid.New(),
		Title:             "Electrician Wiring Installation",
		RequiredSkills:    required,
		Difficulty:        valueobject.DifficultyHard,
		EstimatedDuration: 8,
		Status:            valueobject.TaskStatusAvailable,
		Deadline:          deadline,
	}
}

func requires(name string, certs ...string) entity.RequiredSkill {
	return entity.RequiredSkill{
		Name:                   name,
		MinimumLevel:           valueobject.SkillLevelBeginner,
		RequiredCertifications: certs,
	}
}

func closedSession(start time.Time, hours float64, rating *int) entity.WorkSession {
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	return entity.WorkSession{
		ID:                uuid.New(),
		StartedAt:         start,
		EndedAt:           &end,
		PerformanceRating: rating,
	}
}

func intPtr(v int) *int {
	return &v
}
