package valueobject

import (
	"strings"

	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusAvailable  TaskStatus = "available"
	TaskStatusAssigned   TaskStatus = "assigned"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:    {TaskStatusAvailable, TaskStatusCancelled},
	TaskStatusAvailable:  {TaskStatusAssigned, TaskStatusCancelled},
	TaskStatusAssigned:   {TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled},
	TaskStatusInProgress: {TaskStatusCompleted, TaskStatusCancelled},
	TaskStatusCompleted:  {},
	TaskStatusCancelled:  {},
}

func (s TaskStatus) IsValid() bool {
	_, ok := taskTransitions[s]
	return ok
}

func (s TaskStatus) CanTransitionTo(newStatus TaskStatus) bool {
	for _, status := range taskTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// IsOpen сообщает, может ли работник взять задачу.
func (s TaskStatus) IsOpen() bool {
	return s == TaskStatusAvailable
}

// IsActive сообщает, что задача назначена и ещё не закрыта.
func (s TaskStatus) IsActive() bool {
	return s == TaskStatusAssigned || s == TaskStatusInProgress
}

func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// NewTaskStatus разбирает статус задачи. Устаревшие варианты "open" и "in-progress"
// приводятся к каноническим значениям.
func NewTaskStatus(status string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "open":
		return TaskStatusAvailable, nil
	case "in-progress":
		return TaskStatusInProgress, nil
	}
	s := TaskStatus(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус задачи")
	}
	return s, nil
}

type WorkerStatus string

const (
	WorkerStatusPending  WorkerStatus = "pending"
	WorkerStatusAccepted WorkerStatus = "accepted"
	WorkerStatusRejected WorkerStatus = "rejected"
)

var workerTransitions = map[WorkerStatus][]WorkerStatus{
	WorkerStatusPending:  {WorkerStatusAccepted, WorkerStatusRejected},
	WorkerStatusAccepted: {WorkerStatusRejected},
	WorkerStatusRejected: {WorkerStatusAccepted},
}

func (s WorkerStatus) IsValid() bool {
	_, ok := workerTransitions[s]
	return ok
}

func (s WorkerStatus) CanTransitionTo(newStatus WorkerStatus) bool {
	for _, status := range workerTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewWorkerStatus(status string) (WorkerStatus, error) {
	s := WorkerStatus(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус работника")
	}
	return s, nil
}
