package matching

import (
	"time"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
)

const (
	availabilityNone    = 0.0
	availabilityPartial = 0.5
	availabilityFull    = 1.0
)

// AvailabilityMatch сравнивает дедлайн задачи с графиком работника.
// Сравнивается именно момент дедлайна, а не интервал выполнения задачи:
// выходной день даёт 0, рабочий день вне рабочих часов 0.5, попадание в окно 1.
// loc задаёт календарь, в котором определяется день недели и время суток (nil означает time.Local).
func AvailabilityMatch(worker *entity.Worker, task *entity.Task, loc *time.Location) float64 {
	if loc == nil {
		loc = time.Local
	}
	deadline := task.Deadline.In(loc)

	if !worker.Availability.On(deadline.Weekday()) {
		return availabilityNone
	}

	if worker.WorkingHours.Contains(valueobject.HourOfDay(deadline)) {
		return availabilityFull
	}
	return availabilityPartial
}
