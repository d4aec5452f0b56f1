package valueobject

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

const (
	DefaultWorkStart = "09:00"
	DefaultWorkEnd   = "17:00"
)

// Availability: недельный график работника, по флагу на каждый день.
type Availability struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// FullWeek возвращает график без выходных.
func FullWeek() Availability {
	return Availability{true, true, true, true, true, true, true}
}

// On сообщает, работает ли работник в указанный день недели.
func (a Availability) On(day time.Weekday) bool {
	switch day {
	case time.Monday:
		return a.Monday
	case time.Tuesday:
		return a.Tuesday
	case time.Wednesday:
		return a.Wednesday
	case time.Thursday:
		return a.Thursday
	case time.Friday:
		return a.Friday
	case time.Saturday:
		return a.Saturday
	case time.Sunday:
		return a.Sunday
	}
	return false
}

// Days возвращает названия рабочих дней в нижнем регистре.
func (a Availability) Days() []string {
	days := make([]string, 0, 7)
	for _, d := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday} {
		if a.On(d) {
			days = append(days, WeekdayName(d))
		}
	}
	return days
}

// WeekdayName возвращает название дня недели в нижнем регистре ("monday" … "sunday").
func WeekdayName(day time.Weekday) string {
	return strings.ToLower(day.String())
}

// WorkingHours: предпочитаемое окно работы в формате HH:MM.
type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func DefaultWorkingHours() WorkingHours {
	return WorkingHours{Start: DefaultWorkStart, End: DefaultWorkEnd}
}

// NewWorkingHours проверяет формат и порядок границ. Пустые значения заменяются дефолтами.
func NewWorkingHours(start, end string) (WorkingHours, error) {
	if strings.TrimSpace(start) == "" {
		start = DefaultWorkStart
	}
	if strings.TrimSpace(end) == "" {
		end = DefaultWorkEnd
	}

	from, err := ParseClock(start)
	if err != nil {
		return WorkingHours{}, apperror.Validation("некорректное время начала работы")
	}
	to, err := ParseClock(end)
	if err != nil {
		return WorkingHours{}, apperror.Validation("некорректное время окончания работы")
	}
	if from > to {
		return WorkingHours{}, apperror.Validation("начало рабочего дня позже его окончания")
	}

	return WorkingHours{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}, nil
}

// Window возвращает границы окна в дробных часах. Битые значения заменяются окном 09:00–17:00.
func (w WorkingHours) Window() (float64, float64) {
	from, errFrom := ParseClock(w.Start)
	to, errTo := ParseClock(w.End)
	if errFrom != nil || errTo != nil {
		from, _ = ParseClock(DefaultWorkStart)
		to, _ = ParseClock(DefaultWorkEnd)
	}
	return from, to
}

// Contains проверяет попадание часа (дробного) в окно включительно.
func (w WorkingHours) Contains(hour float64) bool {
	from, to := w.Window()
	return hour >= from && hour <= to
}

// ParseClock переводит "HH:MM" в дробные часы: "09:30" → 9.5.
// Обе границы окна разбираются одной и той же функцией.
func ParseClock(value string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("clock: ожидается формат HH:MM, получено %q", value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 24 {
		return 0, fmt.Errorf("clock: некорректные часы в %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock: некорректные минуты в %q", value)
	}
	if hours == 24 && minutes != 0 {
		return 0, fmt.Errorf("clock: время за пределами суток %q", value)
	}

	return float64(hours) + float64(minutes)/60, nil
}

// HourOfDay возвращает время суток момента t в дробных часах.
func HourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}

// AvailabilityFromDays собирает график из названий дней; неизвестные названия пропускаются.
func AvailabilityFromDays(days []string) Availability {
	var a Availability
	for _, day := range days {
		switch strings.ToLower(strings.TrimSpace(day)) {
		case "monday":
			a.Monday = true
		case "tuesday":
			a.Tuesday = true
		case "wednesday":
			a.Wednesday = true
		case "thursday":
			a.Thursday = true
		case "friday":
			a.Friday = true
		case "saturday":
			a.Saturday = true
		case "sunday":
			a.Sunday = true
		}
	}
	return a
}
