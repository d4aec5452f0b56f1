package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

type Worker struct {
	ID                 uuid.UUID
	Name               string
	Phone              string
	Username           string
	PasswordHash       string
	PhotoPath          *string
	IsPaid             bool
	Status             valueobject.WorkerStatus
	Skills             []Skill
	Availability       valueobject.Availability
	WorkingHours       valueobject.WorkingHours
	PreferredTaskTypes []string
	WorkHistory        []WorkSession
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Skill struct {
	Name              string
	Level             valueobject.SkillLevel
	YearsOfExperience float64
	Certifications    []string
	Specialties       []string
}

type WorkSession struct {
	ID                uuid.UUID
	WorkerID          uuid.UUID
	StartedAt         time.Time
	EndedAt           *time.Time
	TaskType          *string
	TaskDifficulty    *valueobject.Difficulty
	PerformanceRating *int
	Breaks            []Break
}

type Break struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	StartedAt time.Time
	EndedAt   *time.Time
}

func NewSkill(name string, level valueobject.SkillLevel, years float64, certifications, specialties []string) (Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Skill{}, apperror.Validation("название навыка обязательно")
	}
	if years < 0 {
		return Skill{}, apperror.Validation("опыт не может быть отрицательным")
	}
	if !level.IsValid() {
		return Skill{}, apperror.Validation("некорректный уровень навыка")
	}

	return Skill{
		Name:              name,
		Level:             level,
		YearsOfExperience: years,
		Certifications:    dedupe(certifications),
		Specialties:       dedupe(specialties),
	}, nil
}

// HasCertifications проверяет, что у навыка есть все перечисленные сертификаты.
func (s Skill) HasCertifications(required []string) bool {
	owned := make(map[string]struct{}, len(s.Certifications))
	for _, c := range s.Certifications {
		owned[c] = struct{}{}
	}
	for _, c := range required {
		if _, ok := owned[c]; !ok {
			return false
		}
	}
	return true
}

func NewWorker(name, phone, username, passwordHash string, skills []Skill) (*Worker, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.Validation("имя обязательно")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, apperror.Validation("телефон обязателен")
	}
	if strings.TrimSpace(username) == "" {
		return nil, apperror.Validation("имя пользователя обязательно")
	}
	if passwordHash == "" {
		return nil, apperror.Validation("пароль обязателен")
	}

	now := time.Now()
	return &Worker{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		Status:       valueobject.WorkerStatusPending,
		Skills:       skills,
		Availability: valueobject.FullWeek(),
		WorkingHours: valueobject.DefaultWorkingHours(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (w *Worker) Accept() error {
	return w.changeStatus(valueobject.WorkerStatusAccepted)
}

func (w *Worker) Reject() error {
	return w.changeStatus(valueobject.WorkerStatusRejected)
}

func (w *Worker) changeStatus(status valueobject.WorkerStatus) error {
	if !w.Status.CanTransitionTo(status) {
		return apperror.Conflict("невозможно перевести работника в статус " + string(status))
	}
	w.Status = status
	w.UpdatedAt = time.Now()
	return nil
}

func (w *Worker) IsAccepted() bool {
	return w.Status == valueobject.WorkerStatusAccepted
}

// SkillByName ищет навык по точному совпадению имени.
func (w *Worker) SkillByName(name string) (Skill, bool) {
	for _, s := range w.Skills {
		if s.Name == name {
			return s, true
		}
	}
	return Skill{}, false
}

// ActiveSession возвращает незакрытую смену или nil.
func (w *Worker) ActiveSession() *WorkSession {
	for i := range w.WorkHistory {
		if w.WorkHistory[i].EndedAt == nil {
			return &w.WorkHistory[i]
		}
	}
	return nil
}

// SessionByID возвращает смену по идентификатору или nil.
func (w *Worker) SessionByID(id uuid.UUID) *WorkSession {
	for i := range w.WorkHistory {
		if w.WorkHistory[i].ID == id {
			return &w.WorkHistory[i]
		}
	}
	return nil
}

// CompletedSessions возвращает смены с выставленным временем окончания.
func (w *Worker) CompletedSessions() []WorkSession {
	var completed []WorkSession
	for _, s := range w.WorkHistory {
		if s.EndedAt != nil {
			completed = append(completed, s)
		}
	}
	return completed
}

func (w *Worker) HasCompletedSession() bool {
	for _, s := range w.WorkHistory {
		if s.EndedAt != nil {
			return true
		}
	}
	return false
}

func (w *Worker) StartSession(now time.Time) (*WorkSession, error) {
	if w.ActiveSession() != nil {
		return nil, apperror.ErrSessionAlreadyOpen
	}

	w.WorkHistory = append(w.WorkHistory, WorkSession{
		ID:        uuid.New(),
		WorkerID:  w.ID,
		StartedAt: now,
		Breaks:    []Break{},
	})
	w.UpdatedAt = now
	return &w.WorkHistory[len(w.WorkHistory)-1], nil
}

// StopSession закрывает активную смену; незакрытый перерыв закрывается тем же моментом.
func (w *Worker) StopSession(now time.Time) (*WorkSession, error) {
	session := w.ActiveSession()
	if session == nil {
		return nil, apperror.ErrNoActiveSession
	}

	if br := session.ActiveBreak(); br != nil {
		br.EndedAt = timePtr(now)
	}
	session.EndedAt = timePtr(now)
	w.UpdatedAt = now
	return session, nil
}

func (w *Worker) StartBreak(now time.Time) (*Break, error) {
	session := w.ActiveSession()
	if session == nil {
		return nil, apperror.ErrNoActiveSession
	}
	if session.ActiveBreak() != nil {
		return nil, apperror.ErrBreakAlreadyOpen
	}

	session.Breaks = append(session.Breaks, Break{
		ID:        uuid.New(),
		SessionID: session.ID,
		StartedAt: now,
	})
	w.UpdatedAt = now
	return &session.Breaks[len(session.Breaks)-1], nil
}

func (w *Worker) EndBreak(now time.Time) (*Break, error) {
	session := w.ActiveSession()
	if session == nil {
		return nil, apperror.ErrNoActiveSession
	}
	br := session.ActiveBreak()
	if br == nil {
		return nil, apperror.ErrNoActiveBreak
	}

	br.EndedAt = timePtr(now)
	w.UpdatedAt = now
	return br, nil
}

// RecordTaskOutcome записывает итоги задачи в активную смену и возвращает её id.
// Без активной смены ничего не меняется.
func (w *Worker) RecordTaskOutcome(taskType string, difficulty valueobject.Difficulty, rating *int) (uuid.UUID, bool) {
	session := w.ActiveSession()
	if session == nil {
		return uuid.Nil, false
	}
	session.TaskType = &taskType
	session.TaskDifficulty = &difficulty
	if rating != nil {
		r := *rating
		session.PerformanceRating = &r
	}
	w.UpdatedAt = time.Now()
	return session.ID, true
}

// RateSession выставляет оценку уже записанной смене.
func (w *Worker) RateSession(sessionID uuid.UUID, rating int) bool {
	session := w.SessionByID(sessionID)
	if session == nil {
		return false
	}
	session.PerformanceRating = &rating
	w.UpdatedAt = time.Now()
	return true
}

// HoursWorked суммирует длительность закрытых смен.
func (w *Worker) HoursWorked() float64 {
	var total float64
	for _, s := range w.WorkHistory {
		total += s.Duration().Hours()
	}
	return total
}

func (s *WorkSession) IsOpen() bool {
	return s.EndedAt == nil
}

// ActiveBreak возвращает незакрытый перерыв смены или nil.
func (s *WorkSession) ActiveBreak() *Break {
	for i := range s.Breaks {
		if s.Breaks[i].EndedAt == nil {
			return &s.Breaks[i]
		}
	}
	return nil
}

// Duration возвращает длительность закрытой смены; для открытой 0.
func (s WorkSession) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
