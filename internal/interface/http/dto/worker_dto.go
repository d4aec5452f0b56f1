package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/worker"
)

// MediaURLPrefix: путь, под которым раздаются загруженные фотографии.
const MediaURLPrefix = "/media/"

type SkillDTO struct {
	Name              string   `json:"name"`
	Level             string   `json:"level"`
	YearsOfExperience float64  `json:"yearsOfExperience"`
	Certifications    []string `json:"certifications"`
	Specialties       []string `json:"specialties"`
}

// RegisterWorkerRequest принимает навыки либо массивом объектов,
// либо строкой имён через запятую.
type RegisterWorkerRequest struct {
	Name               string                    `json:"name" binding:"required"`
	Phone              string                    `json:"phone" binding:"required"`
	Username           string                    `json:"username" binding:"required"`
	Password           string                    `json:"password" binding:"required"`
	Skills             json.RawMessage           `json:"skills"`
	Availability       *valueobject.Availability `json:"availability"`
	WorkingHours       *valueobject.WorkingHours `json:"workingHours"`
	PreferredTaskTypes []string                  `json:"preferredTaskTypes"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string          `json:"accessToken"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	Role        string          `json:"role"`
	Worker      *WorkerResponse `json:"worker,omitempty"`
}

type BreakDTO struct {
	ID        uuid.UUID  `json:"id"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

type WorkSessionDTO struct {
	ID                uuid.UUID  `json:"id"`
	StartTime         time.Time  `json:"startTime"`
	EndTime           *time.Time `json:"endTime"`
	Breaks            []BreakDTO `json:"breaks"`
	TaskType          *string    `json:"taskType,omitempty"`
	TaskDifficulty    *string    `json:"taskDifficulty,omitempty"`
	PerformanceRating *int       `json:"performanceRating,omitempty"`
	DurationHours     float64    `json:"durationHours"`
}

type WorkerResponse struct {
	ID                 uuid.UUID                `json:"id"`
	Name               string                   `json:"name"`
	Phone              string                   `json:"phone"`
	Username           string                   `json:"username"`
	PhotoURL           *string                  `json:"photoUrl"`
	IsPaid             bool                     `json:"isPaid"`
	Status             string                   `json:"status"`
	Skills             []SkillDTO               `json:"skills"`
	Availability       valueobject.Availability `json:"availability"`
	WorkingHours       valueobject.WorkingHours `json:"workingHours"`
	PreferredTaskTypes []string                 `json:"preferredTaskTypes"`
	WorkHistory        []WorkSessionDTO         `json:"workHistory"`
	CreatedAt          time.Time                `json:"createdAt"`
	UpdatedAt          time.Time                `json:"updatedAt"`
}

type PredictionResponse struct {
	WorkerID       uuid.UUID `json:"workerId"`
	PredictedHours float64   `json:"predictedHours"`
}

// ParseSkills разбирает поле skills: массив объектов или строку "Electrician, Plumber".
func ParseSkills(raw json.RawMessage) ([]worker.SkillInput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var legacy string
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, err
		}
		return worker.ParseLegacySkills(legacy), nil
	}

	var skills []SkillDTO
	if err := json.Unmarshal(raw, &skills); err != nil {
		return nil, errors.New("skills: ожидается массив навыков или строка через запятую")
	}
	return toSkillInputs(skills), nil
}

// ParseFormSkills разбирает поле skills из multipart-формы.
func ParseFormSkills(value string) ([]worker.SkillInput, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "[") {
		return ParseSkills(json.RawMessage(value))
	}
	return worker.ParseLegacySkills(value), nil
}

// ParseFormAvailability принимает JSON-объект графика или список дней через запятую.
func ParseFormAvailability(value string) (*valueobject.Availability, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if strings.HasPrefix(value, "{") {
		var a valueobject.Availability
		if err := json.Unmarshal([]byte(value), &a); err != nil {
			return nil, err
		}
		return &a, nil
	}
	a := valueobject.AvailabilityFromDays(SplitList(value))
	return &a, nil
}

// SplitList делит строку по запятым, отбрасывая пустые элементы.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (r RegisterWorkerRequest) ToInput() (worker.RegisterWorkerInput, error) {
	skills, err := ParseSkills(r.Skills)
	if err != nil {
		return worker.RegisterWorkerInput{}, err
	}

	input := worker.RegisterWorkerInput{
		Name:               r.Name,
		Phone:              r.Phone,
		Username:           r.Username,
		Password:           r.Password,
		Skills:             skills,
		Availability:       r.Availability,
		PreferredTaskTypes: r.PreferredTaskTypes,
	}
	if r.WorkingHours != nil {
		input.WorkStart = r.WorkingHours.Start
		input.WorkEnd = r.WorkingHours.End
	}
	return input, nil
}

func toSkillInputs(skills []SkillDTO) []worker.SkillInput {
	inputs := make([]worker.SkillInput, 0, len(skills))
	for _, s := range skills {
		inputs = append(inputs, worker.SkillInput{
			Name:              s.Name,
			Level:             s.Level,
			YearsOfExperience: s.YearsOfExperience,
			Certifications:    s.Certifications,
			Specialties:       s.Specialties,
		})
	}
	return inputs
}

func ToWorkerResponse(w *entity.Worker) WorkerResponse {
	resp := WorkerResponse{
		ID:                 w.ID,
		Name:               w.Name,
		Phone:              w.Phone,
		Username:           w.Username,
		IsPaid:             w.IsPaid,
		Status:             string(w.Status),
		Skills:             make([]SkillDTO, 0, len(w.Skills)),
		Availability:       w.Availability,
		WorkingHours:       w.WorkingHours,
		PreferredTaskTypes: nonNilStrings(w.PreferredTaskTypes),
		WorkHistory:        make([]WorkSessionDTO, 0, len(w.WorkHistory)),
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}

	if w.PhotoPath != nil {
		url := MediaURLPrefix + *w.PhotoPath
		resp.PhotoURL = &url
	}

	for _, s := range w.Skills {
		resp.Skills = append(resp.Skills, SkillDTO{
			Name:              s.Name,
			Level:             string(s.Level),
			YearsOfExperience: s.YearsOfExperience,
			Certifications:    nonNilStrings(s.Certifications),
			Specialties:       nonNilStrings(s.Specialties),
		})
	}

	for _, s := range w.WorkHistory {
		resp.WorkHistory = append(resp.WorkHistory, ToWorkSessionDTO(&s))
	}

	return resp
}

func ToWorkerResponses(workers []*entity.Worker) []WorkerResponse {
	responses := make([]WorkerResponse, 0, len(workers))
	for _, w := range workers {
		responses = append(responses, ToWorkerResponse(w))
	}
	return responses
}

func ToWorkSessionDTO(s *entity.WorkSession) WorkSessionDTO {
	session := WorkSessionDTO{
		ID:                s.ID,
		StartTime:         s.StartedAt,
		EndTime:           s.EndedAt,
		Breaks:            make([]BreakDTO, 0, len(s.Breaks)),
		TaskType:          s.TaskType,
		PerformanceRating: s.PerformanceRating,
		DurationHours:     s.Duration().Hours(),
	}
	if s.TaskDifficulty != nil {
		d := string(*s.TaskDifficulty)
		session.TaskDifficulty = &d
	}
	for _, b := range s.Breaks {
		session.Breaks = append(session.Breaks, ToBreakDTO(&b))
	}
	return session
}

func ToBreakDTO(b *entity.Break) BreakDTO {
	return BreakDTO{ID: b.ID, StartTime: b.StartedAt, EndTime: b.EndedAt}
}

func ToAuthResponse(result *worker.AuthResult) AuthResponse {
	resp := AuthResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
		Role:        string(result.Role),
	}
	if result.Worker != nil {
		w := ToWorkerResponse(result.Worker)
		resp.Worker = &w
	}
	return resp
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
