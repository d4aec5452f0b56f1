package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

type taskRow struct {
	ID                 uuid.UUID  `db:"id"`
	Title              string     `db:"title"`
	Description        string     `db:"description"`
	Difficulty         string     `db:"difficulty"`
	EstimatedDuration  float64    `db:"estimated_duration"`
	Address            string     `db:"address"`
	Latitude           float64    `db:"latitude"`
	Longitude          float64    `db:"longitude"`
	Priority           string     `db:"priority"`
	Status             string     `db:"status"`
	Deadline           time.Time  `db:"deadline"`
	AssignedWorkerID   *uuid.UUID `db:"assigned_worker_id"`
	AssignedAt         *time.Time `db:"assigned_at"`
	CompletedAt        *time.Time `db:"completed_at"`
	CompletionNotes    *string    `db:"completion_notes"`
	CompletedSessionID *uuid.UUID `db:"completed_session_id"`
	PerformanceRating  *int       `db:"performance_rating"`
	Feedback           *string    `db:"feedback"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

type requiredSkillRow struct {
	TaskID                 uuid.UUID      `db:"task_id"`
	Name                   string         `db:"name"`
	MinimumLevel           string         `db:"minimum_level"`
	RequiredCertifications pq.StringArray `db:"required_certifications"`
}

const taskColumns = `id, title, description, difficulty, estimated_duration, address, latitude, longitude,
	priority, status, deadline, assigned_worker_id, assigned_at, completed_at, completion_notes,
	completed_session_id, performance_rating, feedback, created_at, updated_at`

// TaskRepository хранит задачи в PostgreSQL.
type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	return withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO tasks (` + taskColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		`
		row := toTaskRow(t)
		_, err := tx.ExecContext(ctx, query,
			row.ID, row.Title, row.Description, row.Difficulty, row.EstimatedDuration,
			row.Address, row.Latitude, row.Longitude, row.Priority, row.Status, row.Deadline,
			row.AssignedWorkerID, row.AssignedAt, row.CompletedAt, row.CompletionNotes,
			row.CompletedSessionID, row.PerformanceRating, row.Feedback, row.CreatedAt, row.UpdatedAt,
		)
		if err != nil {
			return dbError(err, "не удалось создать задачу")
		}
		return r.saveRequiredSkills(ctx, tx, t)
	})
}

func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	return r.findOne(ctx, conn(ctx, r.db), `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
}

func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]*entity.Task, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if len(filter.Statuses) > 0 {
		statuses := make(pq.StringArray, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if skill := strings.TrimSpace(filter.Skill); skill != "" {
		args = append(args, skill)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM task_required_skills rs WHERE rs.task_id = tasks.id AND rs.name = $%d)", len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список задач")
	}
	return r.hydrate(ctx, r.db, rows)
}

func (r *TaskRepository) FindByAssignedWorker(ctx context.Context, workerID uuid.UUID, statuses ...valueobject.TaskStatus) ([]*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assigned_worker_id = $1`
	args := []interface{}{workerID}
	if len(statuses) > 0 {
		values := make(pq.StringArray, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		query += ` AND status = ANY($2)`
		args = append(args, values)
	}
	query += ` ORDER BY deadline`

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить задачи работника")
	}
	return r.hydrate(ctx, r.db, rows)
}

// Modify выполняет fn над задачей, заблокированной до конца транзакции.
func (r *TaskRepository) Modify(ctx context.Context, id uuid.UUID, fn func(*entity.Task) error) (*entity.Task, error) {
	var result *entity.Task
	err := withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		t, err := r.findOne(ctx, tx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := r.save(ctx, tx, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *TaskRepository) findOne(ctx context.Context, q queryer, query string, id uuid.UUID) (*entity.Task, error) {
	var row taskRow
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить задачу")
	}
	tasks, err := r.hydrate(ctx, q, []taskRow{row})
	if err != nil {
		return nil, err
	}
	return tasks[0], nil
}

func (r *TaskRepository) hydrate(ctx context.Context, q queryer, rows []taskRow) ([]*entity.Task, error) {
	tasks := make([]*entity.Task, 0, len(rows))
	byID := make(map[uuid.UUID]*entity.Task, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		t := row.toEntity()
		tasks = append(tasks, t)
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	if len(ids) == 0 {
		return tasks, nil
	}

	var skills []requiredSkillRow
	err := q.SelectContext(ctx, &skills, `
		SELECT task_id, name, minimum_level, required_certifications
		FROM task_required_skills WHERE task_id = ANY($1::uuid[]) ORDER BY task_id, position`, uuidArray(ids))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить требования задач")
	}
	for _, s := range skills {
		t := byID[s.TaskID]
		t.RequiredSkills = append(t.RequiredSkills, entity.RequiredSkill{
			Name:                   s.Name,
			MinimumLevel:           valueobject.SkillLevel(s.MinimumLevel),
			RequiredCertifications: []string(s.RequiredCertifications),
		})
	}
	return tasks, nil
}

// save обновляет изменяемые поля задачи. Требования к навыкам после создания не меняются.
func (r *TaskRepository) save(ctx context.Context, tx *sqlx.Tx, t *entity.Task) error {
	query := `
		UPDATE tasks
		SET status = $2, assigned_worker_id = $3, assigned_at = $4, completed_at = $5,
		    completion_notes = $6, completed_session_id = $7, performance_rating = $8,
		    feedback = $9, updated_at = $10
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query,
		t.ID, string(t.Status), t.AssignedWorkerID, t.AssignedAt, t.CompletedAt,
		t.CompletionNotes, t.CompletedSessionID, t.PerformanceRating, t.Feedback, time.Now(),
	)
	if err != nil {
		return dbError(err, "не удалось обновить задачу")
	}
	return nil
}

func (r *TaskRepository) saveRequiredSkills(ctx context.Context, tx *sqlx.Tx, t *entity.Task) error {
	for i, rs := range t.RequiredSkills {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_required_skills (task_id, position, name, minimum_level, required_certifications)
			VALUES ($1, $2, $3, $4, $5)`,
			t.ID, i, rs.Name, string(rs.MinimumLevel), pq.StringArray(nonNil(rs.RequiredCertifications)),
		)
		if err != nil {
			return dbError(err, "не удалось сохранить требование задачи")
		}
	}
	return nil
}

func toTaskRow(t *entity.Task) taskRow {
	return taskRow{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		Difficulty:         string(t.Difficulty),
		EstimatedDuration:  t.EstimatedDuration,
		Address:            t.Location.Address,
		Latitude:           t.Location.Latitude,
		Longitude:          t.Location.Longitude,
		Priority:           string(t.Priority),
		Status:             string(t.Status),
		Deadline:           t.Deadline,
		AssignedWorkerID:   t.AssignedWorkerID,
		AssignedAt:         t.AssignedAt,
		CompletedAt:        t.CompletedAt,
		CompletionNotes:    t.CompletionNotes,
		CompletedSessionID: t.CompletedSessionID,
		PerformanceRating:  t.PerformanceRating,
		Feedback:           t.Feedback,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func (row taskRow) toEntity() *entity.Task {
	return &entity.Task{
		ID:                row.ID,
		Title:             row.Title,
		Description:       row.Description,
		Difficulty:        valueobject.Difficulty(row.Difficulty),
		EstimatedDuration: row.EstimatedDuration,
		Location: entity.Location{
			Address:   row.Address,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		},
		Priority:           valueobject.Priority(row.Priority),
		Status:             valueobject.TaskStatus(row.Status),
		Deadline:           row.Deadline,
		AssignedWorkerID:   row.AssignedWorkerID,
		AssignedAt:         row.AssignedAt,
		CompletedAt:        row.CompletedAt,
		CompletionNotes:    row.CompletionNotes,
		CompletedSessionID: row.CompletedSessionID,
		PerformanceRating:  row.PerformanceRating,
		Feedback:           row.Feedback,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
