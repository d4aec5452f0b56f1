package persistence

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

type workerRow struct {
	ID                 uuid.UUID      `db:"id"`
	Name               string         `db:"name"`
	Phone              string         `db:"phone"`
	Username           string         `db:"username"`
	PasswordHash       string         `db:"password_hash"`
	PhotoPath          *string        `db:"photo_path"`
	IsPaid             bool           `db:"is_paid"`
	Status             string         `db:"status"`
	AvailableDays      pq.StringArray `db:"available_days"`
	WorkStart          string         `db:"work_start"`
	WorkEnd            string         `db:"work_end"`
	PreferredTaskTypes pq.StringArray `db:"preferred_task_types"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

type skillRow struct {
	WorkerID          uuid.UUID      `db:"worker_id"`
	Name              string         `db:"name"`
	Level             string         `db:"level"`
	YearsOfExperience float64        `db:"years_of_experience"`
	Certifications    pq.StringArray `db:"certifications"`
	Specialties       pq.StringArray `db:"specialties"`
}

type sessionRow struct {
	ID                uuid.UUID  `db:"id"`
	WorkerID          uuid.UUID  `db:"worker_id"`
	StartedAt         time.Time  `db:"started_at"`
	EndedAt           *time.Time `db:"ended_at"`
	TaskType          *string    `db:"task_type"`
	TaskDifficulty    *string    `db:"task_difficulty"`
	PerformanceRating *int       `db:"performance_rating"`
}

type breakRow struct {
	ID        uuid.UUID  `db:"id"`
	SessionID uuid.UUID  `db:"session_id"`
	StartedAt time.Time  `db:"started_at"`
	EndedAt   *time.Time `db:"ended_at"`
}

const workerColumns = `id, name, phone, username, password_hash, photo_path, is_paid, status,
	available_days, work_start, work_end, preferred_task_types, created_at, updated_at`

// WorkerRepository хранит работников в PostgreSQL.
type WorkerRepository struct {
	db *sqlx.DB
}

func NewWorkerRepository(db *sqlx.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

var _ repository.WorkerRepository = (*WorkerRepository)(nil)

func (r *WorkerRepository) Create(ctx context.Context, w *entity.Worker) error {
	return withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO workers (` + workerColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		row := toWorkerRow(w)
		_, err := tx.ExecContext(ctx, query,
			row.ID, row.Name, row.Phone, row.Username, row.PasswordHash, row.PhotoPath, row.IsPaid, row.Status,
			row.AvailableDays, row.WorkStart, row.WorkEnd, row.PreferredTaskTypes, row.CreatedAt, row.UpdatedAt,
		)
		if err != nil {
			return dbError(err, "не удалось создать работника")
		}
		return r.saveChildren(ctx, tx, w, nil)
	})
}

func (r *WorkerRepository) Update(ctx context.Context, w *entity.Worker) error {
	return withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		return r.save(ctx, tx, w, nil)
	})
}

func (r *WorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Worker, error) {
	return r.findOne(ctx, conn(ctx, r.db), `SELECT `+workerColumns+` FROM workers WHERE id = $1`, id)
}

func (r *WorkerRepository) FindByUsername(ctx context.Context, username string) (*entity.Worker, error) {
	return r.findOne(ctx, conn(ctx, r.db), `SELECT `+workerColumns+` FROM workers WHERE username = $1`, username)
}

func (r *WorkerRepository) List(ctx context.Context, filter repository.WorkerFilter) ([]*entity.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers`
	var args []interface{}
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY created_at`

	var rows []workerRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список работников")
	}
	return r.hydrate(ctx, r.db, rows)
}

// Modify блокирует строку работника (SELECT ... FOR UPDATE) до конца транзакции,
// поэтому конкурентные изменения одного работника выполняются последовательно.
func (r *WorkerRepository) Modify(ctx context.Context, id uuid.UUID, fn func(*entity.Worker) error) (*entity.Worker, error) {
	var result *entity.Worker
	err := withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		w, err := r.findOne(ctx, tx, `SELECT `+workerColumns+` FROM workers WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		loaded := snapshotChildren(w)
		if err := fn(w); err != nil {
			return err
		}
		if err := r.save(ctx, tx, w, loaded); err != nil {
			return err
		}
		result = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *WorkerRepository) findOne(ctx context.Context, q queryer, query string, arg interface{}) (*entity.Worker, error) {
	var row workerRow
	if err := q.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrWorkerNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить работника")
	}
	workers, err := r.hydrate(ctx, q, []workerRow{row})
	if err != nil {
		return nil, err
	}
	return workers[0], nil
}

// hydrate собирает работников вместе с навыками, сменами и перерывами тремя запросами.
func (r *WorkerRepository) hydrate(ctx context.Context, q queryer, rows []workerRow) ([]*entity.Worker, error) {
	workers := make([]*entity.Worker, 0, len(rows))
	byID := make(map[uuid.UUID]*entity.Worker, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		w := row.toEntity()
		workers = append(workers, w)
		byID[w.ID] = w
		ids = append(ids, w.ID)
	}
	if len(ids) == 0 {
		return workers, nil
	}

	var skills []skillRow
	err := q.SelectContext(ctx, &skills, `
		SELECT worker_id, name, level, years_of_experience, certifications, specialties
		FROM worker_skills WHERE worker_id = ANY($1::uuid[]) ORDER BY worker_id, position`, uuidArray(ids))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить навыки")
	}
	for _, s := range skills {
		w := byID[s.WorkerID]
		w.Skills = append(w.Skills, entity.Skill{
			Name:              s.Name,
			Level:             valueobject.SkillLevel(s.Level),
			YearsOfExperience: s.YearsOfExperience,
			Certifications:    []string(s.Certifications),
			Specialties:       []string(s.Specialties),
		})
	}

	var sessions []sessionRow
	err = q.SelectContext(ctx, &sessions, `
		SELECT id, worker_id, started_at, ended_at, task_type, task_difficulty, performance_rating
		FROM work_sessions WHERE worker_id = ANY($1::uuid[]) ORDER BY worker_id, started_at`, uuidArray(ids))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить смены")
	}
	if len(sessions) == 0 {
		return workers, nil
	}

	sessionIDs := make([]uuid.UUID, 0, len(sessions))
	for _, s := range sessions {
		sessionIDs = append(sessionIDs, s.ID)
	}
	var breaks []breakRow
	err = q.SelectContext(ctx, &breaks, `
		SELECT id, session_id, started_at, ended_at
		FROM session_breaks WHERE session_id = ANY($1::uuid[]) ORDER BY session_id, started_at`, uuidArray(sessionIDs))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить перерывы")
	}
	breaksBySession := make(map[uuid.UUID][]entity.Break)
	for _, b := range breaks {
		breaksBySession[b.SessionID] = append(breaksBySession[b.SessionID], entity.Break{
			ID:        b.ID,
			SessionID: b.SessionID,
			StartedAt: b.StartedAt,
			EndedAt:   b.EndedAt,
		})
	}

	for _, s := range sessions {
		session := entity.WorkSession{
			ID:                s.ID,
			WorkerID:          s.WorkerID,
			StartedAt:         s.StartedAt,
			EndedAt:           s.EndedAt,
			TaskType:          s.TaskType,
			PerformanceRating: s.PerformanceRating,
			Breaks:            breaksBySession[s.ID],
		}
		if s.TaskDifficulty != nil {
			d := valueobject.Difficulty(*s.TaskDifficulty)
			session.TaskDifficulty = &d
		}
		w := byID[s.WorkerID]
		w.WorkHistory = append(w.WorkHistory, session)
	}
	return workers, nil
}

func (r *WorkerRepository) save(ctx context.Context, tx *sqlx.Tx, w *entity.Worker, loaded *childSnapshot) error {
	query := `
		UPDATE workers
		SET name = $2, phone = $3, username = $4, password_hash = $5, photo_path = $6, is_paid = $7,
		    status = $8, available_days = $9, work_start = $10, work_end = $11,
		    preferred_task_types = $12, updated_at = $13
		WHERE id = $1
	`
	row := toWorkerRow(w)
	res, err := tx.ExecContext(ctx, query,
		row.ID, row.Name, row.Phone, row.Username, row.PasswordHash, row.PhotoPath, row.IsPaid,
		row.Status, row.AvailableDays, row.WorkStart, row.WorkEnd, row.PreferredTaskTypes, time.Now(),
	)
	if err != nil {
		return dbError(err, "не удалось обновить работника")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.ErrWorkerNotFound
	}
	return r.saveChildren(ctx, tx, w, loaded)
}

// childSnapshot запоминает навыки и смены работника в том виде, в каком они были загружены.
type childSnapshot struct {
	skills   []entity.Skill
	sessions map[uuid.UUID]sessionRow
	breaks   map[uuid.UUID]breakRow
}

func snapshotChildren(w *entity.Worker) *childSnapshot {
	snap := &childSnapshot{
		sessions: make(map[uuid.UUID]sessionRow, len(w.WorkHistory)),
		breaks:   make(map[uuid.UUID]breakRow),
	}
	for _, sk := range w.Skills {
		sk.Certifications = cloneStrings(sk.Certifications)
		sk.Specialties = cloneStrings(sk.Specialties)
		snap.skills = append(snap.skills, sk)
	}
	// указатели копируются, чтобы изменения сущности на месте не попали в снимок
	for _, s := range w.WorkHistory {
		row := toSessionRow(w.ID, s)
		row.EndedAt = clonePtr(row.EndedAt)
		row.TaskType = clonePtr(row.TaskType)
		row.TaskDifficulty = clonePtr(row.TaskDifficulty)
		row.PerformanceRating = clonePtr(row.PerformanceRating)
		snap.sessions[s.ID] = row
		for _, b := range s.Breaks {
			br := toBreakRow(s.ID, b)
			br.EndedAt = clonePtr(br.EndedAt)
			snap.breaks[b.ID] = br
		}
	}
	return snap
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *childSnapshot) skillsChanged(skills []entity.Skill) bool {
	return s == nil || !reflect.DeepEqual(s.skills, skills)
}

func (s *childSnapshot) sessionChanged(row sessionRow) bool {
	if s == nil {
		return true
	}
	before, ok := s.sessions[row.ID]
	return !ok || !reflect.DeepEqual(before, row)
}

func (s *childSnapshot) breakChanged(row breakRow) bool {
	if s == nil {
		return true
	}
	before, ok := s.breaks[row.ID]
	return !ok || !reflect.DeepEqual(before, row)
}

// saveChildren записывает изменившиеся навыки, смены и перерывы. Без снимка
// (создание, Update) записывается всё. Смены и перерывы не удаляются.
func (r *WorkerRepository) saveChildren(ctx context.Context, tx *sqlx.Tx, w *entity.Worker, loaded *childSnapshot) error {
	if loaded.skillsChanged(w.Skills) {
		if err := r.saveSkills(ctx, tx, w); err != nil {
			return err
		}
	}

	for _, s := range w.WorkHistory {
		row := toSessionRow(w.ID, s)
		if loaded.sessionChanged(row) {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO work_sessions (id, worker_id, started_at, ended_at, task_type, task_difficulty, performance_rating)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO UPDATE
				SET ended_at = EXCLUDED.ended_at, task_type = EXCLUDED.task_type,
				    task_difficulty = EXCLUDED.task_difficulty, performance_rating = EXCLUDED.performance_rating`,
				row.ID, row.WorkerID, row.StartedAt, row.EndedAt, row.TaskType, row.TaskDifficulty, row.PerformanceRating,
			)
			if err != nil {
				return dbError(err, "не удалось сохранить смену")
			}
		}

		for _, b := range s.Breaks {
			br := toBreakRow(s.ID, b)
			if !loaded.breakChanged(br) {
				continue
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO session_breaks (id, session_id, started_at, ended_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET ended_at = EXCLUDED.ended_at`,
				br.ID, br.SessionID, br.StartedAt, br.EndedAt,
			)
			if err != nil {
				return dbError(err, "не удалось сохранить перерыв")
			}
		}
	}
	return nil
}

func (r *WorkerRepository) saveSkills(ctx context.Context, tx *sqlx.Tx, w *entity.Worker) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM worker_skills WHERE worker_id = $1`, w.ID); err != nil {
		return dbError(err, "не удалось обновить навыки")
	}
	for i, s := range w.Skills {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO worker_skills (worker_id, position, name, level, years_of_experience, certifications, specialties)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			w.ID, i, s.Name, string(s.Level), s.YearsOfExperience,
			pq.StringArray(nonNil(s.Certifications)), pq.StringArray(nonNil(s.Specialties)),
		)
		if err != nil {
			return dbError(err, "не удалось сохранить навык")
		}
	}
	return nil
}

func toSessionRow(workerID uuid.UUID, s entity.WorkSession) sessionRow {
	row := sessionRow{
		ID:                s.ID,
		WorkerID:          workerID,
		StartedAt:         s.StartedAt,
		EndedAt:           s.EndedAt,
		TaskType:          s.TaskType,
		PerformanceRating: s.PerformanceRating,
	}
	if s.TaskDifficulty != nil {
		d := string(*s.TaskDifficulty)
		row.TaskDifficulty = &d
	}
	return row
}

func toBreakRow(sessionID uuid.UUID, b entity.Break) breakRow {
	return breakRow{ID: b.ID, SessionID: sessionID, StartedAt: b.StartedAt, EndedAt: b.EndedAt}
}

func toWorkerRow(w *entity.Worker) workerRow {
	return workerRow{
		ID:                 w.ID,
		Name:               w.Name,
		Phone:              w.Phone,
		Username:           w.Username,
		PasswordHash:       w.PasswordHash,
		PhotoPath:          w.PhotoPath,
		IsPaid:             w.IsPaid,
		Status:             string(w.Status),
		AvailableDays:      pq.StringArray(w.Availability.Days()),
		WorkStart:          w.WorkingHours.Start,
		WorkEnd:            w.WorkingHours.End,
		PreferredTaskTypes: pq.StringArray(nonNil(w.PreferredTaskTypes)),
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

func (row workerRow) toEntity() *entity.Worker {
	return &entity.Worker{
		ID:                 row.ID,
		Name:               row.Name,
		Phone:              row.Phone,
		Username:           row.Username,
		PasswordHash:       row.PasswordHash,
		PhotoPath:          row.PhotoPath,
		IsPaid:             row.IsPaid,
		Status:             valueobject.WorkerStatus(row.Status),
		Availability:       valueobject.AvailabilityFromDays(row.AvailableDays),
		WorkingHours:       valueobject.WorkingHours{Start: row.WorkStart, End: row.WorkEnd},
		PreferredTaskTypes: []string(row.PreferredTaskTypes),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

func uuidArray(ids []uuid.UUID) pq.StringArray {
	values := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	return values
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append(make([]string, 0, len(values)), values...)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
