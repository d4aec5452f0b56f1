package matching

import (
	"sort"
	"time"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
)

const (
	SkillWeight        = 0.5
	AvailabilityWeight = 0.3
	PerformanceWeight  = 0.2
)

type Details struct {
	SkillMatch        float64
	AvailabilityMatch float64
	PerformanceScore  float64
}

// Composite возвращает взвешенную сумму трёх оценок.
func (d Details) Composite() float64 {
	return SkillWeight*d.SkillMatch + AvailabilityWeight*d.AvailabilityMatch + PerformanceWeight*d.PerformanceScore
}

type Result struct {
	Task    *entity.Task
	Worker  *entity.Worker
	Score   float64
	Details Details
}

// Engine ранжирует задачи для работника и работников для задачи.
// Не хранит состояния между вызовами и безопасен для конкурентного использования.
type Engine struct {
	loc *time.Location
}

// NewEngine создаёт движок; loc определяет календарь для сопоставления дедлайнов (nil, time.Local).
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{loc: loc}
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) Score(worker *entity.Worker, task *entity.Task) Result {
	return e.score(worker, task, PerformanceScore(worker))
}

func (e *Engine) score(worker *entity.Worker, task *entity.Task, performance float64) Result {
	details := Details{
		SkillMatch:        SkillMatch(worker.Skills, task.RequiredSkills),
		AvailabilityMatch: AvailabilityMatch(worker, task, e.loc),
		PerformanceScore:  performance,
	}
	return Result{
		Task:    task,
		Worker:  worker,
		Score:   details.Composite(),
		Details: details,
	}
}

// RecommendTasks оценивает все переданные задачи и сортирует по убыванию оценки.
// Фильтрацию кандидатов выполняет вызывающий (см. FilterRecommendable).
func (e *Engine) RecommendTasks(worker *entity.Worker, tasks []*entity.Task) []Result {
	performance := PerformanceScore(worker)
	results := make([]Result, 0, len(tasks))
	for _, task := range tasks {
		results = append(results, e.score(worker, task, performance))
	}
	sortByScore(results)
	return results
}

// RankWorkers оценивает всех переданных работников для задачи.
func (e *Engine) RankWorkers(task *entity.Task, workers []*entity.Worker) []Result {
	results := make([]Result, 0, len(workers))
	for _, worker := range workers {
		results = append(results, e.Score(worker, task))
	}
	sortByScore(results)
	return results
}

// BestWorkerForTask возвращает лучшего кандидата; false, если кандидатов нет.
func (e *Engine) BestWorkerForTask(task *entity.Task, workers []*entity.Worker) (Result, bool) {
	ranked := e.RankWorkers(task, workers)
	if len(ranked) == 0 {
		return Result{}, false
	}
	return ranked[0], true
}

// sortByScore сортирует по убыванию; при равенстве сохраняется исходный порядок.
func sortByScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
