package valueobject

import (
	"strings"

	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

type SkillLevel string

const (
	SkillLevelBeginner     SkillLevel = "beginner"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelExpert       SkillLevel = "expert"
)

// Rank возвращает порядковый номер уровня; 0 для неизвестного.
func (l SkillLevel) Rank() int {
	switch l {
	case SkillLevelBeginner:
		return 1
	case SkillLevelIntermediate:
		return 2
	case SkillLevelExpert:
		return 3
	}
	return 0
}

func (l SkillLevel) IsValid() bool {
	return l.Rank() > 0
}

// AtLeast сообщает, что уровень не ниже min.
func (l SkillLevel) AtLeast(min SkillLevel) bool {
	return l.Rank() >= min.Rank()
}

// NewSkillLevel разбирает уровень навыка; пустое значение означает beginner.
func NewSkillLevel(level string) (SkillLevel, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return SkillLevelBeginner, nil
	}
	l := SkillLevel(level)
	if !l.IsValid() {
		return "", apperror.Validation("некорректный уровень навыка: " + level)
	}
	return l, nil
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

func NewDifficulty(difficulty string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(difficulty)))
	if !d.IsValid() {
		return "", apperror.Validation("некорректная сложность задачи")
	}
	return d, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// NewPriority разбирает приоритет; пустое значение означает medium.
func NewPriority(priority string) (Priority, error) {
	priority = strings.ToLower(strings.TrimSpace(priority))
	if priority == "" {
		return PriorityMedium, nil
	}
	p := Priority(priority)
	if !p.IsValid() {
		return "", apperror.Validation("некорректный приоритет задачи")
	}
	return p, nil
}
