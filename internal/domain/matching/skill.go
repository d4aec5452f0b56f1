package matching

import (
	"math"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
)

const (
	skillPresenceScore   = 1.0
	certificationBonus   = 0.5
	experienceSaturation = 5.0
)

var levelBonus = map[valueobject.SkillLevel]float64{
	valueobject.SkillLevelBeginner:     0.5,
	valueobject.SkillLevelIntermediate: 0.8,
	valueobject.SkillLevelExpert:       1.0,
}

// SkillMatch оценивает покрытие требуемых навыков задачи навыками работника.
// Для каждого требуемого навыка: 1 за наличие, бонус за уровень, до 1 за опыт
// (насыщение на 5 годах) и 0.5 за полный набор сертификатов. Итог равен среднему по
// требуемым навыкам. Пустой список требований даёт 0.
func SkillMatch(workerSkills []entity.Skill, requiredSkills []entity.RequiredSkill) float64 {
	if len(requiredSkills) == 0 {
		return 0
	}

	byName := make(map[string]entity.Skill, len(workerSkills))
	for _, s := range workerSkills {
		if _, ok := byName[s.Name]; !ok {
			byName[s.Name] = s
		}
	}

	var total float64
	for _, req := range requiredSkills {
		skill, ok := byName[req.Name]
		if !ok {
			continue
		}
		total += skillScore(skill, req)
	}

	return total / float64(len(requiredSkills))
}

func skillScore(skill entity.Skill, req entity.RequiredSkill) float64 {
	score := skillPresenceScore
	score += levelBonus[skill.Level]
	score += experienceBonus(skill.YearsOfExperience)
	if skill.HasCertifications(req.RequiredCertifications) {
		score += certificationBonus
	}
	return score
}

func experienceBonus(years float64) float64 {
	if years <= 0 || math.IsNaN(years) {
		return 0
	}
	return math.Min(years/experienceSaturation, 1)
}

// SharesSkill сообщает, есть ли у работника хотя бы один навык, требуемый задачей.
func SharesSkill(worker *entity.Worker, task *entity.Task) bool {
	for _, req := range task.RequiredSkills {
		if _, ok := worker.SkillByName(req.Name); ok {
			return true
		}
	}
	return false
}
