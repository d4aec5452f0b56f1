package matching

import "github.com/ignatzorin/gigwork-backend/internal/domain/entity"

const (
	neutralPerformance = 0.5
	defaultRating      = 3
	maxRating          = 5
)

// PerformanceScore нормирует среднюю оценку закрытых смен в [0, 1].
// Смены без оценки считаются как 3. Без закрытых смен возвращается 0.5.
func PerformanceScore(worker *entity.Worker) float64 {
	var sum, count int
	for _, session := range worker.WorkHistory {
		if session.EndedAt == nil {
			continue
		}
		rating := defaultRating
		if session.PerformanceRating != nil {
			rating = clampInt(*session.PerformanceRating, 1, maxRating)
		}
		sum += rating
		count++
	}

	if count == 0 {
		return neutralPerformance
	}
	return float64(sum) / float64(count) / maxRating
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
