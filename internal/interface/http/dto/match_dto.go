package dto

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/gigwork-backend/internal/domain/matching"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/task"
)

type MatchDetailsDTO struct {
	SkillMatch        float64 `json:"skillMatch"`
	AvailabilityMatch float64 `json:"availabilityMatch"`
	PerformanceScore  float64 `json:"performanceScore"`
}

type RecommendationResponse struct {
	Task         TaskResponse    `json:"task"`
	MatchScore   float64         `json:"matchScore"`
	MatchDetails MatchDetailsDTO `json:"matchDetails"`
}

type BestWorkerResponse struct {
	WorkerID uuid.UUID       `json:"workerId"`
	Score    float64         `json:"score"`
	Details  MatchDetailsDTO `json:"details"`
}

type CandidateResponse struct {
	WorkerID uuid.UUID       `json:"workerId"`
	Name     string          `json:"name"`
	Score    float64         `json:"score"`
	Details  MatchDetailsDTO `json:"details"`
}

func ToMatchDetails(d matching.Details) MatchDetailsDTO {
	return MatchDetailsDTO{
		SkillMatch:        d.SkillMatch,
		AvailabilityMatch: d.AvailabilityMatch,
		PerformanceScore:  d.PerformanceScore,
	}
}

func ToRecommendationResponses(recommendations []task.Recommendation) []RecommendationResponse {
	responses := make([]RecommendationResponse, 0, len(recommendations))
	for _, r := range recommendations {
		responses = append(responses, RecommendationResponse{
			Task:         ToTaskResponse(r.Task),
			MatchScore:   r.Score,
			MatchDetails: ToMatchDetails(r.Details),
		})
	}
	return responses
}

func ToBestWorkerResponse(result matching.Result) BestWorkerResponse {
	return BestWorkerResponse{
		WorkerID: result.Worker.ID,
		Score:    result.Score,
		Details:  ToMatchDetails(result.Details),
	}
}

func ToCandidateResponses(results []matching.Result) []CandidateResponse {
	responses := make([]CandidateResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, CandidateResponse{
			WorkerID: r.Worker.ID,
			Name:     r.Worker.Name,
			Score:    r.Score,
			Details:  ToMatchDetails(r.Details),
		})
	}
	return responses
}
