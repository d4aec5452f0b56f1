package matching

import "github.com/ignatzorin/gigwork-backend/internal/domain/entity"

// IsRecommendable сообщает, открыта ли задача для отклика.
func IsRecommendable(task *entity.Task) bool {
	return task.Status.IsOpen()
}

// IsEligibleWorker сообщает, одобрен ли работник и закрыл ли он хотя бы одну смену.
func IsEligibleWorker(worker *entity.Worker) bool {
	return worker.IsAccepted() && worker.HasCompletedSession()
}

// FilterRecommendable оставляет открытые задачи, с которыми у работника есть общий навык.
func FilterRecommendable(worker *entity.Worker, tasks []*entity.Task) []*entity.Task {
	result := make([]*entity.Task, 0, len(tasks))
	for _, task := range tasks {
		if IsRecommendable(task) && SharesSkill(worker, task) {
			result = append(result, task)
		}
	}
	return result
}

// FilterEligibleWorkers оставляет работников, которых можно предлагать на задачу.
func FilterEligibleWorkers(workers []*entity.Worker) []*entity.Worker {
	result := make([]*entity.Worker, 0, len(workers))
	for _, worker := range workers {
		if IsEligibleWorker(worker) {
			result = append(result, worker)
		}
	}
	return result
}
