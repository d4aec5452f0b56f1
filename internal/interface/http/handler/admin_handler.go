package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigwork-backend/internal/interface/http/dto"
	"github.com/ignatzorin/gigwork-backend/internal/interface/http/response"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/analytics"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/task"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/worker"
)

// AdminHandler: вход администратора, допуск работников и аналитика.
type AdminHandler struct {
	loginUC        *worker.AdminLoginUseCase
	listWorkersUC  *worker.ListWorkersUseCase
	getWorkerUC    *worker.GetWorkerUseCase
	changeStatusUC *worker.ChangeStatusUseCase
	predictUC      *worker.PredictHoursUseCase
	overviewUC     *analytics.OverviewUseCase
	seedUC         *task.SeedTasksUseCase
}

func NewAdminHandler(
	loginUC *worker.AdminLoginUseCase,
	listWorkersUC *worker.ListWorkersUseCase,
	getWorkerUC *worker.GetWorkerUseCase,
	changeStatusUC *worker.ChangeStatusUseCase,
	predictUC *worker.PredictHoursUseCase,
	overviewUC *analytics.OverviewUseCase,
	seedUC *task.SeedTasksUseCase,
) *AdminHandler {
	return &AdminHandler{
		loginUC:        loginUC,
		listWorkersUC:  listWorkersUC,
		getWorkerUC:    getWorkerUC,
		changeStatusUC: changeStatusUC,
		predictUC:      predictUC,
		overviewUC:     overviewUC,
		seedUC:         seedUC,
	}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	result, err := h.loginUC.Execute(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToAuthResponse(result))
}

// ListWorkers обрабатывает GET /admin/workers?status=pending.
func (h *AdminHandler) ListWorkers(c *gin.Context) {
	workers, err := h.listWorkersUC.Execute(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWorkerResponses(workers))
}

func (h *AdminHandler) GetWorker(c *gin.Context) {
	workerID, ok := paramUUID(c, "id", "некорректный ID работника")
	if !ok {
		return
	}

	w, err := h.getWorkerUC.Execute(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWorkerResponse(w))
}

func (h *AdminHandler) ApproveWorker(c *gin.Context) {
	workerID, ok := paramUUID(c, "id", "некорректный ID работника")
	if !ok {
		return
	}

	w, err := h.changeStatusUC.Approve(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWorkerResponse(w))
}

func (h *AdminHandler) RejectWorker(c *gin.Context) {
	workerID, ok := paramUUID(c, "id", "некорректный ID работника")
	if !ok {
		return
	}

	w, err := h.changeStatusUC.Reject(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWorkerResponse(w))
}

func (h *AdminHandler) PredictWorkerHours(c *gin.Context) {
	workerID, ok := paramUUID(c, "id", "некорректный ID работника")
	if !ok {
		return
	}

	hours, err := h.predictUC.Execute(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.PredictionResponse{WorkerID: workerID, PredictedHours: hours})
}

func (h *AdminHandler) Analytics(c *gin.Context) {
	overview, err := h.overviewUC.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, overview)
}

// Seed создаёт демонстрационные задачи. Роут регистрируется только в development.
func (h *AdminHandler) Seed(c *gin.Context) {
	tasks, err := h.seedUC.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTaskResponses(tasks))
}
