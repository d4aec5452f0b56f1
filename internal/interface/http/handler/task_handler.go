package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/interface/http/dto"
	"github.com/ignatzorin/gigwork-backend/internal/interface/http/response"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/task"
)

const defaultCandidatesLimit = 10

type TaskHandler struct {
	createUC     *task.CreateTaskUseCase
	getUC        *task.GetTaskUseCase
	listUC       *task.ListTasksUseCase
	publishUC    *task.PublishTaskUseCase
	cancelUC     *task.CancelTaskUseCase
	acceptUC     *task.AcceptTaskUseCase
	assignUC     *task.AssignTaskUseCase
	startUC      *task.StartTaskUseCase
	completeUC   *task.CompleteTaskUseCase
	rateUC       *task.RateTaskUseCase
	candidatesUC *task.CandidatesUseCase
}

// TaskUseCases собирает зависимости TaskHandler.
type TaskUseCases struct {
	Create     *task.CreateTaskUseCase
	Get        *task.GetTaskUseCase
	List       *task.ListTasksUseCase
	Publish    *task.PublishTaskUseCase
	Cancel     *task.CancelTaskUseCase
	Accept     *task.AcceptTaskUseCase
	Assign     *task.AssignTaskUseCase
	Start      *task.StartTaskUseCase
	Complete   *task.CompleteTaskUseCase
	Rate       *task.RateTaskUseCase
	Candidates *task.CandidatesUseCase
}

func NewTaskHandler(uc TaskUseCases) *TaskHandler {
	return &TaskHandler{
		createUC:     uc.Create,
		getUC:        uc.Get,
		listUC:       uc.List,
		publishUC:    uc.Publish,
		cancelUC:     uc.Cancel,
		acceptUC:     uc.Accept,
		assignUC:     uc.Assign,
		startUC:      uc.Start,
		completeUC:   uc.Complete,
		rateUC:       uc.Rate,
		candidatesUC: uc.Candidates,
	}
}

// ListTasks обрабатывает GET /tasks?status=available&skill=Electrician&limit=20&offset=0.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.listUC.Execute(c.Request.Context(), task.ListTasksInput{
		Status: c.Query("status"),
		Skill:  c.Query("skill"),
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponses(tasks))
}

func (h *TaskHandler) ListAvailableTasks(c *gin.Context) {
	tasks, err := h.listUC.Available(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponses(tasks))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := paramUUID(c, "id", "некорректный ID задачи")
	if !ok {
		return
	}

	t, err := h.getUC.Execute(c.Request.Context(), taskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	input, err := req.ToInput()
	if err != nil {
		response.BadRequest(c, "некорректный формат дедлайна")
		return
	}

	created, err := h.createUC.Execute(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTaskResponse(created))
}

func (h *TaskHandler) PublishTask(c *gin.Context) {
	taskID, ok := paramUUID(c, "id", "некорректный ID задачи")
	if !ok {
		return
	}

	t, err := h.publishUC.Execute(c.Request.Context(), taskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

func (h *TaskHandler) CancelTask(c *gin.Context) {
	taskID, ok := paramUUID(c, "id", "некорректный ID задачи")
	if !ok {
		return
	}

	t, err := h.cancelUC.Execute(c.Request.Context(), taskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

func (h *TaskHandler) AcceptTask(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	taskID, ok := paramUUID(c, "id", "некорректный ID задачи")
	if !ok {
		return
	}

	t, err := h.acceptUC.Execute(c.Request.Context(), taskID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

// AssignTask назначает задачу работнику из тела запроса или лучшему кандидату.
func (h *TaskHandler) AssignTask(c *gin.Context) {
	taskID, ok := paramUUID(c, "id", "некорректный ID задачи")
	if !ok {
		return
	}

	var req dto.AssignTaskRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "некорректные данные запроса")
			return
		}
	}
	workerID, err := req.ParseWorkerID()
	if err != nil {
		response.BadRequest(c, "некорректный ID работника")
		return
	}

	t, err := h.assignUC.Execute(c.Request.Context(), taskID, workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

func (h *TaskHandler) StartTask(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	taskID, ok := paramUUID(c, "id", "некорректный ID задачи")
	if !ok {
		return
	}

	t, err := h.startUC.Execute(c.Request.Context(), taskID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

// CompleteTask доступен исполнителю и администратору; для администратора
// проверка исполнителя не выполняется.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}
	taskID, ok := paramUUID(c, "id", "некорректный ID задачи")
	if !ok {
		return
	}

	var req dto.CompleteTaskRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "некорректные данные запроса")
			return
		}
	}

	input := task.CompleteTaskInput{TaskID: taskID, Notes: req.Notes, Rating: req.Rating}
	if getRole(c) != valueobject.RoleAdmin {
		input.ActorID = &userID
	}

	t, err := h.completeUC.Execute(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

func (h *TaskHandler) RateTask(c *gin.Context) {
	taskID, ok := paramUUID(c, "id", "некорректный ID задачи")
	if !ok {
		return
	}

	var req dto.RateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	t, err := h.rateUC.Execute(c.Request.Context(), task.RateTaskInput{
		TaskID:   taskID,
		Rating:   req.Rating,
		Feedback: req.Feedback,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponse(t))
}

// Candidates возвращает подходящих работников по убыванию оценки.
func (h *TaskHandler) Candidates(c *gin.Context) {
	taskID, ok := paramUUID(c, "id", "некорректный ID задачи")
	if !ok {
		return
	}

	results, err := h.candidatesUC.Ranked(c.Request.Context(), taskID, parseIntQuery(c, "limit", defaultCandidatesLimit))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToCandidateResponses(results))
}

func (h *TaskHandler) BestWorker(c *gin.Context) {
	taskID, ok := paramUUID(c, "id", "некорректный ID задачи")
	if !ok {
		return
	}

	result, err := h.candidatesUC.Best(c.Request.Context(), taskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBestWorkerResponse(result))
}
