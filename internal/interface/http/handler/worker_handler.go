package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigwork-backend/internal/interface/http/dto"
	"github.com/ignatzorin/gigwork-backend/internal/interface/http/response"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/task"
	"github.com/ignatzorin/gigwork-backend/internal/usecase/worker"
)

// WorkerHandler обслуживает регистрацию, вход и личный кабинет работника.
type WorkerHandler struct {
	registerUC     *worker.RegisterWorkerUseCase
	loginUC        *worker.LoginWorkerUseCase
	getWorkerUC    *worker.GetWorkerUseCase
	sessionUC      *worker.SessionUseCase
	predictUC      *worker.PredictHoursUseCase
	recommendUC    *task.RecommendTasksUseCase
	workerTasksUC  *task.WorkerTasksUseCase
	maxUploadBytes int64
}

func NewWorkerHandler(
	registerUC *worker.RegisterWorkerUseCase,
	loginUC *worker.LoginWorkerUseCase,
	getWorkerUC *worker.GetWorkerUseCase,
	sessionUC *worker.SessionUseCase,
	predictUC *worker.PredictHoursUseCase,
	recommendUC *task.RecommendTasksUseCase,
	workerTasksUC *task.WorkerTasksUseCase,
	maxUploadBytes int64,
) *WorkerHandler {
	return &WorkerHandler{
		registerUC:     registerUC,
		loginUC:        loginUC,
		getWorkerUC:    getWorkerUC,
		sessionUC:      sessionUC,
		predictUC:      predictUC,
		recommendUC:    recommendUC,
		workerTasksUC:  workerTasksUC,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register принимает JSON или multipart/form-data с файлом photo.
func (h *WorkerHandler) Register(c *gin.Context) {
	var (
		input worker.RegisterWorkerInput
		ok    bool
	)
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		input, ok = h.bindMultipart(c)
	} else {
		input, ok = h.bindJSON(c)
	}
	if !ok {
		return
	}
	if input.Photo != nil {
		if closer, isCloser := input.Photo.Content.(interface{ Close() error }); isCloser {
			defer closer.Close()
		}
	}

	created, err := h.registerUC.Execute(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToWorkerResponse(created))
}

func (h *WorkerHandler) bindJSON(c *gin.Context) (worker.RegisterWorkerInput, bool) {
	var req dto.RegisterWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return worker.RegisterWorkerInput{}, false
	}

	input, err := req.ToInput()
	if err != nil {
		response.BadRequest(c, "некорректный формат навыков")
		return worker.RegisterWorkerInput{}, false
	}
	return input, true
}

func (h *WorkerHandler) bindMultipart(c *gin.Context) (worker.RegisterWorkerInput, bool) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
	}
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		response.BadRequest(c, "некорректная форма или слишком большой файл")
		return worker.RegisterWorkerInput{}, false
	}

	skills, err := dto.ParseFormSkills(c.PostForm("skills"))
	if err != nil {
		response.BadRequest(c, "некорректный формат навыков")
		return worker.RegisterWorkerInput{}, false
	}
	availability, err := dto.ParseFormAvailability(c.PostForm("availability"))
	if err != nil {
		response.BadRequest(c, "некорректный формат графика")
		return worker.RegisterWorkerInput{}, false
	}

	input := worker.RegisterWorkerInput{
		Name:               c.PostForm("name"),
		Phone:              c.PostForm("phone"),
		Username:           c.PostForm("username"),
		Password:           c.PostForm("password"),
		Skills:             skills,
		Availability:       availability,
		WorkStart:          c.PostForm("workStart"),
		WorkEnd:            c.PostForm("workEnd"),
		PreferredTaskTypes: dto.SplitList(c.PostForm("preferredTaskTypes")),
	}

	fileHeader, err := c.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		response.BadRequest(c, "не удалось прочитать фотографию")
		return worker.RegisterWorkerInput{}, false
	default:
		file, err := fileHeader.Open()
		if err != nil {
			response.BadRequest(c, "не удалось прочитать фотографию")
			return worker.RegisterWorkerInput{}, false
		}
		input.Photo = &worker.PhotoInput{FileName: fileHeader.Filename, Content: file}
	}

	return input, true
}

func (h *WorkerHandler) Login(c *gin.Context) {
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

func (h *WorkerHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	w, err := h.getWorkerUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWorkerResponse(w))
}

func (h *WorkerHandler) StartSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	session, err := h.sessionUC.StartSession(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToWorkSessionDTO(session))
}

func (h *WorkerHandler) StopSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	session, err := h.sessionUC.StopSession(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWorkSessionDTO(session))
}

func (h *WorkerHandler) StartBreak(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	br, err := h.sessionUC.StartBreak(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToBreakDTO(br))
}

func (h *WorkerHandler) EndBreak(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	br, err := h.sessionUC.EndBreak(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBreakDTO(br))
}

func (h *WorkerHandler) RecommendedTasks(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	recommendations, err := h.recommendUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToRecommendationResponses(recommendations))
}

func (h *WorkerHandler) ActiveTasks(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	tasks, err := h.workerTasksUC.Active(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponses(tasks))
}

func (h *WorkerHandler) CompletedTasks(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	tasks, err := h.workerTasksUC.Completed(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTaskResponses(tasks))
}

func (h *WorkerHandler) Stats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	stats, err := h.workerTasksUC.Stats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

func (h *WorkerHandler) PredictMyHours(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	hours, err := h.predictUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.PredictionResponse{WorkerID: userID, PredictedHours: hours})
}
