package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TaskHandler holds the task service.
type TaskHandler struct {
	taskService services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(ts services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: ts}
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Task not found.", err.Error()))
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
	case errors.Is(err, services.ErrTaskValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		respondServiceError(c, err, fallback)
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateTask: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	task, err := h.taskService.CreateTask(req, actorID(c))
	if err != nil {
		utils.LogError(err, "CreateTask: Error from taskService.CreateTask")
		h.respondTaskError(c, err, "Failed to create task.")
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetTasks handles GET /tasks?done=true|false.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	var done *bool
	if raw := c.Query("done"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid done query parameter.", "expected true or false, got "+raw))
			return
		}
		done = &parsed
	}

	tasks, err := h.taskService.GetTasks(done)
	if err != nil {
		utils.LogError(err, "GetTasks: Error from taskService.GetTasks")
		h.respondTaskError(c, err, "Failed to fetch tasks.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

// GetTaskByID handles GET /tasks/:id.
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskByID(id)
	if err != nil {
		utils.LogError(err, "GetTaskByID: Error from taskService.GetTaskByID")
		h.respondTaskError(c, err, "Failed to fetch task.")
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/:id.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateTask: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(id, req, actorID(c))
	if err != nil {
		utils.LogError(err, "UpdateTask: Error from taskService.UpdateTask")
		h.respondTaskError(c, err, "Failed to update task.")
		return
	}
	c.JSON(http.StatusOK, task)
}

// SetTaskDone handles PATCH /tasks/:id/done.
func (h *TaskHandler) SetTaskDone(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Done bool `json:"done"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SetTaskDone: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	task, err := h.taskService.SetTaskDone(id, req.Done, actorID(c))
	if err != nil {
		utils.LogError(err, "SetTaskDone: Error from taskService.SetTaskDone")
		h.respondTaskError(c, err, "Failed to update task.")
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(id, actorID(c)); err != nil {
		utils.LogError(err, "DeleteTask: Error from taskService.DeleteTask")
		h.respondTaskError(c, err, "Failed to delete task.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
