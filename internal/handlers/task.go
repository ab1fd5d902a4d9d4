package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harukimoto/teamtrack-api/internal/dto"
	apierrors "github.com/harukimoto/teamtrack-api/internal/errors"
	"github.com/harukimoto/teamtrack-api/internal/middleware"
	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/services"
	"github.com/harukimoto/teamtrack-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// taskWriteRequest is the JSON body shared by task and subtask creation.
type taskWriteRequest struct {
	Title          string     `json:"title" binding:"required,min=1,max=255"`
	Description    string     `json:"description" binding:"max=5000"`
	Link           string     `json:"link" binding:"max=2048"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
	AssignedUserID *uint64    `json:"assigned_user_id"`
	AssignedTeamID *uint64    `json:"assigned_team_id"`
}

func (r taskWriteRequest) toInput(companyID, creatorID uint64) services.CreateTaskInput {
	return services.CreateTaskInput{
		Title:          r.Title,
		Description:    r.Description,
		Link:           r.Link,
		Status:         models.TaskStatus(r.Status),
		Priority:       models.TaskPriority(r.Priority),
		DueDate:        r.DueDate,
		EstimatedHours: r.EstimatedHours,
		AssignedUserID: r.AssignedUserID,
		AssignedTeamID: r.AssignedTeamID,
		CompanyID:      companyID,
		CreatorID:      creatorID,
	}
}

// ListTasks returns tasks across the user's companies, filtered and
// paginated.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.ListTasksInput{
		UserID:        userID,
		AssignedToMe:  c.Query("assigned_to_me") == "true",
		CreatedByMe:   c.Query("created_by_me") == "true",
		TopLevelOnly:  c.Query("top_level") == "true",
		DueToday:      c.Query("due_today") == "true",
		SortByDueDate: c.Query("sort") == "due_date",
	}

	if companyIDStr := c.Query("company_id"); companyIDStr != "" {
		companyID, err := strconv.ParseUint(companyIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid company ID")
			return
		}
		input.CompanyID = &companyID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		priority := models.TaskPriority(priorityStr)
		input.Priority = &priority
	}

	pagination := utils.GetPaginationParams(c)
	input.Page = pagination.Page
	input.PageSize = pagination.Limit

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, input.Page, input.PageSize, total))
}

// CreateTask creates a new task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		taskWriteRequest
		CompanyID uint64 `json:"company_id" binding:"required"`
	}

	creatorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(req.toInput(req.CompanyID, creatorID))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a task with its responses and subtasks.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask updates task fields.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Title          *string    `json:"title"`
		Description    *string    `json:"description"`
		Link           *string    `json:"link"`
		Priority       *string    `json:"priority"`
		DueDate        *time.Time `json:"due_date"`
		ClearDueDate   bool       `json:"clear_due_date"`
		EstimatedHours *float64   `json:"estimated_hours"`
		AssignedUserID *uint64    `json:"assigned_user_id"`
		AssignedTeamID *uint64    `json:"assigned_team_id"`
		Unassign       bool       `json:"unassign"`
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Link:           req.Link,
		DueDate:        req.DueDate,
		ClearDueDate:   req.ClearDueDate,
		EstimatedHours: req.EstimatedHours,
		AssignedUserID: req.AssignedUserID,
		AssignedTeamID: req.AssignedTeamID,
		Unassign:       req.Unassign,
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(taskID, input, actorID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateStatus sets the task's status.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateStatus(taskID, models.TaskStatus(req.Status), actorID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task. Its subtasks become top-level tasks.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(taskID, actorID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AddResponse appends a response to a task.
func (h *TaskHandler) AddResponse(c *gin.Context) {
	type AddResponseRequest struct {
		Comment      string  `json:"comment" binding:"max=5000"`
		StatusUpdate *string `json:"status_update"`
		TimeLogged   float64 `json:"time_logged"`
	}

	authorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req AddResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.AddResponseInput{
		TaskID:     taskID,
		AuthorID:   authorID,
		Comment:    req.Comment,
		TimeLogged: req.TimeLogged,
	}
	if req.StatusUpdate != nil {
		status := models.TaskStatus(*req.StatusUpdate)
		input.StatusUpdate = &status
	}

	response, err := h.taskService.AddResponse(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskResponseDTO(*response))
}

// ListResponses lists a task's responses, oldest first.
func (h *TaskHandler) ListResponses(c *gin.Context) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	responses, err := h.taskService.ListResponses(taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"responses": dto.ToTaskResponseDTOs(responses)})
}

// ListSubtasks lists a task's direct subtasks.
func (h *TaskHandler) ListSubtasks(c *gin.Context) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	subtasks, err := h.taskService.ListSubtasks(taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	items := make([]dto.TaskDTO, len(subtasks))
	for i, subtask := range subtasks {
		items[i] = dto.ToTaskDTO(subtask)
	}

	c.JSON(http.StatusOK, gin.H{"subtasks": items})
}

// CreateSubtask creates a task nested under the given parent.
func (h *TaskHandler) CreateSubtask(c *gin.Context) {
	creatorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	parentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var req taskWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// Company is inherited from the parent inside the service.
	task, err := h.taskService.CreateSubtask(parentID, req.toInput(0, creatorID))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidTaskPriority),
		errors.Is(err, services.ErrAssigneeConflict),
		errors.Is(err, services.ErrAssigneeNotMember),
		errors.Is(err, services.ErrAssignedTeamInvalid),
		errors.Is(err, services.ErrResponseEmpty),
		errors.Is(err, services.ErrNegativeTimeLogged):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotCompanyMember),
		errors.Is(err, services.ErrTaskPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
