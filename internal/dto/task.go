package dto

import (
	"time"

	"github.com/harukimoto/teamtrack-api/internal/models"
)

// TaskResponseDTO represents a task response in API responses
type TaskResponseDTO struct {
	ID           uint64             `json:"id"`
	TaskID       uint64             `json:"task_id"`
	AuthorID     uint64             `json:"author_id"`
	Author       *UserDTO           `json:"author,omitempty"`
	Comment      string             `json:"comment,omitempty"`
	StatusUpdate *models.TaskStatus `json:"status_update,omitempty"`
	TimeLogged   float64            `json:"time_logged"`
	CreatedAt    time.Time          `json:"created_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Link           string              `json:"link,omitempty"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.TaskPriority `json:"priority"`
	CompanyID      uint64              `json:"company_id"`
	CreatorID      uint64              `json:"creator_id"`
	AssignedUserID *uint64             `json:"assigned_user_id"`
	AssignedTeamID *uint64             `json:"assigned_team_id"`
	ParentTaskID   *uint64             `json:"parent_task_id"`
	DueDate        *time.Time          `json:"due_date"`
	EstimatedHours *float64            `json:"estimated_hours"`
	ActualHours    float64             `json:"actual_hours"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Creator        *UserDTO            `json:"creator,omitempty"`
	AssignedUser   *UserDTO            `json:"assigned_user,omitempty"`
	AssignedTeam   *TeamDTO            `json:"assigned_team,omitempty"`
	Responses      []TaskResponseDTO   `json:"responses,omitempty"`
	Subtasks       []TaskDTO           `json:"subtasks,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ToTaskResponseDTO converts a TaskResponse model to TaskResponseDTO
func ToTaskResponseDTO(response models.TaskResponse) TaskResponseDTO {
	dto := TaskResponseDTO{
		ID:           response.ID,
		TaskID:       response.TaskID,
		AuthorID:     response.AuthorID,
		Comment:      response.Comment,
		StatusUpdate: response.StatusUpdate,
		TimeLogged:   response.TimeLogged,
		CreatedAt:    response.CreatedAt,
	}

	if response.Author.ID != 0 {
		author := ToUserDTO(response.Author)
		dto.Author = &author
	}

	return dto
}

// ToTaskResponseDTOs converts a slice of task responses
func ToTaskResponseDTOs(responses []models.TaskResponse) []TaskResponseDTO {
	dtos := make([]TaskResponseDTO, len(responses))
	for i, response := range responses {
		dtos[i] = ToTaskResponseDTO(response)
	}
	return dtos
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Link:           task.Link,
		Status:         task.Status,
		Priority:       task.Priority,
		CompanyID:      task.CompanyID,
		CreatorID:      task.CreatorID,
		AssignedUserID: task.AssignedUserID,
		AssignedTeamID: task.AssignedTeamID,
		ParentTaskID:   task.ParentTaskID,
		DueDate:        task.DueDate,
		EstimatedHours: task.EstimatedHours,
		ActualHours:    task.ActualHours,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}

	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}
	if task.AssignedUser != nil && task.AssignedUser.ID != 0 {
		assignedUser := ToUserDTO(*task.AssignedUser)
		dto.AssignedUser = &assignedUser
	}
	if task.AssignedTeam != nil && task.AssignedTeam.ID != 0 {
		assignedTeam := ToTeamDTO(*task.AssignedTeam)
		dto.AssignedTeam = &assignedTeam
	}
	if len(task.Responses) > 0 {
		dto.Responses = ToTaskResponseDTOs(task.Responses)
	}
	if len(task.Subtasks) > 0 {
		dto.Subtasks = make([]TaskDTO, len(task.Subtasks))
		for i, subtask := range task.Subtasks {
			dto.Subtasks[i] = ToTaskDTO(subtask)
		}
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
