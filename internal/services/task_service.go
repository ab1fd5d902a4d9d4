package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/policy"
	"github.com/harukimoto/teamtrack-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTitleRequired        = errors.New("title is required")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
	ErrInvalidTaskPriority  = errors.New("invalid task priority")
	ErrAssigneeConflict     = errors.New("task cannot be assigned to both a user and a team")
	ErrAssigneeNotMember    = errors.New("assigned user is not an active member of the company")
	ErrAssignedTeamInvalid  = errors.New("assigned team does not belong to the company")
	ErrNotCompanyMember     = errors.New("user is not a member of the company")
	ErrTaskPermissionDenied = errors.New("only the creator or assigned user can modify this task")
	ErrResponseEmpty        = errors.New("a response needs a comment, a status update, or logged time")
	ErrNegativeTimeLogged   = errors.New("logged time cannot be negative")
)

// TaskService handles task lifecycle business logic: creation, status
// changes, responses with time accrual, subtasks, and deletion.
type TaskService struct {
	taskRepo      repository.TaskRepository
	companyRepo   repository.CompanyRepository
	teamRepo      repository.TeamRepository
	notifications *NotificationService
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, companyRepo repository.CompanyRepository, teamRepo repository.TeamRepository, notifications *NotificationService) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		companyRepo:   companyRepo,
		teamRepo:      teamRepo,
		notifications: notifications,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title          string
	Description    string
	Link           string
	Status         models.TaskStatus
	Priority       models.TaskPriority
	DueDate        *time.Time
	EstimatedHours *float64
	AssignedUserID *uint64
	AssignedTeamID *uint64
	CompanyID      uint64
	CreatorID      uint64
}

// UpdateTaskInput represents input for updating task fields.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Link           *string
	Priority       *models.TaskPriority
	DueDate        *time.Time
	ClearDueDate   bool
	EstimatedHours *float64
	AssignedUserID *uint64
	AssignedTeamID *uint64
	Unassign       bool
}

// ListTasksInput represents filters for listing tasks.
type ListTasksInput struct {
	UserID         uint64
	CompanyID      *uint64
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	AssignedToMe   bool
	CreatedByMe    bool
	TopLevelOnly   bool
	DueToday       bool
	SortByDueDate  bool
	Page           int
	PageSize       int
}

// AddResponseInput represents input for appending a task response.
type AddResponseInput struct {
	TaskID       uint64
	AuthorID     uint64
	Comment      string
	StatusUpdate *models.TaskStatus
	TimeLogged   float64
}

// CreateTask creates a new task. The assignee may be a user or a team,
// never both; unassigned tasks are valid. Status defaults to Pending and
// priority to Medium.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if input.AssignedUserID != nil && input.AssignedTeamID != nil {
		return nil, ErrAssigneeConflict
	}

	if err := s.ensureCompanyMember(input.CompanyID, input.CreatorID); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	} else if !policy.ValidStatus(input.Status) {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	} else if !policy.ValidPriority(input.Priority) {
		return nil, ErrInvalidTaskPriority
	}

	if input.AssignedUserID != nil {
		if _, err := s.companyRepo.FindActiveMembership(input.CompanyID, *input.AssignedUserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeNotMember
			}
			return nil, fmt.Errorf("failed to verify assignee: %w", err)
		}
	}
	if input.AssignedTeamID != nil {
		team, err := s.teamRepo.FindByID(*input.AssignedTeamID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssignedTeamInvalid
			}
			return nil, fmt.Errorf("failed to verify team: %w", err)
		}
		if team.CompanyID != input.CompanyID {
			return nil, ErrAssignedTeamInvalid
		}
	}

	task := &models.Task{
		Title:          input.Title,
		Description:    input.Description,
		Link:           input.Link,
		Status:         input.Status,
		Priority:       input.Priority,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		AssignedUserID: input.AssignedUserID,
		AssignedTeamID: input.AssignedTeamID,
		CompanyID:      input.CompanyID,
		CreatorID:      input.CreatorID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.AssignedUserID != nil && *task.AssignedUserID != task.CreatorID {
		s.notifications.Dispatch(*task.AssignedUserID, models.NotificationTaskAssigned,
			"New task assigned", fmt.Sprintf("You have been assigned to %q.", task.Title),
			map[string]uint64{"task_id": task.ID})
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "AssignedUser", "AssignedTeam")
}

// CreateSubtask creates a task nested under a parent. Validation matches
// CreateTask; the company is inherited from the parent. The parent's own
// nesting level is deliberately not checked (one level is convention,
// not a constraint).
func (s *TaskService) CreateSubtask(parentID uint64, input CreateTaskInput) (*models.Task, error) {
	parent, err := s.taskRepo.FindByID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find parent task: %w", err)
	}

	input.CompanyID = parent.CompanyID

	task, err := s.CreateTask(input)
	if err != nil {
		return nil, err
	}

	task.ParentTaskID = &parent.ID
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to link subtask: %w", err)
	}

	return task, nil
}

// GetTask returns a task with its related data.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "AssignedUser", "AssignedTeam", "Responses", "Responses.Author", "Subtasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// ListTasks returns tasks accessible to a user based on the provided filters.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	companyIDs, err := s.resolveAccessibleCompanyIDs(input.UserID, input.CompanyID)
	if err != nil {
		return nil, 0, err
	}

	if len(companyIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	filter := repository.TaskFilter{
		CompanyIDs:    companyIDs,
		Status:        input.Status,
		Priority:      input.Priority,
		TopLevelOnly:  input.TopLevelOnly,
		SortByDueDate: input.SortByDueDate,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}

	if input.AssignedToMe {
		filter.AssignedUserID = &input.UserID
	}
	if input.CreatedByMe {
		filter.CreatorID = &input.UserID
	}
	if input.DueToday {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateStatus sets the task's status. Transitions are free-form: any
// authorized actor may move a task to any status, including back to
// Pending. Concurrent writers resolve last-write-wins.
func (s *TaskService) UpdateStatus(taskID uint64, newStatus models.TaskStatus, actorID uint64) (*models.Task, error) {
	if !policy.ValidStatus(newStatus) {
		return nil, ErrInvalidTaskStatus
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanEditTask(task, actorID) {
		return nil, ErrTaskPermissionDenied
	}

	task.Status = newStatus
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	if task.CreatorID != actorID {
		s.notifications.Dispatch(task.CreatorID, models.NotificationTaskStatusChanged,
			"Task status changed", fmt.Sprintf("%q is now %s.", task.Title, newStatus),
			map[string]uint64{"task_id": task.ID})
	}

	return task, nil
}

// UpdateTask updates task fields. Requires edit permission.
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanEditTask(task, actorID) {
		return nil, ErrTaskPermissionDenied
	}

	if input.AssignedUserID != nil && input.AssignedTeamID != nil {
		return nil, ErrAssigneeConflict
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Link != nil {
		task.Link = *input.Link
	}
	if input.Priority != nil {
		if !policy.ValidPriority(*input.Priority) {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = input.EstimatedHours
	}
	if input.Unassign {
		task.AssignedUserID = nil
		task.AssignedTeamID = nil
	} else if input.AssignedUserID != nil {
		if _, err := s.companyRepo.FindActiveMembership(task.CompanyID, *input.AssignedUserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeNotMember
			}
			return nil, fmt.Errorf("failed to verify assignee: %w", err)
		}
		task.AssignedUserID = input.AssignedUserID
		task.AssignedTeamID = nil
	} else if input.AssignedTeamID != nil {
		team, err := s.teamRepo.FindByID(*input.AssignedTeamID)
		if err != nil || team.CompanyID != task.CompanyID {
			return nil, ErrAssignedTeamInvalid
		}
		task.AssignedTeamID = input.AssignedTeamID
		task.AssignedUserID = nil
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "AssignedUser", "AssignedTeam")
}

// AddResponse appends a response to a task. At least one of comment,
// status update, or logged time must be present. A status update moves
// the task to that status and logged time accrues onto actual_hours,
// both in the same transaction as the insert.
func (s *TaskService) AddResponse(input AddResponseInput) (*models.TaskResponse, error) {
	comment := strings.TrimSpace(input.Comment)
	if comment == "" && input.StatusUpdate == nil && input.TimeLogged == 0 {
		return nil, ErrResponseEmpty
	}
	if input.TimeLogged < 0 {
		return nil, ErrNegativeTimeLogged
	}
	if input.StatusUpdate != nil && !policy.ValidStatus(*input.StatusUpdate) {
		return nil, ErrInvalidTaskStatus
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.ensureCompanyMember(task.CompanyID, input.AuthorID); err != nil {
		return nil, err
	}

	response := &models.TaskResponse{
		TaskID:       task.ID,
		AuthorID:     input.AuthorID,
		Comment:      comment,
		StatusUpdate: input.StatusUpdate,
		TimeLogged:   input.TimeLogged,
	}

	if err := s.taskRepo.AddResponse(response); err != nil {
		return nil, fmt.Errorf("failed to add response: %w", err)
	}

	if task.CreatorID != input.AuthorID {
		s.notifications.Dispatch(task.CreatorID, models.NotificationTaskResponse,
			"New task activity", fmt.Sprintf("%q received an update.", task.Title),
			map[string]uint64{"task_id": task.ID, "response_id": response.ID})
	}

	return response, nil
}

// ListResponses lists a task's responses, oldest first.
func (s *TaskService) ListResponses(taskID uint64) ([]models.TaskResponse, error) {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	responses, err := s.taskRepo.ListResponses(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

// ListSubtasks lists a task's direct subtasks, oldest first.
func (s *TaskService) ListSubtasks(taskID uint64) ([]models.Task, error) {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	subtasks, err := s.taskRepo.ListSubtasks(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	return subtasks, nil
}

// DeleteTask removes a task together with its responses. Subtasks are
// detached and surface as top-level tasks rather than being deleted.
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanEditTask(task, actorID) {
		return ErrTaskPermissionDenied
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// resolveAccessibleCompanyIDs returns the company IDs the user can access.
func (s *TaskService) resolveAccessibleCompanyIDs(userID uint64, companyID *uint64) ([]uint64, error) {
	if companyID != nil {
		if err := s.ensureCompanyMember(*companyID, userID); err != nil {
			return nil, err
		}
		return []uint64{*companyID}, nil
	}

	memberships, err := s.companyRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memberships: %w", err)
	}

	companyIDs := make([]uint64, 0, len(memberships))
	for _, m := range memberships {
		companyIDs = append(companyIDs, m.CompanyID)
	}

	return companyIDs, nil
}

// ensureCompanyMember verifies that a user holds an active membership.
func (s *TaskService) ensureCompanyMember(companyID, userID uint64) error {
	_, err := s.companyRepo.FindActiveMembership(companyID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotCompanyMember
		}
		return fmt.Errorf("failed to verify company membership: %w", err)
	}
	return nil
}
