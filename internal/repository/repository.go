package repository

import (
	"time"

	"github.com/harukimoto/teamtrack-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithCompany creates a user, their company, and the owner
	// membership within a single transaction (registration flow).
	CreateWithCompany(user *models.User, company *models.Company, membership *models.Membership) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// SearchInCompany finds active company members whose name or email
	// matches the query
	SearchInCompany(companyID uint64, query string, limit int) ([]models.User, error)
}

// CompanyRepository defines the interface for company and membership data access
type CompanyRepository interface {
	// Create creates a new company
	Create(company *models.Company) error

	// FindByID finds a company by ID
	FindByID(id uint64) (*models.Company, error)

	// Update updates a company
	Update(company *models.Company) error

	// AddMembership adds a membership row
	AddMembership(membership *models.Membership) error

	// FindActiveMembership finds the active membership for a user in a company
	FindActiveMembership(companyID, userID uint64) (*models.Membership, error)

	// UpdateMembership persists membership changes
	UpdateMembership(membership *models.Membership) error

	// ListMemberships lists active memberships of a company
	ListMemberships(companyID uint64) ([]models.Membership, error)

	// ListMembershipsByUserID lists active memberships a user holds across companies
	ListMembershipsByUserID(userID uint64) ([]models.Membership, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(team *models.Team) error
	FindByID(id uint64) (*models.Team, error)
	Update(team *models.Team) error
	ListByCompany(companyID uint64) ([]models.Team, error)

	AddMember(membership *models.TeamMembership) error
	RemoveMember(teamID, userID uint64) error
	FindMember(teamID, userID uint64) (*models.TeamMembership, error)
	SetLeader(teamID, userID uint64, isLeader bool) error
	ListMembers(teamID uint64) ([]models.TeamMembership, error)
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	Create(invitation *models.Invitation) error
	FindByID(id uint64) (*models.Invitation, error)

	// FindPendingByEmail finds an unaccepted, unexpired invitation for
	// (email, company) if one exists
	FindPendingByEmail(companyID uint64, email string, now time.Time) (*models.Invitation, error)

	Update(invitation *models.Invitation) error

	// Delete hard-deletes an invitation row
	Delete(id uint64) error

	ListByCompany(companyID uint64) ([]models.Invitation, error)

	// Accept marks the invitation accepted and creates the membership
	// (and team membership when present) in one transaction
	Accept(invitation *models.Invitation, membership *models.Membership, teamMembership *models.TeamMembership) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	CompanyIDs     []uint64
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	CreatorID      *uint64
	AssignedUserID *uint64
	AssignedTeamID *uint64
	ParentTaskID   *uint64
	TopLevelOnly   bool
	DueDateFrom    *time.Time
	DueDateTo      *time.Time
	SortByDueDate  bool
	Page           int
	PageSize       int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete removes a task, its responses, and detaches its subtasks
	// in one transaction
	Delete(id uint64) error

	// AddResponse appends a response and applies its status update and
	// logged time to the task in one transaction
	AddResponse(response *models.TaskResponse) error

	// ListResponses lists a task's responses, oldest first
	ListResponses(taskID uint64) ([]models.TaskResponse, error)

	// ListSubtasks lists direct subtasks of a task
	ListSubtasks(parentID uint64) ([]models.Task, error)
}

// PasswordResetRepository defines the interface for password reset token data access
type PasswordResetRepository interface {
	Create(request *models.PasswordResetRequest) error
	FindByToken(token string) (*models.PasswordResetRequest, error)

	// Consume marks the request used and sets the user's new password
	// hash in one transaction
	Consume(request *models.PasswordResetRequest, newPasswordHash string, now time.Time) error
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(notification *models.Notification) error

	// ListActive lists unexpired notifications for a user, newest first
	ListActive(userID uint64, now time.Time, limit int) ([]models.Notification, error)

	// MarkRead sets read_at on a single unread notification owned by the user
	MarkRead(id, userID uint64, now time.Time) error

	// MarkAllRead sets read_at on all unread notifications of the user
	MarkAllRead(userID uint64, now time.Time) error

	// Delete hard-deletes a notification owned by the user
	Delete(id, userID uint64) error
}
