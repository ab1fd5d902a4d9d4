// Package policy is the single source of truth for role-based
// authorization decisions. Every function is pure so the same checks can
// gate HTTP handlers and service mutations without touching the database.
package policy

import "github.com/harukimoto/teamtrack-api/internal/models"

// roleRank orders roles by ascending privilege.
var roleRank = map[models.Role]int{
	models.RoleMember: 1,
	models.RoleLeader: 2,
	models.RoleAdmin:  3,
	models.RoleOwner:  4,
}

// ValidRole reports whether r is a known role value.
func ValidRole(r models.Role) bool {
	_, ok := roleRank[r]
	return ok
}

// CanManageUsers reports whether a role may invite, create, or remove
// company members.
func CanManageUsers(r models.Role) bool {
	return r == models.RoleAdmin || r == models.RoleOwner
}

// CanAssignRole reports whether an actor may grant newRole to someone.
// Only an owner may hand out admin or owner; an admin is limited to
// leader and member.
func CanAssignRole(actor, newRole models.Role) bool {
	switch actor {
	case models.RoleOwner:
		return ValidRole(newRole)
	case models.RoleAdmin:
		return newRole == models.RoleLeader || newRole == models.RoleMember
	default:
		return false
	}
}

// CanModifyMember reports whether an actor may change or revoke the
// membership of a target currently holding targetRole. Admins cannot
// touch other admins or owners.
func CanModifyMember(actor, targetRole models.Role) bool {
	switch actor {
	case models.RoleOwner:
		return true
	case models.RoleAdmin:
		return roleRank[targetRole] < roleRank[models.RoleAdmin]
	default:
		return false
	}
}

// CanChangeRole combines both directions of a role change: the actor
// must be allowed to touch the target at its current role and to grant
// the new one.
func CanChangeRole(actor, targetRole, newRole models.Role) bool {
	return CanModifyMember(actor, targetRole) && CanAssignRole(actor, newRole)
}

// CanEditTask reports whether actorID may mutate or delete the task.
// Only the creator and the directly assigned user qualify; assignment to
// a team grants no edit rights to its members.
func CanEditTask(task *models.Task, actorID uint64) bool {
	if task.CreatorID == actorID {
		return true
	}
	return task.AssignedUserID != nil && *task.AssignedUserID == actorID
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s models.TaskStatus) bool {
	switch s {
	case models.TaskStatusPending, models.TaskStatusAccepted, models.TaskStatusInProgress,
		models.TaskStatusCompleted, models.TaskStatusRejected:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p models.TaskPriority) bool {
	switch p {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh,
		models.TaskPriorityCritical:
		return true
	}
	return false
}
