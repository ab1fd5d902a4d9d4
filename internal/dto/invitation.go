package dto

import (
	"time"

	"github.com/harukimoto/teamtrack-api/internal/models"
)

// InvitationDTO represents an invitation in API responses
type InvitationDTO struct {
	ID         uint64      `json:"id"`
	Email      string      `json:"email"`
	CompanyID  uint64      `json:"company_id"`
	TeamID     *uint64     `json:"team_id,omitempty"`
	Role       models.Role `json:"role"`
	InviterID  uint64      `json:"inviter_id"`
	Inviter    *UserDTO    `json:"inviter,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
	AcceptedAt *time.Time  `json:"accepted_at"`
	Pending    bool        `json:"pending"`
}

// ToInvitationDTO converts an Invitation model to InvitationDTO
func ToInvitationDTO(invitation models.Invitation) InvitationDTO {
	dto := InvitationDTO{
		ID:         invitation.ID,
		Email:      invitation.Email,
		CompanyID:  invitation.CompanyID,
		TeamID:     invitation.TeamID,
		Role:       invitation.Role,
		InviterID:  invitation.InviterID,
		CreatedAt:  invitation.CreatedAt,
		ExpiresAt:  invitation.ExpiresAt,
		AcceptedAt: invitation.AcceptedAt,
		Pending:    invitation.IsPending(time.Now()),
	}

	if invitation.Inviter.ID != 0 {
		inviter := ToUserDTO(invitation.Inviter)
		dto.Inviter = &inviter
	}

	return dto
}

// ToInvitationDTOs converts a slice of invitations
func ToInvitationDTOs(invitations []models.Invitation) []InvitationDTO {
	dtos := make([]InvitationDTO, len(invitations))
	for i, invitation := range invitations {
		dtos[i] = ToInvitationDTO(invitation)
	}
	return dtos
}
