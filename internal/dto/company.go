package dto

import (
	"time"

	"github.com/harukimoto/teamtrack-api/internal/models"
)

// CompanyDTO represents a company in API responses
type CompanyDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Domain      string `json:"domain,omitempty"`
}

// CompanyWithRoleDTO represents a company with the user's role
type CompanyWithRoleDTO struct {
	CompanyDTO
	Role models.Role `json:"role"`
}

// MemberDTO represents an active member of a company
type MemberDTO struct {
	User     UserDTO     `json:"user"`
	Role     models.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
}

// TeamMemberDTO represents a member of a team
type TeamMemberDTO struct {
	User     UserDTO `json:"user"`
	IsLeader bool    `json:"is_leader"`
}

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID          uint64          `json:"id"`
	CompanyID   uint64          `json:"company_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	CreatorID   uint64          `json:"creator_id"`
	Members     []TeamMemberDTO `json:"members,omitempty"`
}

// ToCompanyDTO converts a Company model to CompanyDTO
func ToCompanyDTO(company models.Company) CompanyDTO {
	return CompanyDTO{
		ID:          company.ID,
		Name:        company.Name,
		Description: company.Description,
		Domain:      company.Domain,
	}
}

// ToCompanyWithRoleDTO converts a membership to a company DTO with role
func ToCompanyWithRoleDTO(membership models.Membership) CompanyWithRoleDTO {
	return CompanyWithRoleDTO{
		CompanyDTO: ToCompanyDTO(membership.Company),
		Role:       membership.Role,
	}
}

// ToMemberDTO converts a membership to MemberDTO
func ToMemberDTO(membership models.Membership) MemberDTO {
	return MemberDTO{
		User:     ToUserDTO(membership.User),
		Role:     membership.Role,
		JoinedAt: membership.JoinedAt,
	}
}

// ToMemberDTOs converts a slice of memberships
func ToMemberDTOs(memberships []models.Membership) []MemberDTO {
	dtos := make([]MemberDTO, len(memberships))
	for i, membership := range memberships {
		dtos[i] = ToMemberDTO(membership)
	}
	return dtos
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	return TeamDTO{
		ID:          team.ID,
		CompanyID:   team.CompanyID,
		Name:        team.Name,
		Description: team.Description,
		CreatorID:   team.CreatorID,
	}
}

// ToTeamDetailDTO converts a team and its roster to TeamDTO
func ToTeamDetailDTO(team models.Team, members []models.TeamMembership) TeamDTO {
	dto := ToTeamDTO(team)
	dto.Members = make([]TeamMemberDTO, len(members))
	for i, member := range members {
		dto.Members[i] = TeamMemberDTO{
			User:     ToUserDTO(member.User),
			IsLeader: member.IsLeader,
		}
	}
	return dto
}
