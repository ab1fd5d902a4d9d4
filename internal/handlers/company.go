package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harukimoto/teamtrack-api/internal/dto"
	apierrors "github.com/harukimoto/teamtrack-api/internal/errors"
	"github.com/harukimoto/teamtrack-api/internal/middleware"
	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/services"
)

// CompanyHandler coordinates company and membership HTTP handlers.
type CompanyHandler struct {
	membershipService *services.MembershipService
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(membershipService *services.MembershipService) *CompanyHandler {
	return &CompanyHandler{
		membershipService: membershipService,
	}
}

// ListMyCompanies returns the companies the current user belongs to.
func (h *CompanyHandler) ListMyCompanies(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	memberships, err := h.membershipService.ListCompanies(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list companies")
		return
	}

	companies := make([]dto.CompanyWithRoleDTO, len(memberships))
	for i, membership := range memberships {
		companies[i] = dto.ToCompanyWithRoleDTO(membership)
	}

	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

// GetCompany returns the company loaded by RequireCompanyAccess together
// with its member roster.
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	companyInterface, exists := c.Get("company")
	if !exists {
		apierrors.InternalError(c, "Company not loaded")
		return
	}
	company, ok := companyInterface.(models.Company)
	if !ok {
		apierrors.InternalError(c, "Invalid company data")
		return
	}

	members, err := h.membershipService.ListMembers(company.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list members")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company": dto.ToCompanyDTO(company),
		"members": dto.ToMemberDTOs(members),
	})
}

// UpdateCompany updates the company profile.
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	type UpdateCompanyRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Domain      *string `json:"domain"`
	}

	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid company ID")
		return
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	company, err := h.membershipService.UpdateCompany(companyID, services.UpdateCompanyInput{
		Name:        req.Name,
		Description: req.Description,
		Domain:      req.Domain,
	})
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyDTO(*company))
}

// ListMembers returns the active members of the company.
func (h *CompanyHandler) ListMembers(c *gin.Context) {
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid company ID")
		return
	}

	members, err := h.membershipService.ListMembers(companyID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list members")
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": dto.ToMemberDTOs(members)})
}

// UpdateMemberRole changes a member's company role.
func (h *CompanyHandler) UpdateMemberRole(c *gin.Context) {
	type UpdateRoleRequest struct {
		Role models.Role `json:"role" binding:"required"`
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid company ID")
		return
	}
	targetUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	membership, err := h.membershipService.UpdateRole(companyID, targetUserID, req.Role, actorID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": membership.UserID,
		"role":    membership.Role,
	})
}

// RemoveMember deactivates a member's company membership.
func (h *CompanyHandler) RemoveMember(c *gin.Context) {
	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid company ID")
		return
	}
	targetUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.membershipService.Remove(companyID, targetUserID, actorID); err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// CreateUser creates a user account directly, bypassing the invitation flow.
func (h *CompanyHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Name     string      `json:"name" binding:"required,min=1,max=255"`
		Email    string      `json:"email" binding:"required,email"`
		Password string      `json:"password" binding:"required"`
		Role     models.Role `json:"role" binding:"required"`
		TeamID   *uint64     `json:"team_id"`
	}

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid company ID")
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.membershipService.CreateUserDirectly(services.CreateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		CompanyID: companyID,
		TeamID:    req.TeamID,
		ActorID:   actorID,
	})
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// SearchUsers finds company members by name or email fragment. Clients
// are expected to debounce keystrokes before calling this.
func (h *CompanyHandler) SearchUsers(c *gin.Context) {
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid company ID")
		return
	}

	users, err := h.membershipService.SearchUsers(companyID, c.Query("q"))
	if err != nil {
		apierrors.InternalError(c, "Failed to search users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)})
}

func respondMembershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMembershipNotFound),
		errors.Is(err, services.ErrCompanyNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrRoleChangeDenied),
		errors.Is(err, services.ErrRemoveDenied),
		errors.Is(err, services.ErrCreateUserDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrCannotRemoveYourself),
		errors.Is(err, services.ErrInvalidMembershipRole),
		errors.Is(err, services.ErrCompanyNameRequired),
		errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
