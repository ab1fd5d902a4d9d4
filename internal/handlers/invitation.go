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

// InvitationHandler coordinates invitation HTTP handlers.
type InvitationHandler struct {
	invitationService *services.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
	}
}

// Invite creates a pending invitation for an email address.
func (h *InvitationHandler) Invite(c *gin.Context) {
	type InviteRequest struct {
		Email  string      `json:"email" binding:"required,email"`
		Role   models.Role `json:"role" binding:"required"`
		TeamID *uint64     `json:"team_id"`
	}

	inviterID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid company ID")
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invitation, err := h.invitationService.Invite(services.InviteInput{
		Email:     req.Email,
		CompanyID: companyID,
		TeamID:    req.TeamID,
		Role:      req.Role,
		InviterID: inviterID,
	})
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvitationDTO(*invitation))
}

// List returns the company's invitations, newest first.
func (h *InvitationHandler) List(c *gin.Context) {
	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid company ID")
		return
	}

	invitations, err := h.invitationService.ListForCompany(companyID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list invitations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": dto.ToInvitationDTOs(invitations)})
}

// Resend refreshes a pending invitation's validity window.
func (h *InvitationHandler) Resend(c *gin.Context) {
	invitationID, err := strconv.ParseUint(c.Param("invitation_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid invitation ID")
		return
	}

	invitation, err := h.invitationService.Resend(invitationID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*invitation))
}

// Cancel deletes a pending invitation. Cancelling one that is already
// gone succeeds.
func (h *InvitationHandler) Cancel(c *gin.Context) {
	invitationID, err := strconv.ParseUint(c.Param("invitation_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid invitation ID")
		return
	}

	if err := h.invitationService.Cancel(invitationID); err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invitation cancelled",
	})
}

// Accept redeems an invitation for the current user.
func (h *InvitationHandler) Accept(c *gin.Context) {
	type AcceptRequest struct {
		InvitationID uint64 `json:"invitation_id" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	membership, err := h.invitationService.Accept(req.InvitationID, userID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company_id": membership.CompanyID,
		"role":       membership.Role,
	})
}

func respondInvitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvitationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvitationEmailEmpty),
		errors.Is(err, services.ErrInvitationInvalidRole),
		errors.Is(err, services.ErrInvitationTeamInvalid),
		errors.Is(err, services.ErrInvitationExpired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInviteNotAuthorized):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrDuplicateInvitation),
		errors.Is(err, services.ErrInvitationAccepted),
		errors.Is(err, services.ErrAlreadyCompanyMember):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
