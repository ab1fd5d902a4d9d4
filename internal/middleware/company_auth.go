package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harukimoto/teamtrack-api/internal/database"
	apierrors "github.com/harukimoto/teamtrack-api/internal/errors"
	"github.com/harukimoto/teamtrack-api/internal/models"
	"github.com/harukimoto/teamtrack-api/internal/policy"
)

// RequireCompanyAccess checks if the user is an active member of the company
func RequireCompanyAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		companyIDStr := c.Param("id")
		companyID, err := strconv.ParseUint(companyIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid company ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var company models.Company
		if err := database.GetDB().First(&company, companyID).Error; err != nil {
			apierrors.NotFound(c, "Company not found")
			c.Abort()
			return
		}

		// 404 instead of 403 so non-members cannot probe company existence
		var membership models.Membership
		err = database.GetDB().
			Where("company_id = ? AND user_id = ? AND is_active = ?", companyID, userID, true).
			First(&membership).Error
		if err != nil {
			apierrors.NotFound(c, "Company not found")
			c.Abort()
			return
		}

		c.Set("company", company)
		c.Set("membership", membership)
		c.Next()
	}
}

// RequireCompanyManager checks if the user may manage members of the
// company (admin or owner). Must run after RequireCompanyAccess.
func RequireCompanyManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		membershipInterface, exists := c.Get("membership")
		if !exists {
			apierrors.Forbidden(c, "Company access required")
			c.Abort()
			return
		}

		membership, ok := membershipInterface.(models.Membership)
		if !ok {
			apierrors.InternalError(c, "Invalid membership data")
			c.Abort()
			return
		}

		if !policy.CanManageUsers(membership.Role) {
			apierrors.Forbidden(c, "Only admins and owners can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetMembership retrieves the membership loaded by RequireCompanyAccess
func GetMembership(c *gin.Context) (models.Membership, bool) {
	membershipInterface, exists := c.Get("membership")
	if !exists {
		return models.Membership{}, false
	}
	membership, ok := membershipInterface.(models.Membership)
	return membership, ok
}
