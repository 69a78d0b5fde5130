package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxwellzeha/jonduplastics/middleware"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/services"
)

type ProfileController struct {
	profileService services.ProfileService
}

func NewProfileController(svc services.ProfileService) *ProfileController {
	return &ProfileController{profileService: svc}
}

// GetMe handles GET /profiles/me
func (pc *ProfileController) GetMe(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": services.CodeUnauthorized})
		return
	}
	profile, svcErr := pc.profileService.Get(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

// UpdateMe handles PUT /profiles/me
func (pc *ProfileController) UpdateMe(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": services.CodeUnauthorized})
		return
	}
	var req models.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidRequest(ctx, err)
		return
	}
	profile, svcErr := pc.profileService.Update(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}
