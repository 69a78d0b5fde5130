package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxwellzeha/jonduplastics/middleware"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/services"
)

type InquiryController struct {
	inquiryService services.InquiryService
}

func NewInquiryController(svc services.InquiryService) *InquiryController {
	return &InquiryController{inquiryService: svc}
}

// Submit handles POST /inquiries
func (ic *InquiryController) Submit(ctx *gin.Context) {
	var req models.InquiryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidRequest(ctx, err)
		return
	}
	resp, svcErr := ic.inquiryService.Submit(ctx.Request.Context(), middleware.OptionalUserID(ctx), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
