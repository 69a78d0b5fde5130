package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxwellzeha/jonduplastics/database"
	"github.com/maxwellzeha/jonduplastics/services"
)

// respondError renders a ServiceError. The not-provisioned error carries the
// remediation script so clients can show it without a second request.
func respondError(ctx *gin.Context, svcErr *services.ServiceError) {
	body := gin.H{"error": svcErr.Message, "code": svcErr.Code}
	if svcErr.Code == services.CodeBackendNotProvisioned {
		body["setup_sql"] = database.SetupSQL
	}
	ctx.JSON(svcErr.StatusCode, body)
}

func invalidRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "code": services.CodeInvalidRequest, "details": err.Error()})
}
