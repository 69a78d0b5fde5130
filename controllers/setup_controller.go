package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxwellzeha/jonduplastics/database"
)

// SetupSQL handles GET /setup/sql
func SetupSQL(ctx *gin.Context) {
	ctx.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(database.SetupSQL))
}
