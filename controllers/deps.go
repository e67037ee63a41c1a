package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"djagency-backend/config"
	"djagency-backend/models"
	"djagency-backend/services"
	"djagency-backend/utils"
)

// Dependencies are the collaborators handlers need besides config.DB
type Dependencies struct {
	JWT           config.JWTConfig
	SecureCookies bool
	Storage       services.ObjectStorage
	Hub           *services.Hub
	Shares        *services.ShareService
	Overdue       *services.OverdueService
}

var deps Dependencies

// Setup installs the handler dependencies, called once by routes.SetupRouter
func Setup(d Dependencies) {
	if d.Hub == nil {
		d.Hub = services.NewHub(0)
	}
	deps = d
}

// parseID reads a uuid path parameter, responding 400 when malformed
func parseID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "ID de "+label+" inválido")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body into input, responding 400 on failure
func bindJSON(c *gin.Context, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Dados inválidos: "+err.Error())
		return false
	}
	return true
}

func publish(c *gin.Context, table, changeType string, record interface{}) {
	deps.Hub.Publish(c.Request.Context(), table, changeType, record)
}

// isAdmin reports whether the caller authenticated as an admin
func isAdmin(c *gin.Context) bool {
	role, _ := utils.CurrentRole(c)
	return role == models.RoleAdmin
}
