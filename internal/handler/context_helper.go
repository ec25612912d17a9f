package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-hub-api/internal/middleware"
	"github.com/noah-isme/campus-hub-api/internal/models"
	"github.com/noah-isme/campus-hub-api/internal/service"
	appErrors "github.com/noah-isme/campus-hub-api/pkg/errors"
	"github.com/noah-isme/campus-hub-api/pkg/response"
)

func sessionFromContext(c *gin.Context) (models.Session, bool) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return session, ok
}

// postRefFromPath reads :type and :id. Unknown types are a validation error.
func postRefFromPath(c *gin.Context) (models.PostRef, bool) {
	postType, err := models.ParsePostType(c.Param("type"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return models.PostRef{}, false
	}
	return models.PostRef{Type: postType, ID: c.Param("id")}, true
}

// respondOutcome answers 200 for both applied and no-op mutations; meta.applied tells them apart.
func respondOutcome[T any](c *gin.Context, outcome service.Outcome[T]) {
	middleware.SetApplied(c, outcome.Applied)
	var data interface{}
	if outcome.Value != nil {
		data = outcome.Value
	}
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}
