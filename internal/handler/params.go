package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// Principal returns the authenticated caller, answering 401 when there is none
func Principal(c *gin.Context) (model.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		httputil.RespondWithError(c, errors.Unauthorized(nil))
	}
	return p, ok
}

// ParamUUID parses a path parameter, answering 400 when it is malformed
func ParamUUID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid "+what+" ID", err))
		return uuid.Nil, false
	}
	return id, true
}

// QueryUUID parses an optional query parameter; absent yields nil
func QueryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.Validation("invalid "+name, err)
	}
	return &id, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter
func QueryDate(c *gin.Context, name string) (*model.Date, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, errors.Validation("invalid date format for "+name+", use YYYY-MM-DD", err)
	}
	return &d, nil
}
