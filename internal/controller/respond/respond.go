// Package respond renders application errors for gin handlers.
package respond

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/validation"
)

// Error writes err as a dto.ErrorResponse with the matching status code.
// Internal causes are logged, never sent.
func Error(c *gin.Context, err error) {
	appErr := apperror.From(err)
	resp := dto.ErrorResponse{Message: appErr.Message}
	if len(appErr.Fields) > 0 {
		resp.Fields = make(map[string]string, len(appErr.Fields))
		for _, f := range appErr.Fields {
			resp.Fields[f.Field] = f.Error
		}
	}

	status := appErr.StatusCode()
	if status >= 500 {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		if appErr.Kind == apperror.KindUnavailable && appErr.Err != nil {
			resp.Details = []string{"upstream service error"}
		}
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}

// Bind decodes the JSON body into obj and renders a 400 on failure.
func Bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("Failed to bind request body")
		Error(c, validation.Translate(err))
		return false
	}
	return true
}

// ID parses a positive numeric path parameter and renders a 400 on failure.
func ID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		Error(c, apperror.Validation("invalid "+name,
			apperror.FieldError{Field: name, Error: "must be a positive integer"}))
		return 0, false
	}
	return uint(id), true
}
