package common

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BindOrRespond runs one of gin's ShouldBind* functions into dst and writes the error
// response when it fails. It reports whether the handler should continue.
func BindOrRespond(c *gin.Context, bind func(interface{}) error, dst interface{}) bool {
	err := bind(dst)
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		RespondWithError(c, NewValidationAPIError(FormatValidationErrors(ve)))
		return false
	}
	RespondWithError(c, ErrBadRequest.WithDetails(err.Error()))
	return false
}

// ParamUUID parses the named path parameter, responding 400 when it is not a UUID.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondWithError(c, ErrBadRequest.WithDetails("Invalid ID format."))
		return uuid.Nil, false
	}
	return id, true
}
