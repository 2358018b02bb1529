package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/peerroom-api/internal/models"
)

// NewValidator returns a validator with the custom tags used by request types.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerValidations(v)
	return v
}

func registerValidations(v *validator.Validate) {
	_ = v.RegisterValidation("yyyymmdd", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseDay(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
