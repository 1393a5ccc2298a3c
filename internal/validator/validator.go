// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"caixa/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("period_key", validatePeriodKey)
		_ = v.RegisterValidation("entry_kind", validateEntryKind)
		_ = v.RegisterValidation("year", validateYear)
	}
}

func validatePeriodKey(fl validator.FieldLevel) bool {
	return models.ValidPeriod(fl.Field().String())
}

func validateEntryKind(fl validator.FieldLevel) bool {
	return models.Kind(fl.Field().String()).Valid()
}

func validateYear(fl validator.FieldLevel) bool {
	return models.ValidYear(fl.Field().String())
}
