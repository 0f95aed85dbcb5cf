package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator registers custom validation rules on gin's binding
// engine. Call once at startup before serving requests.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("dpositive", decimalPositive)
	}
}

// decimalPositive validates that a decimal.Decimal field is strictly
// greater than zero. Monetary amounts in requests are never negative
// or zero; reversals are expressed by direction, not by sign.
func decimalPositive(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return d.IsPositive()
}
