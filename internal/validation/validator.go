// Package validation provides request struct validation using
// go-playground/validator v10.
//
// A single validator instance is shared; it caches struct metadata and is
// safe for concurrent use. Field names in errors are the JSON names, so a
// client can map them straight back onto its form.
//
//	type CreateJobRequest struct {
//	    Type   string `json:"type" validate:"required,oneof=captcha typing"`
//	    Reward string `json:"reward" validate:"required,decimal_positive"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    return verr.ToCategorizedError()
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	apperrors "github.com/captcha-dashboard/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// RequestValidationError is the list of field errors for one request
type RequestValidationError struct {
	fields []apperrors.FieldError
}

// Fields returns the field errors
func (ve *RequestValidationError) Fields() []apperrors.FieldError {
	return ve.fields
}

// Error implements the error interface
func (ve *RequestValidationError) Error() string {
	if len(ve.fields) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(ve.fields))
	for _, f := range ve.fields {
		messages = append(messages, f.Message)
	}
	return strings.Join(messages, "; ")
}

// ToCategorizedError converts the field list into a 400 validation error
func (ve *RequestValidationError) ToCategorizedError() *apperrors.CategorizedError {
	return apperrors.NewValidationError(ve.Error(), ve.fields)
}

// GetValidator returns the shared validator instance
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("decimal", isDecimal)
		_ = validate.RegisterValidation("decimal_positive", isPositiveDecimal)
	})

	return validate
}

// Money values are bounded before anything expands them: a short string
// such as "1e10000000" is otherwise a ten-million digit number.
const (
	maxMoneyLength        = 64
	MaxMoneyScale         = 8
	MaxMoneyIntegerDigits = 12
)

// ErrMoneyOutOfRange is returned by ParseMoney for values too large or too precise
var ErrMoneyOutOfRange = errors.New("decimal value is out of range")

// ParseMoney parses a decimal string and rejects values with more than
// MaxMoneyScale fractional digits or MaxMoneyIntegerDigits integer digits.
// Trailing fractional zeros do not count toward the scale.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) > maxMoneyLength {
		return decimal.Zero, ErrMoneyOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}

	coef := strings.TrimPrefix(d.Coefficient().String(), "-")
	significant := strings.TrimRight(coef, "0")
	exp := int64(d.Exponent()) + int64(len(coef)-len(significant))

	if exp < -MaxMoneyScale {
		return decimal.Zero, ErrMoneyOutOfRange
	}
	if int64(len(significant))+exp > MaxMoneyIntegerDigits {
		return decimal.Zero, ErrMoneyOutOfRange
	}
	return d, nil
}

// isDecimal accepts strings that parse as an in-range decimal number
func isDecimal(fl validator.FieldLevel) bool {
	_, err := ParseMoney(fl.Field().String())
	return err == nil
}

// isPositiveDecimal accepts in-range decimals greater than zero
func isPositiveDecimal(fl validator.FieldLevel) bool {
	d, err := ParseMoney(fl.Field().String())
	return err == nil && d.IsPositive()
}

// ValidateStruct validates s. It returns nil when s is valid.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			fields: []apperrors.FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}},
		}
	}

	fields := make([]apperrors.FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = apperrors.FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{fields: fields}
}

// Validate is ValidateStruct returning a plain error, nil when valid
func Validate(s interface{}) error {
	if verr := ValidateStruct(s); verr != nil {
		return verr.ToCategorizedError()
	}
	return nil
}

var errorMessageTemplates = map[string]string{
	"required":         "%s is required",
	"email":            "%s must be a valid email address",
	"url":              "%s must be a valid URL",
	"http_url":         "%s must be a valid http(s) URL",
	"decimal":          "%s must be a decimal number",
	"decimal_positive": "%s must be a positive decimal number",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

func translateError(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
