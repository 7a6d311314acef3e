// Package validation checks request payloads with struct tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fra-atlas/atlas-backend/internal/apperr"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

var (
	once     sync.Once
	validate *validator.Validate

	regionMu    sync.RWMutex
	phoneRegion = "IN"
)

// SetPhoneRegion sets the default region used to parse phone numbers
// without a country prefix.
func SetPhoneRegion(region string) {
	if region == "" {
		return
	}
	regionMu.Lock()
	phoneRegion = strings.ToUpper(region)
	regionMu.Unlock()
}

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("phone", validatePhone)
		_ = validate.RegisterValidation("role", validateRole)
	})
	return validate
}

// ValidatePhoneNumber reports whether number is a valid phone number in the
// configured region.
func ValidatePhoneNumber(number string) error {
	regionMu.RLock()
	region := phoneRegion
	regionMu.RUnlock()

	p, err := libphonenumber.Parse(number, region)
	if err != nil {
		return err
	}
	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}
	return nil
}

func validatePhone(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	return ValidatePhoneNumber(s) == nil
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}

// Struct validates v and returns an apperr.ErrValidation listing every
// failing field.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperr.Validation("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "latitude", "longitude":
		return fmt.Sprintf("%s must be a valid %s", field, fe.Tag())
	case "phone":
		return field + " must be a valid phone number"
	case "role":
		return field + " must be one of " + roleList()
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func roleList() string {
	names := make([]string, 0, len(models.Roles))
	for _, r := range models.Roles {
		names = append(names, string(r))
	}
	return "[" + strings.Join(names, ", ") + "]"
}
