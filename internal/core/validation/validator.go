// Package validation checks untrusted signup and login payloads. It is pure:
// nothing here touches storage, so email uniqueness is left to the repository.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/99minutos/membership-site/internal/core/domain"
	"github.com/99minutos/membership-site/internal/core/ports"
)

const msgInvalidEmail = "Please enter a valid email address"

var lettersAndSpaces = regexp.MustCompile(`^[a-zA-Z\s]+$`)

// SignupForm is the raw signup payload as posted by the browser.
type SignupForm struct {
	Name     string `form:"name"     validate:"required,min=2,max=50,alphaspace"`
	Email    string `form:"email"    validate:"required,email,domainsegments"`
	Password string `form:"password" validate:"required,min=6,max=30"`
}

// LoginForm is the raw login payload. Password length is not checked here;
// it only has to match the stored hash.
type LoginForm struct {
	Email    string `form:"email"    validate:"required,email,domainsegments"`
	Password string `form:"password" validate:"required"`
}

// Validator wraps go-playground/validator with the membership rules.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return lettersAndSpaces.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("domainsegments", func(fl validator.FieldLevel) bool {
		return hasDomainSegments(fl.Field().String(), 2)
	})
	return &Validator{v: v}
}

// Signup normalizes and validates a signup payload.
func (v *Validator) Signup(f SignupForm) (ports.SignupInput, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = NormalizeEmail(f.Email)
	if err := v.Validate(&f); err != nil {
		return ports.SignupInput{}, err
	}
	return ports.SignupInput{Name: f.Name, Email: f.Email, Password: f.Password}, nil
}

// Login normalizes and validates a login payload.
func (v *Validator) Login(f LoginForm) (LoginForm, error) {
	f.Email = NormalizeEmail(f.Email)
	if err := v.Validate(&f); err != nil {
		return LoginForm{}, err
	}
	return f, nil
}

// Validate returns the first violated rule as a *domain.ValidationError.
// Fields are checked in declaration order and each field stops at its first
// failing tag, so the reported error is deterministic.
func (v *Validator) Validate(i any) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return &domain.ValidationError{Field: strings.ToLower(ve[0].Field()), Message: fieldError(ve[0])}
	}
	return err
}

// NormalizeEmail trims and lower-cases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// fieldError converts a single FieldError into the message shown on the form.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "alphaspace":
		return field + " can only contain letters and spaces"
	case "email", "domainsegments":
		return msgInvalidEmail
	default:
		return field + " is invalid"
	}
}

func hasDomainSegments(email string, min int) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	labels := strings.Split(email[at+1:], ".")
	if len(labels) < min {
		return false
	}
	for _, l := range labels {
		if l == "" {
			return false
		}
	}
	return true
}
