// Package account validates the login and registration forms. There is no
// account backend: a valid submission only yields where to go next.
package account

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/runboard/internal/domain/types"
)

// Where a successful submission sends the viewer.
const (
	LoginRedirect    = "/game"
	RegisterRedirect = "/login"
)

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Username       string `json:"username" validate:"required,min=3,max=20"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	RepeatPassword string `json:"repeatPassword" validate:"required,eqfield=Password"`
}

// Forms validates account forms.
type Forms struct {
	v *validator.Validate
}

// New creates a validator that reports JSON field names.
func New() *Forms {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Forms{v: v}
}

// Login validates f and returns the catalog redirect.
func (f *Forms) Login(form LoginForm) (types.Redirect, error) {
	if err := f.validate(form); err != nil {
		return types.Redirect{}, err
	}
	return types.Redirect{Redirect: LoginRedirect}, nil
}

// Register validates f and returns the login redirect.
func (f *Forms) Register(form RegisterForm) (types.Redirect, error) {
	if err := f.validate(form); err != nil {
		return types.Redirect{}, err
	}
	return types.Redirect{Redirect: RegisterRedirect}, nil
}

func (f *Forms) validate(s any) error {
	err := f.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = friendlyMessage(e)
	}
	return &ValidationError{Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "eqfield":
		return "must match password"
	default:
		return "is invalid"
	}
}
