package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/runboard/internal/app/account"
	"github.com/okian/runboard/internal/domain/types"
)

// AccountDependencies validates account forms.
type AccountDependencies interface {
	Login(form account.LoginForm) (types.Redirect, error)
	Register(form account.RegisterForm) (types.Redirect, error)
}

// AccountHandler handles the login and registration forms.
type AccountHandler struct {
	deps AccountDependencies
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(deps AccountDependencies) *AccountHandler {
	return &AccountHandler{deps: deps}
}

// HandleLogin handles POST /login.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	var form account.LoginForm
	if err := decodeForm(r, &form); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	redirect, err := h.deps.Login(form)
	respond(w, op, redirect, err)
}

// HandleRegister handles POST /register.
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	var form account.RegisterForm
	if err := decodeForm(r, &form); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	redirect, err := h.deps.Register(form)
	respond(w, op, redirect, err)
}

// decodeForm reads the body without validating it; the account forms report
// their own field errors.
func decodeForm(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
