package httpapi

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"spacerh.dev/internal/auth"
	"spacerh.dev/internal/hr"
)

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// handleLogin exchanges form-encoded credentials for a bearer token. The
// username field carries the account email.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form body")
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	if a.lockouts != nil {
		if blocked, remaining := a.lockouts.Blocked(username); blocked {
			writeError(w, r, http.StatusBadRequest, lockoutMessage(remaining))
			return
		}
	}

	user, err := a.hr.Authenticate(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			if a.lockouts != nil && a.lockouts.RecordFailure(username) {
				_, remaining := a.lockouts.Blocked(username)
				a.audit(r.Context(), "auth.login.locked", "user", username, nil)
				writeError(w, r, http.StatusBadRequest, lockoutMessage(remaining))
				return
			}
			a.audit(r.Context(), "auth.login.rejected", "user", username, nil)
			writeError(w, r, http.StatusBadRequest, "incorrect username or password")
		case errors.Is(err, auth.ErrInactiveUser):
			writeError(w, r, http.StatusBadRequest, "inactive user")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if a.lockouts != nil {
		a.lockouts.Reset(username)
	}
	token, err := auth.GenerateToken(user.ID, string(user.Role), a.tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	a.audit(r.Context(), "auth.login.success", "user", user.Email, map[string]string{
		"role": string(user.Role),
	})
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role := hr.Role(strings.TrimSpace(strings.ToLower(req.Role)))
	if role == "" {
		role = hr.RoleContratado
	}
	user, err := a.hr.CreateUser(r.Context(), hr.NewUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CPF:       req.CPF,
		Email:     req.Email,
		Password:  req.Password,
		Role:      role,
	})
	if err != nil {
		handleHRError(w, r, err)
		return
	}
	a.audit(r.Context(), "auth.signup", "user", user.Email, map[string]string{
		"role": string(user.Role),
	})
	writeJSON(w, http.StatusCreated, user)
}

func lockoutMessage(remaining time.Duration) string {
	minutes := int(math.Ceil(remaining.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("too many failed login attempts, try again in %d minutes", minutes)
}
