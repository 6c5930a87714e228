package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"spacerh.dev/internal/auth"
	"spacerh.dev/internal/hr"
)

type createUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// handleMe returns the profile behind the presented token. A valid token
// whose account vanished reads as unauthorized; a deactivated account is
// a 400 so clients can distinguish the two.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := a.hr.GetUser(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, hr.ErrNotFound) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, r, http.StatusUnauthorized, "could not validate credentials")
			return
		}
		handleHRError(w, r, err)
		return
	}
	if !user.IsActive {
		writeError(w, r, http.StatusBadRequest, "inactive user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireRole(w, r, "admin", "lider"); !ok {
			return
		}
		users, err := a.hr.ListUsers(r.Context())
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	case http.MethodPost:
		if _, ok := a.requireRole(w, r, "admin"); !ok {
			return
		}
		var req createUserRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		user, err := a.hr.CreateUser(r.Context(), hr.NewUser{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			CPF:       req.CPF,
			Email:     req.Email,
			Password:  req.Password,
			Role:      hr.Role(strings.TrimSpace(strings.ToLower(req.Role))),
		})
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		a.audit(r.Context(), "user.create", "user", strconv.Itoa(user.ID), map[string]string{
			"email": user.Email,
			"role":  string(user.Role),
		})
		w.Header().Set("Location", "/users/"+strconv.Itoa(user.ID))
		writeJSON(w, http.StatusCreated, user)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/users/")
	if !ok {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if _, ok := a.requireRole(w, r, "admin", "lider"); !ok {
			return
		}
		user, err := a.hr.GetUser(r.Context(), id)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	case http.MethodPut:
		if _, ok := a.requireRole(w, r, "admin"); !ok {
			return
		}
		var req updateUserRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		upd := hr.UserUpdate{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Password:  req.Password,
			IsActive:  req.IsActive,
		}
		if req.Role != nil {
			role := hr.Role(strings.TrimSpace(strings.ToLower(*req.Role)))
			upd.Role = &role
		}
		user, err := a.hr.UpdateUser(r.Context(), id, upd)
		if err != nil {
			handleHRError(w, r, err)
			return
		}
		a.audit(r.Context(), "user.update", "user", strconv.Itoa(user.ID), nil)
		writeJSON(w, http.StatusOK, user)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}
