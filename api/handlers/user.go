package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/accident-recon-api/api"
	"github.com/linesmerrill/accident-recon-api/config"
	"github.com/linesmerrill/accident-recon-api/investigation"
	"github.com/linesmerrill/accident-recon-api/models"
)

// User exported for testing purposes
type User struct {
	Svc *investigation.Service
}

type userRequest struct {
	models.User
	Password string `json:"password"`
}

// CreateUserHandler registers a new user account
func (u User) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	if req.Role == models.RoleAdmin {
		config.ErrorStatus("failed to create user", http.StatusForbidden, w, errors.New("admin accounts cannot self-register"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	user, err := u.Svc.CreateUser(ctx, req.User, req.Password)
	if err != nil {
		config.ErrorFor("failed to create user", w, err)
		return
	}
	zap.S().Infow("user created", "userID", user.ID, "role", user.Role)
	writeJSON(w, http.StatusCreated, user)
}

// UserHandler returns a user by ID
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	user, err := u.Svc.Repos().Users.FindByID(ctx, userID)
	if err != nil {
		config.ErrorFor("failed to get user by ID", w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUserHandler changes a user's profile. Callers may only update their
// own account unless they are an admin.
func (u User) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := u.requireSelfOrAdmin(r, userID); err != nil {
		config.ErrorStatus("failed to update user", http.StatusForbidden, w, err)
		return
	}

	var req models.User
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	if req.Role == models.RoleAdmin && !u.isAdmin(r) {
		config.ErrorStatus("failed to update user", http.StatusForbidden, w, errors.New("only admins may grant the admin role"))
		return
	}
	req.ID = userID
	user, err := u.Svc.UpdateUser(ctx, req)
	if err != nil {
		config.ErrorFor("failed to update user", w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeactivateUserHandler disables a user account; only admins may do this
func (u User) DeactivateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if err := u.requireSelfOrAdmin(r, ""); err != nil {
		config.ErrorStatus("failed to deactivate user", http.StatusForbidden, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	user, err := u.Svc.DeactivateUser(ctx, userID)
	if err != nil {
		config.ErrorFor("failed to deactivate user", w, err)
		return
	}
	zap.S().Infow("user deactivated", "userID", user.ID, "by", api.UserID(r.Context()))
	writeJSON(w, http.StatusOK, user)
}

// requireSelfOrAdmin passes when the caller is id or has the admin role
func (u User) requireSelfOrAdmin(r *http.Request, id string) error {
	callerID := api.UserID(r.Context())
	if (callerID != "" && callerID == id) || u.isAdmin(r) {
		return nil
	}
	return errors.New("caller is not allowed to change this account")
}

func (u User) isAdmin(r *http.Request) bool {
	callerID := api.UserID(r.Context())
	if callerID == "" {
		return false
	}
	caller, err := u.Svc.Repos().Users.FindByID(r.Context(), callerID)
	return err == nil && caller.Role == models.RoleAdmin
}
