package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/friendfinder/internal/api/middleware"
	"github.com/mcoot/friendfinder/internal/api/request"
	"github.com/mcoot/friendfinder/internal/api/response"
	"github.com/mcoot/friendfinder/internal/services/access"
	"github.com/mcoot/friendfinder/internal/services/friends"
)

// FriendHandler handles friend-related endpoints
type FriendHandler struct {
	friends *friends.Service
	authn   *access.Authenticator
	logger  *slog.Logger
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(friendService *friends.Service, authn *access.Authenticator, logger *slog.Logger) *FriendHandler {
	return &FriendHandler{
		friends: friendService,
		authn:   authn,
		logger:  logger,
	}
}

// Register handles POST /api/friends
func (h *FriendHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.FriendRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	id, err := h.friends.Register(r.Context(), req.Input())
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreatedResponse{ID: string(id)})
}

// Login handles POST /api/friends/login
func (h *FriendHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	principal, token, err := h.authn.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LoginResponse{
		Email: principal.Email,
		Role:  string(principal.Role),
		Token: token,
	})
}

// List handles GET /api/friends/all
func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.friends.List(r.Context())
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FriendNamesFromModel(all))
}

// Me handles GET /api/friends/me
func (h *FriendHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())

	profile, err := h.friends.GetByEmail(r.Context(), principal.Email)
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(profile))
}

// EditMe handles PUT /api/friends/editme
func (h *FriendHandler) EditMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.MustGetPrincipal(r.Context())
	h.edit(w, r, principal.Email)
}

// FindUser handles GET /api/friends/find-user/{email}
func (h *FriendHandler) FindUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.friends.GetByEmail(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(profile))
}

// Edit handles PUT /api/friends/{email}
func (h *FriendHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, mux.Vars(r)["email"])
}

func (h *FriendHandler) edit(w http.ResponseWriter, r *http.Request, email string) {
	var req request.FriendRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	n, err := h.friends.Edit(r.Context(), email, req.Input())
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ModifiedResponse{ModifiedCount: n})
}

// Delete handles DELETE /api/friends/{email}
func (h *FriendHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.friends.Delete(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		failure(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DeletedResponse{Deleted: deleted})
}
