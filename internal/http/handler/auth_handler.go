package handler

import (
	"net/http"

	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// respondAuthResult writes an AuthResult with status when it failed
func respondAuthResult(w http.ResponseWriter, result *domain.AuthResult, failureStatus int) {
	if !result.Success {
		respondJSON(w, failureStatus, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SignUp godoc
// @Summary Create an account
// @Description Self-service sign up for agents and guests. Staff accounts are created by an admin.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.SignUpRequest true "Account details"
// @Success 200 {object} domain.AuthResult
// @Failure 400 {object} domain.AuthResult
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.authService.SignUp(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "account")
		return
	}
	respondAuthResult(w, result, http.StatusBadRequest)
}

// SignIn godoc
// @Summary Sign in
// @Description Exchange email and password for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.SignInRequest true "Credentials"
// @Success 200 {object} domain.AuthResult
// @Failure 401 {object} domain.AuthResult
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.authService.SignIn(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "session")
		return
	}
	respondAuthResult(w, result, http.StatusUnauthorized)
}

// SignOut godoc
// @Summary Sign out
// @Description Revokes every token issued to the current user
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthResult
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.SignOut(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "session")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RequestPasswordReset godoc
// @Summary Request a password reset
// @Description Always answers the same way so account existence is not revealed
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.PasswordResetRequest true "Account email"
// @Success 200 {object} domain.AuthResult
// @Router /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.authService.RequestPasswordReset(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "password reset")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ResetPassword godoc
// @Summary Complete a password reset
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} domain.AuthResult
// @Failure 400 {object} domain.AuthResult
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	result, err := h.authService.ResetPassword(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "password reset")
		return
	}
	respondAuthResult(w, result, http.StatusBadRequest)
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the user and the portal shell their role is routed to
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.MeDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if userCtx.IsSystem {
		// The API key has no account row
		respondJSON(w, http.StatusOK, domain.MeDTO{
			User: domain.UserDTO{
				DisplayName: userCtx.DisplayName,
				Email:       userCtx.Email,
				Role:        userCtx.Role,
				IsActive:    true,
			},
			Shell: auth.ShellFor(userCtx.Role),
		})
		return
	}

	me, err := h.authService.Me(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "user")
		return
	}
	respondJSON(w, http.StatusOK, me)
}

// Shell godoc
// @Summary Get the portal shell for a role
// @Description Public descriptor used by the login page to route users
// @Tags Auth
// @Produce json
// @Param role query string true "Role" Enums(admin, agent, sales, operations, guest)
// @Success 200 {object} domain.ShellDTO
// @Failure 400 {object} domain.APIError
// @Router /auth/shell [get]
func (h *AuthHandler) Shell(w http.ResponseWriter, r *http.Request) {
	role := domain.UserRoleType(r.URL.Query().Get("role"))
	if !role.IsValid() {
		respondWithError(w, http.StatusBadRequest, "role must be one of admin, agent, sales, operations, guest")
		return
	}
	respondJSON(w, http.StatusOK, auth.ShellFor(role))
}

type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param role query string false "Filter by role" Enums(admin, agent, sales, operations, guest)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.UserDTO}
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	var role *domain.UserRoleType
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed := domain.UserRoleType(raw)
		if !parsed.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid role")
			return
		}
		role = &parsed
	}
	result, err := h.userService.List(r.Context(), role, page, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "users")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListOperations godoc
// @Summary List active operations staff
// @Description Used by sales when handing a lead over to operations
// @Tags Users
// @Produce json
// @Success 200 {array} domain.UserDTO
// @Security BearerAuth
// @Router /users/operations [get]
func (h *UserHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListByRole(r.Context(), domain.RoleOperations)
	if err != nil {
		respondServiceError(w, h.logger, err, "users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Create godoc
// @Summary Create a user with any role
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.CreateUserRequest true "User"
// @Success 201 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "user")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// UpdateRole godoc
// @Summary Change a user's role or active flag
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID" format(uuid)
// @Param request body domain.UpdateUserRoleRequest true "Role"
// @Success 200 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id}/role [put]
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "user")
	if !ok {
		return
	}
	var req domain.UpdateUserRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user, err := h.userService.UpdateRole(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
