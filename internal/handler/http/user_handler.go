package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/mkuznetsov/user-service/internal/user"
)

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email,max=100"`
}

// UpdateUserRequest carries a full replacement of the mutable fields.
// PUT never touches id or created_at.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email,max=100"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type UserHandler struct {
	service  user.Service
	validate *validator.Validate
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.handleHealth)

	router.Route("/users", func(r chi.Router) {
		r.Post("/", h.handleCreateUser)
		r.Get("/", h.handleListUsers)
		r.Get("/{id}", h.handleGetUser)
		r.Put("/{id}", h.handleUpdateUser)
		r.Delete("/{id}", h.handleDeleteUser)
	})
}

func (h *UserHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "user-service is running"})
}

func (h *UserHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateUserRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if !h.validatePayload(w, requestPayload) {
		return
	}

	createdUser, err := h.service.CreateUser(r.Context(), requestPayload.Name, requestPayload.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create user via service")

		clientMessage := "Failed to create user"
		if errors.Is(err, user.ErrEmailExists) {
			clientMessage = "Email already exists"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, newUserResponse(createdUser))
}

func (h *UserHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list users")
		return
	}

	responsePayload := make([]UserResponse, 0, len(users))
	for i := range users {
		responsePayload = append(responsePayload, newUserResponse(&users[i]))
	}

	respondWithJSON(w, http.StatusOK, responsePayload)
}

func (h *UserHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	foundUser, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		clientMessage := "Failed to get user"
		if errors.Is(err, user.ErrNotFound) {
			clientMessage = "User not found"
		} else {
			log.Error().Err(err).Int64("user_id", userID).Msg("Failed to get user via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(foundUser))
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateUserRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if !h.validatePayload(w, requestPayload) {
		return
	}

	updatedUser, err := h.service.UpdateUser(r.Context(), userID, requestPayload.Name, requestPayload.Email)
	if err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, user.ErrNotFound):
			clientMessage = "User not found"
		case errors.Is(err, user.ErrEmailExists):
			clientMessage = "Email already exists"
		default:
			log.Error().Err(err).Int64("user_id", userID).Msg("Failed to update user via service")
			clientMessage = "Failed to update user"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(updatedUser))
}

func (h *UserHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		clientMessage := "Failed to delete user"
		if errors.Is(err, user.ErrNotFound) {
			clientMessage = "User not found"
		} else {
			log.Error().Err(err).Int64("user_id", userID).Msg("Failed to delete user via service")
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// validatePayload runs struct validation and writes the 400 response
// itself when the payload is invalid. Returns true when valid.
func (h *UserHandler) validatePayload(w http.ResponseWriter, payload interface{}) bool {
	err := h.validate.Struct(payload)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Detail: "Validation failed",
			Fields: formatValidationErrors(validationErrors),
		})
		return false
	}

	log.Error().Err(err).Msg("Unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "Internal validation error")
	return false
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		log.Warn().Err(err).Str("user_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}

	return id, true
}
