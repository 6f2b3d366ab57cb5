package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	authusecase "github.com/fleetlog/fleetlog/application/usecase/auth"
	domainerror "github.com/fleetlog/fleetlog/domain/error"
	"github.com/fleetlog/fleetlog/infrastructure/http/middleware"
	"github.com/fleetlog/fleetlog/infrastructure/http/response"
	"github.com/fleetlog/fleetlog/infrastructure/http/validator"
)

type AuthHandler struct {
	authUseCase inbound.AuthUseCase
}

func NewAuthHandler(authUseCase inbound.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.FromError(w, domainerror.ErrInvalidRequest("malformed JSON body"), nil)
		return
	}

	if err := validator.Struct(req); err != nil {
		response.UnprocessableEntity(w, err.Error())
		return
	}

	loginRes, err := h.authUseCase.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authusecase.ErrInvalidCredentials):
			response.FromError(w, domainerror.ErrInvalidCredentials(""), nil)
		case errors.Is(err, authusecase.ErrTooManyAttempts), errors.Is(err, authusecase.ErrAccountBlocked):
			response.FromError(w, domainerror.ErrRateLimitExceeded(err.Error()), nil)
		default:
			response.FromError(w, err, nil)
		}
		return
	}

	response.Success(w, http.StatusOK, "success", loginRes)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.FromError(w, domainerror.ErrInvalidToken("user not authenticated"), nil)
		return
	}

	meRes, err := h.authUseCase.Me(r.Context(), claims.UserID)
	if err != nil {
		response.FromError(w, err, nil)
		return
	}

	response.Success(w, http.StatusOK, "success", meRes)
}
