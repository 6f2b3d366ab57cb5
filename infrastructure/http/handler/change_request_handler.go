package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/domain/entity"
	domainerror "github.com/fleetlog/fleetlog/domain/error"
	"github.com/fleetlog/fleetlog/infrastructure/http/middleware"
	"github.com/fleetlog/fleetlog/infrastructure/http/response"
	"github.com/fleetlog/fleetlog/infrastructure/http/validator"
)

type ChangeRequestHandler struct {
	useCase inbound.ChangeRequestUseCase
}

func NewChangeRequestHandler(useCase inbound.ChangeRequestUseCase) *ChangeRequestHandler {
	return &ChangeRequestHandler{useCase: useCase}
}

type resolveBody struct {
	Approved *bool  `json:"approved" validate:"required"`
	Response string `json:"response" validate:"max=2000"`
}

func (h *ChangeRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.FromError(w, domainerror.ErrInvalidToken("user not authenticated"), nil)
		return
	}

	var body inbound.CreateChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, domainerror.ErrInvalidRequest("malformed JSON body"), nil)
		return
	}
	if err := validator.Struct(body); err != nil {
		response.UnprocessableEntity(w, err.Error())
		return
	}
	body.RequesterID = claims.UserID

	created, err := h.useCase.CreateRequest(r.Context(), body)
	if err != nil {
		response.FromError(w, err, nil)
		return
	}

	response.Success(w, http.StatusCreated, "Request submitted", created)
}

func (h *ChangeRequestHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.useCase.ListAll(r.Context())
	if err != nil {
		response.FromError(w, err, nil)
		return
	}
	response.Success(w, http.StatusOK, "success", reqs)
}

func (h *ChangeRequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.useCase.ListPending(r.Context())
	if err != nil {
		response.FromError(w, err, nil)
		return
	}
	response.Success(w, http.StatusOK, "success", reqs)
}

func (h *ChangeRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.FromError(w, domainerror.ErrInvalidToken("user not authenticated"), nil)
		return
	}

	reqs, err := h.useCase.ListByRequester(r.Context(), claims.UserID)
	if err != nil {
		response.FromError(w, err, nil)
		return
	}
	response.Success(w, http.StatusOK, "success", reqs)
}

func (h *ChangeRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, ok := h.loadVisible(w, r)
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, "success", req)
}

func (h *ChangeRequestHandler) Diff(w http.ResponseWriter, r *http.Request) {
	req, ok := h.loadVisible(w, r)
	if !ok {
		return
	}

	diff, err := h.useCase.Diff(r.Context(), req.ID)
	if err != nil {
		response.FromError(w, err, nil)
		return
	}
	response.Success(w, http.StatusOK, "success", diff)
}

func (h *ChangeRequestHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.FromError(w, domainerror.ErrInvalidToken("user not authenticated"), nil)
		return
	}

	id, ok := requestID(w, r)
	if !ok {
		return
	}

	var body resolveBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.FromError(w, domainerror.ErrInvalidRequest("malformed JSON body"), nil)
		return
	}
	if err := validator.Struct(body); err != nil {
		response.UnprocessableEntity(w, err.Error())
		return
	}

	resolved, err := h.useCase.Resolve(r.Context(), inbound.ResolveChangeRequest{
		RequestID: id,
		Approved:  *body.Approved,
		Response:  body.Response,
		AdminID:   claims.UserID,
	})
	if err != nil {
		if errors.Is(err, entity.ErrMutationFailed) {
			response.FromError(w, err, resolved)
			return
		}
		response.FromError(w, err, nil)
		return
	}

	message := "Request rejected"
	if resolved.Status == entity.RequestStatusApproved {
		message = "Request approved"
	}
	response.Success(w, http.StatusOK, message, resolved)
}

func (h *ChangeRequestHandler) ClearProcessed(w http.ResponseWriter, r *http.Request) {
	res, err := h.useCase.ClearProcessed(r.Context())
	if err != nil {
		response.FromError(w, err, nil)
		return
	}
	response.Success(w, http.StatusOK, "Processed requests cleared", res)
}

// loadVisible fetches the request named in the path. Managers only see their own requests.
func (h *ChangeRequestHandler) loadVisible(w http.ResponseWriter, r *http.Request) (*entity.ChangeRequest, bool) {
	claims := middleware.GetUserClaims(r.Context())
	if claims == nil {
		response.FromError(w, domainerror.ErrInvalidToken("user not authenticated"), nil)
		return nil, false
	}

	id, ok := requestID(w, r)
	if !ok {
		return nil, false
	}

	req, err := h.useCase.GetRequest(r.Context(), id)
	if err != nil {
		response.FromError(w, err, nil)
		return nil, false
	}

	if !canView(claims, req) {
		response.FromError(w, entity.ErrRequestNotFound, nil)
		return nil, false
	}
	return req, true
}

func canView(claims *outbound.TokenClaims, req *entity.ChangeRequest) bool {
	return entity.IsAdminRole(claims.Role) || claims.UserID == req.RequesterID
}

func requestID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return pathID(w, r, "id")
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		response.FromError(w, domainerror.ErrInvalidRequest("invalid "+name), nil)
		return 0, false
	}
	return id, true
}
