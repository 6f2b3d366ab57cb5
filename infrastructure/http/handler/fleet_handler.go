package handler

import (
	"net/http"

	"github.com/fleetlog/fleetlog/application/port/inbound"
	"github.com/fleetlog/fleetlog/infrastructure/http/response"
)

// FleetHandler serves read-only views of drivers and vehicles
type FleetHandler struct {
	fleet inbound.FleetUseCase
}

func NewFleetHandler(fleet inbound.FleetUseCase) *FleetHandler {
	return &FleetHandler{fleet: fleet}
}

func (h *FleetHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.fleet.ListDrivers(r.Context())
	if err != nil {
		response.FromError(w, err, nil)
		return
	}
	response.Success(w, http.StatusOK, "success", drivers)
}

func (h *FleetHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	driver, err := h.fleet.GetDriver(r.Context(), id)
	if err != nil {
		response.FromError(w, err, nil)
		return
	}
	response.Success(w, http.StatusOK, "success", driver)
}

func (h *FleetHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.fleet.ListVehicles(r.Context())
	if err != nil {
		response.FromError(w, err, nil)
		return
	}
	response.Success(w, http.StatusOK, "success", vehicles)
}

func (h *FleetHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	vehicle, err := h.fleet.GetVehicle(r.Context(), id)
	if err != nil {
		response.FromError(w, err, nil)
		return
	}
	response.Success(w, http.StatusOK, "success", vehicle)
}
