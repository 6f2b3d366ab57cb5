package entity

import (
	"encoding/json"
	"errors"
	"time"
)

// RequestType identifies which mutation an approved request performs
type RequestType string

const (
	RequestTypeDriverDeletion  RequestType = "DRIVER_DELETION"
	RequestTypeDriverUpdate    RequestType = "DRIVER_UPDATE"
	RequestTypeVehicleDeletion RequestType = "VEHICLE_DELETION"
	RequestTypeVehicleUpdate   RequestType = "VEHICLE_UPDATE"
	RequestTypeOther           RequestType = "OTHER"
)

// RequestStatus represents the lifecycle state of a change request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// TargetKind is the kind of fleet entity a request type concerns
type TargetKind string

const (
	TargetKindNone    TargetKind = ""
	TargetKindDriver  TargetKind = "driver"
	TargetKindVehicle TargetKind = "vehicle"
)

var (
	ErrRequestNotFound         = errors.New("change request not found")
	ErrRequestAlreadyProcessed = errors.New("change request already processed")
	ErrInvalidRequestType      = errors.New("invalid request type")
	ErrInvalidPayload          = errors.New("payload must be a JSON object")
	ErrTargetRequired          = errors.New("target ID is required for this request type")
	ErrActorNotFound           = errors.New("actor not found")
	ErrTargetNotFound          = errors.New("target entity not found")
	ErrConstraintViolated      = errors.New("target entity constraint violated")
	ErrMutationFailed          = errors.New("approved change could not be applied")
)

// RequestTypes lists every recognized request type
func RequestTypes() []RequestType {
	return []RequestType{
		RequestTypeDriverDeletion,
		RequestTypeDriverUpdate,
		RequestTypeVehicleDeletion,
		RequestTypeVehicleUpdate,
		RequestTypeOther,
	}
}

func (t RequestType) IsValid() bool {
	for _, known := range RequestTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// TargetKind returns the entity kind the request type mutates
func (t RequestType) TargetKind() TargetKind {
	switch t {
	case RequestTypeDriverDeletion, RequestTypeDriverUpdate:
		return TargetKindDriver
	case RequestTypeVehicleDeletion, RequestTypeVehicleUpdate:
		return TargetKindVehicle
	default:
		return TargetKindNone
	}
}

// RequiresTarget reports whether a request of this type must reference an existing entity
func (t RequestType) RequiresTarget() bool {
	return t.TargetKind() != TargetKindNone
}

// IsDeletion reports whether the request type removes its target
func (t RequestType) IsDeletion() bool {
	return t == RequestTypeDriverDeletion || t == RequestTypeVehicleDeletion
}

// ChangeRequest is a manager-proposed mutation of a driver or vehicle,
// applied only after an administrator approves it.
type ChangeRequest struct {
	ID            int64           `json:"id"`
	Type          RequestType     `json:"type"`
	Status        RequestStatus   `json:"status"`
	RequesterID   int64           `json:"requester_id"`
	TargetID      *int64          `json:"target_id,omitempty"`
	TargetName    string          `json:"target_name"`
	Payload       json.RawMessage `json:"comment"`
	AdminResponse *string         `json:"admin_response,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	ProcessedBy   *int64          `json:"processed_by,omitempty"`
}

// NewChangeRequest creates a pending change request. The ID is assigned by the store.
func NewChangeRequest(requestType RequestType, targetID *int64, targetName string, payload json.RawMessage, requesterID int64, now time.Time) *ChangeRequest {
	return &ChangeRequest{
		Type:        requestType,
		Status:      RequestStatusPending,
		RequesterID: requesterID,
		TargetID:    targetID,
		TargetName:  targetName,
		Payload:     payload,
		CreatedAt:   now,
	}
}

func (r *ChangeRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// Resolve moves a pending request to its terminal status
func (r *ChangeRequest) Resolve(approved bool, response string, adminID int64, now time.Time) error {
	if !r.IsPending() {
		return ErrRequestAlreadyProcessed
	}

	if approved {
		r.Status = RequestStatusApproved
	} else {
		r.Status = RequestStatusRejected
	}
	r.AdminResponse = &response
	r.ProcessedAt = &now
	r.ProcessedBy = &adminID
	return nil
}

// Clone returns a deep copy so stores never share mutable state with callers
func (r *ChangeRequest) Clone() *ChangeRequest {
	if r == nil {
		return nil
	}
	c := *r
	if r.TargetID != nil {
		v := *r.TargetID
		c.TargetID = &v
	}
	if r.AdminResponse != nil {
		v := *r.AdminResponse
		c.AdminResponse = &v
	}
	if r.ProcessedAt != nil {
		v := *r.ProcessedAt
		c.ProcessedAt = &v
	}
	if r.ProcessedBy != nil {
		v := *r.ProcessedBy
		c.ProcessedBy = &v
	}
	if r.Payload != nil {
		c.Payload = append(json.RawMessage(nil), r.Payload...)
	}
	return &c
}
