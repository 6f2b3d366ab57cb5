package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestNewChangeRequest(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	payload := json.RawMessage(`{"phone":"+380501112233"}`)

	req := NewChangeRequest(RequestTypeDriverUpdate, int64Ptr(7), "Ivan Petrenko", payload, 3, now)

	assert.Equal(t, RequestTypeDriverUpdate, req.Type)
	assert.Equal(t, RequestStatusPending, req.Status)
	assert.Equal(t, int64(3), req.RequesterID)
	require.NotNil(t, req.TargetID)
	assert.Equal(t, int64(7), *req.TargetID)
	assert.Equal(t, "Ivan Petrenko", req.TargetName)
	assert.Equal(t, now, req.CreatedAt)
	assert.Nil(t, req.AdminResponse)
	assert.Nil(t, req.ProcessedAt)
	assert.Nil(t, req.ProcessedBy)
	assert.True(t, req.IsPending())
}

func TestChangeRequest_Resolve(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	resolved := created.Add(time.Hour)

	tests := []struct {
		name     string
		approved bool
		want     RequestStatus
	}{
		{name: "approve", approved: true, want: RequestStatusApproved},
		{name: "reject", approved: false, want: RequestStatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewChangeRequest(RequestTypeDriverDeletion, int64Ptr(4), "Driver", json.RawMessage(`{}`), 3, created)

			require.NoError(t, req.Resolve(tt.approved, "looks fine", 1, resolved))

			assert.Equal(t, tt.want, req.Status)
			require.NotNil(t, req.AdminResponse)
			assert.Equal(t, "looks fine", *req.AdminResponse)
			require.NotNil(t, req.ProcessedAt)
			assert.Equal(t, resolved, *req.ProcessedAt)
			require.NotNil(t, req.ProcessedBy)
			assert.Equal(t, int64(1), *req.ProcessedBy)
		})
	}
}

func TestChangeRequest_ResolveTwice(t *testing.T) {
	now := time.Now()
	req := NewChangeRequest(RequestTypeVehicleUpdate, int64Ptr(2), "AA1234BB", json.RawMessage(`{}`), 3, now)
	require.NoError(t, req.Resolve(false, "no", 1, now))

	err := req.Resolve(true, "yes", 9, now.Add(time.Minute))

	assert.ErrorIs(t, err, ErrRequestAlreadyProcessed)
	assert.Equal(t, RequestStatusRejected, req.Status)
	assert.Equal(t, "no", *req.AdminResponse)
	assert.Equal(t, int64(1), *req.ProcessedBy)
}

func TestRequestType(t *testing.T) {
	tests := []struct {
		requestType    RequestType
		valid          bool
		kind           TargetKind
		requiresTarget bool
		deletion       bool
	}{
		{RequestTypeDriverDeletion, true, TargetKindDriver, true, true},
		{RequestTypeDriverUpdate, true, TargetKindDriver, true, false},
		{RequestTypeVehicleDeletion, true, TargetKindVehicle, true, true},
		{RequestTypeVehicleUpdate, true, TargetKindVehicle, true, false},
		{RequestTypeOther, true, TargetKindNone, false, false},
		{RequestType("TRIP_UPDATE"), false, TargetKindNone, false, false},
		{RequestType(""), false, TargetKindNone, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.requestType), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.requestType.IsValid())
			assert.Equal(t, tt.kind, tt.requestType.TargetKind())
			assert.Equal(t, tt.requiresTarget, tt.requestType.RequiresTarget())
			assert.Equal(t, tt.deletion, tt.requestType.IsDeletion())
		})
	}
}

func TestChangeRequest_Clone(t *testing.T) {
	req := NewChangeRequest(RequestTypeDriverUpdate, int64Ptr(7), "Driver", json.RawMessage(`{"a":1}`), 3, time.Now())
	require.NoError(t, req.Resolve(true, "ok", 1, time.Now()))

	c := req.Clone()
	*c.TargetID = 99
	*c.AdminResponse = "changed"
	c.Payload[2] = 'b'

	assert.Equal(t, int64(7), *req.TargetID)
	assert.Equal(t, "ok", *req.AdminResponse)
	assert.Equal(t, `{"a":1}`, string(req.Payload))
}
