// Package mutator applies approved change requests to drivers and vehicles.
package mutator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/pkg/payload"
)

// protectedFields are owned by the store and never taken from a payload
var protectedFields = []string{"id", "createdAt", "updatedAt"}

// sanitize canonicalizes the keys of fields and strips the protected ones
func sanitize(fields map[string]any) map[string]any {
	out := payload.CanonicalizeKeys(fields)
	for _, key := range protectedFields {
		delete(out, key)
	}
	return out
}

// merge applies fields to current as a JSON merge patch and decodes the result into a new T.
// A null value clears the field. A key that names no field of T is rejected.
func merge[T any](current *T, fields map[string]any) (*T, error) {
	doc, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entity: %w", err)
	}

	patch, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrConstraintViolated, err)
	}

	merged, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrConstraintViolated, err)
	}

	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()

	var next T
	if err := dec.Decode(&next); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrConstraintViolated, err)
	}
	return &next, nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", entity.ErrConstraintViolated, field)
	}
	return nil
}

type clock func() time.Time
