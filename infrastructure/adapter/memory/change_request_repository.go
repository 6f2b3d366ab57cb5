// Package memory holds in-process stores used by tests and by the server when
// STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fleetlog/fleetlog/domain/entity"
)

// ChangeRequestRepository keeps change requests in a map guarded by a mutex.
// Records are cloned on the way in and out.
type ChangeRequestRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]*entity.ChangeRequest
}

func NewChangeRequestRepository() *ChangeRequestRepository {
	return &ChangeRequestRepository{
		items: make(map[int64]*entity.ChangeRequest),
	}
}

func (r *ChangeRequestRepository) FindByID(ctx context.Context, id int64) (*entity.ChangeRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.items[id]
	if !ok {
		return nil, entity.ErrRequestNotFound
	}
	return req.Clone(), nil
}

func (r *ChangeRequestRepository) FindAll(ctx context.Context) ([]*entity.ChangeRequest, error) {
	out := r.filter(func(*entity.ChangeRequest) bool { return true })
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *ChangeRequestRepository) FindPending(ctx context.Context) ([]*entity.ChangeRequest, error) {
	return r.filter(func(req *entity.ChangeRequest) bool { return req.IsPending() }), nil
}

func (r *ChangeRequestRepository) FindByRequester(ctx context.Context, requesterID int64) ([]*entity.ChangeRequest, error) {
	return r.filter(func(req *entity.ChangeRequest) bool { return req.RequesterID == requesterID }), nil
}

// filter returns matching clones in insertion order
func (r *ChangeRequestRepository) filter(keep func(*entity.ChangeRequest) bool) []*entity.ChangeRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.ChangeRequest, 0, len(r.items))
	for _, req := range r.items {
		if keep(req) {
			out = append(out, req.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Insert assigns the next ID to req
func (r *ChangeRequestRepository) Insert(ctx context.Context, req *entity.ChangeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	req.ID = r.nextID
	r.items[req.ID] = req.Clone()
	return nil
}

func (r *ChangeRequestRepository) UpdateIfPending(ctx context.Context, req *entity.ChangeRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[req.ID]
	if !ok {
		return entity.ErrRequestNotFound
	}
	if !stored.IsPending() {
		return entity.ErrRequestAlreadyProcessed
	}

	r.items[req.ID] = req.Clone()
	return nil
}

func (r *ChangeRequestRepository) DeleteProcessed(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, req := range r.items {
		if !req.IsPending() {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}
