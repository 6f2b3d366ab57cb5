package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/fleetlog/fleetlog/domain/entity"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[int64]entity.User)}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, entity.ErrUserNotFound
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.items {
		if strings.EqualFold(u.Email, user.Email) {
			return entity.ErrUserAlreadyExists
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.items[user.ID] = *user
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == entity.ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) ActorExists(ctx context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok, nil
}
