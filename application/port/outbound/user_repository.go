package outbound

import (
	"context"

	"github.com/fleetlog/fleetlog/domain/entity"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ActorDirectory answers whether a user ID refers to a known actor
type ActorDirectory interface {
	ActorExists(ctx context.Context, id int64) (bool, error)
}
