package users

import "context"

// UserRepo persists principals. Lookups that find nothing return errors.ErrNotFound,
// Create on a registered email returns errors.ErrDuplicateIdentity.
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
