package user

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("user: not found")

// User is the read model for actors referenced by listings, bookings and
// reviews. Identity and authentication live outside this service; only the
// fields needed for projections are kept here.
type User struct {
	ID          string
	Username    string
	DisplayName string
}

type Repository interface {
	ByID(ctx context.Context, id string) (*User, error)
	Save(ctx context.Context, user *User) error
}

// Name returns the best display value for the user.
func (u *User) Name() string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return name
	}
	return u.Username
}
