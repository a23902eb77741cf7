package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/tabishkhalil463/FeastDash/internal/domain"
)

var ErrNotFound = errors.New("session not found")

// Session is the durable client-side state for one signed-in user: who they
// are plus the token pair replayed against the remote API.
type Session struct {
	ID           string      `json:"id"`
	User         domain.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	CreatedAt    time.Time   `json:"created_at"`
}

type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	UpdateTokens(ctx context.Context, id, access, refresh string) error
	UpdateUser(ctx context.Context, id string, user domain.User) error
	Delete(ctx context.Context, id string) error
}

func newSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
