package session

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/domain"
)

// Service owns the session lifecycle: it exchanges credentials with the
// remote API and persists the resulting session.
type Service struct {
	store  Store
	client *api.Client
}

func NewService(store Store, client *api.Client) *Service {
	return &Service{store: store, client: client}
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	auth, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, auth)
}

func (s *Service) Register(ctx context.Context, req api.RegisterRequest) (*Session, error) {
	auth, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, auth)
}

func (s *Service) create(ctx context.Context, auth *domain.AuthResponse) (*Session, error) {
	sess := &Session{
		ID:           newSessionID(),
		User:         auth.User,
		AccessToken:  auth.Tokens.Access,
		RefreshToken: auth.Tokens.Refresh,
		CreatedAt:    time.Now(),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// Logout invalidates the refresh token server-side on a best-effort basis,
// then destroys the session either way.
func (s *Service) Logout(ctx context.Context, sess *Session) error {
	if sess.RefreshToken != "" {
		if err := s.client.Logout(ctx, s.Tokens(sess.ID), sess.RefreshToken); err != nil {
			log.Printf("WARN: api logout failed for session %s: %v", sess.ID, err)
		}
	}
	return s.store.Delete(ctx, sess.ID)
}

func (s *Service) UpdateProfile(ctx context.Context, sess *Session, fields map[string]string) (*domain.User, error) {
	user, err := s.client.UpdateProfile(ctx, s.Tokens(sess.ID), fields)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateUser(ctx, sess.ID, *user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdateProfileWithImage(ctx context.Context, sess *Session, fields map[string]string, imageName string, image io.Reader) (*domain.User, error) {
	user, err := s.client.UpdateProfileWithImage(ctx, s.Tokens(sess.ID), fields, imageName, image)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateUser(ctx, sess.ID, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// Destroy drops a session without touching the remote API, used when the
// token pair is already dead.
func (s *Service) Destroy(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Tokens returns the api.TokenStore view of one session.
func (s *Service) Tokens(id string) api.TokenStore {
	return tokenStore{store: s.store, id: id}
}

type tokenStore struct {
	store Store
	id    string
}

func (t tokenStore) Tokens(ctx context.Context) (string, string, error) {
	sess, err := t.store.Get(ctx, t.id)
	if errors.Is(err, ErrNotFound) {
		// A session that has aged out of the store is an expired session as
		// far as any caller holding this token view is concerned.
		return "", "", api.ErrSessionExpired
	}
	if err != nil {
		return "", "", err
	}
	return sess.AccessToken, sess.RefreshToken, nil
}

func (t tokenStore) SetTokens(ctx context.Context, access, refresh string) error {
	return t.store.UpdateTokens(ctx, t.id, access, refresh)
}

var _ api.TokenStore = tokenStore{}
