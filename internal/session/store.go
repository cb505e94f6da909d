// Package session implements the persistent client session: bearer token,
// cached user record, and the scratch state that carries the multi-step
// signup-verification and password-reset flows across restarts.
//
// Presence of the token is the whole authentication contract. The client
// never inspects the token or checks expiry locally; the server answering
// 401 is the only invalidation signal.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/techwork/portal-cli/internal/models"
)

// Storage keys. They are part of the on-disk format, do not rename.
const (
	KeyToken          = "token"
	KeyUser           = "user"
	KeyResetEmail     = "resetEmail"
	KeyResetToken     = "resetToken"
	KeyResetOTPMethod = "resetOTPMethod"
	KeyTempUserID     = "tempUserId"
	KeyOTPMethod      = "otpMethod"
)

// Store is the explicit, injectable session state. Every read goes to the
// underlying repository, not to memory, so a fresh process observes whatever
// the previous one persisted.
type Store struct {
	repo Repository

	mu       sync.Mutex
	watchers []func(key string)
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Watch registers fn to be called with the storage key after every successful
// mutation, including the forced clear performed by the transport's 401 hook.
// Callbacks run synchronously on the mutating goroutine and must be cheap.
func (s *Store) Watch(fn func(key string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *Store) notify(keys ...string) {
	s.mu.Lock()
	watchers := make([]func(key string), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()

	for _, fn := range watchers {
		for _, k := range keys {
			fn(k)
		}
	}
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	return s.repo.Get(ctx, key)
}

func (s *Store) set(ctx context.Context, key, value string) error {
	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}
	s.notify(key)
	return nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	s.notify(key)
	return nil
}

// Token returns the stored bearer token, "" when absent.
func (s *Store) Token(ctx context.Context) (string, error) {
	return s.get(ctx, KeyToken)
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.set(ctx, KeyToken, token)
}

// IsAuthenticated reports whether a token is present. Nothing more.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}

// User returns the cached user record, nil when absent or when the stored
// JSON does not parse. A corrupt cache is treated as "no user", never as an
// error the caller has to handle.
func (s *Store) User(ctx context.Context) (*models.User, error) {
	raw, err := s.get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, nil
	}
	return &u, nil
}

// SetUser overwrites the cached user record wholesale.
func (s *Store) SetUser(ctx context.Context, u *models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.set(ctx, KeyUser, string(raw))
}

func (s *Store) ResetEmail(ctx context.Context) (string, error) {
	return s.get(ctx, KeyResetEmail)
}

func (s *Store) SetResetEmail(ctx context.Context, email string) error {
	return s.set(ctx, KeyResetEmail, email)
}

func (s *Store) ResetOTPMethod(ctx context.Context) (string, error) {
	return s.get(ctx, KeyResetOTPMethod)
}

func (s *Store) SetResetOTPMethod(ctx context.Context, method string) error {
	return s.set(ctx, KeyResetOTPMethod, method)
}

func (s *Store) ResetToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyResetToken)
}

func (s *Store) SetResetToken(ctx context.Context, token string) error {
	return s.set(ctx, KeyResetToken, token)
}

// ClearResetFlow removes the password-reset scratch state, called when the
// flow completes.
func (s *Store) ClearResetFlow(ctx context.Context) error {
	for _, key := range []string{KeyResetEmail, KeyResetOTPMethod, KeyResetToken} {
		if err := s.delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) TempUserID(ctx context.Context) (string, error) {
	return s.get(ctx, KeyTempUserID)
}

func (s *Store) OTPMethod(ctx context.Context) (string, error) {
	return s.get(ctx, KeyOTPMethod)
}

// SetPendingSignup records the server-issued pending user id and the chosen
// OTP delivery method at signup-response time. Cleared only by
// ClearPendingSignup, never by logout or navigation away from the flow.
func (s *Store) SetPendingSignup(ctx context.Context, userID, otpMethod string) error {
	if err := s.set(ctx, KeyTempUserID, userID); err != nil {
		return err
	}
	return s.set(ctx, KeyOTPMethod, otpMethod)
}

// ClearPendingSignup wipes the signup scratch state together with any token
// or cached user, the terminal step of the verification flow.
func (s *Store) ClearPendingSignup(ctx context.Context) error {
	for _, key := range []string{KeyToken, KeyUser, KeyTempUserID, KeyOTPMethod} {
		if err := s.delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// ClearAuth implements logout semantics: token, cached user, and all
// password-reset scratch are removed; pending-signup scratch stays put so an
// unfinished verification can still complete.
func (s *Store) ClearAuth(ctx context.Context) error {
	for _, key := range []string{KeyToken, KeyUser, KeyResetEmail, KeyResetToken, KeyResetOTPMethod} {
		if err := s.delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
