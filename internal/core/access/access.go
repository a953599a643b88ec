// Package access resolves the identity behind a request. Every use-case takes the
// resolved actor as an explicit argument; there is no ambient security context.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rbroggi/studyhub/internal/core/model"
	"github.com/rbroggi/studyhub/internal/core/ports"
)

// Actor is the account making a request, or anonymous when unauthenticated. The
// anonymous actor is a sentinel distinct from any real account.
type Actor struct {
	// Account is nil for the anonymous actor.
	Account *model.Account
}

// Anonymous reports whether the actor is unauthenticated.
func (a Actor) Anonymous() bool {
	return a.Account == nil
}

// AnonymousActor returns the unauthenticated actor sentinel.
func AnonymousActor() Actor {
	return Actor{}
}

// sessionClaims are the JWT claims of a session token. Subject carries the account id.
type sessionClaims struct {
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// CoordinatorArgs are the mandatory arguments for building a Coordinator.
type CoordinatorArgs struct {
	// Accounts is the repository used to load the account behind a session.
	Accounts ports.AccountRepository

	// Secret is the HS256 signing key for session tokens.
	Secret string

	// SessionTTL is the validity window of issued session tokens.
	SessionTTL time.Duration
}

// Coordinator issues session tokens for verified actors and resolves incoming tokens
// back into actors.
type Coordinator struct {
	accounts   ports.AccountRepository
	secret     []byte
	sessionTTL time.Duration
	nowFunc    func() time.Time
}

// CoordinatorOptArgs are the optional arguments for building a Coordinator.
type CoordinatorOptArgs = func(*Coordinator)

// WithNowFunc can be used to override the nowFunc. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) CoordinatorOptArgs {
	return func(c *Coordinator) {
		c.nowFunc = nowFunc
	}
}

// NewCoordinator creates a new Coordinator.
func NewCoordinator(args CoordinatorArgs, optArgs ...CoordinatorOptArgs) (*Coordinator, error) {
	if args.Secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if args.Accounts == nil {
		return nil, errors.New("account repository is nil")
	}
	c := &Coordinator{
		accounts:   args.Accounts,
		secret:     []byte(args.Secret),
		sessionTTL: args.SessionTTL,
		nowFunc:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range optArgs {
		opt(c)
	}
	return c, nil
}

// IssueSession creates a signed session token for the account.
func (c *Coordinator) IssueSession(account *model.Account) (string, error) {
	now := c.nowFunc()
	claims := sessionClaims{
		Nickname: account.Nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.sessionTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("error signing session token: %w", err)
	}
	return signed, nil
}

// Resolve maps a session token to the acting account. Missing, malformed, expired or
// dangling tokens all resolve to the anonymous actor; only storage failures are errors.
func (c *Coordinator) Resolve(ctx context.Context, tokenStr string) (Actor, error) {
	if tokenStr == "" {
		return AnonymousActor(), nil
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return AnonymousActor(), nil
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return AnonymousActor(), nil
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return AnonymousActor(), nil
	}

	account, err := c.accounts.GetAccountByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return AnonymousActor(), nil
	}
	if err != nil {
		return AnonymousActor(), fmt.Errorf("error loading session account: %w", err)
	}
	return Actor{Account: account}, nil
}
