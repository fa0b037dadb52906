package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"golang.org/x/oauth2"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// StateTTL bounds the time between login redirect and callback.
const StateTTL = 10 * time.Minute

var (
	// ErrUnknownProvider is returned for a provider that is not configured.
	ErrUnknownProvider = fmt.Errorf("%w: unknown oauth provider", domain.ErrNotFound)
	// ErrInvalidState is returned for a callback whose state is unknown,
	// expired, already used or started for another provider.
	ErrInvalidState = fmt.Errorf("%w: invalid or expired oauth state", domain.ErrValidation)
)

// UserSaver persists the identity of a completed login.
// *service.ProfileService satisfies it.
type UserSaver interface {
	SaveAuthUser(ctx context.Context, u domain.AuthUser) error
}

// Session is the result of a completed login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.AuthUser
}

// Flow runs the authorization-code login for a set of providers.
type Flow struct {
	providers map[string]*Provider
	states    *stateStore
	sessions  *Sessions
	users     UserSaver
	log       *slog.Logger
}

// NewFlow returns a Flow over providers.
func NewFlow(providers []*Provider, sessions *Sessions, users UserSaver, log *slog.Logger) *Flow {
	byName := make(map[string]*Provider, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	return &Flow{
		providers: byName,
		states:    newStateStore(StateTTL, time.Now),
		sessions:  sessions,
		users:     users,
		log:       log,
	}
}

// Providers lists the configured provider names, sorted.
func (f *Flow) Providers() []string {
	names := make([]string, 0, len(f.providers))
	for n := range f.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Sessions returns the token issuer used by the flow.
func (f *Flow) Sessions() *Sessions { return f.sessions }

// Begin starts a login and returns the provider's authorization URL.
// The request is bound to a single-use state token and a PKCE verifier.
func (f *Flow) Begin(provider string) (string, error) {
	p, ok := f.providers[provider]
	if !ok {
		return "", fmt.Errorf("auth.Flow.Begin: %w", ErrUnknownProvider)
	}
	verifier := oauth2.GenerateVerifier()
	state := f.states.mint(provider, verifier)
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier)), nil
}

// Complete handles the callback: it checks and consumes state, exchanges
// code for a token, fetches the user, saves them and issues a session.
func (f *Flow) Complete(ctx context.Context, provider, code, state string) (Session, error) {
	p, ok := f.providers[provider]
	if !ok {
		return Session{}, fmt.Errorf("auth.Flow.Complete: %w", ErrUnknownProvider)
	}
	login, ok := f.states.consume(state, provider)
	if !ok {
		f.log.WarnContext(ctx, "oauth state rejected", "provider", provider)
		return Session{}, fmt.Errorf("auth.Flow.Complete: %w", ErrInvalidState)
	}
	if code == "" {
		return Session{}, fmt.Errorf("auth.Flow.Complete: %w: code is required", domain.ErrValidation)
	}

	tok, err := p.Config.Exchange(ctx, code, oauth2.VerifierOption(login.verifier))
	if err != nil {
		return Session{}, fmt.Errorf("auth.Flow.Complete: exchange code: %w", err)
	}

	user, err := f.fetchUser(ctx, p, tok)
	if err != nil {
		return Session{}, fmt.Errorf("auth.Flow.Complete: %w", err)
	}
	if user.ID == "" {
		return Session{}, errors.New("auth.Flow.Complete: provider returned no user id")
	}

	if err := f.users.SaveAuthUser(ctx, user); err != nil {
		return Session{}, fmt.Errorf("auth.Flow.Complete: %w", err)
	}

	token, exp, err := f.sessions.Issue(user)
	if err != nil {
		return Session{}, fmt.Errorf("auth.Flow.Complete: %w", err)
	}
	f.log.InfoContext(ctx, "oauth login completed", "provider", provider, "user_id", user.ID)
	return Session{Token: token, ExpiresAt: exp, User: user}, nil
}

func (f *Flow) fetchUser(ctx context.Context, p *Provider, tok *oauth2.Token) (domain.AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return domain.AuthUser{}, fmt.Errorf("fetch user: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return domain.AuthUser{}, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.AuthUser{}, fmt.Errorf("fetch user: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.AuthUser{}, fmt.Errorf("fetch user: %s responded %d", p.Name, resp.StatusCode)
	}
	return p.MapUser(raw)
}
