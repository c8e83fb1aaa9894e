package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
)

// Action is what the gate tells the router to do.
type Action int

const (
	Continue Action = iota
	Redirect
)

// Decision is the outcome of gate evaluation.
type Decision struct {
	Action   Action
	Location string
}

// Result carries the decision plus the session the request ended up with.
type Result struct {
	Decision Decision
	// Session is nil when no usable token was presented.
	Session *domain.Session
	// Changed is set when Session differs from the presented token and must be written back.
	Changed bool
	// Refreshed is set when a refresh was attempted during this evaluation.
	Refreshed bool
	// Reason explains a logged-out outcome (port.ErrUnauthenticated,
	// port.ErrSessionInvalid or port.ErrRefreshFailed). Diagnostic only.
	Reason error
}

// LoggedIn reports whether the evaluated session authorizes the request.
func (r Result) LoggedIn() bool {
	return r.Session.LoggedIn()
}

// Decoder verifies raw session tokens.
type Decoder interface {
	Decode(token string) (*domain.Session, error)
}

// Gate decides, per request, whether to continue or redirect.
type Gate struct {
	codec     Decoder
	refresher *Refresher
	now       func() time.Time
	logger    *slog.Logger
}

// NewGate creates a gate. refresher may be nil to disable refreshing.
func NewGate(codec Decoder, refresher *Refresher, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{codec: codec, refresher: refresher, now: time.Now, logger: logger}
}

// Decide applies the route table. It is a pure function of its inputs.
func Decide(path string, loggedIn bool) Decision {
	switch Classify(path) {
	case Protected:
		if !loggedIn {
			return Decision{Action: Redirect, Location: SignInURL(normalize(path))}
		}
	case AuthOnly:
		if loggedIn {
			return Decision{Action: Redirect, Location: DashboardPath}
		}
	}
	return Decision{Action: Continue}
}

// Evaluate materializes the session behind rawToken, refreshing it at most
// once, and classifies path. It never panics and never returns an error:
// every failure resolves to a logged-out decision.
func (g *Gate) Evaluate(ctx context.Context, path, rawToken string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			g.logger.Error("session gate panic", "panic", p, "path", path)
			res = Result{
				Decision: Decide(path, false),
				Reason:   port.ErrUnauthenticated,
			}
		}
	}()

	res.Session, res.Changed, res.Refreshed, res.Reason = g.materialize(ctx, rawToken)
	res.Decision = Decide(path, res.LoggedIn())
	return res
}

func (g *Gate) materialize(ctx context.Context, rawToken string) (*domain.Session, bool, bool, error) {
	if rawToken == "" {
		return nil, false, false, port.ErrUnauthenticated
	}

	s, err := g.codec.Decode(rawToken)
	if err != nil {
		g.logger.Debug("session token rejected", "error", err)
		return nil, false, false, port.ErrSessionInvalid
	}
	if s.Error != "" {
		return s, false, false, port.ErrRefreshFailed
	}
	if s.AccessToken == "" {
		return s, false, false, port.ErrUnauthenticated
	}
	if !s.NeedsRefresh(g.now()) || g.refresher == nil {
		return s, false, false, nil
	}

	next, err := g.refresher.Refresh(ctx, s)
	if err != nil {
		g.logger.Warn("access token refresh failed", "user_id", s.User.ID, "error", err)
		if next == nil {
			next = s.Clone()
			next.Error = domain.RefreshAccessTokenError
		}
		return next, true, true, port.ErrRefreshFailed
	}
	return next, true, true, nil
}

// IsRefreshFailure reports whether a result's reason is a terminal refresh failure.
func IsRefreshFailure(r Result) bool {
	return errors.Is(r.Reason, port.ErrRefreshFailed)
}
