package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifecurve/internal/auth"
	"lifecurve/internal/config"
	"lifecurve/internal/domain"
	"lifecurve/internal/events"
	"lifecurve/internal/repo"
	"lifecurve/internal/weibull"
)

// Engine ties fitted parameters to per-user persistent storage and the audit
// log. All numeric work stays in the weibull package; the engine only
// validates, stores and records.
type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Now    func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// ErrEmailTaken indicates a registration conflict.
var ErrEmailTaken = errors.New("email already registered")

// ErrBadCredentials indicates a failed login. The message is deliberately
// the same for unknown email and wrong password.
var ErrBadCredentials = errors.New("invalid email or password")

// RegisterUser creates an account with a bcrypt-hashed password.
func (e Engine) RegisterUser(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, errors.New("a valid email address is required")
	}
	if len(password) < 8 {
		return domain.User{}, errors.New("password must be at least 8 characters")
	}
	if _, err := e.Repo.GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return domain.User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.InsertUser(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	if err := e.Events.Append(ctx, nil, "user.registered", "user", u.ID, u.ID, nil); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Authenticate checks credentials and returns the matching user.
func (e Engine) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	u, err := e.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.User{}, ErrBadCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if !auth.VerifyPassword(password, u.PasswordHash) {
		return domain.User{}, ErrBadCredentials
	}
	return u, nil
}

// SaveCurveOptions are parameters for persisting a fitted curve.
type SaveCurveOptions struct {
	Name        string
	Description string
	Shape       float64
	Scale       float64
	Method      string
	UserID      string
}

// SaveCurve stores a named parameter pair for a user. Curve identity is
// assigned here; fitting code never produces IDs.
func (e Engine) SaveCurve(ctx context.Context, opts SaveCurveOptions) (domain.Curve, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return domain.Curve{}, errors.New("please provide a name for the curve")
	}
	if opts.UserID == "" {
		return domain.Curve{}, errors.New("please log in to save curves")
	}
	if ok, msg := weibull.ValidateParameters(opts.Shape, opts.Scale); !ok {
		return domain.Curve{}, errors.New(msg)
	}
	if opts.Method == "" {
		opts.Method = "Direct Entry"
	}
	if _, err := e.Repo.GetUser(ctx, opts.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Curve{}, errors.New("please log in to save curves")
		}
		return domain.Curve{}, err
	}
	c := domain.Curve{
		ID:          uuid.NewString(),
		UserID:      opts.UserID,
		Name:        strings.TrimSpace(opts.Name),
		Description: opts.Description,
		Shape:       opts.Shape,
		Scale:       opts.Scale,
		Method:      opts.Method,
		CreatedAt:   e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.InsertCurve(ctx, c); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return domain.Curve{}, fmt.Errorf("a curve named %q already exists", c.Name)
		}
		return domain.Curve{}, fmt.Errorf("save curve: %w", err)
	}
	if err := e.Events.Append(ctx, nil, "curve.saved", "curve", c.ID, c.UserID, events.EventPayload{
		"name": c.Name, "method": c.Method, "shape": c.Shape, "scale": c.Scale,
	}); err != nil {
		return domain.Curve{}, err
	}
	return c, nil
}

// DeleteCurve removes a user's named curve.
func (e Engine) DeleteCurve(ctx context.Context, userID, name string) error {
	if userID == "" {
		return errors.New("please log in to delete curves")
	}
	c, err := e.Repo.GetCurve(ctx, userID, name)
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("curve %q not found", name)
	}
	if err != nil {
		return err
	}
	if err := e.Repo.DeleteCurve(ctx, userID, name); err != nil {
		return err
	}
	return e.Events.Append(ctx, nil, "curve.deleted", "curve", c.ID, userID, events.EventPayload{"name": name})
}

// ListCurves returns a user's saved curves, newest first.
func (e Engine) ListCurves(ctx context.Context, userID string) ([]domain.Curve, error) {
	if userID == "" {
		return nil, nil
	}
	return e.Repo.ListCurves(ctx, userID)
}

// GetCurve returns a user's curve by name.
func (e Engine) GetCurve(ctx context.Context, userID, name string) (domain.Curve, error) {
	return e.Repo.GetCurve(ctx, userID, name)
}
