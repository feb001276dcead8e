package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lifecurve/internal/config"
	"lifecurve/internal/db"
	"lifecurve/internal/engine"
	"lifecurve/internal/migrate"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, config.Default())
	eng.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return testEnv{Engine: eng, Ctx: context.Background()}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.Engine.RegisterUser(env.Ctx, "grid@example.com", "longenough")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == "" || u.Email != "grid@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}
	if _, err := env.Engine.RegisterUser(env.Ctx, "grid@example.com", "longenough"); !errors.Is(err, engine.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := env.Engine.Authenticate(env.Ctx, "grid@example.com", "longenough"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := env.Engine.Authenticate(env.Ctx, "grid@example.com", "wrongpass"); !errors.Is(err, engine.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := env.Engine.Authenticate(env.Ctx, "nobody@example.com", "whatever"); !errors.Is(err, engine.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for unknown email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.RegisterUser(env.Ctx, "not-an-email", "longenough"); err == nil {
		t.Fatalf("expected email validation error")
	}
	if _, err := env.Engine.RegisterUser(env.Ctx, "a@b.com", "short"); err == nil {
		t.Fatalf("expected password validation error")
	}
}

func TestSaveListDeleteCurve(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.Engine.RegisterUser(env.Ctx, "ops@example.com", "longenough")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	c, err := env.Engine.SaveCurve(env.Ctx, engine.SaveCurveOptions{
		Name:   "transformers",
		Shape:  2.4,
		Scale:  38,
		Method: "Point Fitting",
		UserID: u.ID,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("expected curve id to be assigned")
	}

	// duplicate name for the same user is a conflict
	if _, err := env.Engine.SaveCurve(env.Ctx, engine.SaveCurveOptions{
		Name: "transformers", Shape: 1, Scale: 1, UserID: u.ID,
	}); err == nil {
		t.Fatalf("expected duplicate name error")
	}

	curves, err := env.Engine.ListCurves(env.Ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(curves) != 1 || curves[0].Name != "transformers" {
		t.Fatalf("unexpected list %+v", curves)
	}

	if err := env.Engine.DeleteCurve(env.Ctx, u.ID, "transformers"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.Engine.DeleteCurve(env.Ctx, u.ID, "transformers"); err == nil {
		t.Fatalf("expected not found on second delete")
	}
}

func TestSaveCurveValidation(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.Engine.RegisterUser(env.Ctx, "v@example.com", "longenough")

	if _, err := env.Engine.SaveCurve(env.Ctx, engine.SaveCurveOptions{Shape: 2, Scale: 1, UserID: u.ID}); err == nil {
		t.Fatalf("expected missing name error")
	}
	if _, err := env.Engine.SaveCurve(env.Ctx, engine.SaveCurveOptions{Name: "x", Shape: 2, Scale: 1}); err == nil {
		t.Fatalf("expected missing user error")
	}
	if _, err := env.Engine.SaveCurve(env.Ctx, engine.SaveCurveOptions{Name: "x", Shape: -2, Scale: 1, UserID: u.ID}); err == nil {
		t.Fatalf("expected parameter validation error")
	}
}

func TestSaveCurveAppendsEvent(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.Engine.RegisterUser(env.Ctx, "log@example.com", "longenough")
	if _, err := env.Engine.SaveCurve(env.Ctx, engine.SaveCurveOptions{
		Name: "breakers", Shape: 3, Scale: 22, UserID: u.ID,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	evts, err := env.Engine.Repo.LatestEvents(env.Ctx, 10, "curve.saved", "", "")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(evts) != 1 {
		t.Fatalf("expected one curve.saved event, got %d", len(evts))
	}
}
