package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"lifecurve/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// --- users ---

func (r Repo) InsertUser(ctx context.Context, u domain.User) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO users(id,email,password_hash,created_at) VALUES (?,?,?,?)`,
		u.ID, strings.ToLower(u.Email), u.PasswordHash, u.CreatedAt)
	return err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

func (r Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT id,email,password_hash,created_at FROM users WHERE id=?`, id))
}

func (r Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT id,email,password_hash,created_at FROM users WHERE email=?`, strings.ToLower(email)))
}

// --- curves ---

func (r Repo) InsertCurve(ctx context.Context, c domain.Curve) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO curves(id,user_id,name,description,shape,scale,method,created_at) VALUES (?,?,?,?,?,?,?,?)`,
		c.ID, c.UserID, c.Name, nullable(c.Description), c.Shape, c.Scale, c.Method, c.CreatedAt)
	return err
}

func scanCurve(row *sql.Row) (domain.Curve, error) {
	var c domain.Curve
	var desc sql.NullString
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &desc, &c.Shape, &c.Scale, &c.Method, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if desc.Valid {
		c.Description = desc.String
	}
	return c, err
}

func (r Repo) GetCurve(ctx context.Context, userID, name string) (domain.Curve, error) {
	return scanCurve(r.DB.QueryRowContext(ctx,
		`SELECT id,user_id,name,description,shape,scale,method,created_at FROM curves WHERE user_id=? AND name=?`, userID, name))
}

func (r Repo) ListCurves(ctx context.Context, userID string) ([]domain.Curve, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,user_id,name,COALESCE(description,'') AS description,shape,scale,method,created_at FROM curves WHERE user_id=? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Curve
	for rows.Next() {
		var c domain.Curve
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Shape, &c.Scale, &c.Method, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r Repo) DeleteCurve(ctx context.Context, userID, name string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM curves WHERE user_id=? AND name=?`, userID, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- events ---

func (r Repo) LatestEvents(ctx context.Context, limit int, evtType, entityKind, entityID string) ([]domain.Event, error) {
	clauses := []string{"1=1"}
	var args []any
	if evtType != "" {
		clauses = append(clauses, "type=?")
		args = append(args, evtType)
	}
	if entityKind != "" {
		clauses = append(clauses, "entity_kind=?")
		args = append(args, entityKind)
	}
	if entityID != "" {
		clauses = append(clauses, "entity_id=?")
		args = append(args, entityID)
	}
	query := `SELECT id,ts,type,entity_kind,COALESCE(entity_id,''),COALESCE(user_id,''),payload_json FROM events WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY id DESC`
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &e.EntityID, &e.UserID, &e.Payload); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
