package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

// ErrInvalidStatus is returned for an unknown inquiry status.
var ErrInvalidStatus = errors.New("invalid inquiry status")

// Settings returns every site setting.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// UpdateSettings merges values into the stored settings and returns the result.
func (s *Store) UpdateSettings(ctx context.Context, values map[string]string) (map[string]string, error) {
	for k := range values {
		if err := s.validate.Var(k, "required,max=100"); err != nil {
			return nil, fmt.Errorf("setting key %q: %w", k, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin settings update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := formatTime(now())
	for k, v := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, v, ts,
		); err != nil {
			return nil, fmt.Errorf("save setting %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit settings: %w", err)
	}
	return s.Settings(ctx)
}

// CreateInquiry validates and stores a new inquiry. When the form did not
// report a language, the message language is detected.
func (s *Store) CreateInquiry(ctx context.Context, in *Inquiry) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Message = strings.TrimSpace(in.Message)
	if err := s.validate.Struct(in); err != nil {
		return err
	}

	if in.Language == "" {
		in.Language = DetectLanguage(in.Message)
	}
	in.ID = uuid.NewString()
	in.Status = StatusNew
	in.CreatedAt = now()
	in.UpdatedAt = in.CreatedAt

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO inquiries (id, name, email, phone, country, treatment, message, language, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, in.Email, in.Phone, in.Country, in.Treatment, in.Message, in.Language,
		string(in.Status), formatTime(in.CreatedAt), formatTime(in.UpdatedAt),
	); err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

const inquiryColumns = `id, name, email, phone, country, treatment, message, language, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInquiry(row rowScanner) (Inquiry, error) {
	var (
		in               Inquiry
		status           string
		created, updated string
	)
	err := row.Scan(&in.ID, &in.Name, &in.Email, &in.Phone, &in.Country, &in.Treatment,
		&in.Message, &in.Language, &status, &created, &updated)
	in.Status = InquiryStatus(status)
	in.CreatedAt = parseTime(created)
	in.UpdatedAt = parseTime(updated)
	return in, err
}

// Inquiries lists inquiries newest first, optionally restricted to one status.
func (s *Store) Inquiries(ctx context.Context, status InquiryStatus) ([]Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries`
	var args []any
	if status != "" {
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	out := make([]Inquiry, 0)
	for rows.Next() {
		in, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Inquiry returns the inquiry with id.
func (s *Store) Inquiry(ctx context.Context, id string) (*Inquiry, error) {
	in, err := scanInquiry(s.db.QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inquiry %s: %w", id, err)
	}
	return &in, nil
}

// SetInquiryStatus moves an inquiry to status.
func (s *Store) SetInquiryStatus(ctx context.Context, id string, status InquiryStatus) (*Inquiry, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	res, err := s.db.ExecContext(ctx, `UPDATE inquiries SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(now()), id)
	if err != nil {
		return nil, fmt.Errorf("update inquiry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Inquiry(ctx, id)
}

// Subscribe adds email to the newsletter. It reports false when the address
// was already subscribed.
func (s *Store) Subscribe(ctx context.Context, email, lang string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subscribers (email, language, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(email) DO NOTHING`,
		email, lang, formatTime(now()),
	)
	if err != nil {
		return false, fmt.Errorf("subscribe %s: %w", email, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Unsubscribe removes email from the newsletter.
func (s *Store) Unsubscribe(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscribers WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("unsubscribe %s: %w", email, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Subscribers lists newsletter subscribers, oldest first.
func (s *Store) Subscribers(ctx context.Context) ([]Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, language, created_at FROM subscribers ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	out := make([]Subscriber, 0)
	for rows.Next() {
		var (
			sub     Subscriber
			created string
		)
		if err := rows.Scan(&sub.Email, &sub.Language, &created); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		sub.CreatedAt = parseTime(created)
		out = append(out, sub)
	}
	return out, rows.Err()
}

// DetectLanguage returns the ISO 639-1 code of text, or "" when detection is
// not reliable.
func DetectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
