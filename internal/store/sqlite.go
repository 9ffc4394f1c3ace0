package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/dedupe-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Default backend for
// local single-operator use.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contacts (
	id             TEXT PRIMARY KEY,
	workspace_id   TEXT NOT NULL,
	first_name     TEXT NOT NULL DEFAULT '',
	last_name      TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	company        TEXT NOT NULL DEFAULT '',
	company_domain TEXT NOT NULL DEFAULT '',
	profile_url    TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_contacts_workspace ON contacts(workspace_id);
CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(lower(email));
`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return eris.Wrap(s.db.Close(), "sqlite: close")
}

func (s *SQLiteStore) ListContacts(ctx context.Context, workspaceID string) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE workspace_id = ? ORDER BY created_at, id`,
		workspaceID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list contacts %s", workspaceID)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(
			&c.ID, &c.WorkspaceID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
			&c.Company, &c.CompanyDomain, &c.ProfileURL, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts rows")
	}
	return contacts, nil
}

func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	var c model.Contact
	err := s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id,
	).Scan(
		&c.ID, &c.WorkspaceID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Company, &c.CompanyDomain, &c.ProfileURL, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get contact %s", id)
	}
	return &c, nil
}

func (s *SQLiteStore) CreateContact(ctx context.Context, c model.Contact) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (`+contactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.WorkspaceID, c.FirstName, c.LastName, c.Email, c.Phone, c.Company, c.CompanyDomain, c.ProfileURL, c.CreatedAt, c.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert contact %s", c.ID)
}

// CreateContacts inserts in a single transaction.
func (s *SQLiteStore) CreateContacts(ctx context.Context, contacts []model.Contact) (int64, error) {
	if len(contacts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: bulk insert begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO contacts (`+contactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: bulk insert prepare")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var n int64
	for _, c := range contacts {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.WorkspaceID, c.FirstName, c.LastName, c.Email, c.Phone, c.Company, c.CompanyDomain, c.ProfileURL, c.CreatedAt, c.UpdatedAt,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: bulk insert contact %s", c.ID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: bulk insert commit")
	}
	return n, nil
}

func (s *SQLiteStore) UpdateContact(ctx context.Context, id string, patch model.ContactPatch) error {
	sqlText, args := buildSQLiteUpdate(id, patch)
	if sqlText == "" {
		return nil
	}
	res, err := s.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update contact %s", id)
	}
	return checkAffected(res, "sqlite: update contact")
}

func (s *SQLiteStore) DeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete contact %s", id)
	}
	return checkAffected(res, "sqlite: delete contact")
}

// MergeContacts runs the patch and the delete in one transaction.
func (s *SQLiteStore) MergeContacts(ctx context.Context, keepID string, patch model.ContactPatch, loserID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: merge begin tx")
	}
	defer tx.Rollback()

	if sqlText, args := buildSQLiteUpdate(keepID, patch); sqlText != "" {
		res, err := tx.ExecContext(ctx, sqlText, args...)
		if err != nil {
			return eris.Wrapf(err, "sqlite: merge update %s", keepID)
		}
		if err := checkAffected(res, "sqlite: merge update"); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, loserID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: merge delete %s", loserID)
	}
	if err := checkAffected(res, "sqlite: merge delete"); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(), "sqlite: merge commit")
}

func buildSQLiteUpdate(id string, patch model.ContactPatch) (string, []any) {
	cols, vals := patchColumns(patch)
	if len(cols) == 0 {
		return "", nil
	}

	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = col + " = ?"
	}
	sets = append(sets, "updated_at = ?")
	vals = append(vals, time.Now().UTC())
	vals = append(vals, id)

	return fmt.Sprintf("UPDATE contacts SET %s WHERE id = ?", strings.Join(sets, ", ")), vals
}

func checkAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "%s: rows affected", op)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
