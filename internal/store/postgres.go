package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dedupe-cli/internal/db"
	"github.com/sells-group/dedupe-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const contactColumns = `id, workspace_id, first_name, last_name, email, phone, company, company_domain, profile_url, created_at, updated_at`

// preparedStatements lists queries prepared on each new connection; these
// are the hot paths during review sessions.
var preparedStatements = map[string]string{
	"list_contacts":  `SELECT ` + contactColumns + ` FROM contacts WHERE workspace_id = $1 ORDER BY created_at, id`,
	"get_contact":    `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`,
	"delete_contact": `DELETE FROM contacts WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
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
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_contacts_workspace ON contacts(workspace_id);
CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(lower(email));
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) ListContacts(ctx context.Context, workspaceID string) ([]model.Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE workspace_id = $1 ORDER BY created_at, id`,
		workspaceID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list contacts %s", workspaceID)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts rows")
	}
	return contacts, nil
}

func (s *PostgresStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get contact %s", id)
	}
	return &c, nil
}

func (s *PostgresStore) CreateContact(ctx context.Context, c model.Contact) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contacts (`+contactColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.WorkspaceID, c.FirstName, c.LastName, c.Email, c.Phone, c.Company, c.CompanyDomain, c.ProfileURL, c.CreatedAt, c.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert contact %s", c.ID)
}

// CreateContacts bulk-inserts via COPY.
func (s *PostgresStore) CreateContacts(ctx context.Context, contacts []model.Contact) (int64, error) {
	if len(contacts) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([][]any, len(contacts))
	for i, c := range contacts {
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
		rows[i] = []any{c.ID, c.WorkspaceID, c.FirstName, c.LastName, c.Email, c.Phone, c.Company, c.CompanyDomain, c.ProfileURL, c.CreatedAt, c.UpdatedAt}
	}
	return db.CopyFrom(ctx, s.pool, "contacts",
		[]string{"id", "workspace_id", "first_name", "last_name", "email", "phone", "company", "company_domain", "profile_url", "created_at", "updated_at"},
		rows,
	)
}

func (s *PostgresStore) UpdateContact(ctx context.Context, id string, patch model.ContactPatch) error {
	sql, args := buildContactUpdate(id, patch)
	if sql == "" {
		return nil
	}
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update contact %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteContact(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete contact %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MergeContacts runs the patch and the delete in one transaction so the pair
// resolution either fully applies or leaves the data untouched.
func (s *PostgresStore) MergeContacts(ctx context.Context, keepID string, patch model.ContactPatch, loserID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: merge begin tx")
	}
	defer tx.Rollback(ctx)

	if sql, args := buildContactUpdate(keepID, patch); sql != "" {
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return eris.Wrapf(err, "postgres: merge update %s", keepID)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, loserID)
	if err != nil {
		return eris.Wrapf(err, "postgres: merge delete %s", loserID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: merge commit")
}

// buildContactUpdate renders an UPDATE for the set fields of a patch.
// Returns "" when the patch is empty.
func buildContactUpdate(id string, patch model.ContactPatch) (string, []any) {
	cols, vals := patchColumns(patch)
	if len(cols) == 0 {
		return "", nil
	}

	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(cols)+1))
	vals = append(vals, time.Now().UTC())
	vals = append(vals, id)

	sql := fmt.Sprintf("UPDATE contacts SET %s WHERE id = $%d", strings.Join(sets, ", "), len(vals))
	return sql, vals
}

// scanContact reads one contact row in contactColumns order.
func scanContact(row pgx.Row) (model.Contact, error) {
	var c model.Contact
	err := row.Scan(
		&c.ID, &c.WorkspaceID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Company, &c.CompanyDomain, &c.ProfileURL, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}
