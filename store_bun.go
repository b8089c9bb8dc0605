package session

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// DefaultStorageSlot is the row key used when the config does not name one.
// Slots let several profiles of the same installation keep separate
// sessions in one database file.
const DefaultStorageSlot = "default"

// sessionRow is the durable mirror of a session: one row per slot, all
// four fields written together.
type sessionRow struct {
	bun.BaseModel `bun:"table:session_state,alias:ss"`
	Slot          string     `bun:"slot,pk" json:"slot"`
	AccessToken   string     `bun:"access_token" json:"access_token,omitempty"`
	User          string     `bun:"user_profile" json:"user_profile,omitempty"`
	Role          string     `bun:"role" json:"role,omitempty"`
	UserName      string     `bun:"user_name" json:"user_name,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// BunStore persists session records in SQLite through Bun.
type BunStore struct {
	db   *bun.DB
	slot string
	now  func() time.Time
}

var _ Store = (*BunStore)(nil)

// NewBunStore wraps an existing Bun handle.
func NewBunStore(db *bun.DB, slot string) *BunStore {
	if slot == "" {
		slot = DefaultStorageSlot
	}
	return &BunStore{
		db:   db,
		slot: slot,
		now:  time.Now,
	}
}

// OpenBunStore opens the SQLite database named by cfg.GetStorageDSN and
// ensures the session table exists.
func OpenBunStore(ctx context.Context, cfg Config) (*BunStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetStorageDSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open session database")
	}

	store := NewBunStore(bun.NewDB(sqldb, sqlitedialect.New()), cfg.GetStorageSlot())

	if err := store.Init(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// Init creates the session table when missing.
func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*sessionRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create session table")
	}
	return nil
}

// DB exposes the underlying handle so callers can close it on shutdown.
func (s *BunStore) DB() *bun.DB {
	return s.db
}

func (s *BunStore) Load(ctx context.Context) (Record, error) {
	row := new(sessionRow)

	err := s.db.NewSelect().
		Model(row).
		Where("slot = ?", s.slot).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, nil
		}
		return Record{}, errors.Wrap(err, errors.CategoryInternal, "failed to load session record")
	}

	return Record{
		AccessToken: row.AccessToken,
		User:        row.User,
		Role:        row.Role,
		UserName:    row.UserName,
	}, nil
}

// Save upserts the slot's row in a single statement so the four fields
// change together.
func (s *BunStore) Save(ctx context.Context, rec Record) error {
	now := s.now()
	row := &sessionRow{
		Slot:        s.slot,
		AccessToken: rec.AccessToken,
		User:        rec.User,
		Role:        rec.Role,
		UserName:    rec.UserName,
		UpdatedAt:   &now,
	}

	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (slot) DO UPDATE").
		Set("access_token = EXCLUDED.access_token").
		Set("user_profile = EXCLUDED.user_profile").
		Set("role = EXCLUDED.role").
		Set("user_name = EXCLUDED.user_name").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to save session record")
	}

	return nil
}

func (s *BunStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*sessionRow)(nil)).
		Where("slot = ?", s.slot).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear session record")
	}
	return nil
}
