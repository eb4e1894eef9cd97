package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/georgeshao/sdstudio/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

const maxPageSize = 1000

// SQLiteStore backs the local generation index and the settings store.
type SQLiteStore struct {
	db *sql.DB
}

func New(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Index returns the generation index stored under the named table.
func (s *SQLiteStore) Index(table string) *IndexStore {
	return &IndexStore{db: s.db, table: table}
}

// IndexStore is a storage.IndexStore over one logical table.
type IndexStore struct {
	db    *sql.DB
	table string
}

var _ storage.IndexStore = (*IndexStore)(nil)

func (x *IndexStore) PutGeneration(ctx context.Context, rec *storage.GenerationRecord) error {
	keys, err := storage.EncodeKeys(rec.ObjectKeys)
	if err != nil {
		return err
	}

	_, err = x.db.ExecContext(ctx, `
		INSERT INTO generations (table_name, project_id, generation_id, input_obj, s3_object_keys, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (table_name, project_id, generation_id)
		DO UPDATE SET input_obj = excluded.input_obj, s3_object_keys = excluded.s3_object_keys`,
		x.table, rec.ProjectID, rec.GenerationID, string(rec.Input), keys, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to put generation: %w", err)
	}
	return nil
}

func (x *IndexStore) QueryGenerations(ctx context.Context, q storage.GenerationQuery) (*storage.GenerationPage, error) {
	limit := q.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	// One extra row tells us whether another page exists.
	rows, err := x.db.QueryContext(ctx, `
		SELECT project_id, generation_id, input_obj, s3_object_keys
		FROM generations
		WHERE table_name = ? AND project_id = ? AND generation_id > ?
		ORDER BY generation_id ASC
		LIMIT ?`,
		x.table, q.ProjectID, q.After, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()

	var records []*storage.GenerationRecord
	for rows.Next() {
		var (
			rec   storage.GenerationRecord
			input string
			keys  string
		)
		if err := rows.Scan(&rec.ProjectID, &rec.GenerationID, &input, &keys); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		rec.Input = []byte(input)
		if rec.ObjectKeys, err = storage.DecodeKeys(keys); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generations: %w", err)
	}

	return storage.TrimPage(records, limit), nil
}

func (x *IndexStore) DeleteGeneration(ctx context.Context, projectID, generationID string) error {
	_, err := x.db.ExecContext(ctx,
		`DELETE FROM generations WHERE table_name = ? AND project_id = ? AND generation_id = ?`,
		x.table, projectID, generationID)
	if err != nil {
		return fmt.Errorf("failed to delete generation: %w", err)
	}
	return nil
}

// Settings returns the persisted settings store.
func (s *SQLiteStore) Settings() *SettingsStore {
	return &SettingsStore{db: s.db}
}

// SettingsStore is a config.Store kept in the settings table.
type SettingsStore struct {
	db *sql.DB
}

func (st *SettingsStore) Load(ctx context.Context) (map[string]string, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[k] = v
	}
	return values, rows.Err()
}

func (st *SettingsStore) Save(ctx context.Context, key, value string) error {
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	return nil
}
