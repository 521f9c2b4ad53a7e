package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/suggest-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
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
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS decisions (
	scope_id   TEXT NOT NULL,
	key        TEXT NOT NULL,
	verdict    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (scope_id, key, verdict)
);

CREATE TABLE IF NOT EXISTS service_candidates (
	id         TEXT NOT NULL,
	scope_id   TEXT NOT NULL,
	row_id     TEXT NOT NULL,
	column_id  TEXT NOT NULL,
	payload    TEXT NOT NULL,
	source     TEXT NOT NULL,
	reasoning  TEXT,
	metadata   TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (scope_id, row_id, column_id)
);

CREATE TABLE IF NOT EXISTS documents (
	id         TEXT NOT NULL,
	scope_id   TEXT NOT NULL,
	row_id     TEXT NOT NULL,
	name       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (id, scope_id)
);

CREATE INDEX IF NOT EXISTS idx_decisions_scope ON decisions(scope_id);
CREATE INDEX IF NOT EXISTS idx_service_candidates_scope ON service_candidates(scope_id);
CREATE INDEX IF NOT EXISTS idx_documents_scope ON documents(scope_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordDecisions(ctx context.Context, scopeID string, verdict Verdict, keys []string) error {
	if scopeID == "" {
		return eris.New("sqlite: scope id required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin decisions tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, key := range keys {
		if key == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO decisions (scope_id, key, verdict, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (scope_id, key, verdict) DO NOTHING`,
			scopeID, key, string(verdict), now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: record decision %s", key)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit decisions")
}

func (s *SQLiteStore) GetDecisions(ctx context.Context, scopeID string) (model.DecisionSet, model.DecisionSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, verdict FROM decisions WHERE scope_id = ?`, scopeID,
	)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: get decisions")
	}
	defer rows.Close()

	accepted := model.DecisionSet{}
	rejected := model.DecisionSet{}
	for rows.Next() {
		var key, verdict string
		if err := rows.Scan(&key, &verdict); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: scan decision")
		}
		switch Verdict(verdict) {
		case VerdictAccepted:
			accepted.Add(key)
		case VerdictRejected:
			rejected.Add(key)
		}
	}
	return accepted, rejected, eris.Wrap(rows.Err(), "sqlite: get decisions iterate")
}

func (s *SQLiteStore) UpsertServiceCandidate(ctx context.Context, scopeID string, c model.ServiceCandidate) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	payloadJSON, err := json.Marshal(c.Payload)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal candidate payload")
	}
	metadataJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal candidate metadata")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO service_candidates (id, scope_id, row_id, column_id, payload, source, reasoning, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (scope_id, row_id, column_id) DO UPDATE SET
		   id = excluded.id, payload = excluded.payload, source = excluded.source,
		   reasoning = excluded.reasoning, metadata = excluded.metadata, created_at = excluded.created_at`,
		c.ID, scopeID, c.RowID, c.ColumnID, string(payloadJSON), c.SourceService, c.Reasoning, string(metadataJSON), c.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: upsert service candidate")
}

func (s *SQLiteStore) ListServiceCandidates(ctx context.Context, scopeID string) ([]model.ServiceCandidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, row_id, column_id, payload, source, reasoning, metadata, created_at
		 FROM service_candidates WHERE scope_id = ? ORDER BY created_at`,
		scopeID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list service candidates")
	}
	defer rows.Close()

	var out []model.ServiceCandidate
	for rows.Next() {
		var c model.ServiceCandidate
		var payloadJSON, metadataJSON string
		var reasoning sql.NullString
		if err := rows.Scan(&c.ID, &c.RowID, &c.ColumnID, &payloadJSON, &c.SourceService, &reasoning, &metadataJSON, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan service candidate")
		}
		c.Reasoning = reasoning.String
		if err := json.Unmarshal([]byte(payloadJSON), &c.Payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal candidate payload")
		}
		if metadataJSON != "" && metadataJSON != "null" {
			if err := json.Unmarshal([]byte(metadataJSON), &c.Metadata); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal candidate metadata")
			}
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list service candidates iterate")
}

func (s *SQLiteStore) PurgeServiceCandidates(ctx context.Context, scopeID, rowID, columnID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM service_candidates WHERE scope_id = ? AND row_id = ? AND column_id = ?`,
		scopeID, rowID, columnID,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: purge service candidates")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, scopeID string, d model.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	payloadJSON, err := json.Marshal(d)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal document")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, scope_id, row_id, name, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id, scope_id) DO UPDATE SET
		   row_id = excluded.row_id, name = excluded.name, payload = excluded.payload`,
		d.ID, scopeID, d.RowID, d.Name, string(payloadJSON), d.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: save document")
}

func (s *SQLiteStore) ImportDocuments(ctx context.Context, scopeID string, docs []model.Document) (int, error) {
	count := 0
	for _, d := range docs {
		if err := s.SaveDocument(ctx, scopeID, d); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, scopeID string) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM documents WHERE scope_id = ? ORDER BY created_at`,
		scopeID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		var payloadJSON string
		if err := rows.Scan(&payloadJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		var d model.Document
		if err := json.Unmarshal([]byte(payloadJSON), &d); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal document")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list documents iterate")
}
