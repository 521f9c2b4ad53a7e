package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/suggest-cli/internal/db"
	"github.com/sells-group/suggest-cli/internal/model"
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

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot store operations.
var preparedStatements = map[string]string{
	"get_decisions":     `SELECT key, verdict FROM decisions WHERE scope_id = $1`,
	"upsert_candidate":  `INSERT INTO service_candidates (id, scope_id, row_id, column_id, payload, source, reasoning, metadata, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ON CONFLICT (scope_id, row_id, column_id) DO UPDATE SET id = EXCLUDED.id, payload = EXCLUDED.payload, source = EXCLUDED.source, reasoning = EXCLUDED.reasoning, metadata = EXCLUDED.metadata, created_at = EXCLUDED.created_at`,
	"list_candidates":   `SELECT id, row_id, column_id, payload, source, reasoning, metadata, created_at FROM service_candidates WHERE scope_id = $1 ORDER BY created_at`,
	"purge_candidates":  `DELETE FROM service_candidates WHERE scope_id = $1 AND row_id = $2 AND column_id = $3`,
	"list_documents":    `SELECT payload FROM documents WHERE scope_id = $1 ORDER BY created_at`,
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

const postgresMigration = `
CREATE TABLE IF NOT EXISTS decisions (
	scope_id   TEXT NOT NULL,
	key        TEXT NOT NULL,
	verdict    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (scope_id, key, verdict)
);

CREATE TABLE IF NOT EXISTS service_candidates (
	id         TEXT NOT NULL,
	scope_id   TEXT NOT NULL,
	row_id     TEXT NOT NULL,
	column_id  TEXT NOT NULL,
	payload    JSONB NOT NULL,
	source     TEXT NOT NULL,
	reasoning  TEXT,
	metadata   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (scope_id, row_id, column_id)
);

CREATE TABLE IF NOT EXISTS documents (
	id         TEXT NOT NULL,
	scope_id   TEXT NOT NULL,
	row_id     TEXT NOT NULL,
	name       TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (id, scope_id)
);

CREATE INDEX IF NOT EXISTS idx_decisions_scope ON decisions(scope_id);
CREATE INDEX IF NOT EXISTS idx_service_candidates_scope ON service_candidates(scope_id);
CREATE INDEX IF NOT EXISTS idx_documents_scope ON documents(scope_id);
CREATE INDEX IF NOT EXISTS idx_documents_row ON documents(scope_id, row_id);
`

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

func (s *PostgresStore) RecordDecisions(ctx context.Context, scopeID string, verdict Verdict, keys []string) error {
	if scopeID == "" {
		return eris.New("postgres: scope id required")
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		rows = append(rows, []any{scopeID, key, string(verdict), now})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "decisions",
		Columns:      []string{"scope_id", "key", "verdict", "created_at"},
		ConflictKeys: []string{"scope_id", "key", "verdict"},
		DoNothing:    true,
	}, rows)
	return eris.Wrap(err, "postgres: record decisions")
}

func (s *PostgresStore) GetDecisions(ctx context.Context, scopeID string) (model.DecisionSet, model.DecisionSet, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, verdict FROM decisions WHERE scope_id = $1`, scopeID,
	)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: get decisions")
	}
	defer rows.Close()

	accepted := model.DecisionSet{}
	rejected := model.DecisionSet{}
	for rows.Next() {
		var key, verdict string
		if err := rows.Scan(&key, &verdict); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: scan decision")
		}
		switch Verdict(verdict) {
		case VerdictAccepted:
			accepted.Add(key)
		case VerdictRejected:
			rejected.Add(key)
		}
	}
	return accepted, rejected, eris.Wrap(rows.Err(), "postgres: get decisions iterate")
}

func (s *PostgresStore) UpsertServiceCandidate(ctx context.Context, scopeID string, c model.ServiceCandidate) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	payloadJSON, err := json.Marshal(c.Payload)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal candidate payload")
	}
	metadataJSON, err := json.Marshal(c.Metadata)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal candidate metadata")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO service_candidates (id, scope_id, row_id, column_id, payload, source, reasoning, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (scope_id, row_id, column_id) DO UPDATE SET
		   id = EXCLUDED.id, payload = EXCLUDED.payload, source = EXCLUDED.source,
		   reasoning = EXCLUDED.reasoning, metadata = EXCLUDED.metadata, created_at = EXCLUDED.created_at`,
		c.ID, scopeID, c.RowID, c.ColumnID, payloadJSON, c.SourceService, c.Reasoning, metadataJSON, c.CreatedAt,
	)
	return eris.Wrap(err, "postgres: upsert service candidate")
}

func (s *PostgresStore) ListServiceCandidates(ctx context.Context, scopeID string) ([]model.ServiceCandidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, row_id, column_id, payload, source, reasoning, metadata, created_at
		 FROM service_candidates WHERE scope_id = $1 ORDER BY created_at`,
		scopeID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list service candidates")
	}
	defer rows.Close()

	var out []model.ServiceCandidate
	for rows.Next() {
		var c model.ServiceCandidate
		var payloadJSON, metadataJSON []byte
		var reasoning sql.NullString
		if err := rows.Scan(&c.ID, &c.RowID, &c.ColumnID, &payloadJSON, &c.SourceService, &reasoning, &metadataJSON, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan service candidate")
		}
		c.Reasoning = reasoning.String
		if err := json.Unmarshal(payloadJSON, &c.Payload); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal candidate payload")
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &c.Metadata); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal candidate metadata")
			}
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list service candidates iterate")
}

func (s *PostgresStore) PurgeServiceCandidates(ctx context.Context, scopeID, rowID, columnID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM service_candidates WHERE scope_id = $1 AND row_id = $2 AND column_id = $3`,
		scopeID, rowID, columnID,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: purge service candidates")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) SaveDocument(ctx context.Context, scopeID string, d model.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	payloadJSON, err := json.Marshal(d)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal document")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, scope_id, row_id, name, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id, scope_id) DO UPDATE SET
		   row_id = EXCLUDED.row_id, name = EXCLUDED.name, payload = EXCLUDED.payload`,
		d.ID, scopeID, d.RowID, d.Name, payloadJSON, d.CreatedAt,
	)
	return eris.Wrap(err, "postgres: save document")
}

func (s *PostgresStore) ImportDocuments(ctx context.Context, scopeID string, docs []model.Document) (int, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(docs))
	for i := range docs {
		d := docs[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		payloadJSON, err := json.Marshal(d)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal document")
		}
		rows = append(rows, []any{d.ID, scopeID, d.RowID, d.Name, payloadJSON, d.CreatedAt})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "documents",
		Columns:      []string{"id", "scope_id", "row_id", "name", "payload", "created_at"},
		ConflictKeys: []string{"id", "scope_id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: import documents")
	}
	return int(n), nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, scopeID string) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM documents WHERE scope_id = $1 ORDER BY created_at`,
		scopeID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var out []model.Document
	for rows.Next() {
		var payloadJSON []byte
		if err := rows.Scan(&payloadJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		var d model.Document
		if err := json.Unmarshal(payloadJSON, &d); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal document")
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list documents iterate")
}
