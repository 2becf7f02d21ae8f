package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsHarvest/internal/domain"
	"NewsHarvest/internal/ports"
)

const defaultTable = "harvested_articles"

var articleColumns = []string{
	"session_id", "content_hash", "homepage_url", "url", "title", "source", "author",
	"publish_date", "content", "word_count", "quality_score", "bias_density", "is_balanced",
	"concerns", "scraped_at",
}

// PostgresRepository archives accepted articles of finished sessions into Postgres.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

var _ ports.ResultRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation. An empty table name picks the default.
func NewPostgresRepository(db *sql.DB, table string) *PostgresRepository {
	if table == "" {
		table = defaultTable
	}
	return &PostgresRepository{db: db, table: table}
}

// EnsureSchema creates the archive table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}

	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
              session_id    TEXT NOT NULL,
              content_hash  CHAR(32) NOT NULL,
              homepage_url  TEXT NOT NULL,
              url           TEXT NOT NULL,
              title         TEXT NOT NULL,
              source        TEXT NOT NULL,
              author        TEXT,
              publish_date  TEXT,
              content       TEXT NOT NULL,
              word_count    INTEGER NOT NULL,
              quality_score DOUBLE PRECISION NOT NULL,
              bias_density  DOUBLE PRECISION NOT NULL,
              is_balanced   BOOLEAN NOT NULL,
              concerns      TEXT[] NOT NULL DEFAULT '{}',
              scraped_at    TIMESTAMPTZ NOT NULL,
              archived_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
              PRIMARY KEY (session_id, content_hash)
          )`, pq.QuoteIdentifier(r.table))

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", r.table, err)
	}
	return nil
}

// SaveSession inserts one row per accepted article. Rows already archived are left alone.
func (r *PostgresRepository) SaveSession(ctx context.Context, status domain.HarvestStatus) error {
	if r.db == nil || len(status.Articles) == 0 {
		return nil
	}

	query, args, err := buildInsert(r.table, status)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("archive session %s: %w", status.SessionID, err)
	}
	return nil
}

func buildInsert(table string, status domain.HarvestStatus) (string, []interface{}, error) {
	insert := sq.Insert(pq.QuoteIdentifier(table)).
		Columns(articleColumns...).
		PlaceholderFormat(sq.Dollar).
		Suffix("ON CONFLICT (session_id, content_hash) DO NOTHING")

	for _, a := range status.Articles {
		concerns := a.Bias.Concerns
		if concerns == nil {
			concerns = []string{}
		}
		insert = insert.Values(
			status.SessionID,
			a.ContentHash,
			status.HomepageURL,
			a.URL,
			a.Title,
			a.Source,
			nullable(a.Author),
			nullable(a.PublishDate),
			a.Content,
			a.WordCount,
			a.QualityScore,
			a.Bias.Density,
			a.Bias.Balanced,
			pq.StringArray(concerns),
			a.ScrapedAt,
		)
	}

	return insert.ToSql()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
