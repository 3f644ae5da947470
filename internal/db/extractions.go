package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Extraction is one row of the extraction log. Field values are never
// stored, only which labels were missing.
type Extraction struct {
	ID            uuid.UUID `json:"id"`
	Success       bool      `json:"success"`
	MissingFields []string  `json:"missing_fields"`
	OCREngine     string    `json:"ocr_engine"`
	OCRMillis     int64     `json:"ocr_ms"`
	TotalMillis   int64     `json:"total_ms"`
	ImageBytes    int       `json:"image_bytes"`
	ImageObject   string    `json:"image_object,omitempty"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS extraction_log (
	id             uuid PRIMARY KEY,
	success        boolean NOT NULL,
	missing_fields text[] NOT NULL DEFAULT '{}',
	ocr_engine     text NOT NULL,
	ocr_ms         bigint NOT NULL DEFAULT 0,
	total_ms       bigint NOT NULL DEFAULT 0,
	image_bytes    integer NOT NULL DEFAULT 0,
	image_object   text,
	error          text,
	created_at     timestamptz NOT NULL DEFAULT now()
)`

// EnsureSchema creates the extraction_log table if it does not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create extraction_log: %w", err)
	}
	return nil
}

// RecordExtraction inserts e and fills in CreatedAt
func (s *Store) RecordExtraction(ctx context.Context, e *Extraction) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.MissingFields == nil {
		e.MissingFields = []string{}
	}

	query := `
		INSERT INTO extraction_log (
			id, success, missing_fields, ocr_engine, ocr_ms, total_ms,
			image_bytes, image_object, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''))
		RETURNING created_at
	`
	err := s.pool.QueryRow(ctx, query,
		e.ID, e.Success, e.MissingFields, e.OCREngine, e.OCRMillis, e.TotalMillis,
		e.ImageBytes, e.ImageObject, e.Error,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record extraction: %w", err)
	}
	return nil
}

// RecentExtractions returns the newest log rows, most recent first
func (s *Store) RecentExtractions(ctx context.Context, limit int) ([]Extraction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, success, missing_fields, ocr_engine, ocr_ms, total_ms,
		       image_bytes, COALESCE(image_object, ''), COALESCE(error, ''), created_at
		FROM extraction_log
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Extraction
	for rows.Next() {
		var e Extraction
		if err := rows.Scan(
			&e.ID, &e.Success, &e.MissingFields, &e.OCREngine, &e.OCRMillis, &e.TotalMillis,
			&e.ImageBytes, &e.ImageObject, &e.Error, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
