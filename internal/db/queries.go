package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/pannote/internal/errors"
	"github.com/hpungsan/pannote/internal/record"
)

// Run modes recorded in runs.mode.
const (
	ModeBibliography = "bibliography"
	ModeLoose        = "loose"
)

// RunMeta describes the invocation that produced an exported record set.
type RunMeta struct {
	Mode       string
	BibPath    string
	PDFDir     string
	Filters    []string
	IncludeAll bool
}

// Export writes works as one new run inside a single transaction and
// returns the run ID. Works keep their order via the position column.
func Export(ctx context.Context, db *sql.DB, works []record.AnnotatedWork, meta RunMeta) (string, error) {
	if ctx.Err() != nil {
		return "", errors.NewCancelled("sqlite export")
	}
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	runID := id.String()

	var filtersJSON sql.NullString
	if len(meta.Filters) > 0 {
		data, err := json.Marshal(meta.Filters)
		if err != nil {
			return "", errors.NewInternal(err)
		}
		filtersJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, mode, bib_path, pdf_dir, filters_json, include_all, work_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, now.Unix(), meta.Mode, nullIfEmpty(meta.BibPath), nullIfEmpty(meta.PDFDir),
		filtersJSON, meta.IncludeAll, len(works))
	if err != nil {
		return "", errors.NewInternal(err)
	}

	workStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO works (
			run_id, position, cite_key, author, year, title, journal,
			review, doi, file_ref, file, extra_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	defer workStmt.Close()

	annotStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO annotations (run_id, work_position, seq, page, date, text, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	defer annotStmt.Close()

	for pos, w := range works {
		if ctx.Err() != nil {
			return "", errors.NewCancelled("sqlite export")
		}

		var extraJSON sql.NullString
		if len(w.Fields.Extra) > 0 {
			data, err := json.Marshal(w.Fields.Extra)
			if err != nil {
				return "", errors.NewInternal(err)
			}
			extraJSON = sql.NullString{String: string(data), Valid: true}
		}

		f := w.Fields
		_, err := workStmt.ExecContext(ctx,
			runID, pos, toNullString(f.Key), toNullString(f.Author), toNullString(f.Year),
			toNullString(f.Title), toNullString(f.Journal), toNullString(f.Review),
			toNullString(f.DOI), toNullString(f.FileRef), w.File, extraJSON,
		)
		if err != nil {
			return "", errors.NewInternal(err)
		}

		for seq, a := range w.Annotations {
			if _, err := annotStmt.ExecContext(ctx, runID, pos, seq, a.Page, a.Date, a.Text, a.Note); err != nil {
				return "", errors.NewInternal(err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.NewInternal(err)
	}
	return runID, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
