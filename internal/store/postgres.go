package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	t "caseforge/internal/types"
)

// Postgres persists stories in three tables: the story row holds the full
// draft as JSONB; characters and clues are child rows keyed by story id.
type Postgres struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (s *Postgres) Close() error { return s.db.Close() }

func (s *Postgres) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS stories (
  id TEXT PRIMARY KEY,
  draft JSONB NOT NULL,
  published BOOLEAN NOT NULL DEFAULT FALSE,
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS story_characters (
  story_id TEXT NOT NULL REFERENCES stories (id) ON DELETE CASCADE,
  character_id TEXT NOT NULL,
  data JSONB NOT NULL,
  PRIMARY KEY (story_id, character_id)
);

CREATE TABLE IF NOT EXISTS story_clues (
  story_id TEXT NOT NULL REFERENCES stories (id) ON DELETE CASCADE,
  clue_id TEXT NOT NULL,
  data JSONB NOT NULL,
  PRIMARY KEY (story_id, clue_id)
);
CREATE INDEX IF NOT EXISTS idx_story_characters_story_id ON story_characters (story_id);
CREATE INDEX IF NOT EXISTS idx_story_clues_story_id ON story_clues (story_id);
`)
	})
	return s.schemaErr
}

func (s *Postgres) GetStory(ctx context.Context, id string) (*t.Draft, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var raw []byte
	var published bool
	row := s.db.QueryRowContext(ctx,
		`SELECT draft, published FROM stories WHERE id = $1`, strings.TrimSpace(id))
	if err := row.Scan(&raw, &published); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var draft t.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("store: decode story %s: %w", id, err)
	}
	draft.Published = published
	return &draft, nil
}

func (s *Postgres) UpsertStory(ctx context.Context, draft *t.Draft) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	return upsertStory(ctx, s.db, draft)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertStory(ctx context.Context, db execer, draft *t.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
INSERT INTO stories (id, draft, published, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (id)
DO UPDATE SET draft=EXCLUDED.draft, published=EXCLUDED.published, updated_at=NOW()`,
		draft.ID, raw, draft.Published)
	return err
}

func (s *Postgres) DeleteCharacters(ctx context.Context, storyID string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM story_characters WHERE story_id = $1`, storyID)
	return err
}

func (s *Postgres) InsertCharacters(ctx context.Context, storyID string, chars []t.Character) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	return insertCharacters(ctx, s.db, storyID, chars)
}

func insertCharacters(ctx context.Context, db execer, storyID string, chars []t.Character) error {
	for i := range chars {
		raw, err := json.Marshal(&chars[i])
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, `
INSERT INTO story_characters (story_id, character_id, data)
VALUES ($1, $2, $3)`, storyID, chars[i].ID, raw); err != nil {
			return fmt.Errorf("store: insert character %s: %w", chars[i].ID, err)
		}
	}
	return nil
}

func (s *Postgres) DeleteClues(ctx context.Context, storyID string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM story_clues WHERE story_id = $1`, storyID)
	return err
}

func (s *Postgres) InsertClues(ctx context.Context, storyID string, clues []t.Clue) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	return insertClues(ctx, s.db, storyID, clues)
}

func insertClues(ctx context.Context, db execer, storyID string, clues []t.Clue) error {
	for i := range clues {
		raw, err := json.Marshal(&clues[i])
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, `
INSERT INTO story_clues (story_id, clue_id, data)
VALUES ($1, $2, $3)`, storyID, clues[i].ID, raw); err != nil {
			return fmt.Errorf("store: insert clue %s: %w", clues[i].ID, err)
		}
	}
	return nil
}

// Publish replaces the whole story inside one transaction, so a failure
// midway never leaves characters from one version next to clues from
// another. The published flag flips last.
func (s *Postgres) Publish(ctx context.Context, draft *t.Draft) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertStory(ctx, tx, draft); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM story_characters WHERE story_id = $1`, draft.ID); err != nil {
		return err
	}
	if err := insertCharacters(ctx, tx, draft.ID, draft.Characters); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM story_clues WHERE story_id = $1`, draft.ID); err != nil {
		return err
	}
	if err := insertClues(ctx, tx, draft.ID, draft.Clues); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE stories SET published = TRUE, updated_at = NOW() WHERE id = $1`, draft.ID); err != nil {
		return err
	}
	return tx.Commit()
}
