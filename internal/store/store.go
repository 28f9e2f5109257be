package store

import (
	"context"
	"errors"

	t "caseforge/internal/types"
)

// ErrNotFound is returned when a story id has no published row.
var ErrNotFound = errors.New("store: story not found")

// StoryStore is the persistence boundary for published stories. Characters
// and clues are stored as child rows so the game runtime can load them
// independently of the full draft.
type StoryStore interface {
	GetStory(ctx context.Context, id string) (*t.Draft, error)
	UpsertStory(ctx context.Context, draft *t.Draft) error

	DeleteCharacters(ctx context.Context, storyID string) error
	InsertCharacters(ctx context.Context, storyID string, chars []t.Character) error
	DeleteClues(ctx context.Context, storyID string) error
	InsertClues(ctx context.Context, storyID string, clues []t.Clue) error

	// Publish replaces the story and all its child rows with the draft's
	// current content: delete-then-insert per entity type, story marked
	// published only after both entity sets land.
	Publish(ctx context.Context, draft *t.Draft) error

	Close() error
}
