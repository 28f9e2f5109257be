package store

import (
	"context"
	"sync"

	t "caseforge/internal/types"
)

// Memory is an in-process StoryStore used in tests and in CLI runs without a
// database. Child rows are tracked separately so publish order is observable.
type Memory struct {
	mu         sync.Mutex
	stories    map[string]*t.Draft
	characters map[string][]t.Character
	clues      map[string][]t.Clue
}

func NewMemory() *Memory {
	return &Memory{
		stories:    make(map[string]*t.Draft),
		characters: make(map[string][]t.Character),
		clues:      make(map[string][]t.Clue),
	}
}

func (s *Memory) Close() error { return nil }

func (s *Memory) GetStory(_ context.Context, id string) (*t.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.stories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

func (s *Memory) UpsertStory(_ context.Context, draft *t.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories[draft.ID] = draft.Clone()
	return nil
}

func (s *Memory) DeleteCharacters(_ context.Context, storyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.characters, storyID)
	return nil
}

func (s *Memory) InsertCharacters(_ context.Context, storyID string, chars []t.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[storyID] = append(s.characters[storyID], chars...)
	return nil
}

func (s *Memory) DeleteClues(_ context.Context, storyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clues, storyID)
	return nil
}

func (s *Memory) InsertClues(_ context.Context, storyID string, clues []t.Clue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clues[storyID] = append(s.clues[storyID], clues...)
	return nil
}

func (s *Memory) Publish(ctx context.Context, draft *t.Draft) error {
	if err := s.UpsertStory(ctx, draft); err != nil {
		return err
	}
	if err := s.DeleteCharacters(ctx, draft.ID); err != nil {
		return err
	}
	if err := s.InsertCharacters(ctx, draft.ID, draft.Characters); err != nil {
		return err
	}
	if err := s.DeleteClues(ctx, draft.ID); err != nil {
		return err
	}
	if err := s.InsertClues(ctx, draft.ID, draft.Clues); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.stories[draft.ID]; ok {
		d.Published = true
	}
	return nil
}

// Characters returns the published character rows for a story.
func (s *Memory) Characters(storyID string) []t.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]t.Character(nil), s.characters[storyID]...)
}

// Clues returns the published clue rows for a story.
func (s *Memory) Clues(storyID string) []t.Clue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]t.Clue(nil), s.clues[storyID]...)
}
