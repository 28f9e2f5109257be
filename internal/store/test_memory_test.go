package store

import (
	"context"
	"errors"
	"testing"

	"caseforge/internal/tester"
	t "caseforge/internal/types"
)

func publishedDraft() *t.Draft {
	return &t.Draft{
		ID: "story-1",
		Characters: []t.Character{
			{ID: "edmund-hale", Name: "Edmund Hale", IsVictim: true},
			{ID: "james-holloway", Name: "James Holloway", IsGuilty: true},
			{ID: "clara-whitmore", Name: "Clara Whitmore"},
		},
		Clues: []t.Clue{
			{ID: "copied-key", Points: 20, RevealedBy: []string{"james-holloway"}},
			{ID: "ledger-room-empty", Points: 20, RevealedBy: []string{"clara-whitmore"}},
		},
		Solution: t.Solution{Culprit: "james-holloway"},
	}
}

func TestMemoryGetMissing(tt *testing.T) {
	mem := NewMemory()
	_, err := mem.GetStory(context.Background(), "nope")
	tester.True(tt, errors.Is(err, ErrNotFound))
}

func TestMemoryPublishReplacesChildren(tt *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	d := publishedDraft()
	tester.NoErr(tt, mem.Publish(ctx, d))

	tester.Eq(tt, len(mem.Characters(d.ID)), 3)
	tester.Eq(tt, len(mem.Clues(d.ID)), 2)

	// Republish a revised version: child rows are replaced, never appended.
	d.Characters = d.Characters[:2]
	d.Clues = []t.Clue{{ID: "ink-on-the-latch", Points: 15, RevealedBy: []string{"james-holloway"}}}
	tester.NoErr(tt, mem.Publish(ctx, d))

	tester.Eq(tt, len(mem.Characters(d.ID)), 2)
	clues := mem.Clues(d.ID)
	tester.Eq(tt, len(clues), 1)
	tester.Eq(tt, clues[0].ID, "ink-on-the-latch")

	got, err := mem.GetStory(ctx, d.ID)
	tester.NoErr(tt, err)
	tester.True(tt, got.Published)
}

func TestMemoryGetReturnsClone(tt *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	d := publishedDraft()
	tester.NoErr(tt, mem.UpsertStory(ctx, d))

	got, err := mem.GetStory(ctx, d.ID)
	tester.NoErr(tt, err)
	got.Characters[0].Name = "Someone Else"

	again, err := mem.GetStory(ctx, d.ID)
	tester.NoErr(tt, err)
	tester.Eq(tt, again.Characters[0].Name, "Edmund Hale")
}

func TestDraftCacheClonesBothWays(tt *testing.T) {
	cache, err := NewDraftCache(2)
	tester.NoErr(tt, err)

	d := publishedDraft()
	cache.Put(d)
	d.Characters[0].Name = "Mutated After Put"

	got, ok := cache.Get(d.ID)
	tester.True(tt, ok)
	tester.Eq(tt, got.Characters[0].Name, "Edmund Hale")

	got.Characters[0].Name = "Mutated After Get"
	again, ok := cache.Get(d.ID)
	tester.True(tt, ok)
	tester.Eq(tt, again.Characters[0].Name, "Edmund Hale")
}

func TestDraftCacheEvicts(tt *testing.T) {
	cache, err := NewDraftCache(1)
	tester.NoErr(tt, err)

	a := publishedDraft()
	b := publishedDraft()
	b.ID = "story-2"
	cache.Put(a)
	cache.Put(b)

	_, ok := cache.Get("story-1")
	tester.False(tt, ok, "oldest session must be evicted")
	_, ok = cache.Get("story-2")
	tester.True(tt, ok)
}
