package poll

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/votebot/internal/storage"
)

func TestParseState(t *testing.T) {
	for _, raw := range []string{"-1", "0", "1", "2", "3"} {
		st, err := ParseState(raw)
		if err != nil {
			t.Fatalf("ParseState(%q): %v", raw, err)
		}
		if string(st) != raw {
			t.Fatalf("ParseState(%q) = %q", raw, st)
		}
	}

	st, err := ParseState("")
	if err != nil || st != StateStart {
		t.Fatalf("ParseState(\"\") = %q, %v; expected StateStart", st, err)
	}

	if _, err := ParseState("7"); !errors.Is(err, ErrCorruptState) {
		t.Fatalf("ParseState(\"7\") error = %v, expected ErrCorruptState", err)
	}
}

func TestStoreSequenceAdvancesPerReset(t *testing.T) {
	store := NewStore(storage.NewMemory())
	ctx := context.Background()

	id, err := store.CurrentPollID(ctx, 42)
	if err != nil {
		t.Fatalf("current id: %v", err)
	}
	if id != "42p0" {
		t.Fatalf("initial id = %q, expected 42p0", id)
	}

	for i := 1; i <= 3; i++ {
		if err := store.ResetSession(ctx, 42); err != nil {
			t.Fatalf("reset %d: %v", i, err)
		}
	}
	id, err = store.CurrentPollID(ctx, 42)
	if err != nil {
		t.Fatalf("current id: %v", err)
	}
	if id != "42p3" {
		t.Fatalf("id after 3 resets = %q, expected 42p3", id)
	}

	st, err := store.State(ctx, 42)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if st != StateStart {
		t.Fatalf("state after reset = %q, expected StateStart", st)
	}
}

func TestStoreSequencesIndependentPerUser(t *testing.T) {
	store := NewStore(storage.NewMemory())
	ctx := context.Background()

	if err := store.ResetSession(ctx, 1); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := store.ResetSession(ctx, 1); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := store.ResetSession(ctx, 2); err != nil {
		t.Fatalf("reset: %v", err)
	}

	one, _ := store.CurrentPollID(ctx, 1)
	two, _ := store.CurrentPollID(ctx, 2)
	if one != "1p2" || two != "2p1" {
		t.Fatalf("ids = %q, %q; expected 1p2, 2p1", one, two)
	}
}

func TestStoreVoteLastWriteWins(t *testing.T) {
	store := NewStore(storage.NewMemory())
	ctx := context.Background()
	id := PollID("1p1")

	if err := store.RecordVote(ctx, id, 100, "Red"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := store.RecordVote(ctx, id, 100, "Blue"); err != nil {
		t.Fatalf("revote: %v", err)
	}

	votes, err := store.Votes(ctx, id)
	if err != nil {
		t.Fatalf("votes: %v", err)
	}
	if len(votes) != 1 || votes["100"] != "Blue" {
		t.Fatalf("votes = %v, expected single Blue", votes)
	}
}

func TestStoreTrackedMessagesSeparateViews(t *testing.T) {
	store := NewStore(storage.NewMemory())
	ctx := context.Background()
	id := PollID("1p1")

	if err := store.TrackMessage(ctx, id, "10_1", false); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := store.TrackMessage(ctx, id, "20_2", false); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := store.TrackMessage(ctx, id, "1_3", true); err != nil {
		t.Fatalf("track: %v", err)
	}

	group, err := store.TrackedMessages(ctx, id, false)
	if err != nil {
		t.Fatalf("tracked: %v", err)
	}
	if len(group) != 2 || group[0] != "10_1" || group[1] != "20_2" {
		t.Fatalf("group refs = %v", group)
	}

	creator, err := store.TrackedMessages(ctx, id, true)
	if err != nil {
		t.Fatalf("tracked: %v", err)
	}
	if len(creator) != 1 || creator[0] != "1_3" {
		t.Fatalf("creator refs = %v", creator)
	}
}

func TestStoreClosedToggle(t *testing.T) {
	store := NewStore(storage.NewMemory())
	ctx := context.Background()
	id := PollID("1p1")

	closed, err := store.Closed(ctx, id)
	if err != nil || closed {
		t.Fatalf("fresh poll closed = %v, %v", closed, err)
	}

	if err := store.SetClosed(ctx, id, true); err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed, _ = store.Closed(ctx, id); !closed {
		t.Fatal("expected closed")
	}

	if err := store.SetClosed(ctx, id, false); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if closed, _ = store.Closed(ctx, id); closed {
		t.Fatal("expected reopened")
	}
}

func TestStoreKnownGroupsSorted(t *testing.T) {
	store := NewStore(storage.NewMemory())
	ctx := context.Background()

	if err := store.RegisterGroup(ctx, -200, "Second"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.RegisterGroup(ctx, -300, "First"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.RegisterGroup(ctx, -200, "Second Renamed"); err != nil {
		t.Fatalf("reregister: %v", err)
	}

	groups, err := store.KnownGroups(ctx)
	if err != nil {
		t.Fatalf("groups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %v", groups)
	}
	if groups[0].ID != -300 || groups[0].Title != "First" {
		t.Fatalf("first group = %+v", groups[0])
	}
	if groups[1].ID != -200 || groups[1].Title != "Second Renamed" {
		t.Fatalf("second group = %+v", groups[1])
	}
}

func TestStoreCounts(t *testing.T) {
	store := NewStore(storage.NewMemory())
	ctx := context.Background()

	if err := store.SetTitle(ctx, "1p1", "Lunch"); err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := store.SetTitle(ctx, "2p1", "Dinner"); err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := store.RecordVote(ctx, "1p1", 100, "Pizza"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := store.RecordVote(ctx, "1p1", 200, "Sushi"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := store.RecordVote(ctx, "2p1", 100, "Soup"); err != nil {
		t.Fatalf("vote: %v", err)
	}

	polls, votes, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if polls != 2 || votes != 3 {
		t.Fatalf("counts = %d polls, %d votes; expected 2, 3", polls, votes)
	}
}
