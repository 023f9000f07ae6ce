package poll

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/votebot/internal/storage"
)

func seedPoll(t *testing.T, store *Store, id PollID, title string, options ...string) {
	t.Helper()
	ctx := context.Background()
	if err := store.SetTitle(ctx, id, title); err != nil {
		t.Fatalf("title: %v", err)
	}
	for _, option := range options {
		if err := store.AppendOption(ctx, id, option); err != nil {
			t.Fatalf("option: %v", err)
		}
	}
}

func TestComposeBackfillsZeroVotes(t *testing.T) {
	store := NewStore(storage.NewMemory())
	msgr := newFakeMessenger()
	dir := newFakeDirectory()
	r := NewRenderer(store, msgr, dir)
	ctx := context.Background()

	id := PollID("1p1")
	seedPoll(t, store, id, "Lunch", "Pizza", "Sushi")
	if err := store.RecordVote(ctx, id, 100, "Pizza"); err != nil {
		t.Fatalf("vote: %v", err)
	}

	text, rows, err := r.Compose(ctx, id, false)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(text, " - Pizza - 100%") {
		t.Fatalf("missing voted line: %s", text)
	}
	if !strings.Contains(text, " - Sushi - 0%") {
		t.Fatalf("missing zero backfill: %s", text)
	}
	if !strings.Contains(text, "Votes: 1") {
		t.Fatalf("missing vote footer: %s", text)
	}

	values := buttonValues(rows)
	if len(values) != 2 || values[0] != "answer_Pizza_1p1" || values[1] != "answer_Sushi_1p1" {
		t.Fatalf("vote buttons = %v", values)
	}
}

func TestComposeCreatorButtons(t *testing.T) {
	store := NewStore(storage.NewMemory())
	r := NewRenderer(store, newFakeMessenger(), newFakeDirectory())
	ctx := context.Background()

	id := PollID("1p1")
	seedPoll(t, store, id, "Lunch", "Pizza")

	_, rows, err := r.Compose(ctx, id, true)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	values := buttonValues(rows)
	want := []string{"update_1p1", "publish_1p1", "close_1p1"}
	if len(values) != len(want) {
		t.Fatalf("creator buttons = %v", values)
	}
	for i, v := range want {
		if values[i] != v {
			t.Fatalf("creator buttons = %v, expected %v", values, want)
		}
	}

	if err := store.SetClosed(ctx, id, true); err != nil {
		t.Fatalf("close: %v", err)
	}
	_, rows, err = r.Compose(ctx, id, true)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	values = buttonValues(rows)
	if values[2] != "open_1p1" {
		t.Fatalf("closed toggle = %v, expected open_1p1", values)
	}
}

func TestComposeClosedGroupViewHasNoButtons(t *testing.T) {
	store := NewStore(storage.NewMemory())
	r := NewRenderer(store, newFakeMessenger(), newFakeDirectory())
	ctx := context.Background()

	id := PollID("1p1")
	seedPoll(t, store, id, "Lunch", "Pizza")
	if err := store.SetClosed(ctx, id, true); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, rows, err := r.Compose(ctx, id, false)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if rows != nil {
		t.Fatalf("closed group view rows = %v, expected none", rows)
	}
}

func TestComposeMentionsCapped(t *testing.T) {
	store := NewStore(storage.NewMemory())
	dir := newFakeDirectory()
	r := NewRenderer(store, newFakeMessenger(), dir)
	ctx := context.Background()

	id := PollID("1p1")
	seedPoll(t, store, id, "Lunch", "Pizza")
	if err := store.SetShowFlag(ctx, id, ShowVoterNames); err != nil {
		t.Fatalf("show flag: %v", err)
	}

	voters := []int64{101, 102, 103, 104, 105, 106, 107}
	for _, v := range voters {
		if err := store.RecordVote(ctx, id, v, "Pizza"); err != nil {
			t.Fatalf("vote: %v", err)
		}
	}
	dir.users["101"] = "alice"
	dir.users["102"] = "bob"
	dir.users["103"] = "carol"
	dir.users["104"] = "dave"
	dir.users["105"] = "erin"
	dir.users["106"] = "frank"
	dir.users["107"] = "grace"

	text, _, err := r.Compose(ctx, id, false)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got := strings.Count(text, "@"); got != maxMentionsPerOption {
		t.Fatalf("mentions = %d, expected %d\n%s", got, maxMentionsPerOption, text)
	}
	// Voters are sorted, so the first five ids win.
	if !strings.Contains(text, "@alice") || strings.Contains(text, "@grace") {
		t.Fatalf("unexpected mention set: %s", text)
	}
}

func TestComposeAnonymousHidesVoters(t *testing.T) {
	store := NewStore(storage.NewMemory())
	dir := newFakeDirectory()
	dir.users["100"] = "alice"
	r := NewRenderer(store, newFakeMessenger(), dir)
	ctx := context.Background()

	id := PollID("1p1")
	seedPoll(t, store, id, "Lunch", "Pizza")
	if err := store.SetShowFlag(ctx, id, "anon"); err != nil {
		t.Fatalf("show flag: %v", err)
	}
	if err := store.RecordVote(ctx, id, 100, "Pizza"); err != nil {
		t.Fatalf("vote: %v", err)
	}

	text, _, err := r.Compose(ctx, id, false)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if strings.Contains(text, "@") {
		t.Fatalf("anonymous poll leaked mentions: %s", text)
	}
}

func TestSendPollTracksMessage(t *testing.T) {
	store := NewStore(storage.NewMemory())
	msgr := newFakeMessenger()
	r := NewRenderer(store, msgr, newFakeDirectory())
	ctx := context.Background()

	id := PollID("1p1")
	seedPoll(t, store, id, "Lunch", "Pizza")

	if err := r.SendPoll(ctx, -500, id, false, ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	refs, err := store.TrackedMessages(ctx, id, false)
	if err != nil {
		t.Fatalf("tracked: %v", err)
	}
	if len(refs) != 1 || refs[0] != msgr.lastSend().ref {
		t.Fatalf("tracked refs = %v", refs)
	}
}

func TestSendPollHeadlinePrefix(t *testing.T) {
	store := NewStore(storage.NewMemory())
	msgr := newFakeMessenger()
	r := NewRenderer(store, msgr, newFakeDirectory())
	ctx := context.Background()

	id := PollID("1p1")
	seedPoll(t, store, id, "Lunch", "Pizza")

	if err := r.SendPoll(ctx, 1, id, true, "Done, the poll is published to Team."); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.HasPrefix(msgr.lastSend().text, "Done, the poll is published to Team.\n\nLunch") {
		t.Fatalf("headline missing: %s", msgr.lastSend().text)
	}
}

func TestRefreshAllEditsEveryTrackedCopy(t *testing.T) {
	store := NewStore(storage.NewMemory())
	msgr := newFakeMessenger()
	r := NewRenderer(store, msgr, newFakeDirectory())
	ctx := context.Background()

	id := PollID("1p1")
	seedPoll(t, store, id, "Lunch", "Pizza")
	if err := r.SendPoll(ctx, -500, id, false, ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := r.SendPoll(ctx, -600, id, false, ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := r.SendPoll(ctx, 1, id, true, ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := r.RefreshAll(ctx, id); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(msgr.edits) != 3 {
		t.Fatalf("edits = %d, expected 3", len(msgr.edits))
	}
}

func TestRefreshAllContinuesPastFailures(t *testing.T) {
	store := NewStore(storage.NewMemory())
	msgr := newFakeMessenger()
	r := NewRenderer(store, msgr, newFakeDirectory())
	ctx := context.Background()

	id := PollID("1p1")
	seedPoll(t, store, id, "Lunch", "Pizza")
	if err := r.SendPoll(ctx, -500, id, false, ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	failing := msgr.lastSend().ref
	if err := r.SendPoll(ctx, -600, id, false, ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	msgr.failEdit[failing] = errors.New("message deleted")

	err := r.RefreshAll(ctx, id)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(msgr.edits) != 1 {
		t.Fatalf("surviving edits = %d, expected 1", len(msgr.edits))
	}
}
