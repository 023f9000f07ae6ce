package poll

import (
	"context"
	"strings"
	"testing"

	"github.com/m3rciful/votebot/internal/storage"
)

func newTestClicks() (*Clicks, *Store, *fakeMessenger, *fakeDirectory) {
	store := NewStore(storage.NewMemory())
	msgr := newFakeMessenger()
	dir := newFakeDirectory()
	render := NewRenderer(store, msgr, dir)
	return NewClicks(store, render, msgr, dir), store, msgr, dir
}

func TestClicksUnrecognizedValueIsNoOp(t *testing.T) {
	c, _, msgr, _ := newTestClicks()
	ctx := context.Background()

	handled, err := c.Dispatch(ctx, Click{UserID: 42, Value: "foo_bar"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if handled {
		t.Fatal("unknown value reported as handled")
	}
	if len(msgr.sends) != 0 {
		t.Fatalf("unknown value produced %d sends", len(msgr.sends))
	}
}

func TestClicksVisibilityChoiceOffersGroupPicker(t *testing.T) {
	c, store, msgr, dir := newTestClicks()
	ctx := context.Background()
	id := PollID("42p1")
	dir.groups = []Group{{ID: -500, Title: "Team"}, {ID: -600, Title: "Friends"}}

	if err := store.SetState(ctx, 42, StateEnterShowOption); err != nil {
		t.Fatalf("state: %v", err)
	}

	handled, err := c.Dispatch(ctx, Click{UserID: 42, Value: "anon_" + string(id)})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !handled {
		t.Fatal("anon click not handled")
	}

	if st, _ := store.State(ctx, 42); st != StateStart {
		t.Fatalf("state after choice = %q, expected StateStart", st)
	}
	if show, _ := store.ShowVoters(ctx, id); show {
		t.Fatal("anon choice left poll non-anonymous")
	}

	picker := msgr.lastSend()
	if picker.chatID != 42 {
		t.Fatalf("picker chat = %d, expected creator", picker.chatID)
	}
	values := buttonValues(picker.rows)
	want := []string{"group_-500_42p1", "group_-600_42p1"}
	if len(values) != len(want) {
		t.Fatalf("picker = %v", values)
	}
	for i, v := range want {
		if values[i] != v {
			t.Fatalf("picker = %v, expected %v", values, want)
		}
	}
}

func TestClicksVisibilityIgnoredOutsideChooser(t *testing.T) {
	c, store, msgr, _ := newTestClicks()
	ctx := context.Background()

	if err := store.SetState(ctx, 42, StateStart); err != nil {
		t.Fatalf("state: %v", err)
	}
	handled, err := c.Dispatch(ctx, Click{UserID: 42, Value: "show_42p1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if handled {
		t.Fatal("stale show click handled")
	}
	if len(msgr.sends) != 0 {
		t.Fatalf("stale click produced %d sends", len(msgr.sends))
	}
}

func TestClicksGroupSendPublishesBothCopies(t *testing.T) {
	c, store, msgr, dir := newTestClicks()
	ctx := context.Background()
	id := PollID("42p1")
	dir.groups = []Group{{ID: -500, Title: "Team"}}

	if err := store.SetTitle(ctx, id, "Lunch"); err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := store.AppendOption(ctx, id, "Pizza"); err != nil {
		t.Fatalf("option: %v", err)
	}

	handled, err := c.Dispatch(ctx, Click{UserID: 42, Value: "group_-500_" + string(id)})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !handled {
		t.Fatal("group click not handled")
	}
	if len(msgr.sends) != 2 {
		t.Fatalf("sends = %d, expected group copy and creator copy", len(msgr.sends))
	}

	groupCopy := msgr.sends[0]
	if groupCopy.chatID != -500 {
		t.Fatalf("group copy chat = %d", groupCopy.chatID)
	}
	if values := buttonValues(groupCopy.rows); len(values) != 1 || values[0] != "answer_Pizza_42p1" {
		t.Fatalf("group copy buttons = %v", values)
	}

	creatorCopy := msgr.sends[1]
	if creatorCopy.chatID != 42 {
		t.Fatalf("creator copy chat = %d", creatorCopy.chatID)
	}
	if !strings.Contains(creatorCopy.text, "published to Team") {
		t.Fatalf("creator copy text = %s", creatorCopy.text)
	}
	if values := buttonValues(creatorCopy.rows); values[0] != "update_42p1" {
		t.Fatalf("creator copy buttons = %v", values)
	}

	group, _ := store.TrackedMessages(ctx, id, false)
	creator, _ := store.TrackedMessages(ctx, id, true)
	if len(group) != 1 || len(creator) != 1 {
		t.Fatalf("tracked = %d group, %d creator", len(group), len(creator))
	}
}

func TestClicksVoteRefreshesEveryCopy(t *testing.T) {
	c, store, msgr, dir := newTestClicks()
	ctx := context.Background()
	id := PollID("42p1")
	dir.groups = []Group{{ID: -500, Title: "Team"}, {ID: -600, Title: "Friends"}}

	if err := store.SetTitle(ctx, id, "Lunch"); err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := store.AppendOption(ctx, id, "Pizza"); err != nil {
		t.Fatalf("option: %v", err)
	}
	for _, groupValue := range []string{"group_-500_42p1", "group_-600_42p1"} {
		if _, err := c.Dispatch(ctx, Click{UserID: 42, Value: groupValue}); err != nil {
			t.Fatalf("publish %s: %v", groupValue, err)
		}
	}

	handled, err := c.Dispatch(ctx, Click{UserID: 100, Value: "answer_Pizza_" + string(id)})
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !handled {
		t.Fatal("vote click not handled")
	}

	votes, _ := store.Votes(ctx, id)
	if votes["100"] != "Pizza" {
		t.Fatalf("votes = %v", votes)
	}
	// Two group copies plus two creator confirmations.
	if len(msgr.edits) != 4 {
		t.Fatalf("refreshed edits = %d, expected 4", len(msgr.edits))
	}
	if !strings.Contains(msgr.edits[0].text, "Votes: 1") {
		t.Fatalf("refreshed text = %s", msgr.edits[0].text)
	}
}

func TestClicksVoteWithSeparatorInOption(t *testing.T) {
	c, store, _, _ := newTestClicks()
	ctx := context.Background()
	id := PollID("42p1")

	if _, err := c.Dispatch(ctx, Click{UserID: 100, Value: "answer_rock_n_roll_" + string(id)}); err != nil {
		t.Fatalf("vote: %v", err)
	}
	votes, _ := store.Votes(ctx, id)
	if votes["100"] != "rock_n_roll" {
		t.Fatalf("votes = %v, expected rock_n_roll", votes)
	}
}

func TestClicksVoteRejectedWhenClosed(t *testing.T) {
	c, store, _, _ := newTestClicks()
	ctx := context.Background()
	id := PollID("42p1")

	if err := store.SetClosed(ctx, id, true); err != nil {
		t.Fatalf("close: %v", err)
	}
	handled, err := c.Dispatch(ctx, Click{UserID: 100, Value: "answer_Pizza_" + string(id)})
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !handled {
		t.Fatal("closed vote should still be handled")
	}
	votes, _ := store.Votes(ctx, id)
	if len(votes) != 0 {
		t.Fatalf("closed poll recorded votes: %v", votes)
	}
}

func TestClicksCloseThenReopen(t *testing.T) {
	c, store, msgr, dir := newTestClicks()
	ctx := context.Background()
	id := PollID("42p1")
	dir.groups = []Group{{ID: -500, Title: "Team"}}

	if err := store.SetTitle(ctx, id, "Lunch"); err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := store.AppendOption(ctx, id, "Pizza"); err != nil {
		t.Fatalf("option: %v", err)
	}
	if _, err := c.Dispatch(ctx, Click{UserID: 42, Value: "group_-500_42p1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if _, err := c.Dispatch(ctx, Click{UserID: 42, Value: "close_" + string(id)}); err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed, _ := store.Closed(ctx, id); !closed {
		t.Fatal("poll not closed")
	}
	// The refreshed group copy loses its vote buttons.
	groupEdit := msgr.edits[0]
	if groupEdit.rows != nil {
		t.Fatalf("closed group copy rows = %v", groupEdit.rows)
	}

	if _, err := c.Dispatch(ctx, Click{UserID: 42, Value: "open_" + string(id)}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if closed, _ := store.Closed(ctx, id); closed {
		t.Fatal("poll not reopened")
	}
}

func TestClicksRefreshButton(t *testing.T) {
	c, store, msgr, dir := newTestClicks()
	ctx := context.Background()
	id := PollID("42p1")
	dir.groups = []Group{{ID: -500, Title: "Team"}}

	if err := store.SetTitle(ctx, id, "Lunch"); err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := store.AppendOption(ctx, id, "Pizza"); err != nil {
		t.Fatalf("option: %v", err)
	}
	if _, err := c.Dispatch(ctx, Click{UserID: 42, Value: "group_-500_42p1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	handled, err := c.Dispatch(ctx, Click{UserID: 42, Value: "update_" + string(id)})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !handled {
		t.Fatal("refresh click not handled")
	}
	if len(msgr.edits) != 2 {
		t.Fatalf("edits = %d, expected both copies", len(msgr.edits))
	}
}

func TestClicksPublishRefreshesAndOffersPicker(t *testing.T) {
	c, store, msgr, dir := newTestClicks()
	ctx := context.Background()
	id := PollID("42p1")
	dir.groups = []Group{{ID: -500, Title: "Team"}}

	if err := store.SetTitle(ctx, id, "Lunch"); err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := store.AppendOption(ctx, id, "Pizza"); err != nil {
		t.Fatalf("option: %v", err)
	}

	handled, err := c.Dispatch(ctx, Click{UserID: 42, Value: "publish_" + string(id)})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !handled {
		t.Fatal("publish click not handled")
	}
	picker := msgr.lastSend()
	if values := buttonValues(picker.rows); len(values) != 1 || values[0] != "group_-500_42p1" {
		t.Fatalf("picker = %v", values)
	}
}
