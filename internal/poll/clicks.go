package poll

import (
	"context"
	"fmt"
	"strings"

	"github.com/m3rciful/votebot/core/logger"
	"github.com/m3rciful/votebot/core/telegram/callbacks"
	"log/slog"
)

// Click is one inline button press: the clicking user and the raw
// `_`-joined payload value of the pressed button.
type Click struct {
	UserID int64
	Value  string
}

// Clicks routes click payloads to their handlers through an ordered
// (predicate, handler) list. Payload tags are not mutually exclusive by
// construction, so the check order below is part of the wire contract and
// must not be reordered.
type Clicks struct {
	store  *Store
	render *Renderer
	msgr   Messenger
	dir    Directory
}

// NewClicks wires the interaction router to its collaborators.
func NewClicks(store *Store, render *Renderer, msgr Messenger, dir Directory) *Clicks {
	return &Clicks{store: store, render: render, msgr: msgr, dir: dir}
}

type clickRoute struct {
	name   string
	match  func(ctx context.Context, c Click) (bool, error)
	handle func(ctx context.Context, c Click) error
}

// Dispatch runs the first matching handler. Unrecognized values are a
// silent no-op, reported as not handled: forward-compatible with buttons
// this version does not know.
func (r *Clicks) Dispatch(ctx context.Context, c Click) (bool, error) {
	for _, route := range r.routes() {
		ok, err := route.match(ctx, c)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		return true, route.handle(ctx, c)
	}
	logger.Debug(ctx, "service.polls", "click.unmatched",
		slog.String("status", "skip"),
		slog.String("cb_key", c.Value),
	)
	return false, nil
}

func (r *Clicks) routes() []clickRoute {
	contains := func(tag string) func(context.Context, Click) (bool, error) {
		return func(_ context.Context, c Click) (bool, error) {
			return strings.Contains(c.Value, tag), nil
		}
	}
	return []clickRoute{
		{name: "visibility", match: r.matchVisibility, handle: r.handleVisibility},
		{name: "send", match: contains("group_"), handle: r.handleSend},
		{name: "vote", match: contains("answer_"), handle: r.handleVote},
		{name: "refresh", match: contains("update_"), handle: r.handleRefresh},
		{name: "close", match: contains("close_"), handle: r.handleClose},
		{name: "open", match: contains("open_"), handle: r.handleOpen},
	}
}

// matchVisibility accepts publish clicks unconditionally, and show/anon
// clicks only while the clicking user's session is at the chooser.
func (r *Clicks) matchVisibility(ctx context.Context, c Click) (bool, error) {
	if strings.Contains(c.Value, "publish_") {
		return true, nil
	}
	if !strings.Contains(c.Value, "show_") && !strings.Contains(c.Value, "anon_") {
		return false, nil
	}
	st, err := r.store.State(ctx, c.UserID)
	if err != nil {
		return false, err
	}
	return st == StateEnterShowOption, nil
}

// handleVisibility commits the show/anon choice (resetting the session back
// to StateStart), pushes fresh results on publish, and offers the group
// picker either way.
func (r *Clicks) handleVisibility(ctx context.Context, c Click) error {
	action := callbacks.Action(c.Value)
	id := PollID(callbacks.AfterTag(c.Value))

	if action != "publish" {
		if err := r.store.SetState(ctx, c.UserID, StateStart); err != nil {
			return err
		}
		if err := r.store.SetShowFlag(ctx, id, action); err != nil {
			return err
		}
	}
	if strings.Contains(c.Value, "publish") {
		if err := r.render.RefreshAll(ctx, id); err != nil {
			return err
		}
	}

	groups, err := r.dir.Groups(ctx)
	if err != nil {
		return err
	}
	rows := make([][]Button, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []Button{{
			Text:  g.Title,
			Value: fmt.Sprintf("group_%d_%s", g.ID, id),
		}})
	}
	_, err = r.msgr.Send(ctx, c.UserID, promptPickGroup, rows)
	return err
}

// handleSend publishes the poll into the chosen group and sends a tracked
// confirmation copy back to the creator, both through the same
// render-and-track path.
func (r *Clicks) handleSend(ctx context.Context, c Click) error {
	groupID, rawID, err := callbacks.SplitGroupSend(c.Value)
	if err != nil {
		return err
	}
	id := PollID(rawID)
	group, err := r.dir.GroupByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := r.render.SendPoll(ctx, group.ID, id, false, ""); err != nil {
		return err
	}
	headline := fmt.Sprintf(promptPublishedFmt, group.Title)
	return r.render.SendPoll(ctx, c.UserID, id, true, headline)
}

// handleVote records the voter's option, overwriting any prior vote, and
// refreshes every tracked copy. Votes against a closed poll are rejected
// server-side, not just hidden in rendering.
func (r *Clicks) handleVote(ctx context.Context, c Click) error {
	option, rawID, err := callbacks.SplitAnswer(c.Value)
	if err != nil {
		return err
	}
	id := PollID(rawID)
	closed, err := r.store.Closed(ctx, id)
	if err != nil {
		return err
	}
	if closed {
		logger.Info(ctx, "service.votes", "vote.rejected",
			slog.String("status", "skip"),
			slog.String("poll_id", string(id)),
			slog.Int64("user_id", c.UserID),
			slog.String("reason", "closed"),
		)
		return nil
	}
	if err := r.store.RecordVote(ctx, id, c.UserID, option); err != nil {
		return err
	}
	return r.render.RefreshAll(ctx, id)
}

func (r *Clicks) handleRefresh(ctx context.Context, c Click) error {
	return r.render.RefreshAll(ctx, PollID(callbacks.AfterTag(c.Value)))
}

func (r *Clicks) handleClose(ctx context.Context, c Click) error {
	return r.toggleClosed(ctx, PollID(callbacks.AfterTag(c.Value)), true)
}

func (r *Clicks) handleOpen(ctx context.Context, c Click) error {
	return r.toggleClosed(ctx, PollID(callbacks.AfterTag(c.Value)), false)
}

func (r *Clicks) toggleClosed(ctx context.Context, id PollID, closed bool) error {
	if err := r.store.SetClosed(ctx, id, closed); err != nil {
		return err
	}
	return r.render.RefreshAll(ctx, id)
}
