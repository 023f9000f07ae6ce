package poll

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/m3rciful/votebot/core/logger"
	"log/slog"
)

// maxMentionsPerOption caps voter mentions per rendered option line; voters
// beyond the cap are truncated silently.
const maxMentionsPerOption = 5

// Renderer composes poll views and keeps every tracked copy in sync.
type Renderer struct {
	store *Store
	msgr  Messenger
	dir   Directory
}

// NewRenderer wires the render protocol to its collaborators.
func NewRenderer(store *Store, msgr Messenger, dir Directory) *Renderer {
	return &Renderer{store: store, msgr: msgr, dir: dir}
}

// Compose builds the text and buttons of one poll view. Group views carry
// vote buttons while the poll is open; creator views always carry the
// management controls instead.
func (r *Renderer) Compose(ctx context.Context, id PollID, creator bool) (string, [][]Button, error) {
	title, err := r.store.Title(ctx, id)
	if err != nil {
		return "", nil, err
	}
	options, err := r.store.Options(ctx, id)
	if err != nil {
		return "", nil, err
	}
	votes, err := r.store.Votes(ctx, id)
	if err != nil {
		return "", nil, err
	}
	show, err := r.store.ShowVoters(ctx, id)
	if err != nil {
		return "", nil, err
	}
	closed, err := r.store.Closed(ctx, id)
	if err != nil {
		return "", nil, err
	}

	tally := Aggregate(votes)
	lines := make([]string, 0, len(options))
	for _, option := range options {
		// Options without votes are back-filled at 0%.
		line := fmt.Sprintf(" - %s - %d%%", option, tally.PercentByOption[option])
		if show {
			line += r.mentions(ctx, id, tally.VotersByOption[option])
		}
		lines = append(lines, line)
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(lines, "\n\n"))
	b.WriteString(fmt.Sprintf("\n\nVotes: %d", tally.TotalVotes()))

	switch {
	case creator:
		return b.String(), managementButtons(id, closed), nil
	case closed:
		return b.String(), nil, nil
	default:
		return b.String(), voteButtons(id, options), nil
	}
}

// SendPoll renders a fresh copy into a chat and tracks the new message
// before any later refresh can target it. A non-empty headline is prefixed
// to the rendered text (creator confirmation copies use this).
func (r *Renderer) SendPoll(ctx context.Context, chatID int64, id PollID, creator bool, headline string) error {
	text, rows, err := r.Compose(ctx, id, creator)
	if err != nil {
		return err
	}
	if headline != "" {
		text = headline + "\n\n" + text
	}
	ref, err := r.msgr.Send(ctx, chatID, text, rows)
	if err != nil {
		return err
	}
	return r.store.TrackMessage(ctx, id, ref, creator)
}

// RefreshAll pushes the current results into every tracked copy of the
// poll, group views and creator views alike. A failing edit does not stop
// the fan-out: each failure is logged per message and the remainder is
// still refreshed, with the failures joined into the returned error.
func (r *Renderer) RefreshAll(ctx context.Context, id PollID) error {
	var result *multierror.Error
	refreshed := 0

	for _, creator := range []bool{false, true} {
		refs, err := r.store.TrackedMessages(ctx, id, creator)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if len(refs) == 0 {
			continue
		}
		text, rows, err := r.Compose(ctx, id, creator)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		for _, ref := range refs {
			if err := r.msgr.Edit(ctx, ref, text, rows); err != nil {
				logger.Warn(ctx, "service.render", "refresh.fail",
					slog.String("poll_id", string(id)),
					slog.String("mid", string(ref)),
					slog.String("err", err.Error()),
				)
				result = multierror.Append(result, fmt.Errorf("refresh %s: %w", ref, err))
				continue
			}
			refreshed++
		}
	}

	logger.Debug(ctx, "service.render", "refresh.fanout",
		slog.String("status", "ok"),
		slog.String("poll_id", string(id)),
		slog.Int("refreshed", refreshed),
	)
	return result.ErrorOrNil()
}

// mentions renders up to maxMentionsPerOption voter names on a new line.
// Directory failures degrade to an anonymous line rather than failing the
// whole render.
func (r *Renderer) mentions(ctx context.Context, id PollID, voters []string) string {
	if len(voters) == 0 {
		return ""
	}
	if len(voters) > maxMentionsPerOption {
		voters = voters[:maxMentionsPerOption]
	}
	names, err := r.dir.Usernames(ctx, voters)
	if err != nil {
		logger.Warn(ctx, "service.render", "mentions.lookup_failed",
			slog.String("poll_id", string(id)),
			slog.String("err", err.Error()),
		)
		return ""
	}
	handles := make([]string, 0, len(voters))
	for _, voter := range voters {
		if name := names[voter]; name != "" {
			handles = append(handles, "@"+name)
		}
	}
	if len(handles) == 0 {
		return ""
	}
	return "\n" + strings.Join(handles, ", ")
}
