package poll

import (
	"context"
	"fmt"

	"github.com/m3rciful/votebot/core/logger"
	"log/slog"
)

const startCommand = "/start"
const stopCommand = "/stop"

// Session drives the poll-creation dialog. One record per user id, created
// lazily on first interaction and reset back to StateStart, never deleted.
type Session struct {
	store *Store
	msgr  Messenger
	dir   Directory
}

// NewSession wires the state machine to its collaborators.
func NewSession(store *Store, msgr Messenger, dir Directory) *Session {
	return &Session{store: store, msgr: msgr, dir: dir}
}

// HandleStart resets the session, advances the poll sequence (invalidating
// any prior draft), greets the user by display name, and moves to
// StateEnterTitle.
func (s *Session) HandleStart(ctx context.Context, userID, chatID int64) error {
	if chatID != userID {
		return nil
	}
	if err := s.store.ResetSession(ctx, userID); err != nil {
		return err
	}
	name, err := s.dir.DisplayName(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve display name: %w", err)
	}
	if _, err := s.msgr.Send(ctx, chatID, fmt.Sprintf(promptStart, name), nil); err != nil {
		return err
	}
	return s.store.SetState(ctx, userID, StateEnterTitle)
}

// HandleText processes one inbound message against the user's state.
// Messages whose chat is not the sender's private chat are group broadcasts
// and are ignored entirely.
func (s *Session) HandleText(ctx context.Context, userID, chatID int64, text string) error {
	if chatID != userID {
		return nil
	}
	if text == startCommand {
		return s.HandleStart(ctx, userID, chatID)
	}

	st, err := s.store.State(ctx, userID)
	if err != nil {
		return err
	}
	id, err := s.store.CurrentPollID(ctx, userID)
	if err != nil {
		return err
	}

	switch st {
	case StateEnterTitle:
		// The text becomes the title verbatim; an empty title is accepted.
		if err := s.store.SetTitle(ctx, id, text); err != nil {
			return err
		}
		if _, err := s.msgr.Send(ctx, chatID, promptEnterOption, nil); err != nil {
			return err
		}
		return s.transition(ctx, userID, id, StateEnterOption)

	case StateEnterOption:
		if text == stopCommand {
			if _, err := s.msgr.Send(ctx, chatID, promptChooser, chooserButtons(id)); err != nil {
				return err
			}
			return s.transition(ctx, userID, id, StateEnterShowOption)
		}
		if err := s.store.AppendOption(ctx, id, text); err != nil {
			return err
		}
		_, err := s.msgr.Send(ctx, chatID, promptEnterOption, nil)
		return err

	default:
		// StateStart, StateElse, StateEnterShowOption: nothing to collect.
		_, err := s.msgr.Send(ctx, chatID, promptFallback, nil)
		return err
	}
}

func (s *Session) transition(ctx context.Context, userID int64, id PollID, st State) error {
	if err := s.store.SetState(ctx, userID, st); err != nil {
		return err
	}
	logger.Debug(ctx, "service.polls", "session.transition",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("poll_id", string(id)),
		slog.String("state", string(st)),
	)
	return nil
}
