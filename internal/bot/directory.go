package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/votebot/core/logger"
	"github.com/m3rciful/votebot/internal/poll"
	"log/slog"
)

// telegramDirectory implements poll.Directory. Telegram offers no API to
// enumerate the bot's groups, so the joined-group list comes from the store
// registry populated by the group registrar middleware.
type telegramDirectory struct {
	bot   atomic.Pointer[tele.Bot]
	store *poll.Store
}

func newTelegramDirectory(store *poll.Store) *telegramDirectory {
	return &telegramDirectory{store: store}
}

// Bind attaches the live bot instance; called from the runtime OnStart hook.
func (d *telegramDirectory) Bind(b *tele.Bot) {
	d.bot.Store(b)
}

func (d *telegramDirectory) DisplayName(_ context.Context, userID int64) (string, error) {
	b := d.bot.Load()
	if b == nil {
		return "", fmt.Errorf("directory: bot not bound")
	}
	chat, err := b.ChatByID(userID)
	if err != nil {
		return "", fmt.Errorf("lookup user %d: %w", userID, err)
	}
	name := strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	if name == "" {
		name = chat.Username
	}
	return name, nil
}

// Usernames resolves voter ids to @-mentionable usernames. Ids that fail to
// resolve (deleted accounts, privacy) are dropped from the result, not
// errors: mention rendering is best effort.
func (d *telegramDirectory) Usernames(ctx context.Context, voterIDs []string) (map[string]string, error) {
	b := d.bot.Load()
	if b == nil {
		return nil, fmt.Errorf("directory: bot not bound")
	}
	names := make(map[string]string, len(voterIDs))
	for _, raw := range voterIDs {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		chat, err := b.ChatByID(id)
		if err != nil {
			logger.Debug(ctx, "tg", "directory.username_miss",
				slog.String("status", "skip"),
				slog.Int64("user_id", id),
				slog.String("err", err.Error()),
			)
			continue
		}
		if chat.Username != "" {
			names[raw] = chat.Username
		}
	}
	return names, nil
}

func (d *telegramDirectory) Groups(ctx context.Context) ([]poll.Group, error) {
	return d.store.KnownGroups(ctx)
}

// GroupByID prefers a live lookup for the current title and falls back to
// the registry entry when the API call fails.
func (d *telegramDirectory) GroupByID(ctx context.Context, groupID int64) (poll.Group, error) {
	if b := d.bot.Load(); b != nil {
		if chat, err := b.ChatByID(groupID); err == nil {
			return poll.Group{ID: chat.ID, Title: chat.Title}, nil
		}
	}
	groups, err := d.store.KnownGroups(ctx)
	if err != nil {
		return poll.Group{}, err
	}
	for _, g := range groups {
		if g.ID == groupID {
			return g, nil
		}
	}
	return poll.Group{}, fmt.Errorf("directory: unknown group %d", groupID)
}
