package poll

import "context"

// MessageRef opaquely identifies one rendered copy of a poll so it can be
// refreshed later. The encoding belongs to the Messenger implementation.
type MessageRef string

// Button is one inline button; Value is the raw `_`-joined click payload.
type Button struct {
	Text  string
	Value string
}

// Group is a chat the bot has joined and can publish polls into.
type Group struct {
	ID    int64
	Title string
}

// Messenger renders polls and prompts into chats. Send returns a reference
// usable for later in-place updates.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string, rows [][]Button) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, text string, rows [][]Button) error
}

// Directory resolves display names and the groups available for publishing.
type Directory interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
	// Usernames maps voter ids to @-mentionable names; unresolvable ids are
	// simply absent from the result.
	Usernames(ctx context.Context, voterIDs []string) (map[string]string, error)
	Groups(ctx context.Context) ([]Group, error)
	GroupByID(ctx context.Context, groupID int64) (Group, error)
}
