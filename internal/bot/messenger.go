package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/votebot/core/telegram/keyboard"
	"github.com/m3rciful/votebot/internal/poll"
)

// telegramMessenger implements poll.Messenger over the bot API. Message
// references encode as <chatID>_<messageID>, opaque to the domain.
type telegramMessenger struct {
	bot atomic.Pointer[tele.Bot]
}

func newTelegramMessenger() *telegramMessenger {
	return &telegramMessenger{}
}

// Bind attaches the live bot instance; called from the runtime OnStart hook.
func (m *telegramMessenger) Bind(b *tele.Bot) {
	m.bot.Store(b)
}

func (m *telegramMessenger) Send(_ context.Context, chatID int64, text string, rows [][]poll.Button) (poll.MessageRef, error) {
	b := m.bot.Load()
	if b == nil {
		return "", fmt.Errorf("messenger: bot not bound")
	}
	msg, err := b.Send(tele.ChatID(chatID), text, buildMarkup(rows))
	if err != nil {
		return "", fmt.Errorf("send to %d: %w", chatID, err)
	}
	return newMessageRef(msg.Chat.ID, msg.ID), nil
}

func (m *telegramMessenger) Edit(_ context.Context, ref poll.MessageRef, text string, rows [][]poll.Button) error {
	b := m.bot.Load()
	if b == nil {
		return fmt.Errorf("messenger: bot not bound")
	}
	stored, err := splitMessageRef(ref)
	if err != nil {
		return err
	}
	if _, err := b.Edit(stored, text, buildMarkup(rows)); err != nil {
		return fmt.Errorf("edit %s: %w", ref, err)
	}
	return nil
}

// buildMarkup converts domain buttons into an inline keyboard. The click
// value rides in the callback unique so the raw payload survives the wire
// unchanged.
func buildMarkup(rows [][]poll.Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return &tele.ReplyMarkup{}
	}
	converted := make([][]keyboard.InlineBtn, len(rows))
	for i, row := range rows {
		r := make([]keyboard.InlineBtn, len(row))
		for j, btn := range row {
			r[j] = keyboard.InlineBtn{Text: btn.Text, Unique: btn.Value}
		}
		converted[i] = r
	}
	return keyboard.InlineButtonsRows(converted...)
}

func newMessageRef(chatID int64, messageID int) poll.MessageRef {
	return poll.MessageRef(strconv.FormatInt(chatID, 10) + "_" + strconv.Itoa(messageID))
}

func splitMessageRef(ref poll.MessageRef) (*tele.StoredMessage, error) {
	chat, msg, ok := strings.Cut(string(ref), "_")
	if !ok {
		return nil, fmt.Errorf("messenger: malformed message ref %q", ref)
	}
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("messenger: chat id in ref %q: %w", ref, err)
	}
	return &tele.StoredMessage{MessageID: msg, ChatID: chatID}, nil
}
