package callbacks

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Click values are `_`-joined tokens: the first token is an action tag
// (publish, group, answer, update, close, open, show, anon) and the rest is
// action-specific. Poll ids never contain '_'; option texts may.

// RawValue returns the full click value of the pressed inline button. For
// uniques without a registered handler the callback data arrives untouched
// as "\f<unique>" or "\f<unique>|<payload>".
func RawValue(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	raw, _, _ = strings.Cut(raw, "|")
	return strings.TrimSpace(raw)
}

// Action returns the tag before the first separator, or the whole value when
// no separator is present.
func Action(value string) string {
	if i := strings.Index(value, "_"); i >= 0 {
		return value[:i]
	}
	return value
}

// AfterTag returns everything after the first separator.
func AfterTag(value string) string {
	if i := strings.Index(value, "_"); i >= 0 {
		return value[i+1:]
	}
	return ""
}

// SplitGroupSend parses a group_<groupID>_<pollID> value.
func SplitGroupSend(value string) (int64, string, error) {
	rest := AfterTag(value)
	i := strings.Index(rest, "_")
	if i < 0 {
		return 0, "", fmt.Errorf("callbacks: malformed group value %q", value)
	}
	groupID, err := strconv.ParseInt(rest[:i], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("callbacks: group id in %q: %w", value, err)
	}
	pollID := rest[i+1:]
	if pollID == "" {
		return 0, "", fmt.Errorf("callbacks: empty poll id in %q", value)
	}
	return groupID, pollID, nil
}

// SplitAnswer parses an answer_<option>_<pollID> value. Option texts may
// contain the separator, so the boundary is the last one.
func SplitAnswer(value string) (string, string, error) {
	rest := AfterTag(value)
	i := strings.LastIndex(rest, "_")
	if i < 0 {
		return "", "", fmt.Errorf("callbacks: malformed answer value %q", value)
	}
	option, pollID := rest[:i], rest[i+1:]
	if pollID == "" {
		return "", "", fmt.Errorf("callbacks: empty poll id in %q", value)
	}
	return option, pollID, nil
}
