package poll

import (
	"context"
	"fmt"
	"strconv"
)

// fakeMessenger records sends and edits in order and can fail edits for
// selected refs.
type fakeMessenger struct {
	sends    []sentMessage
	edits    []editedMessage
	failEdit map[MessageRef]error
	nextID   int
}

type sentMessage struct {
	chatID int64
	text   string
	rows   [][]Button
	ref    MessageRef
}

type editedMessage struct {
	ref  MessageRef
	text string
	rows [][]Button
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failEdit: make(map[MessageRef]error)}
}

func (m *fakeMessenger) Send(_ context.Context, chatID int64, text string, rows [][]Button) (MessageRef, error) {
	m.nextID++
	ref := MessageRef(strconv.FormatInt(chatID, 10) + "_" + strconv.Itoa(m.nextID))
	m.sends = append(m.sends, sentMessage{chatID: chatID, text: text, rows: rows, ref: ref})
	return ref, nil
}

func (m *fakeMessenger) Edit(_ context.Context, ref MessageRef, text string, rows [][]Button) error {
	if err := m.failEdit[ref]; err != nil {
		return err
	}
	m.edits = append(m.edits, editedMessage{ref: ref, text: text, rows: rows})
	return nil
}

func (m *fakeMessenger) lastSend() sentMessage {
	return m.sends[len(m.sends)-1]
}

// fakeDirectory serves canned names and groups.
type fakeDirectory struct {
	names  map[int64]string
	users  map[string]string
	groups []Group
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		names: make(map[int64]string),
		users: make(map[string]string),
	}
}

func (d *fakeDirectory) DisplayName(_ context.Context, userID int64) (string, error) {
	if name, ok := d.names[userID]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unknown user %d", userID)
}

func (d *fakeDirectory) Usernames(_ context.Context, voterIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(voterIDs))
	for _, id := range voterIDs {
		if name, ok := d.users[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (d *fakeDirectory) Groups(_ context.Context) ([]Group, error) {
	return d.groups, nil
}

func (d *fakeDirectory) GroupByID(_ context.Context, groupID int64) (Group, error) {
	for _, g := range d.groups {
		if g.ID == groupID {
			return g, nil
		}
	}
	return Group{}, fmt.Errorf("unknown group %d", groupID)
}

// buttonValues flattens a keyboard into its payload values for assertions.
func buttonValues(rows [][]Button) []string {
	var values []string
	for _, row := range rows {
		for _, btn := range row {
			values = append(values, btn.Value)
		}
	}
	return values
}
