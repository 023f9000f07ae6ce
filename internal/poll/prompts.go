package poll

// Per-state prompt texts of the creation dialog.
const (
	promptStart        = "Hi %s! Let's create a new poll. Send me the title."
	promptEnterOption  = "Send an option, or /stop when the list is complete."
	promptFallback     = "Send /start to begin creating a poll."
	promptChooser      = "Poll is ready. Show voter names in the results?"
	promptPickGroup    = "Where should the poll go?"
	promptPublishedFmt = "Done, the poll is published to %s."
)

// Inline button labels.
const (
	labelShowVoters = "Show voters"
	labelAnonymous  = "Anonymous"
	labelPublish    = "Publish"
	labelRefresh    = "Refresh results"
	labelCopy       = "Copy to group"
	labelClose      = "Close poll"
	labelOpen       = "Open poll"
)

// chooserButtons builds the show/anon/publish chooser for a finished draft.
// Every value carries the poll id so click payloads are self-describing.
func chooserButtons(id PollID) [][]Button {
	return [][]Button{
		{{Text: labelShowVoters, Value: "show_" + string(id)}},
		{{Text: labelAnonymous, Value: "anon_" + string(id)}},
		{{Text: labelPublish, Value: "publish_" + string(id)}},
	}
}

// managementButtons builds the creator-view controls. The third button
// toggles between close and open depending on the poll's current state.
func managementButtons(id PollID, closed bool) [][]Button {
	toggle := Button{Text: labelClose, Value: "close_" + string(id)}
	if closed {
		toggle = Button{Text: labelOpen, Value: "open_" + string(id)}
	}
	return [][]Button{
		{{Text: labelRefresh, Value: "update_" + string(id)}},
		{{Text: labelCopy, Value: "publish_" + string(id)}},
		{toggle},
	}
}

// voteButtons builds one vote button per option for group views.
func voteButtons(id PollID, options []string) [][]Button {
	rows := make([][]Button, 0, len(options))
	for _, option := range options {
		rows = append(rows, []Button{{
			Text:  option,
			Value: "answer_" + option + "_" + string(id),
		}})
	}
	return rows
}
