package poll

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/m3rciful/votebot/internal/storage"
)

// Logical tables in the key-value store.
const (
	tableStates     = "states"
	tableLastPollID = "last_poll_id"
	tableTitles     = "titles"
	tableOptions    = "options"
	tablePolls      = "polls"
	tableGroups     = "groups"

	answersTablePrefix = "answers_"

	showFlagPrefix    = "show_"
	closedFlagPrefix  = "closed_"
	groupMidsPrefix   = "mids_"
	creatorMidsPrefix = "creator_mids_"
)

// ShowVoterNames is the show-flag value revealing voter names in renders;
// any other value keeps the poll anonymous.
const ShowVoterNames = "show"

// PollID identifies one poll draft/instance: <creatorUserID>p<sequence>.
// Sequence numbers advance every time the creator's session resets, so at
// most one in-progress draft exists per user.
type PollID string

// NewPollID builds the composite id for a creator and sequence number.
func NewPollID(userID, seq int64) PollID {
	return PollID(strconv.FormatInt(userID, 10) + "p" + strconv.FormatInt(seq, 10))
}

// Store exposes the domain operations of the poll state store on top of the
// key-value adapter.
type Store struct {
	kv storage.KV
}

// NewStore wraps a key-value adapter.
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// State returns the user's session state, StateStart when absent.
func (s *Store) State(ctx context.Context, userID int64) (State, error) {
	raw, err := s.kv.Get(ctx, tableStates, userKey(userID))
	if err != nil {
		return StateStart, err
	}
	return ParseState(raw)
}

// SetState persists the session state.
func (s *Store) SetState(ctx context.Context, userID int64, st State) error {
	return s.kv.Set(ctx, tableStates, userKey(userID), string(st))
}

// ResetSession advances the user's poll sequence and returns the session to
// StateStart, invalidating any prior draft.
func (s *Store) ResetSession(ctx context.Context, userID int64) error {
	if _, err := s.kv.Increment(ctx, tableLastPollID, userKey(userID)); err != nil {
		return err
	}
	return s.SetState(ctx, userID, StateStart)
}

// CurrentPollID returns the id of the user's current draft.
func (s *Store) CurrentPollID(ctx context.Context, userID int64) (PollID, error) {
	raw, err := s.kv.Get(ctx, tableLastPollID, userKey(userID))
	if err != nil {
		return "", err
	}
	seq := int64(0)
	if raw != "" {
		seq, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", fmt.Errorf("%w: sequence %q", storage.ErrNotNumeric, raw)
		}
	}
	return NewPollID(userID, seq), nil
}

// SetTitle stores the poll title verbatim; an empty title is accepted.
func (s *Store) SetTitle(ctx context.Context, id PollID, title string) error {
	return s.kv.Set(ctx, tableTitles, string(id), title)
}

// Title returns the stored title, "" when absent.
func (s *Store) Title(ctx context.Context, id PollID) (string, error) {
	return s.kv.Get(ctx, tableTitles, string(id))
}

// AppendOption adds one more option line; no count limit is enforced.
func (s *Store) AppendOption(ctx context.Context, id PollID, option string) error {
	return s.kv.Append(ctx, tableOptions, string(id), option)
}

// Options returns the accumulated option list in entry order.
func (s *Store) Options(ctx context.Context, id PollID) ([]string, error) {
	raw, err := s.kv.Get(ctx, tableOptions, string(id))
	if err != nil {
		return nil, err
	}
	return storage.SplitList(raw), nil
}

// SetShowFlag persists the visibility choice ("show" or "anon").
func (s *Store) SetShowFlag(ctx context.Context, id PollID, flag string) error {
	return s.kv.Set(ctx, tablePolls, showFlagPrefix+string(id), flag)
}

// ShowVoters reports whether renders should reveal voter names.
func (s *Store) ShowVoters(ctx context.Context, id PollID) (bool, error) {
	flag, err := s.kv.Get(ctx, tablePolls, showFlagPrefix+string(id))
	if err != nil {
		return false, err
	}
	return flag == ShowVoterNames, nil
}

// SetClosed toggles the closed flag; closed polls reject new votes and
// render without vote buttons.
func (s *Store) SetClosed(ctx context.Context, id PollID, closed bool) error {
	value := ""
	if closed {
		value = "1"
	}
	return s.kv.Set(ctx, tablePolls, closedFlagPrefix+string(id), value)
}

// Closed reports whether the poll is closed.
func (s *Store) Closed(ctx context.Context, id PollID) (bool, error) {
	flag, err := s.kv.Get(ctx, tablePolls, closedFlagPrefix+string(id))
	if err != nil {
		return false, err
	}
	return flag == "1", nil
}

// RecordVote stores the voter's option; a later vote overwrites an earlier
// one, so each voter holds at most one vote per poll.
func (s *Store) RecordVote(ctx context.Context, id PollID, voterID int64, option string) error {
	return s.kv.Set(ctx, answersTablePrefix+string(id), userKey(voterID), option)
}

// Votes returns every recorded (voter id -> option) pair for the poll.
func (s *Store) Votes(ctx context.Context, id PollID) (map[string]string, error) {
	return s.kv.ScanTable(ctx, answersTablePrefix+string(id))
}

// TrackMessage records one rendered copy of the poll so refreshes reach it.
// Duplicate refs are possible when a send is retried and are tolerated.
func (s *Store) TrackMessage(ctx context.Context, id PollID, ref MessageRef, creator bool) error {
	return s.kv.Append(ctx, tablePolls, midsKey(id, creator), string(ref))
}

// TrackedMessages lists every recorded copy of the poll for one view kind.
func (s *Store) TrackedMessages(ctx context.Context, id PollID, creator bool) ([]MessageRef, error) {
	raw, err := s.kv.Get(ctx, tablePolls, midsKey(id, creator))
	if err != nil {
		return nil, err
	}
	items := storage.SplitList(raw)
	refs := make([]MessageRef, len(items))
	for i, item := range items {
		refs[i] = MessageRef(item)
	}
	return refs, nil
}

// RegisterGroup remembers a group chat the bot has seen; an existing entry
// is overwritten so titles stay current.
func (s *Store) RegisterGroup(ctx context.Context, groupID int64, title string) error {
	return s.kv.Set(ctx, tableGroups, strconv.FormatInt(groupID, 10), title)
}

// KnownGroups lists every registered group, ordered by id for stable pickers.
func (s *Store) KnownGroups(ctx context.Context) ([]Group, error) {
	records, err := s.kv.ScanTable(ctx, tableGroups)
	if err != nil {
		return nil, err
	}
	groups := make([]Group, 0, len(records))
	for key, title := range records {
		id, parseErr := strconv.ParseInt(key, 10, 64)
		if parseErr != nil {
			continue
		}
		groups = append(groups, Group{ID: id, Title: title})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

// Counts reports how many polls hold a title and how many votes exist
// across all of them.
func (s *Store) Counts(ctx context.Context) (int, int, error) {
	titles, err := s.kv.ScanTable(ctx, tableTitles)
	if err != nil {
		return 0, 0, err
	}
	votes := 0
	for id := range titles {
		answers, scanErr := s.kv.ScanTable(ctx, answersTablePrefix+id)
		if scanErr != nil {
			return 0, 0, scanErr
		}
		votes += len(answers)
	}
	return len(titles), votes, nil
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func midsKey(id PollID, creator bool) string {
	if creator {
		return creatorMidsPrefix + string(id)
	}
	return groupMidsPrefix + string(id)
}
