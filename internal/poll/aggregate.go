package poll

import "sort"

// Tally holds aggregated results for one poll. Options without votes do not
// appear here; the render step back-fills them at 0%.
type Tally struct {
	VotersByOption  map[string][]string
	PercentByOption map[string]int
}

// TotalVotes counts distinct voters across all options.
func (t Tally) TotalVotes() int {
	total := 0
	for _, voters := range t.VotersByOption {
		total += len(voters)
	}
	return total
}

// Aggregate groups raw (voter -> option) pairs by option and computes
// integer percentages, floor(100*count/total), so the percentages need not
// sum to exactly 100. Zero votes yield empty mappings, never an error.
// Voters within an option are sorted for stable output.
func Aggregate(votes map[string]string) Tally {
	tally := Tally{
		VotersByOption:  make(map[string][]string, len(votes)),
		PercentByOption: make(map[string]int, len(votes)),
	}
	total := len(votes)
	if total == 0 {
		return tally
	}
	for voter, option := range votes {
		tally.VotersByOption[option] = append(tally.VotersByOption[option], voter)
	}
	for option, voters := range tally.VotersByOption {
		sort.Strings(voters)
		tally.PercentByOption[option] = 100 * len(voters) / total
	}
	return tally
}
