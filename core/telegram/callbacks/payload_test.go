package callbacks

import "testing"

func TestActionAndAfterTag(t *testing.T) {
	cases := []struct {
		value, action, rest string
	}{
		{"publish_42p1", "publish", "42p1"},
		{"answer_rock_n_roll_42p1", "answer", "rock_n_roll_42p1"},
		{"noseparator", "noseparator", ""},
	}
	for _, tc := range cases {
		if got := Action(tc.value); got != tc.action {
			t.Fatalf("Action(%q) = %q, expected %q", tc.value, got, tc.action)
		}
		if got := AfterTag(tc.value); got != tc.rest {
			t.Fatalf("AfterTag(%q) = %q, expected %q", tc.value, got, tc.rest)
		}
	}
}

func TestSplitGroupSend(t *testing.T) {
	groupID, pollID, err := SplitGroupSend("group_-1001234_42p7")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if groupID != -1001234 || pollID != "42p7" {
		t.Fatalf("split = %d, %q", groupID, pollID)
	}

	if _, _, err := SplitGroupSend("group_only"); err == nil {
		t.Fatal("expected error for missing poll id")
	}
	if _, _, err := SplitGroupSend("group_abc_42p7"); err == nil {
		t.Fatal("expected error for non-numeric group id")
	}
}

func TestSplitAnswerLastSeparatorWins(t *testing.T) {
	option, pollID, err := SplitAnswer("answer_rock_n_roll_42p1")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if option != "rock_n_roll" || pollID != "42p1" {
		t.Fatalf("split = %q, %q", option, pollID)
	}

	if _, _, err := SplitAnswer("answer_solo"); err == nil {
		t.Fatal("expected error when option and poll id are not separable")
	}
	if _, _, err := SplitAnswer("answer_rock_"); err == nil {
		t.Fatal("expected error for empty poll id")
	}
}
