package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryGetAbsent(t *testing.T) {
	kv := NewMemory()
	got, err := kv.Get(context.Background(), "states", "42")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "" {
		t.Fatalf("absent record = %q, expected empty", got)
	}
}

func TestMemoryIncrementFromAbsent(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	n, err := kv.Increment(ctx, "last_poll_id", "7")
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if n != 1 {
		t.Fatalf("first increment = %d, expected 1", n)
	}

	n, err = kv.Increment(ctx, "last_poll_id", "7")
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if n != 2 {
		t.Fatalf("second increment = %d, expected 2", n)
	}

	raw, err := kv.Get(ctx, "last_poll_id", "7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if raw != "2" {
		t.Fatalf("stored value = %q, expected \"2\"", raw)
	}
}

func TestMemoryIncrementNonNumeric(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	if err := kv.Set(ctx, "last_poll_id", "7", "oops"); err != nil {
		t.Fatalf("set: %v", err)
	}
	_, err := kv.Increment(ctx, "last_poll_id", "7")
	if !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("increment error = %v, expected ErrNotNumeric", err)
	}
}

func TestMemoryAppendBuildsList(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	if err := kv.Append(ctx, "options", "1p1", "Red"); err != nil {
		t.Fatalf("append: %v", err)
	}
	raw, _ := kv.Get(ctx, "options", "1p1")
	if got := SplitList(raw); len(got) != 1 || got[0] != "Red" {
		t.Fatalf("singleton list = %v", got)
	}

	if err := kv.Append(ctx, "options", "1p1", "Blue"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := kv.Append(ctx, "options", "1p1", "Blue"); err != nil {
		t.Fatalf("append: %v", err)
	}
	raw, _ = kv.Get(ctx, "options", "1p1")
	got := SplitList(raw)
	if len(got) != 3 || got[0] != "Red" || got[1] != "Blue" || got[2] != "Blue" {
		t.Fatalf("list after duplicate append = %v", got)
	}
}

func TestMemoryScanTableCopies(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()

	if err := kv.Set(ctx, "answers_1p1", "100", "Red"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "answers_1p1", "200", "Blue"); err != nil {
		t.Fatalf("set: %v", err)
	}

	records, err := kv.ScanTable(ctx, "answers_1p1")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(records) != 2 || records["100"] != "Red" || records["200"] != "Blue" {
		t.Fatalf("scan = %v", records)
	}

	// Mutating the copy must not leak into the store.
	records["100"] = "Green"
	again, _ := kv.ScanTable(ctx, "answers_1p1")
	if again["100"] != "Red" {
		t.Fatalf("scan copy leaked: %v", again)
	}
}

func TestSplitListEmpty(t *testing.T) {
	if got := SplitList(""); got != nil {
		t.Fatalf("SplitList(\"\") = %v, expected nil", got)
	}
}
