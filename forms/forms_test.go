package forms

import (
	"net/url"
	"testing"
	"time"
)

func TestInt_Malformed(t *testing.T) {
	v := New(url.Values{
		"growth": {"abc"},
		"weight": {"12.5"},
		"empty":  {""},
	})

	for _, name := range []string{"growth", "weight", "empty", "missing"} {
		if got := v.Int(name); got != nil {
			t.Errorf("Int(%q) = %d, want nil", name, *got)
		}
	}
}

func TestInt_Valid(t *testing.T) {
	v := New(url.Values{"game_num": {" 10 "}, "neg": {"-1"}})
	if got := v.Int("game_num"); got == nil || *got != 10 {
		t.Fatalf("Int(game_num) = %v, want 10", got)
	}
	if got := v.Int("neg"); got == nil || *got != -1 {
		t.Fatalf("Int(neg) = %v, want -1", got)
	}
}

func TestIntOr_Default(t *testing.T) {
	v := New(url.Values{"id": {"oops"}})
	if got := v.IntOr("id", -1); got != -1 {
		t.Fatalf("IntOr = %d, want -1", got)
	}
	if got := v.IntOr("missing", 42); got != 42 {
		t.Fatalf("IntOr = %d, want 42", got)
	}
}

func TestDate_BothFormats(t *testing.T) {
	v := New(url.Values{
		"a": {"31/01/2024"},
		"b": {"2024-01-31"},
	})
	da := v.Date("a")
	db := v.Date("b")
	if da == nil || db == nil {
		t.Fatal("expected both dates to parse")
	}
	if !da.Equal(*db) {
		t.Fatalf("dates differ: %v vs %v", da, db)
	}
	want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if !da.Equal(want) {
		t.Fatalf("got %v, want %v", da, want)
	}
}

func TestDate_Malformed(t *testing.T) {
	v := New(url.Values{
		"a": {"not-a-date"},
		"b": {"31-01-2024"},
		"c": {"2024/01/31"},
	})
	for _, name := range []string{"a", "b", "c", "missing"} {
		if got := v.Date(name); got != nil {
			t.Errorf("Date(%q) = %v, want nil", name, got)
		}
	}
}

func TestStringPtr_AbsentVsEmpty(t *testing.T) {
	v := New(url.Values{"present": {""}})
	if got := v.StringPtr("present"); got == nil || *got != "" {
		t.Fatalf("StringPtr(present) = %v, want pointer to empty string", got)
	}
	if got := v.StringPtr("absent"); got != nil {
		t.Fatalf("StringPtr(absent) = %v, want nil", got)
	}
}
