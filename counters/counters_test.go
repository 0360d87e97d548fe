package counters

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		prefix string
		n      int
		want   string
	}{
		{"U", 7, "U007"},
		{"U", 1, "U001"},
		{"B", 42, "B042"},
		{"U", 999, "U999"},
		{"U", 1000, "U1000"}, // padding widens past 999, numbers stay unique
		{"", 5, "005"},
	}
	for _, c := range cases {
		if got := Format(c.prefix, c.n); got != c.want {
			t.Errorf("Format(%q, %d) = %q, want %q", c.prefix, c.n, got, c.want)
		}
	}
}

func TestFormatRangeContiguous(t *testing.T) {
	nums := FormatRange("U", 5, 3)
	want := []string{"U005", "U006", "U007"}
	if len(nums) != len(want) {
		t.Fatalf("got %d numbers, want %d", len(nums), len(want))
	}
	for i := range want {
		if nums[i] != want[i] {
			t.Errorf("nums[%d] = %q, want %q", i, nums[i], want[i])
		}
	}
}

func TestFormatRangeNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range FormatRange("U", 1, 50) {
		if seen[n] {
			t.Fatalf("duplicate queue number %q", n)
		}
		seen[n] = true
	}
}

func TestRetryAllocateOnlyOnDuplicateKey(t *testing.T) {
	// the upsert race between two first allocations surfaces as a
	// duplicate-key write error; only that error earns a retry
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	if !retryAllocate(dup) {
		t.Error("duplicate-key error from the losing upsert should retry")
	}
	if retryAllocate(errors.New("connection refused")) {
		t.Error("ordinary store failures must not retry")
	}
	if retryAllocate(nil) {
		t.Error("nil error must not retry")
	}
}

func TestFormatRangeEndMatchesCounter(t *testing.T) {
	// Allocate computes the run from the post-increment value:
	// last=10 after adding count=4 means the run started at 7.
	last, count := 10, 4
	nums := FormatRange("U", last-count+1, count)
	if nums[0] != "U007" || nums[len(nums)-1] != "U010" {
		t.Errorf("run = %v, want U007..U010", nums)
	}
}
