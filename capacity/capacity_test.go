package capacity

import "testing"

func TestCanReserve(t *testing.T) {
	cases := []struct {
		name      string
		occupied  int
		requested int
		maxSeats  int
		want      bool
	}{
		{"empty event, exact fit", 0, 2, 2, true},
		{"full event rejects one more", 2, 1, 2, false},
		{"one seat left", 1, 1, 2, true},
		{"batch overshoots", 0, 3, 2, false},
		{"boundary: fills to exactly max", 5, 5, 10, true},
		{"already over capacity after seat edit", 5, 1, 3, false},
		{"zero requested always fits", 3, 0, 3, true},
	}
	for _, c := range cases {
		if got := CanReserve(c.occupied, c.requested, c.maxSeats); got != c.want {
			t.Errorf("%s: CanReserve(%d, %d, %d) = %v, want %v",
				c.name, c.occupied, c.requested, c.maxSeats, got, c.want)
		}
	}
}
