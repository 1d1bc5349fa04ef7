package wake

import (
	"strings"
	"testing"
	"time"
)

func TestEncodeScheduleTruncatesToMinute(t *testing.T) {
	t.Parallel()
	a := time.Date(2024, 3, 5, 12, 34, 56, 700_000_000, time.UTC)
	b := time.Date(2024, 3, 5, 12, 34, 56, 900_000_000, time.UTC)
	c := time.Date(2024, 3, 5, 12, 34, 0, 0, time.UTC)

	want := "2024-03-05 12:34:00 UTC"
	for _, in := range []time.Time{a, b, c} {
		if got := EncodeSchedule(in); got != want {
			t.Fatalf("EncodeSchedule(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestEncodeScheduleNormalizesOffset(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "utc",
			in:   time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC),
			want: "2024-01-01 00:01:00 UTC",
		},
		{
			name: "positive offset crosses midnight",
			in:   time.Date(2024, 1, 1, 1, 30, 0, 0, time.FixedZone("UTC+2", 2*3600)),
			want: "2023-12-31 23:30:00 UTC",
		},
		{
			name: "negative half-hour offset",
			in:   time.Date(2024, 6, 30, 20, 0, 59, 0, time.FixedZone("NST", -(3*3600+30*60))),
			want: "2024-06-30 23:30:00 UTC",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeSchedule(tt.in)
			if got != tt.want {
				t.Fatalf("EncodeSchedule = %q, want %q", got, tt.want)
			}
			if !strings.HasSuffix(got, " UTC") {
				t.Fatalf("missing explicit timezone marker in %q", got)
			}
		})
	}
}

func TestEncodeScheduleSameInstantSameOutput(t *testing.T) {
	t.Parallel()
	utc := time.Date(2024, 7, 1, 8, 15, 30, 0, time.UTC)
	tokyo := utc.In(time.FixedZone("JST", 9*3600))
	if EncodeSchedule(utc) != EncodeSchedule(tokyo) {
		t.Fatalf("same instant encoded differently: %q vs %q", EncodeSchedule(utc), EncodeSchedule(tokyo))
	}
}
