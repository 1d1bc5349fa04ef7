package waketime

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Kind describes how a wake expression was interpreted.
type Kind int

const (
	KindAbsolute Kind = iota
	KindRelative
	KindClock
	KindCron
)

func (k Kind) String() string {
	switch k {
	case KindAbsolute:
		return "absolute"
	case KindRelative:
		return "relative"
	case KindClock:
		return "clock"
	case KindCron:
		return "cron"
	default:
		return "unknown"
	}
}

// Spec is a parsed wake expression.
//
// Supported forms:
//   - RFC 3339 timestamp: "2024-01-01T00:01:00+00:00"
//   - Relative duration from now: "90s", "2h30m"
//   - Wall clock HH:MM: next occurrence in loc (today, else tomorrow)
//   - Cron: "0 9 * * MON", "@daily" (next occurrence after now, in loc)
//
// Optional prefixes force a form: "at:", "in:", "clock:", "cron:".
type Spec struct {
	Kind   Kind
	At     time.Time
	Source string
}

var reHHMM = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Parse resolves raw against now. loc is used for wall-clock and cron forms;
// nil means now's location.
func Parse(raw string, now time.Time, loc *time.Location) (Spec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Spec{}, fmt.Errorf("wake time required")
	}
	if loc == nil {
		loc = now.Location()
	}

	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "at:"):
		return parseAbsolute(strings.TrimSpace(s[len("at:"):]))
	case strings.HasPrefix(low, "in:"):
		return parseRelative(strings.TrimSpace(s[len("in:"):]), now)
	case strings.HasPrefix(low, "clock:"):
		return parseClock(strings.TrimSpace(s[len("clock:"):]), now, loc)
	case strings.HasPrefix(low, "cron:"):
		expr := strings.TrimSpace(s[len("cron:"):])
		if expr == "" {
			return Spec{}, fmt.Errorf("cron expression required after 'cron:'")
		}
		return parseCron(expr, now, loc)
	}

	// Heuristics:
	// - any whitespace or leading '@' => cron
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		return parseCron(s, now, loc)
	}
	// - HH:MM => wall clock
	if reHHMM.MatchString(s) {
		return parseClock(s, now, loc)
	}
	// - Go duration => relative
	if _, err := time.ParseDuration(s); err == nil {
		return parseRelative(s, now)
	}
	// - timestamp
	if sp, err := parseAbsolute(s); err == nil {
		return sp, nil
	}

	return Spec{}, fmt.Errorf(
		"invalid wake time %q (use RFC 3339 like '2024-01-01T09:00:00+01:00', duration like '90m', HH:MM like '07:30', or cron like '0 9 * * MON')",
		raw,
	)
}

func parseAbsolute(v string) (Spec, error) {
	if v == "" {
		return Spec{}, fmt.Errorf("timestamp required")
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid timestamp %q (RFC 3339 with offset required): %w", v, err)
	}
	return Spec{Kind: KindAbsolute, At: t, Source: "rfc3339"}, nil
}

func parseRelative(v string, now time.Time) (Spec, error) {
	if v == "" {
		return Spec{}, fmt.Errorf("duration required")
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid duration %q (use Go duration like '55m'/'2h30m')", v)
	}
	if d <= 0 {
		return Spec{}, fmt.Errorf("duration must be > 0")
	}
	return Spec{Kind: KindRelative, At: now.Add(d), Source: "duration"}, nil
}

func parseClock(v string, now time.Time, loc *time.Location) (Spec, error) {
	h, m, err := parseHHMM(v)
	if err != nil {
		return Spec{}, err
	}
	local := now.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), h, m, 0, 0, loc)
	if !at.After(local) {
		at = time.Date(local.Year(), local.Month(), local.Day()+1, h, m, 0, 0, loc)
	}
	return Spec{Kind: KindClock, At: at, Source: "hhmm"}, nil
}

func parseCron(expr string, now time.Time, loc *time.Location) (Spec, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid cron %q: %w", expr, err)
	}
	next := sched.Next(now.In(loc))
	if next.IsZero() {
		return Spec{}, fmt.Errorf("cron %q never fires", expr)
	}
	return Spec{Kind: KindCron, At: next, Source: "cron"}, nil
}

func parseHHMM(v string) (int, int, error) {
	m := reHHMM.FindStringSubmatch(v)
	if len(m) != 3 {
		return 0, 0, fmt.Errorf("invalid HH:MM %q", v)
	}
	var hh int
	for i := 0; i < len(m[1]); i++ {
		hh = hh*10 + int(m[1][i]-'0')
	}
	mm := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	if hh > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", v)
	}
	if mm > 59 {
		return 0, 0, fmt.Errorf("invalid minutes in %q", v)
	}
	return hh, mm, nil
}
