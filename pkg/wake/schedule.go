package wake

import "time"

// calendarLayout is an absolute systemd calendar spec pinned to UTC.
const calendarLayout = "2006-01-02 15:04:05 UTC"

// EncodeSchedule renders t as an OnCalendar= expression that fires once.
//
// The result is absolute (never "in N minutes") and carries an explicit UTC
// marker, so it means the same instant regardless of the host's timezone or
// DST. Sub-minute precision is dropped: 12:34:56.7 and 12:34:56.9 both encode
// as 12:34.
func EncodeSchedule(t time.Time) string {
	return t.UTC().Truncate(time.Minute).Format(calendarLayout)
}
