package timeutil

import "time"

// ISODate is the calendar-date layout used in worklog rows.
const ISODate = "2006-01-02"

func Today() string {
	return time.Now().Format(ISODate)
}

func FormatDay(value time.Time) string {
	return value.Format(ISODate)
}

func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(ISODate, value, time.Local)
}
