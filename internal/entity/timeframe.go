package entity

import (
	"fmt"
	"time"
)

type Timeframe string

const (
	Timeframe7Days  Timeframe = "7days"
	Timeframe30Days Timeframe = "30days"
	Timeframe90Days Timeframe = "90days"
	TimeframeYear   Timeframe = "year"
	TimeframeAll    Timeframe = "all"
)

func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(s); tf {
	case "":
		return TimeframeAll, nil
	case Timeframe7Days, Timeframe30Days, Timeframe90Days, TimeframeYear, TimeframeAll:
		return tf, nil
	}
	return "", fmt.Errorf("timeframe %q is invalid (7days, 30days, 90days, year, all)", s)
}

// Window returns the [from, now] range of the timeframe. from is nil for "all".
// "year" starts at Jan 1 00:00 of now's calendar year in loc.
func (tf Timeframe) Window(now time.Time, loc *time.Location) (*time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	var from time.Time
	switch tf {
	case Timeframe7Days:
		from = now.AddDate(0, 0, -7)
	case Timeframe30Days:
		from = now.AddDate(0, 0, -30)
	case Timeframe90Days:
		from = now.AddDate(0, 0, -90)
	case TimeframeYear:
		from = StartOfYear(now.In(loc).Year(), loc)
	default:
		return nil, now
	}
	return &from, now
}

func StartOfYear(year int, loc *time.Location) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
}
