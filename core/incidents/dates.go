package incidents

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dayFirstPattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})\s*(\d{1,2})?:?(\d{2})?`)
	isoDatePattern  = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})(?:[T ](\d{1,2}):(\d{2})(?::(\d{2}))?)?`)
)

// fallbackLayouts are tried in order once the two preferred patterns fail.
var fallbackLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"1/2/06 15:04",
	"1/2/06 3:04 PM",
	"1/2/06",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
}

// Excel serial day numbers between these bounds are accepted as dates (1954..2119).
const (
	excelSerialMin = 20000
	excelSerialMax = 80000
)

var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate accepts D/M/YYYY[ H:MM] (day first), then YYYY-MM-DD[ HH:MM[:SS]],
// then a generic list of layouts and Excel serial numbers. The result is wall-clock
// time in loc; unparsable or empty input yields nil.
func ParseDate(s string, loc *time.Location) *time.Time {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if m := dayFirstPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
		return &t
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		minute, _ := strconv.Atoi(m[5])
		second, _ := strconv.Atoi(m[6])
		t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
		return &t
	}
	for _, layout := range fallbackLayouts {
		if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
			t := wallClock(parsed, loc)
			return &t
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= excelSerialMin && serial <= excelSerialMax {
		t := ExcelSerialToTime(serial, loc)
		return &t
	}
	return nil
}

// ExcelSerialToTime converts a spreadsheet day number to wall-clock time in loc,
// rounded to the minute.
func ExcelSerialToTime(serial float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	days := math.Floor(serial)
	minutes := math.Round((serial - days) * 24 * 60)
	base := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(minutes) * time.Minute)
	return wallClock(base, loc)
}

// FormatDayFirst renders t the way the intake form writes timestamps.
func FormatDayFirst(t time.Time) string {
	return t.Format("2/1/2006 15:04")
}

// wallClock keeps the calendar fields of t and re-anchors them in loc.
func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}
