package attempt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Europe/Moscow must resolve on hosts without zoneinfo
)

// SourceZone is the judge's clock: Yekaterinburg time, printed without a zone marker.
var SourceZone = time.FixedZone("GMT+0500", 5*60*60)

// DisplayZone is where announcement timestamps are rendered
var DisplayZone = loadDisplayZone()

func loadDisplayZone() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

var monthPrefixes = []struct {
	prefix string
	month  time.Month
}{
	{"янв", time.January},
	{"фев", time.February},
	{"мар", time.March},
	{"апр", time.April},
	{"май", time.May},
	{"мая", time.May},
	{"июн", time.June},
	{"июл", time.July},
	{"авг", time.August},
	{"сен", time.September},
	{"окт", time.October},
	{"ноя", time.November},
	{"дек", time.December},
	// locale=en pages
	{"jan", time.January},
	{"feb", time.February},
	{"mar", time.March},
	{"apr", time.April},
	{"may", time.May},
	{"jun", time.June},
	{"jul", time.July},
	{"aug", time.August},
	{"sep", time.September},
	{"oct", time.October},
	{"nov", time.November},
	{"dec", time.December},
}

var genitiveMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// parseMonth matches a month token such as "янв", "мая" or "Jan"
func parseMonth(token string) (time.Month, bool) {
	lower := strings.ToLower(strings.TrimSuffix(token, "."))
	for _, m := range monthPrefixes {
		if strings.HasPrefix(lower, m.prefix) {
			return m.month, true
		}
	}
	return 0, false
}

// parseClock parses "15:04:05" or "15:04"
func parseClock(token string) (h, m, s int, ok bool) {
	parts := strings.Split(token, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, 0, 0, false
		}
		vals[i] = v
	}
	if vals[0] > 23 || vals[1] > 59 || vals[2] > 59 {
		return 0, 0, 0, false
	}
	return vals[0], vals[1], vals[2], true
}

// ParseDate parses the status page date cell text, e.g. "12:34:56 15 янв 2024",
// interpreting it in SourceZone. The clock and calendar parts may come in either
// order. A missing year is taken from now. Returns false when no day and month
// can be found.
func ParseDate(text string, now time.Time) (time.Time, bool) {
	var (
		hour, minute, sec int
		day, year         int
		month             time.Month
		haveClock         bool
	)

	for _, token := range strings.Fields(text) {
		if !haveClock && strings.Contains(token, ":") {
			if h, m, s, ok := parseClock(token); ok {
				hour, minute, sec, haveClock = h, m, s, true
				continue
			}
		}
		if month == 0 {
			if m, ok := parseMonth(token); ok {
				month = m
				continue
			}
		}
		n, err := strconv.Atoi(strings.TrimSuffix(token, "."))
		if err != nil {
			continue
		}
		switch {
		case len(token) == 4 && year == 0:
			year = n
		case day == 0 && n >= 1 && n <= 31:
			day = n
		}
	}

	if day == 0 || month == 0 {
		return time.Time{}, false
	}
	if year == 0 {
		year = now.In(SourceZone).Year()
	}

	return time.Date(year, month, day, hour, minute, sec, 0, SourceZone), true
}

// FormatDate converts the status page date text into Moscow display form,
// "10:34:56, 15 января 2024". Text that cannot be parsed is returned trimmed.
func FormatDate(text string) string {
	t, ok := ParseDate(text, time.Now())
	if !ok {
		return strings.TrimSpace(text)
	}
	return FormatDisplay(t)
}

// FormatDisplay renders t in DisplayZone with Russian genitive month names
func FormatDisplay(t time.Time) string {
	local := t.In(DisplayZone)
	return fmt.Sprintf("%s, %02d %s %d",
		local.Format("15:04:05"), local.Day(), genitiveMonths[local.Month()-1], local.Year())
}
