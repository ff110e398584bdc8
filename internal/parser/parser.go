// Package parser turns a free-text task line such as
// "Math homework tomorrow 5pm for 45m" into a title, date, time and duration.
package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Result is what Parse extracted. Empty Date/Time and zero Duration mean not found.
type Result struct {
	Title     string `json:"title"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	Duration  int    `json:"duration,omitempty"`
	CleanText string `json:"cleanText"`
}

var (
	durationRe = regexp.MustCompile(`(?i)\b(?:for\s+)?(\d+(?:\.\d+)?)\s*(m|min|mins|minutes|h|hr|hrs|hour|hours)\b`)
	timeRe     = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?(?:\s*(a\.m\.|p\.m\.|am\b|pm\b))?`)
	tomorrowRe = regexp.MustCompile(`(?i)\b(tomorrow|tmrw)\b`)
	todayRe    = regexp.MustCompile(`(?i)\btoday\b`)
	weekdayRe  = regexp.MustCompile(`(?i)\b(sunday|monday|tuesday|wednesday|thursday|friday|saturday|sun|mon|tue|tues|wed|thu|thur|thurs|fri|sat)\b`)
	spacesRe   = regexp.MustCompile(`\s+`)
	connectRe  = regexp.MustCompile(`(?i)\b(at|on|for)\b`)
)

// keywordDurations are tried in order when no explicit duration is given.
var keywordDurations = []struct {
	re      *regexp.Regexp
	minutes int
}{
	{regexp.MustCompile(`(?i)\b(quick|chat|check|email|standup)\b`), 15},
	{regexp.MustCompile(`(?i)\b(call|meeting|sync|discussion)\b`), 30},
	{regexp.MustCompile(`(?i)\b(review|draft|analysis)\b`), 45},
	{regexp.MustCompile(`(?i)\b(deep|focus|write|code|coding|plan|lab)\b`), 60},
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// Parse extracts scheduling hints from text relative to now.
func Parse(text string, now time.Time) Result {
	var res Result
	title := text

	if loc := durationRe.FindStringSubmatchIndex(title); loc != nil {
		value, _ := strconv.ParseFloat(title[loc[2]:loc[3]], 64)
		unit := strings.ToLower(title[loc[4]:loc[5]])
		if strings.HasPrefix(unit, "h") {
			value *= 60
		}
		res.Duration = int(math.Round(value))
		title = title[:loc[0]] + " " + title[loc[1]:]
	} else {
		for _, kw := range keywordDurations {
			if kw.re.MatchString(text) {
				res.Duration = kw.minutes
				break
			}
		}
	}

	if clock, start, end, ok := findTime(title); ok {
		res.Time = clock
		title = title[:start] + " " + title[end:]
	}

	days := -1
	switch {
	case tomorrowRe.MatchString(title):
		days = 1
		title = removeFirst(tomorrowRe, title)
	case todayRe.MatchString(title):
		days = 0
		title = removeFirst(todayRe, title)
	default:
		if m := weekdayRe.FindString(title); m != "" {
			target := weekdays[strings.ToLower(m)[:3]]
			diff := int(target) - int(now.Weekday())
			if diff <= 0 {
				diff += 7
			}
			days = diff
			title = removeFirst(weekdayRe, title)
		}
	}
	if days < 0 && res.Time != "" {
		days = 0
	}
	if days >= 0 {
		res.Date = now.AddDate(0, 0, days).Format("2006-01-02")
	}

	title = connectRe.ReplaceAllString(title, " ")
	title = strings.TrimSpace(spacesRe.ReplaceAllString(title, " "))
	res.Title = title
	res.CleanText = title
	return res
}

// findTime returns the first clock time in s as HH:MM with the byte range it
// occupies. Numbers that are part of a longer number or word are skipped.
func findTime(s string) (string, int, int, bool) {
	for _, m := range timeRe.FindAllStringSubmatchIndex(s, -1) {
		if m[1] < len(s) && m[6] < 0 {
			next := rune(s[m[1]])
			if unicode.IsDigit(next) || unicode.IsLetter(next) {
				continue
			}
		}
		hour, _ := strconv.Atoi(s[m[2]:m[3]])
		minute := 0
		if m[4] >= 0 {
			minute, _ = strconv.Atoi(s[m[4]:m[5]])
		}
		if m[6] >= 0 {
			meridiem := strings.ReplaceAll(strings.ToLower(s[m[6]:m[7]]), ".", "")
			if meridiem == "pm" && hour < 12 {
				hour += 12
			}
			if meridiem == "am" && hour == 12 {
				hour = 0
			}
		} else if m[4] < 0 && hour < 7 {
			hour += 12
		}
		if hour < 0 || hour >= 24 || minute < 0 || minute >= 60 {
			continue
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), m[0], m[1], true
	}
	return "", 0, 0, false
}

func removeFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + " " + s[loc[1]:]
}

// Start combines Date and Time into a local timestamp.
func (r Result) Start(loc *time.Location) (time.Time, bool) {
	if r.Date == "" || r.Time == "" {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04", r.Date+" "+r.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Day returns the parsed date at midnight.
func (r Result) Day(loc *time.Location) (time.Time, bool) {
	if r.Date == "" {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation("2006-01-02", r.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
