package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Turkish month names as customers type them, lowercase, matched after
// turkishLower folding.
var turkishMonths = map[string]time.Month{
	"ocak": time.January, "şubat": time.February, "mart": time.March,
	"nisan": time.April, "mayıs": time.May, "haziran": time.June,
	"temmuz": time.July, "ağustos": time.August, "eylül": time.September,
	"ekim": time.October, "kasım": time.November, "aralık": time.December,
}

var (
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})(?:[./](\d{4}))?\b`)
	isoDateRe     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	namedDateRe   = regexp.MustCompile(`\b(\d{1,2})\s+(ocak|şubat|mart|nisan|mayıs|haziran|temmuz|ağustos|eylül|ekim|kasım|aralık)\b`)
	clockRe       = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\b`)
	hourWordRe    = regexp.MustCompile(`\b(?:saat|akşam|öğlen?)\s+(\d{1,2})\b`)
	partyRe       = regexp.MustCompile(`\b(\d{1,2})\s*kişi(?:lik)?\b`)
)

// turkishLower folds the characters ASCII lowering gets wrong for
// Turkish, enough for keyword matching.
func turkishLower(s string) string {
	s = strings.ReplaceAll(s, "İ", "i")
	s = strings.ReplaceAll(s, "I", "ı")
	return strings.ToLower(s)
}

// parseDate extracts a reservation date from free text. The returned
// string is YYYY-MM-DD; ok is false when no date is present.
func parseDate(text string, now time.Time) (string, bool) {
	lower := turkishLower(text)

	if strings.Contains(lower, "bugün") {
		return now.Format("2006-01-02"), true
	}
	if strings.Contains(lower, "yarın") {
		return now.AddDate(0, 0, 1).Format("2006-01-02"), true
	}
	if m := isoDateRe.FindStringSubmatch(lower); m != nil {
		return m[0], true
	}
	if m := namedDateRe.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := turkishMonths[m[2]]
		year := now.Year()
		// A named date earlier in the year than today rolls to next year.
		candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if candidate.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)) {
			year++
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
	}
	if m := numericDateRe.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return "", false
		}
		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
	}
	return "", false
}

// parseClockText extracts a reservation time as HH:MM. Bare hours
// below the opening hour are read as evening: "akşam 8" is 20:00.
func parseClockText(text string) (string, bool) {
	lower := turkishLower(text)

	for _, m := range clockRe.FindAllStringSubmatchIndex(lower, -1) {
		// A dotted match inside a numeric date ("25.10.2025") is not a
		// clock.
		if partOfDate(lower, m[0], m[1]) {
			continue
		}
		hour, _ := strconv.Atoi(lower[m[2]:m[3]])
		minute, _ := strconv.Atoi(lower[m[4]:m[5]])
		if hour > 24 || minute > 59 {
			continue
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}
	if m := hourWordRe.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if hour > 24 {
			return "", false
		}
		if hour < 11 {
			hour += 12
		}
		return fmt.Sprintf("%02d:00", hour), true
	}
	return "", false
}

// partOfDate reports whether a clock-shaped match at [start, end) has a
// date separator and digit adjacent to it, like the "25.10" inside
// "25.10.2025".
func partOfDate(s string, start, end int) bool {
	if end+1 < len(s) && (s[end] == '.' || s[end] == '/') && isDigit(s[end+1]) {
		return true
	}
	if start >= 2 && (s[start-1] == '.' || s[start-1] == '/') && isDigit(s[start-2]) {
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parsePartySize extracts the guest count ("4 kişi", "2 kişilik").
func parsePartySize(text string) (int, bool) {
	lower := turkishLower(text)
	if m := partyRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, n > 0
	}
	return 0, false
}
