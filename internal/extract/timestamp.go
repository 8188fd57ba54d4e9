package extract

import (
	"regexp"
	"strconv"
	"time"
)

const publishTimeLayout = "2006-01-02 15:04:05"

var (
	numericPublishExpr = regexp.MustCompile(`(?:publish_time|ct)=([0-9]{10})`)
	inlinePublishExpr  = regexp.MustCompile(`publish_time\s*[:=]\s*"([^"]+)"`)
)

// PublishTime finds the article publish time in raw markup. The numeric query parameter
// wins over the script-embedded datetime, which is read in loc (time.Local when nil).
func PublishTime(raw string, loc *time.Location) (int64, bool) {
	if m := numericPublishExpr.FindStringSubmatch(raw); m != nil {
		if ts, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			return ts, true
		}
	}

	m := inlinePublishExpr.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(publishTimeLayout, m[1], loc)
	if err != nil {
		return 0, false
	}
	return parsed.Unix(), true
}
