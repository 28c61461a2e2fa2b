package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeOffset matches "+3 days", "-1 week", "2 weeks from now".
var relativeOffset = regexp.MustCompile(`(?i)^([+-]?\d+)\s*(day|days|week|weeks)(\s+from\s+now)?$`)

const dateLayout = "2006-01-02"

// ResolveDefault expands a column's default value at item creation.
//
// Only string defaults on date and datetime columns are resolved; every
// other default is returned unchanged. Date columns render YYYY-MM-DD and
// datetime columns render RFC 3339. Unrecognised strings are literals.
func ResolveDefault(spec any, t ColumnType, now time.Time) any {
	s, ok := spec.(string)
	if !ok || (t != TypeDate && t != TypeDatetime) {
		return spec
	}

	token := strings.ToLower(strings.TrimSpace(s))
	switch token {
	case "today":
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return renderDefault(midnight, t)
	case "now":
		return renderDefault(now, t)
	}

	m := relativeOffset.FindStringSubmatch(token)
	if m == nil {
		return spec
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return spec
	}
	if strings.HasPrefix(m[2], "week") {
		n *= 7
	}
	return renderDefault(now.AddDate(0, 0, n), t)
}

func renderDefault(at time.Time, t ColumnType) string {
	if t == TypeDate {
		return at.Format(dateLayout)
	}
	return at.Format(time.RFC3339Nano)
}
