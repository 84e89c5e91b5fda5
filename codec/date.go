package codec

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

// UTC is the zone attached to parsed dates that carry no offset of their own.
var UTC = time.UTC

// ErrDateType reports a date input that is neither an integer nor text.
var ErrDateType = errors.New("codec: date must be an integer timestamp or text")

// ParseDate converts an integer Unix timestamp (seconds) or date text into a
// time.Time. Text is parsed permissively (RFC 3339, RFC 1123, "2006-01-02",
// "Jan 2, 2006", "01/02/2006 15:04" and other common shapes); when the text
// carries no zone the result is placed in UTC.
func ParseDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case string:
		return parseDateText(t)
	case []byte:
		return parseDateText(string(t))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Unix(rv.Int(), 0).In(UTC), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > math.MaxInt64 {
			return time.Time{}, fmt.Errorf("codec: timestamp %d: %w", n, strconv.ErrRange)
		}
		return time.Unix(int64(n), 0).In(UTC), nil
	case reflect.String:
		return parseDateText(rv.String())
	}
	return time.Time{}, fmt.Errorf("%w: got %T", ErrDateType, v)
}

func parseDateText(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("codec: parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t in canonical RFC 3339 form, normalized to UTC.
func FormatDate(t time.Time) string {
	// Go trims trailing zeros of fractional seconds with RFC3339Nano.
	return t.UTC().Format(time.RFC3339Nano)
}
