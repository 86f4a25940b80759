package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
)

// ParseSize converts "123", "5B", "1KB", "1.5MB" or "2GB" to bytes.
// Units are decimal and case-insensitive.
func ParseSize(s string) (int64, error) {
	raw := s
	s = strings.ToUpper(strings.TrimSpace(s))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: %q is negative", common.ErrInvalidSize, raw)
		}
		return n, nil
	}

	var (
		num        string
		multiplier int64
	)
	switch {
	case strings.HasSuffix(s, "GB"):
		num, multiplier = strings.TrimSuffix(s, "GB"), common.GB
	case strings.HasSuffix(s, "MB"):
		num, multiplier = strings.TrimSuffix(s, "MB"), common.MB
	case strings.HasSuffix(s, "KB"):
		num, multiplier = strings.TrimSuffix(s, "KB"), common.KB
	case strings.HasSuffix(s, "B"):
		num, multiplier = strings.TrimSuffix(s, "B"), 1
	default:
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidSize, raw)
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidSize, raw)
	}
	bytes := f * float64(multiplier)
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows", common.ErrInvalidSize, raw)
	}
	return int64(bytes), nil
}

// ParseTime converts "YYYY-MM-DD" (UTC midnight) or a relative "7d",
// "24h" or "30m" measured back from now.
func ParseTime(s string, now time.Time) (time.Time, error) {
	raw := s
	s = strings.TrimSpace(s)
	if len(s) == 10 && s[4] == '-' {
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %w", common.ErrInvalidTime, raw, err)
		}
		if t.Before(time.Unix(0, 0)) {
			return time.Time{}, fmt.Errorf("%w: %q is before the epoch", common.ErrInvalidTime, raw)
		}
		return t, nil
	}

	var unit time.Duration
	switch {
	case strings.HasSuffix(s, "d"):
		unit = 24 * time.Hour
	case strings.HasSuffix(s, "h"):
		unit = time.Hour
	case strings.HasSuffix(s, "m"):
		unit = time.Minute
	default:
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD or Nd, Nh, Nm)", common.ErrInvalidTime, raw)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s[:len(s)-1]), 10, 32)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", common.ErrInvalidTime, raw)
	}
	return now.Add(-time.Duration(n) * unit), nil
}
