package services

import (
	"fmt"
	"time"
)

// The dashboards must render dense series: every expected time bucket
// appears even when no data was observed for it. The helpers here build
// the full ordered key domain first; backfill then left-joins sparse
// observed aggregates onto it, defaulting missing keys to a zero point.

// backfill joins observed rows onto the ordered key domain. mk receives
// a nil obs for keys with no data and must return the zero-valued point.
func backfill[O, P any](keys []string, observed []O, keyOf func(O) string, mk func(key string, obs *O) P) []P {
	byKey := make(map[string]O, len(observed))
	for _, o := range observed {
		byKey[keyOf(o)] = o
	}
	out := make([]P, 0, len(keys))
	for _, k := range keys {
		if o, ok := byKey[k]; ok {
			out = append(out, mk(k, &o))
		} else {
			out = append(out, mk(k, nil))
		}
	}
	return out
}

// monthKeys returns the n trailing calendar months as "2006-01" keys,
// oldest first, ending with the month containing now.
func monthKeys(now time.Time, n int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, first.AddDate(0, -i, 0).Format("2006-01"))
	}
	return keys
}

// dayKeys returns the n trailing calendar dates as "2006-01-02" keys,
// oldest first, ending with today.
func dayKeys(now time.Time, n int) []string {
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, now.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return keys
}

// weekdayKeys matches sqlite strftime('%w'): "0" = Sunday.
func weekdayKeys() []string {
	return []string{"0", "1", "2", "3", "4", "5", "6"}
}

func hourKeys() []string {
	keys := make([]string, 0, 24)
	for h := 0; h < 24; h++ {
		keys = append(keys, fmt.Sprintf("%02d", h))
	}
	return keys
}

func ratingKeys() []string {
	return []string{"1", "2", "3", "4", "5"}
}
