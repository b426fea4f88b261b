package utils

import (
	"reflect"
	"time"
)

func DefaultIfZero[T any](v T, fallback T) T {
	if reflect.ValueOf(v).IsZero() {
		return fallback
	}
	return v
}

// MergeMap deep merges src into dst.
func MergeMap(dst, src map[string]interface{}) {
	for k, v := range src {
		if srcv, ok := v.(map[string]interface{}); ok {
			if dstv, ok := dst[k].(map[string]interface{}); ok {
				MergeMap(dstv, srcv)
			} else {
				dst[k] = srcv
			}
		} else {
			dst[k] = v
		}
	}
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

// FormatTime formats t as RFC3339 in UTC, "-" for nil.
func FormatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
