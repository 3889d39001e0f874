package footballapi

import (
	"fmt"
	"sort"
	"strings"
)

type fixturesEnvelope struct {
	Get      string        `json:"get"`
	Errors   any           `json:"errors"`
	Results  int           `json:"results"`
	Response []fixtureItem `json:"response"`
}

// errorMessage flattens the provider's errors field, which is an empty list on success
// and an object keyed by error kind on failure.
func (e fixturesEnvelope) errorMessage() string {
	switch v := e.Errors.(type) {
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", key, v[key]))
		}
		return strings.Join(parts, "; ")
	case []any:
		if len(v) == 0 {
			return ""
		}
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, "; ")
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}
}

type fixtureItem struct {
	Fixture fixtureInfo `json:"fixture"`
	Goals   goals       `json:"goals"`
}

type fixtureInfo struct {
	ID     int64         `json:"id"`
	Date   string        `json:"date"`
	Status fixtureStatus `json:"status"`
}

type fixtureStatus struct {
	Long    string `json:"long"`
	Short   string `json:"short"`
	Elapsed *int   `json:"elapsed"`
}

type goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}
