package socket

import (
	"net/http"
	"strings"
)

// originChecker allows every origin when the list is empty or holds "*".
func originChecker(allowed []string) func(r *http.Request) bool {
	set := map[string]bool{}
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(origin, "/")] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[strings.TrimRight(origin, "/")]
	}
}
