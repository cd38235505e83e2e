package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetricsHandler(t *testing.T) {
	m := New()
	m.MatchCreated()
	m.MatchRemoved("unmatch")
	m.InterestDeclared("created")
	m.ObserveRequest("GET", "/api/matches", 200, 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		"eventfriend_matches_created_total 1",
		`eventfriend_matches_removed_total{reason="unmatch"} 1`,
		`eventfriend_interests_total{outcome="created"} 1`,
		`eventfriend_http_requests_total{code="200",method="GET",route="/api/matches"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.MatchCreated()
	m.MessageSent()
	m.SubscriberDelta("ws", 1)
}
