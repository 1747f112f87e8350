package identity

import (
	"context"
	"testing"
	"time"
)

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricChallengeIssued)
	if got := m.Value(MetricChallengeIssued); got != 0 {
		t.Fatalf("Value = %d, want 0", got)
	}

	s := m.Snapshot()
	if len(s.Counters) != 0 || len(s.Histograms) != 0 {
		t.Fatalf("disabled snapshot not empty: %+v", s)
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics

	m.Inc(MetricChallengeIssued)
	m.Observe(MetricVerifyLatency, time.Millisecond)
	if m.Value(MetricChallengeIssued) != 0 {
		t.Fatal("nil Value != 0")
	}
	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics report enabled")
	}
	_ = m.Snapshot()
}

func TestMetricsCountersAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Inc(MetricSignInSuccess)
	m.Inc(MetricSignInSuccess)
	m.Inc(MetricTokenIssued)
	m.Observe(MetricVerifyLatency, 30*time.Millisecond)

	if got := m.Value(MetricSignInSuccess); got != 2 {
		t.Fatalf("Value = %d, want 2", got)
	}

	s := m.Snapshot()
	if s.Counters[MetricSignInSuccess] != 2 || s.Counters[MetricTokenIssued] != 1 {
		t.Fatalf("snapshot counters = %v", s.Counters)
	}

	buckets := s.Histograms[MetricVerifyLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("bucket count = %d", len(buckets))
	}
	// 30ms lands in the <=50ms bucket.
	if buckets[3] != 1 {
		t.Fatalf("buckets = %v", buckets)
	}

	// Snapshot is detached from the live counters.
	m.Inc(MetricSignInSuccess)
	if s.Counters[MetricSignInSuccess] != 2 {
		t.Fatal("snapshot mutated by later increment")
	}
}

func TestBucketIndexBoundaries(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{time.Millisecond, 0},
		{5 * time.Millisecond, 0},
		{6 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{100 * time.Millisecond, 4},
		{400 * time.Millisecond, 6},
		{2 * time.Second, 7},
	}

	for _, tc := range cases {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Fatalf("bucketIndex(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestEngineCountsFlowOutcomes(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	if err := te.engine.IssueSignUpChallenge(ctx, "alice@example.com"); err != nil {
		t.Fatalf("IssueSignUpChallenge failed: %v", err)
	}
	delivery := te.notifier.wait(t)

	fields := SignUpFields{Password: "long-enough-password"}
	if _, err := te.engine.CompleteSignUp(ctx, "alice@example.com", "000000", fields); err == nil {
		t.Fatal("wrong code accepted")
	}
	if _, err := te.engine.CompleteSignUp(ctx, "alice@example.com", delivery.code, fields); err != nil {
		t.Fatalf("CompleteSignUp failed: %v", err)
	}
	if _, _, err := te.engine.SignInStandard(ctx, "alice@example.com", "long-enough-password"); err != nil {
		t.Fatalf("SignInStandard failed: %v", err)
	}

	s := te.engine.MetricsSnapshot()
	expect := map[MetricID]uint64{
		MetricChallengeIssued:   1,
		MetricCodeIncorrect:     1,
		MetricChallengeConsumed: 1,
		MetricSignUpCompleted:   1,
		MetricSignInSuccess:     1,
		MetricTokenIssued:       1,
	}
	for id, want := range expect {
		if got := s.Counters[id]; got != want {
			t.Fatalf("counter %d = %d, want %d", id, got, want)
		}
	}
}
