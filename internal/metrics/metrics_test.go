package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGenerationCounters(t *testing.T) {
	c := GenerationTotal.WithLabelValues("test-model", "ok")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Fatalf("expected %v got %v", before+1, got)
	}

	TokensTotal.WithLabelValues("test-model", "output").Add(12)
	if got := testutil.ToFloat64(TokensTotal.WithLabelValues("test-model", "output")); got < 12 {
		t.Fatalf("token counter not recorded: %v", got)
	}
}
