package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	// Registers the rate limit metrics, which carry no labels and are
	// exported from the start.
	_ "github.com/Sternrassler/pokedex/pkg/ratelimit"
)

func TestRegistry(t *testing.T) {
	if Registry == nil {
		t.Error("Registry should not be nil")
	}

	if Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should be the default Prometheus registerer")
	}
}

func TestFamilies(t *testing.T) {
	names, err := Families()
	if err != nil {
		t.Fatalf("Families() failed: %v", err)
	}

	found := false
	for _, n := range names {
		if !strings.HasPrefix(n, "pokedex_") {
			t.Errorf("unexpected family %q", n)
		}
		if n == "pokedex_ratelimit_blocks_total" {
			found = true
		}
	}
	if !found {
		t.Errorf("pokedex_ratelimit_blocks_total missing from %v", names)
	}
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "pokedex_ratelimit_remaining") {
		t.Error("exposition is missing pokedex_ratelimit_remaining")
	}
}
