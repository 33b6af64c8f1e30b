package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/covidtimeseries/metadata/internal/registry"
)

// RegistryServer is an httptest stand-in for the registry GraphQL endpoint.
// It answers each query with the canned node for the root field the query
// addresses, or with an empty connection when none is set.
type RegistryServer struct {
	*httptest.Server

	calls atomic.Int32

	mu     sync.Mutex
	bodies map[string]string
}

// NewRegistryServer starts a registry stand-in serving the fixture
// distribution, dataset specification and conceptual domain.
func NewRegistryServer(t *testing.T) *RegistryServer {
	t.Helper()

	rs := &RegistryServer{bodies: make(map[string]string)}
	rs.SetNode(t, registry.RootDistributions, NewTestDistribution())
	rs.SetNode(t, registry.RootDatasetSpecifications, NewTestDatasetSpecification())
	rs.SetNode(t, registry.RootConceptualDomains, NewTestConceptualDomain(""))

	rs.Server = httptest.NewServer(http.HandlerFunc(rs.serve))
	t.Cleanup(rs.Close)
	return rs
}

// SetNode makes queries against root return node as their only edge.
func (rs *RegistryServer) SetNode(t *testing.T, root string, node any) {
	t.Helper()

	payload := map[string]any{
		"data": map[string]any{
			root: map[string]any{"edges": []any{map[string]any{"node": node}}},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("encode %s fixture: %v", root, err)
	}
	rs.SetBody(root, string(raw))
}

// SetEmpty makes queries against root return a connection with no edges.
func (rs *RegistryServer) SetEmpty(root string) {
	rs.SetBody(root, `{"data":{"`+root+`":{"edges":[]}}}`)
}

// SetBody makes queries against root return body verbatim.
func (rs *RegistryServer) SetBody(root, body string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.bodies[root] = body
}

// Calls returns the number of requests served.
func (rs *RegistryServer) Calls() int {
	return int(rs.calls.Load())
}

func (rs *RegistryServer) serve(w http.ResponseWriter, r *http.Request) {
	rs.calls.Add(1)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	for root, body := range rs.bodies {
		if strings.Contains(req.Query, root+"(") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, body)
			return
		}
	}
	http.Error(w, "unexpected query", http.StatusBadRequest)
}
