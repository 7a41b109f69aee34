package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFakeES(t *testing.T, handler http.HandlerFunc) *Engine {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The client refuses responses without the product header.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	engine, err := New(Config{Addresses: []string{server.URL}, Dimension: 4})
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

// Index names are lowercase on the cluster, so a mixed-case collection name
// must survive through the index _meta mapping.
func TestEngine_MixedCaseCollectionRoundTrip(t *testing.T) {
	var createBody []byte
	engine := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/docvector-user_alice_docs":
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/docvector-user_alice_docs":
			createBody, _ = io.ReadAll(r.Body)
			fmt.Fprint(w, `{"acknowledged": true}`)
		case r.Method == http.MethodGet && r.URL.Path == "/docvector-*":
			fmt.Fprint(w, `{"docvector-user_alice_docs": {"mappings": {"_meta": {"collection": "user_Alice_docs"}}}}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	ctx := context.Background()

	coll, err := engine.GetOrCreateCollection(ctx, "user_Alice_docs")
	if err != nil {
		t.Fatalf("GetOrCreateCollection() error = %v", err)
	}
	if coll.Name() != "user_Alice_docs" {
		t.Errorf("Name() = %q, want user_Alice_docs", coll.Name())
	}

	var mapping struct {
		Mappings struct {
			Meta struct {
				Collection string `json:"collection"`
			} `json:"_meta"`
		} `json:"mappings"`
	}
	if err := json.Unmarshal(createBody, &mapping); err != nil {
		t.Fatalf("create body is not valid JSON: %v", err)
	}
	if mapping.Mappings.Meta.Collection != "user_Alice_docs" {
		t.Errorf("index _meta carries %q, want user_Alice_docs", mapping.Mappings.Meta.Collection)
	}

	names, err := engine.ListCollections(ctx)
	if err != nil {
		t.Fatalf("ListCollections() error = %v", err)
	}
	if len(names) != 1 || names[0] != "user_Alice_docs" {
		t.Errorf("ListCollections() = %v, want [user_Alice_docs]", names)
	}
}

func TestEngine_ListCollections_FallsBackToIndexName(t *testing.T) {
	engine := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		// An index created before _meta was written has no stored name.
		fmt.Fprint(w, `{"docvector-user_bob_docs": {"mappings": {}}}`)
	})

	names, err := engine.ListCollections(context.Background())
	if err != nil {
		t.Fatalf("ListCollections() error = %v", err)
	}
	if len(names) != 1 || names[0] != "user_bob_docs" {
		t.Errorf("ListCollections() = %v, want [user_bob_docs]", names)
	}
}

func TestCollection_Get_ScrollsPastPageSize(t *testing.T) {
	oldPageSize := getPageSize
	getPageSize = 2
	defer func() { getPageSize = oldPageSize }()

	scrollCalls := 0
	cleared := 0
	engine := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/docvector-reports":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/docvector-reports/_search":
			fmt.Fprint(w, `{"_scroll_id": "scroll-1", "hits": {"hits": [
				{"_id": "q1_doc_0", "_source": {"text": "one"}},
				{"_id": "q1_doc_1", "_source": {"text": "two"}}]}}`)
		case r.Method == http.MethodPost && r.URL.Path == "/_search/scroll":
			scrollCalls++
			fmt.Fprint(w, `{"_scroll_id": "scroll-1", "hits": {"hits": [
				{"_id": "q1_doc_2", "_source": {"text": "three"}}]}}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/_search/scroll":
			cleared++
			fmt.Fprint(w, `{"succeeded": true}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	ctx := context.Background()

	coll, err := engine.GetOrCreateCollection(ctx, "reports")
	if err != nil {
		t.Fatalf("GetOrCreateCollection() error = %v", err)
	}

	entries, err := coll.Get(ctx, nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Get() returned %d entries, want 3", len(entries))
	}
	if entries[2].ID != "q1_doc_2" {
		t.Errorf("last entry id = %q, want q1_doc_2", entries[2].ID)
	}
	if scrollCalls != 1 {
		t.Errorf("scroll called %d times, want 1", scrollCalls)
	}
	if cleared != 1 {
		t.Errorf("scroll context cleared %d times, want 1", cleared)
	}
}
