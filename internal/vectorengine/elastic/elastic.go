// Package elastic provides an Elasticsearch-backed vector engine. Each
// collection maps to one index carrying the chunk text, its dense_vector
// embedding and exact-match metadata fields.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/arashghezavati/Document-Vectorization-Service/internal/vectorengine"
)

// indexPrefix namespaces this service's indices within the cluster.
const indexPrefix = "docvector-"

// Config holds Elasticsearch engine configuration.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	Dimension int // embedding vector length used in the index mapping
}

// Engine is an Elasticsearch-backed vectorengine.Engine.
type Engine struct {
	es        *elasticsearch.Client
	dimension int
}

// New creates a new Elasticsearch engine.
func New(config Config) (*Engine, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return &Engine{es: es, dimension: config.Dimension}, nil
}

// indexName maps a collection name onto a cluster index name. ES index names
// must be lowercase, so the original name is kept in the index _meta mapping
// and recovered from there when listing.
func indexName(collection string) string {
	return indexPrefix + strings.ToLower(collection)
}

// mapping builds the index mapping for a collection.
func (e *Engine) mapping(collection string) string {
	return fmt.Sprintf(`{
		"mappings": {
			"_meta": { "collection": %q },
			"dynamic_templates": [
				{
					"metadata_strings": {
						"path_match": "metadata.*",
						"mapping": { "type": "keyword" }
					}
				}
			],
			"properties": {
				"text": { "type": "text" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				}
			}
		}
	}`, collection, e.dimension)
}

// GetOrCreateCollection returns the named collection, creating its index if
// absent.
func (e *Engine) GetOrCreateCollection(ctx context.Context, name string) (vectorengine.Collection, error) {
	index := indexName(name)

	res, err := e.es.Indices.Exists([]string{index}, e.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode != 200 {
		res, err = e.es.Indices.Create(
			index,
			e.es.Indices.Create.WithContext(ctx),
			e.es.Indices.Create.WithBody(strings.NewReader(e.mapping(name))),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return nil, fmt.Errorf("error creating index: %s", res.String())
		}
	}

	return &collection{es: e.es, name: name, index: index}, nil
}

// ListCollections returns the collection names behind all service indices.
func (e *Engine) ListCollections(ctx context.Context) ([]string, error) {
	res, err := e.es.Indices.Get(
		[]string{indexPrefix + "*"},
		e.es.Indices.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list indices: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error listing indices: %s", res.String())
	}

	var indices map[string]struct {
		Mappings struct {
			Meta struct {
				Collection string `json:"collection"`
			} `json:"_meta"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(res.Body).Decode(&indices); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	names := make([]string, 0, len(indices))
	for index, info := range indices {
		name := info.Mappings.Meta.Collection
		if name == "" {
			name = strings.TrimPrefix(index, indexPrefix)
		}
		names = append(names, name)
	}
	return names, nil
}

// DeleteCollection removes the collection's index. A missing index is a no-op.
func (e *Engine) DeleteCollection(ctx context.Context, name string) error {
	res, err := e.es.Indices.Delete(
		[]string{indexName(name)},
		e.es.Indices.Delete.WithContext(ctx),
		e.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("error deleting index: %s", res.String())
	}
	return nil
}

// Close is a no-op; the ES client carries no persistent connection state to
// release.
func (e *Engine) Close() error { return nil }

type collection struct {
	es    *elasticsearch.Client
	name  string
	index string
}

func (c *collection) Name() string { return c.name }

// document is the indexed form of an entry.
type document struct {
	Text     string            `json:"text"`
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Add writes all entries in one bulk request and refreshes the index so they
// are immediately visible.
func (c *collection) Add(ctx context.Context, entries []vectorengine.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, entry := range entries {
		action := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, c.index, entry.ID)
		buf.WriteString(action)
		buf.WriteByte('\n')

		data, err := json.Marshal(document{
			Text:     entry.Text,
			Vector:   entry.Vector,
			Metadata: entry.Metadata,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	res, err := c.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index error: %s", res.String())
	}
	return nil
}

// searchResponse is the subset of the ES search response we read.
type searchResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID     string   `json:"_id"`
			Score  float64  `json:"_score"`
			Source document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// getPageSize bounds one page of a filtered Get; larger collections are read
// through the scroll API. Lowered in tests.
var getPageSize = 10000

const scrollKeepAlive = time.Minute

// Get walks all matching entries with a scrolled search so collections larger
// than one page are returned in full.
func (c *collection) Get(ctx context.Context, filter map[string]string) ([]vectorengine.Entry, error) {
	query := map[string]any{"match_all": map[string]any{}}
	if len(filter) > 0 {
		var must []map[string]any
		for k, v := range filter {
			must = append(must, map[string]any{
				"term": map[string]any{"metadata." + k: v},
			})
		}
		query = map[string]any{"bool": map[string]any{"filter": must}}
	}

	body, err := json.Marshal(map[string]any{
		"query": query,
		"size":  getPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithScroll(scrollKeepAlive),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var entries []vectorengine.Entry
	scrollID := ""
	for {
		if res.IsError() {
			msg := res.String()
			res.Body.Close()
			return nil, fmt.Errorf("search error: %s", msg)
		}

		var sr searchResponse
		err := json.NewDecoder(res.Body).Decode(&sr)
		res.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		for _, hit := range sr.Hits.Hits {
			entries = append(entries, vectorengine.Entry{
				ID:       hit.ID,
				Text:     hit.Source.Text,
				Vector:   hit.Source.Vector,
				Metadata: hit.Source.Metadata,
			})
		}

		scrollID = sr.ScrollID
		if len(sr.Hits.Hits) < getPageSize || scrollID == "" {
			break
		}

		res, err = c.es.Scroll(
			c.es.Scroll.WithContext(ctx),
			c.es.Scroll.WithScrollID(scrollID),
			c.es.Scroll.WithScroll(scrollKeepAlive),
		)
		if err != nil {
			return nil, fmt.Errorf("scroll failed: %w", err)
		}
	}

	c.clearScroll(ctx, scrollID)
	return entries, nil
}

// clearScroll releases the server-side scroll context. Failures are ignored;
// the context expires on its own.
func (c *collection) clearScroll(ctx context.Context, scrollID string) {
	if scrollID == "" {
		return
	}
	res, err := c.es.ClearScroll(
		c.es.ClearScroll.WithContext(ctx),
		c.es.ClearScroll.WithScrollID(scrollID),
	)
	if err == nil {
		res.Body.Close()
	}
}

// Query runs a script_score cosine search. The script shifts cosine
// similarity by +1 because ES rejects negative scores; the shift is undone
// when converting back to a distance.
func (c *collection) Query(ctx context.Context, vector []float32, n int) ([]vectorengine.Match, error) {
	if n < 1 {
		n = 1
	}

	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"script_score": map[string]any{
				"query": map[string]any{"match_all": map[string]any{}},
				"script": map[string]any{
					"source": "cosineSimilarity(params.vector, 'vector') + 1.0",
					"params": map[string]any{"vector": vector},
				},
			},
		},
		"size": n,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("vector search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	matches := make([]vectorengine.Match, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		matches[i] = vectorengine.Match{
			ID:       hit.ID,
			Text:     hit.Source.Text,
			Distance: 1 - (hit.Score - 1.0),
			Metadata: hit.Source.Metadata,
		}
	}
	return matches, nil
}

// Delete removes the given ids in one bulk request.
func (c *collection) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, id := range ids {
		fmt.Fprintf(&buf, `{"delete":{"_index":%q,"_id":%q}}`, c.index, id)
		buf.WriteByte('\n')
	}

	res, err := c.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk delete failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk delete error: %s", res.String())
	}
	return nil
}

// countResponse is the subset of the ES count response we read.
type countResponse struct {
	Count int `json:"count"`
}

func (c *collection) Count(ctx context.Context) (int, error) {
	res, err := c.es.Count(
		c.es.Count.WithContext(ctx),
		c.es.Count.WithIndex(c.index),
	)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("count error: %s", res.String())
	}

	var cr countResponse
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return cr.Count, nil
}
