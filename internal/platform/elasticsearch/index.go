package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// LostFoundIndexName is the index holding lost and found items.
const LostFoundIndexName = "lost_found_items"

func keywordText() map[string]interface{} {
	return map[string]interface{}{
		"type":   "text",
		"fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}},
	}
}

// LostFoundMapping returns the index body for LostFoundIndexName.
func LostFoundMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"source":                  map[string]interface{}{"type": "keyword"},
				"item_id":                 map[string]interface{}{"type": "keyword"},
				"status":                  map[string]interface{}{"type": "keyword"},
				"item_name":               keywordText(),
				"item_type":               keywordText(),
				"brand":                   keywordText(),
				"model":                   keywordText(),
				"primary_color":           map[string]interface{}{"type": "text"},
				"secondary_color":         map[string]interface{}{"type": "text"},
				"serial_number":           map[string]interface{}{"type": "keyword"},
				"location":                map[string]interface{}{"type": "text"},
				"distinguishing_features": map[string]interface{}{"type": "text"},
				"description":             map[string]interface{}{"type": "text"},
				"listing_date":            map[string]interface{}{"type": "date"},
			},
		},
	}
	mappingBytes, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling lost and found mapping to JSON: %w", err)
	}
	return string(mappingBytes), nil
}

// CreateIndexIfNotExists creates index with the given body unless it already exists.
func CreateIndexIfNotExists(ctx context.Context, client *ESClientWrapper, index, body string, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup").With(zap.String("index_name", index))

	res, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error checking if index %s exists: %w", index, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Index already exists")
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error checking if index %s exists: status %s", index, res.Status())
	}

	createRes, err := esapi.IndicesCreateRequest{Index: index, Body: strings.NewReader(body)}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error creating index %s: %w", index, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		log.Error("Failed to create index",
			zap.String("status", createRes.Status()),
			zap.Any("error_details", decodeErrorBody(createRes.Body)),
		)
		return fmt.Errorf("failed to create index %s: status %s", index, createRes.Status())
	}
	log.Info("Index created successfully")
	return nil
}

// Document is one entry of a bulk request.
type Document struct {
	ID   string
	Body interface{}
}

// BulkReport counts the outcome of a bulk request.
type BulkReport struct {
	Indexed int
	Failed  int
}

// Indexer writes to and searches one index.
type Indexer struct {
	client *ESClientWrapper
	index  string
	logger *zap.Logger
}

// NewIndexer returns nil when client is nil, so a disabled index needs no special casing
// at construction time.
func NewIndexer(client *ESClientWrapper, index string, logger *zap.Logger) *Indexer {
	if client == nil {
		return nil
	}
	return &Indexer{client: client, index: index, logger: logger.Named("elasticsearch_indexer")}
}

// Put indexes or replaces one document.
func (ix *Indexer) Put(ctx context.Context, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshalling document %s: %w", id, err)
	}
	res, err := esapi.IndexRequest{Index: ix.index, DocumentID: id, Body: bytes.NewReader(body)}.Do(ctx, ix.client.Client)
	if err != nil {
		return fmt.Errorf("error indexing document %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("error indexing document %s: status %s", id, res.Status())
	}
	return nil
}

// Bulk indexes docs in one request. refresh is passed through ("true", "false", "wait_for").
func (ix *Indexer) Bulk(ctx context.Context, docs []Document, refresh string) (BulkReport, error) {
	var report BulkReport
	if len(docs) == 0 {
		return report, nil
	}

	var buf bytes.Buffer
	for _, d := range docs {
		body, err := json.Marshal(d.Body)
		if err != nil {
			ix.logger.Error("Failed to convert document", zap.String("id", d.ID), zap.Error(err))
			report.Failed++
			continue
		}
		fmt.Fprintf(&buf, `{ "index" : { "_index" : %q, "_id" : %q } }%s`, ix.index, d.ID, "\n")
		buf.Write(body)
		buf.WriteByte('\n')
	}
	if buf.Len() == 0 {
		return report, nil
	}

	res, err := esapi.BulkRequest{Body: &buf, Refresh: refresh}.Do(ctx, ix.client.Client)
	if err != nil {
		return report, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return report, fmt.Errorf("bulk request failed: status %s", res.Status())
	}

	var bulkResponse struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID    string                 `json:"_id"`
				Error map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResponse); err != nil {
		return report, fmt.Errorf("failed to parse bulk response: %w", err)
	}
	for _, item := range bulkResponse.Items {
		if item.Index.Error != nil {
			ix.logger.Error("Failed to index document in bulk batch", zap.String("id", item.Index.ID), zap.Any("error", item.Index.Error))
			report.Failed++
			continue
		}
		report.Indexed++
	}
	return report, nil
}

// SearchIDs runs a multi_match query over fields and returns the ids of the hits, best first.
func (ix *Indexer) SearchIDs(ctx context.Context, text string, fields []string, size int) ([]string, error) {
	query := map[string]interface{}{
		"size":    size,
		"_source": false,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     text,
				"fields":    fields,
				"fuzziness": "AUTO",
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("error marshalling search query: %w", err)
	}
	res, err := esapi.SearchRequest{Index: []string{ix.index}, Body: bytes.NewReader(body)}.Do(ctx, ix.client.Client)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search request failed: status %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	ids := make([]string, len(parsed.Hits.Hits))
	for i, h := range parsed.Hits.Hits {
		ids[i] = h.ID
	}
	return ids, nil
}
