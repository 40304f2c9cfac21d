package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/models"
)

// IndexMapping is the research report index definition.
const IndexMapping = `{
	"mappings": {
		"properties": {
			"title":      {"type": "text"},
			"company":    {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"stock":      {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"summary":    {"type": "text"},
			"tags":       {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"sector":     {"type": "keyword"},
			"rating":     {"type": "keyword"},
			"reportType": {"type": "keyword"},
			"date":       {"type": "date", "format": "yyyy-MM-dd", "ignore_malformed": true},
			"published":  {"type": "boolean"}
		}
	}
}`

const maxSearchResults = 50

// SearchIndex keeps research reports in Elasticsearch for full-text search.
// Documents are the report JSON keyed by report id.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearchIndex(client *elasticsearch.Client, index string, log logger.Logger) *SearchIndex {
	return &SearchIndex{client: client, index: index, logger: log}
}

func (s *SearchIndex) Index(ctx context.Context, r *models.ResearchReport) error {
	body, err := json.Marshal(r)
	if err != nil {
		return errors.NewInternalError(err)
	}

	res, err := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: strconv.Itoa(r.ID),
		Body:       bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewSearchQueryFailedError(s.index, fmt.Errorf("index report %d: %s", r.ID, res.String()))
	}
	return nil
}

// Remove deletes a report document. A missing document is not an error.
func (s *SearchIndex) Remove(ctx context.Context, id int) error {
	res, err := esapi.DeleteRequest{
		Index:      s.index,
		DocumentID: strconv.Itoa(id),
	}.Do(ctx, s.client)
	if err != nil {
		return errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return errors.NewSearchQueryFailedError(s.index, fmt.Errorf("delete report %d: %s", id, res.String()))
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.ResearchReport `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a multi_match query over the text fields, best match first.
func (s *SearchIndex) Search(ctx context.Context, q string, publishedOnly bool) ([]models.ResearchReport, error) {
	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  q,
					"fields": []string{"title^3", "company^2", "stock^2", "tags^2", "summary"},
					"type":   "best_fields",
				},
			},
		},
	}
	if publishedOnly {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"published": true}},
		}
	}
	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	})

	size := maxSearchResults
	res, err := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}.Do(ctx, s.client)
	if err != nil {
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.NewIndexNotFoundError(s.index)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(s.index, fmt.Errorf("%s", res.String()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(s.index, err)
	}

	out := make([]models.ResearchReport, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, hit.Source)
	}
	return out, nil
}
