package repository

import (
	"bytes"
	"context"
	"corp_edu_backend/internal/config"
	"corp_edu_backend/internal/model"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// CourseSearchRepository 课程全文检索（Elasticsearch）
type CourseSearchRepository struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticClient(cfg *config.SearchConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Hosts,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elastic: create client: %w", err)
	}
	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elastic: cannot connect to cluster: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elastic: cluster returned error: %s", res.String())
	}
	return client, nil
}

func NewCourseSearchRepository(client *elasticsearch.Client, index string) *CourseSearchRepository {
	return &CourseSearchRepository{client: client, index: index}
}

type courseDocument struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (r *CourseSearchRepository) EnsureIndex(ctx context.Context) error {
	existsRes, err := esapi.IndicesExistsRequest{Index: []string{r.index}}.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("check index existence: %w", err)
	}
	defer existsRes.Body.Close()

	switch {
	case existsRes.StatusCode == http.StatusOK:
		return nil
	case existsRes.StatusCode != http.StatusNotFound:
		return fmt.Errorf("index existence check failed with status code %d", existsRes.StatusCode)
	}

	textField := map[string]interface{}{
		"type":            "text",
		"analyzer":        "edge_ngram_analyzer",
		"search_analyzer": "standard",
	}
	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"analysis": map[string]interface{}{
				"analyzer": map[string]interface{}{
					"edge_ngram_analyzer": map[string]interface{}{
						"tokenizer": "edge_ngram_tokenizer",
						"filter":    []string{"lowercase"},
					},
				},
				"tokenizer": map[string]interface{}{
					"edge_ngram_tokenizer": map[string]interface{}{
						"type":        "edge_ngram",
						"min_gram":    2,
						"max_gram":    20,
						"token_chars": []string{"letter", "digit"},
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":       textField,
				"description": textField,
				"category":    map[string]interface{}{"type": "keyword"},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	res, err := esapi.IndicesCreateRequest{Index: r.index, Body: bytes.NewReader(body)}.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("mapping creation failed: %s", res.String())
	}
	return nil
}

// Index 新建或覆盖课程文档
func (r *CourseSearchRepository) Index(ctx context.Context, course *model.Course) error {
	data, err := json.Marshal(courseDocument{
		Title:       course.Title,
		Description: course.Description,
		Category:    course.Category,
	})
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}
	res, err := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: course.ID,
		Refresh:    "true",
		Body:       bytes.NewReader(data),
	}.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}

func (r *CourseSearchRepository) Delete(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{
		Index:      r.index,
		DocumentID: id,
		Refresh:    "true",
	}.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// Search 返回按相关度排序的课程 id
func (r *CourseSearchRepository) Search(ctx context.Context, query string, size int) ([]string, error) {
	if size <= 0 {
		size = 10
	}
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":                query,
				"fields":               []string{"title^3", "description", "category"},
				"type":                 "best_fields",
				"fuzziness":            "AUTO",
				"operator":             "or",
				"minimum_should_match": "2<75%",
			},
		},
		"size":    size,
		"_source": false,
	}
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}
	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search error: %s", string(bodyBytes))
	}
	return decodeSearchIDs(res.Body)
}

func decodeSearchIDs(body io.Reader) ([]string, error) {
	var esRes struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&esRes); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	ids := make([]string, 0, len(esRes.Hits.Hits))
	for _, h := range esRes.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
