package helpers

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// NewESClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

// ProductIndexMapping is the mapping for the product search index.
const ProductIndexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "name":        {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "image_url":   {"type": "keyword", "index": false},
      "recipe_ids":  {"type": "keyword"},
      "fixed_costs": {"type": "keyword", "index": false},
      "currency":    {"type": "keyword"},
      "created_at":  {"type": "date"},
      "updated_at":  {"type": "date"}
    }
  }
}`

// EnsureIndex creates index with the given body unless it already exists.
func EnsureIndex(ctx context.Context, es *elasticsearch.Client, index, body string) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, es)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}
	res, err := esapi.IndicesCreateRequest{Index: index, Body: strings.NewReader(body)}.Do(ctx, es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		// lost a race with another instance
		if strings.Contains(string(msg), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create index %s: %s: %s", index, res.Status(), msg)
	}
	return nil
}
