// Package reporting aggregates the attendance ledger into the summary,
// strength and per-event views the frontend renders.
package reporting

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed buckets.yaml
var bucketsYAML []byte

type bucketRule struct {
	Name     string   `yaml:"name"`
	Field    string   `yaml:"field"`
	Keywords []string `yaml:"keywords"`
}

type bucketTable struct {
	Buckets  []bucketRule `yaml:"buckets"`
	Fallback bucketRule   `yaml:"fallback"`
}

var buckets bucketTable

func init() {
	if err := yaml.Unmarshal(bucketsYAML, &buckets); err != nil {
		panic(fmt.Sprintf("could not parse embedded buckets.yaml: %v", err))
	}
}

// BucketFor maps an event type to its summary bucket field. Matching is a
// case-insensitive substring check, first rule wins.
func BucketFor(eventType string) string {
	t := strings.ToLower(eventType)
	for _, rule := range buckets.Buckets {
		for _, kw := range rule.Keywords {
			if strings.Contains(t, kw) {
				return rule.Field
			}
		}
	}
	return buckets.Fallback.Field
}
