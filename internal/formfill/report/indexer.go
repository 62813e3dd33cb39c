// internal/formfill/report/indexer.go
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"loan-form-workers/internal/formfill/mapping"
)

var ErrIndexFailed = errors.New("REPORT_INDEX_FAILED")

const DefaultIndex = "form-generation-reports"

// GenerationReport is the drift record of one form generation: which
// mapped fields the template could not take, and which required fields the
// record could not supply.
type GenerationReport struct {
	ReportID        string          `json:"reportId"`
	ApplicationID   string          `json:"applicationId"`
	DocumentID      string          `json:"documentId,omitempty"`
	TemplateName    string          `json:"templateName"`
	LayoutVersion   string          `json:"layoutVersion"`
	PDFPath         string          `json:"pdfPath"`
	MissingFields   []string        `json:"missingFields"`
	MissingRequired []string        `json:"missingRequired"`
	Summary         mapping.Summary `json:"summary"`
	Strict          bool            `json:"strict"`
	DurationMs      int64           `json:"durationMs"`
	GeneratedAt     string          `json:"generatedAt"`
}

// Indexer stores generation reports in Elasticsearch.
type Indexer struct {
	client *elasticsearch.Client
	index  string
}

func NewIndexer(client *elasticsearch.Client, index string) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	return &Indexer{client: client, index: index}
}

// Index writes r under its report id, replacing any earlier copy.
func (i *Indexer) Index(ctx context.Context, r GenerationReport) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: marshal report: %v", ErrIndexFailed, err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(r.ReportID),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}
	return nil
}
