package e2e

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"loan-form-workers/internal/formfill/layout"
	fm "loan-form-workers/internal/formfill/mapping"
)

func testRecord() map[string]interface{} {
	return map[string]interface{}{
		"company_borrowers": []interface{}{
			map[string]interface{}{"company_name": "E2E Holdings Pty Ltd", "company_abn": "51824753556"},
		},
		"borrowers": []interface{}{
			map[string]interface{}{"title": "Dr", "first_name": "Alex", "last_name": "Morgan"},
		},
		"loan_amount":  1250000,
		"loan_term":    36,
		"loan_purpose": "purchase",
	}
}

// mapping is the mapping the worker will generate once the record has made
// the round trip through postgres.
func mapping(t *testing.T) fm.Mapping {
	t.Helper()
	raw, err := json.Marshal(testRecord())
	require.NoError(t, err)
	record, err := fm.DecodeRecordBytes(raw)
	require.NoError(t, err)
	return fm.Generate(record)
}

func widgetName(id string) string {
	kind, n, _ := layout.ParseFieldID(id)
	if kind == layout.Checkbox {
		return fmt.Sprintf("Check Box%d", n)
	}
	return fmt.Sprintf("Text%d", n)
}
