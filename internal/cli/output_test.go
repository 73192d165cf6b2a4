package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestOutputTo(t *testing.T) {
	data := map[string]any{"input": "invoice.pdf", "records": 3}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := OutputTo(&buf, OutputFormatJSON, data); err != nil {
			t.Fatalf("OutputTo: %v", err)
		}
		if !strings.Contains(buf.String(), `"records": 3`) {
			t.Errorf("unexpected json output: %s", buf.String())
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := OutputTo(&buf, OutputFormatYAML, data); err != nil {
			t.Fatalf("OutputTo: %v", err)
		}
		if !strings.Contains(buf.String(), "records: 3") {
			t.Errorf("unexpected yaml output: %s", buf.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := OutputTo(&buf, OutputFormat("xml"), data); err == nil {
			t.Error("expected an error for an unknown format")
		}
	})
}
