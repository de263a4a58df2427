package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []string{"ID", "Email"}, [][]interface{}{{1, "alice@example.com"}, {2, "bob@example.com"}})

	out := buf.String()
	for _, want := range []string{"ID", "EMAIL", "alice@example.com", "bob@example.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
