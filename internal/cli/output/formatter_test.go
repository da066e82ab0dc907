package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type row struct {
	Key    string        `json:"key"`
	Hits   int           `json:"hits"`
	TTL    time.Duration `json:"ttl"`
	Secret string        `json:"-"`
	hidden int
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", FormatTable, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).Format(&buf, row{Key: "a", Hits: 1}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"key": "a"`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"gets": 3, "server": "local"}
	if err := NewFormatter(FormatYAML).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "gets: 3\nserver: local\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatTable).Format(&buf, &row{Key: "a", Hits: 2, TTL: time.Minute, Secret: "s"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"FIELD", "key", "a", "hits", "2", "ttl", "1m0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Secret") || strings.Contains(out, "hidden") {
		t.Errorf("skipped field rendered:\n%s", out)
	}
}

func TestTableFormatter_Slice(t *testing.T) {
	var buf bytes.Buffer
	rows := []row{{Key: "a", Hits: 1}, {Key: "", Hits: 2}}
	if err := (&TableFormatter{}).Format(&buf, rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if fields := strings.Fields(lines[0]); strings.Join(fields, ",") != "KEY,HITS,TTL" {
		t.Errorf("headers = %v", fields)
	}
	if fields := strings.Fields(lines[2]); fields[0] != "-" {
		t.Errorf("empty string should render as '-', got %v", fields)
	}
}

func TestTable_Render(t *testing.T) {
	tbl := &Table{Headers: []string{"A", "LONG_HEADER"}}
	tbl.AddRow("1", "x")
	tbl.AddRow("22", "y")

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, tbl); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "A   LONG_HEADER\n1   x\n22  y\n"
	if buf.String() != want {
		t.Errorf("Render() = %q, want %q", buf.String(), want)
	}
}

func TestTableFormatter_Scalar(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, "hello"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "bench", 4)
	for i := 0; i < 4; i++ {
		p.Increment(1)
	}
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "100%") || !strings.Contains(out, "(4/4") {
		t.Errorf("output = %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end the line")
	}
}
