package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

type sample struct {
	Key     string        `json:"key"`
	Found   bool          `json:"found"`
	Latency time.Duration `json:"latency"`
	secret  string
	Skipped string `json:"skipped" table:"-"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("json format should give a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("yaml format should give a YAMLFormatter")
	}
	if _, ok := NewFormatter("other").(*TableFormatter); !ok {
		t.Error("unknown format should fall back to a TableFormatter")
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	var buf bytes.Buffer
	err := (&TableFormatter{}).Format(&buf, sample{Key: "a", Found: true, Latency: 2 * time.Millisecond, secret: "x", Skipped: "y"})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if fields := strings.Fields(lines[0]); fields[0] != "FIELD" || fields[1] != "VALUE" {
		t.Errorf("header = %q", lines[0])
	}
	for i, want := range [][]string{{"key", "a"}, {"found", "true"}, {"latency", "2ms"}} {
		if got := strings.Fields(lines[i+1]); got[0] != want[0] || got[1] != want[1] {
			t.Errorf("row %d = %v, want %v", i, got, want)
		}
	}
}

func TestTableFormatter_Slice(t *testing.T) {
	var buf bytes.Buffer
	rows := []*sample{{Key: "a"}, {Key: "b", Found: true}}
	if err := (&TableFormatter{}).Format(&buf, rows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "KEY  FOUND  LATENCY\n" +
		"a    false  0s\n" +
		"b    true   0s\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestTableFormatter_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{NoHeaders: true}
	if err := f.Format(&buf, map[string]int{"b": 2, "a": 1, "c": 3}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "a  1\nb  2\nc  3\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_Table(t *testing.T) {
	var buf bytes.Buffer
	tbl := &Table{Headers: []string{"A", "B"}}
	tbl.AddRow("1", "2")
	if err := (&TableFormatter{}).Format(&buf, tbl); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "A  B\n1  2\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatValue_Empty(t *testing.T) {
	var buf bytes.Buffer
	type row struct {
		Value []byte  `json:"value"`
		Ptr   *string `json:"ptr"`
		Name  string  `json:"name"`
	}
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, row{}); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if f := strings.Fields(line); f[1] != "-" {
			t.Errorf("empty field %s rendered as %q", f[0], f[1])
		}
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sample{Key: "k", Found: true}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["key"] != "k" || got["found"] != true {
		t.Errorf("decoded = %v", got)
	}
	if !strings.Contains(buf.String(), "\n  \"key\"") {
		t.Errorf("output is not indented: %s", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{
		"key":   "123",
		"count": 2,
		"items": []string{"a", "b"},
	}
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "{") || strings.Contains(out, "[") {
		t.Errorf("output should be block style:\n%s", out)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got["key"] != "123" {
		t.Errorf("key = %#v, want string \"123\"", got["key"])
	}
	if got["count"] != 2 {
		t.Errorf("count = %#v, want 2", got["count"])
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "bench", 4)
	p.Add(1)
	p.Add(1)
	p.Add(2)
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, " 25% (1/4)") || !strings.Contains(out, "100% (4/4)") {
		t.Errorf("output = %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestProgress_NoRedrawWithoutChange(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "x", 1000)
	p.Add(1)
	p.Add(1)
	if n := strings.Count(buf.String(), "\r"); n != 1 {
		t.Errorf("redrawn %d times, want 1", n)
	}
}
