package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{input: "json", want: FormatJSON},
		{input: "JSON", want: FormatJSON},
		{input: "markdown", want: FormatMarkdown},
		{input: "md", want: FormatMarkdown},
		{input: "text", want: FormatText},
		{input: "", want: FormatText},
		{input: "bogus", want: FormatText},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.input); got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestFormatterWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}

	if err := f.Output(map[string]int{"pairs": 3}); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]int
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["pairs"] != 3 {
		t.Errorf("pairs = %d, want 3", decoded["pairs"])
	}
}

func TestTableRenderText(t *testing.T) {
	table := &Table{
		Title:   "Example",
		Headers: []string{"Name", "Score"},
		Rows:    [][]string{{"a.py", "0.91"}, {"b.py", "0.42"}},
	}

	var sb strings.Builder
	if err := table.RenderText(&sb, false); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"Example", "a.py", "0.91", "b.py"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := &Table{
		Headers: []string{"Name", "Score"},
		Rows:    [][]string{{"a.py", "0.91"}},
	}

	var sb strings.Builder
	if err := table.RenderMarkdown(&sb); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "| Name | Score |") {
		t.Errorf("missing header row:\n%s", out)
	}
	if !strings.Contains(out, "| --- | --- |") {
		t.Errorf("missing separator row:\n%s", out)
	}
	if !strings.Contains(out, "| a.py | 0.91 |") {
		t.Errorf("missing data row:\n%s", out)
	}
}

func TestTableRenderData(t *testing.T) {
	t.Run("explicit data wins", func(t *testing.T) {
		table := &Table{Headers: []string{"H"}, Rows: [][]string{{"v"}}, Data: 42}
		if table.RenderData() != 42 {
			t.Error("RenderData should return the attached data")
		}
	})

	t.Run("rows fall back to maps", func(t *testing.T) {
		table := &Table{Headers: []string{"Name"}, Rows: [][]string{{"a.py"}}}
		got, ok := table.RenderData().([]map[string]string)
		if !ok {
			t.Fatalf("RenderData type = %T", table.RenderData())
		}
		if got[0]["Name"] != "a.py" {
			t.Errorf("row map = %v", got[0])
		}
	})
}
