package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowatlas/flowatlas/pkg/flow"
	fio "github.com/flowatlas/flowatlas/pkg/io"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
)

const refugeesCSV = `Year,Country of origin,Country of asylum,Refugees under UNHCR's mandate
2015,Syria,Turkey,2500000
2015,Afghanistan,Pakistan,1500000
2016,Syria,Germany,0
2016,Eritrea,Ethiopia,500
`

func quietStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	restore := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = restore })
	return &buf
}

func TestRunSankeyCSV(t *testing.T) {
	quietStdout(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refugees.csv")
	if err := os.WriteFile(input, []byte(refugeesCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	opts := c.baseOptions()
	opts.Formats = []string{pipeline.FormatJSON, pipeline.FormatDOT}

	out := filepath.Join(dir, "out", "flows")
	if err := c.runSankey(context.Background(), input, "", opts, out, true); err != nil {
		t.Fatalf("runSankey() error: %v", err)
	}

	g, _, err := fio.ImportGraph(out + ".json")
	if err != nil {
		t.Fatalf("ImportGraph() error: %v", err)
	}
	// The zero row is dropped and the 500 row pruned in the unfiltered view.
	if g.LinkCount() != 2 {
		t.Errorf("LinkCount() = %d, want 2", g.LinkCount())
	}
	dot, err := os.ReadFile(out + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "Syria") {
		t.Error("DOT output missing Syria")
	}
}

func TestRunSankeyGraphFile(t *testing.T) {
	quietStdout(t)
	dir := t.TempDir()

	g := &flow.Graph{
		Nodes: []flow.Node{{Name: "Syria", Role: flow.RoleOrigin}, {Name: "Turkey", Role: flow.RoleAsylum}},
		Links: []flow.Link{{Source: 0, Target: 1, Value: 2500000}},
	}
	input := filepath.Join(dir, "graph.json")
	if err := fio.ExportGraph(g, &flow.Filters{Year: "2015"}, input); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	opts := c.baseOptions()
	opts.Formats = []string{pipeline.FormatDOT}

	out := filepath.Join(dir, "replay.dot")
	if err := c.runSankey(context.Background(), input, "", opts, out, true); err != nil {
		t.Fatalf("runSankey() error: %v", err)
	}
	dot, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "Turkey") {
		t.Error("DOT output missing Turkey")
	}
}

func TestRunSankeyRejectsMapSchema(t *testing.T) {
	quietStdout(t)
	c := New(&bytes.Buffer{}, LogInfo)
	opts := c.baseOptions()
	opts.Formats = []string{pipeline.FormatJSON}

	if err := c.runSankey(context.Background(), "unused.csv", "owid", opts, "", true); err == nil {
		t.Error("expected error for a schema without an asylum column")
	}
}
