package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/bench"
	"github.com/matzehuels/quicksilver/pkg/errors"
	"github.com/matzehuels/quicksilver/pkg/estimator"
	"github.com/matzehuels/quicksilver/pkg/graph"
	"github.com/matzehuels/quicksilver/pkg/observability"
	"github.com/matzehuels/quicksilver/pkg/query"
)

const testGraph = `10,11,2
1 0 2 .
3 0 2 .
4 0 9 .
2 1 4 .
2 1 4 .
2 1 5 .
2 1 8 .
9 1 8 .
1 1 3 .
1 1 4 .
1 1 5 .
`

// fixture writes a graph file and a config whose file cache lives in a
// temporary directory.
type fixture struct {
	dir       string
	graphPath string
	config    string
	logs      bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Cleanup(observability.Reset)

	f := &fixture{dir: t.TempDir()}
	f.graphPath = filepath.Join(f.dir, "graph.txt")
	if err := os.WriteFile(f.graphPath, []byte(testGraph), 0o644); err != nil {
		t.Fatal(err)
	}
	f.config = filepath.Join(f.dir, "quicksilver.toml")
	cfg := fmt.Sprintf("[cache]\nbackend = \"file\"\ndir = %q\n", filepath.Join(f.dir, "cache"))
	if err := os.WriteFile(f.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return f
}

// run executes the CLI with args and the fixture's config.
func (f *fixture) run(t *testing.T, args ...string) error {
	t.Helper()
	c := New(&f.logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", f.config}, args...))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersCommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"bench", "report", "estimate", "evaluate", "plan", "stats", "shell", "serve", "graph", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestEstimateCommand(t *testing.T) {
	f := newFixture(t)
	if err := f.run(t, "estimate", f.graphPath, "0+/1+"); err != nil {
		t.Fatalf("estimate error: %v", err)
	}
}

func TestEvaluateCommand(t *testing.T) {
	f := newFixture(t)
	if err := f.run(t, "evaluate", f.graphPath, "0+/1+/1-", "--explain", "--estimate", "--strategy", "greedy"); err != nil {
		t.Fatalf("evaluate error: %v", err)
	}
}

func TestEvaluateCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"syntax", []string{"evaluate", "GRAPH", "0+/"}, errors.ErrCodeInvalidQuery},
		{"unknown label", []string{"evaluate", "GRAPH", "7+"}, errors.ErrCodeInvalidQuery},
		{"bad strategy", []string{"evaluate", "GRAPH", "0+", "--strategy", "random"}, errors.ErrCodeInvalidInput},
		{"missing graph", []string{"evaluate", "missing.txt", "0+"}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			args := make([]string, len(tt.args))
			for i, a := range tt.args {
				switch a {
				case "GRAPH":
					a = f.graphPath
				case "missing.txt":
					a = filepath.Join(f.dir, a)
				}
				args[i] = a
			}
			err := f.run(t, args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestPlanCommandWritesDOT(t *testing.T) {
	f := newFixture(t)
	dot := filepath.Join(f.dir, "plan.dot")
	if err := f.run(t, "plan", f.graphPath, "0+/1+/1-", "--dot", dot); err != nil {
		t.Fatalf("plan error: %v", err)
	}
	data, err := os.ReadFile(dot)
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.HasPrefix(string(data), "digraph plan {") {
		t.Errorf("dot output = %q", data)
	}
}

func TestPlanCommandWritesSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	f := newFixture(t)
	svg := filepath.Join(f.dir, "plan.svg")
	if err := f.run(t, "plan", f.graphPath, "0+/1+", "--svg", svg); err != nil {
		t.Fatalf("plan error: %v", err)
	}
	data, err := os.ReadFile(svg)
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output is not an SVG document")
	}
}

func TestStatsCommand(t *testing.T) {
	f := newFixture(t)
	if err := f.run(t, "stats", f.graphPath, "--all"); err != nil {
		t.Fatalf("stats error: %v", err)
	}
}

func TestGraphExportCommand(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "export.txt")
	if err := f.run(t, "graph", "export", f.graphPath, out); err != nil {
		t.Fatalf("export error: %v", err)
	}
	g, err := graph.ReadGraphFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if g.NumEdges() != 11 || g.NumVertices() != 10 || g.NumLabels() != 2 {
		t.Errorf("exported graph = %d vertices, %d edges, %d labels, want 10, 11, 2",
			g.NumVertices(), g.NumEdges(), g.NumLabels())
	}
}

func TestBenchAndReportCommands(t *testing.T) {
	f := newFixture(t)
	workload := filepath.Join(f.dir, "queries.csv")
	if err := os.WriteFile(workload, []byte("*,0+/1+,*\n*,1+/1-,*\n*,9+,*\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(f.dir, "report.json")

	if err := f.run(t, "bench", f.graphPath, workload, "--json", out, "--details"); err != nil {
		t.Fatalf("bench error: %v", err)
	}

	file, err := os.Open(out)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer file.Close()
	report, err := bench.ReadReport(file)
	if err != nil {
		t.Fatalf("ReadReport() error: %v", err)
	}
	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(report.Results))
	}
	for i, want := range []uint32{7, 7} {
		res := report.Results[i]
		if res.Actual == nil || res.Actual.NoPaths != want {
			t.Errorf("result %d actual = %v, want %d paths", i, res.Actual, want)
		}
	}
	if !report.Results[2].Failed() {
		t.Error("query with unknown label should fail")
	}

	// stored in the cache under its run id
	if err := f.run(t, "report", report.RunID); err != nil {
		t.Errorf("report by run id error: %v", err)
	}
	if err := f.run(t, "report", out); err != nil {
		t.Errorf("report by file error: %v", err)
	}
	if err := f.run(t, "report", "no-such-run"); err == nil {
		t.Error("report for unknown run should fail")
	}
}

func TestBenchCommandInvalidMode(t *testing.T) {
	f := newFixture(t)
	err := f.run(t, "bench", f.graphPath, f.graphPath, "--mode", "fast")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestCacheClearCommand(t *testing.T) {
	f := newFixture(t)
	if err := f.run(t, "estimate", f.graphPath, "0+"); err != nil {
		t.Fatal(err)
	}
	if err := f.run(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(f.dir, "cache"))
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear, want 0", len(entries))
	}
}

func TestConfigErrors(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(f.config, []byte("[cache]\nbackend = \"s3\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := f.run(t, "stats", f.graphPath)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestConfigLogLevel(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(f.config, []byte("[log]\nlevel = \"debug\"\n[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.run(t, "evaluate", f.graphPath, "0+/1+"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.logs.String(), "planned") {
		t.Errorf("debug log missing plan event:\n%s", f.logs.String())
	}
}

func TestVerboseOverridesConfigLevel(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(f.config, []byte("[log]\nlevel = \"warn\"\n[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.run(t, "evaluate", f.graphPath, "0+/1+"); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(f.logs.String(), "planned") {
		t.Errorf("debug output at warn level:\n%s", f.logs.String())
	}
	if err := f.run(t, "--verbose", "evaluate", f.graphPath, "0+/1+"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.logs.String(), "planned") {
		t.Errorf("--verbose did not enable debug logging:\n%s", f.logs.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"interrupted", fmt.Errorf("load graph: %w", context.Canceled), ExitInterrupted},
		{"bad query", fmt.Errorf("evaluate: %w", errors.New(errors.ErrCodeInvalidQuery, "unknown label 7")), ExitBadInput},
		{"empty query", errors.New(errors.ErrCodeEmptyQuery, "query has no steps"), ExitBadInput},
		{"missing file", errors.New(errors.ErrCodeFileNotFound, "open g.txt"), ExitFailure},
		{"plain", fmt.Errorf("boom"), ExitFailure},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("%s: ExitCode() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestStatsRows(t *testing.T) {
	stats := []graph.CardStat{{NoOut: 3, NoPaths: 3, NoIn: 2}, {}, {NoOut: 3, NoPaths: 8, NoIn: 5}}

	rows := statsRows(stats, false)
	if len(rows) != 2 {
		t.Fatalf("statsRows() = %d rows, want 2", len(rows))
	}
	if got := strings.Join(rows[1], " "); got != "2 3 8 5" {
		t.Errorf("row = %q, want %q", got, "2 3 8 5")
	}
	if rows := statsRows(stats, true); len(rows) != 3 {
		t.Errorf("statsRows(all) = %d rows, want 3", len(rows))
	}
}

func TestResultRows(t *testing.T) {
	results := []bench.Result{
		{Line: 1, Path: "0+", Estimate: &graph.CardStat{NoOut: 3, NoPaths: 3, NoIn: 2}, Actual: &graph.CardStat{NoPaths: 3}, EvaluateTime: time.Millisecond},
		{Line: 2, Path: "9+", Error: "unknown label"},
	}
	rows := resultRows(results)
	if len(rows) != 2 {
		t.Fatalf("resultRows() = %d rows, want 2", len(rows))
	}
	if rows[0][2] != "(3, 3, 2)" || rows[0][3] != "3" || rows[0][4] != "1.00" || rows[0][5] != "1ms" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1][5] != "failed" {
		t.Errorf("row 1 = %v, want failed", rows[1])
	}
}

func TestPlanTree(t *testing.T) {
	g := graph.New(3, 2)
	_ = g.AddEdge(0, 1, 0)
	_ = g.AddEdge(1, 2, 1)
	est := estimator.NewSimple(g)
	est.Prepare()

	got := planTree(query.MustParse("0+/1+"), est)
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("planTree() = %q, want 3 lines", got)
	}
	if !strings.HasPrefix(lines[0], "⋈") {
		t.Errorf("line 0 = %q, want join", lines[0])
	}
	if lines[1] != "├── 0+" || lines[2] != "└── 1+" {
		t.Errorf("leaves = %q, %q", lines[1], lines[2])
	}
}

func TestLogHooks(t *testing.T) {
	t.Cleanup(observability.Reset)
	var buf bytes.Buffer
	registerHooks(newLogger(&buf, log.DebugLevel))

	observability.Engine().OnPlan("0+/1+", "exhaustive", 2, 7, time.Millisecond)
	observability.Cache().OnCacheHit(context.Background(), "stats")

	out := buf.String()
	for _, want := range []string{"planned", "exhaustive", "cache hit", "stats"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

// output runs the CLI with args, without the fixture's config, and returns
// what it wrote to stdout.
func (f *fixture) output(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := New(&f.logs, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestCompletionCommand(t *testing.T) {
	f := newFixture(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		if out := f.output(t, "completion", shell); !strings.Contains(out, appName) {
			t.Errorf("completion %s: script does not mention %s", shell, appName)
		}
	}
	if err := f.run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh: want error")
	}
}

func TestFlagValueCompletion(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"plan", f.graphPath, "0+", "--strategy", ""}, []string{"auto", "greedy", "exhaustive"}},
		{[]string{"shell", f.graphPath, "--strategy", ""}, []string{"auto", "greedy", "exhaustive"}},
		{[]string{"bench", f.graphPath, "w.txt", "--mode", ""}, []string{"both", "estimator", "evaluator"}},
	}
	for _, tt := range tests {
		out := f.output(t, append([]string{cobra.ShellCompRequestCmd}, tt.args...)...)
		for _, want := range tt.want {
			if !strings.Contains(out, want+"\n") {
				t.Errorf("complete %v: missing %q in\n%s", tt.args, want, out)
			}
		}
	}
}
