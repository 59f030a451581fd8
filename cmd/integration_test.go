package cmd

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset bound variables that persist across invocations
	renOutputPath = ""
	renFormat = "png"
	renSheet = ""
	renStarPrefix = ""
	cfg = nil
	cfgFile = ""
	debug = false
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeExport(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "worksets.csv")
	content := "Revit Model Name,Workset Name,Element Count\n" +
		"Tower-ARC,Shell,120\n" +
		"Tower-ARC,Shell ,4\n" +
		"Tower-STR,Core,88\n" +
		"Tower-ARC,*Shared Levels and Grids,1\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestCLI_RenderPNG(t *testing.T) {
	dir := t.TempDir()
	in := writeExport(t, dir)
	outPath := filepath.Join(dir, "out", "heatmap.png")

	stdout, err := runCmd(t, "render", in, "-o", outPath)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(stdout, "Wrote 3 worksets x 2 models") {
		t.Fatalf("unexpected output: %q", stdout)
	}
	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("decode png: %v", err)
	}
}

func TestCLI_RenderPNGRequiresOutput(t *testing.T) {
	in := writeExport(t, t.TempDir())
	if _, err := runCmd(t, "render", in); err == nil {
		t.Fatalf("expected error without --output")
	}
}

func TestCLI_RenderMarkdownToStdout(t *testing.T) {
	in := writeExport(t, t.TempDir())
	stdout, err := runCmd(t, "render", in, "--format", "markdown")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"Worksets: 3 (starred 1)",
		"| Workset | Tower-ARC | Tower-STR |",
		"| Core | 0 | 1 |",
		"| Shell | 2 | 0 |",
		"| *Shared Levels and Grids | 1 | 0 |",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("missing %q in:\n%s", want, stdout)
		}
	}
}

func TestCLI_RenderCSVAndYAML(t *testing.T) {
	in := writeExport(t, t.TempDir())
	stdout, err := runCmd(t, "render", in, "-f", "csv")
	if err != nil {
		t.Fatalf("render csv: %v", err)
	}
	if !strings.HasPrefix(stdout, "Workset Name,Tower-ARC,Tower-STR\nCore,0,1\nShell,2,0\n") {
		t.Fatalf("unexpected csv: %q", stdout)
	}

	stdout, err = runCmd(t, "render", in, "-f", "yaml")
	if err != nil {
		t.Fatalf("render yaml: %v", err)
	}
	if !strings.Contains(stdout, "records: 4") || !strings.Contains(stdout, "- '*Shared Levels and Grids'") {
		t.Fatalf("unexpected yaml: %s", stdout)
	}
}

func TestCLI_RenderMissingColumn(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(p, []byte("Model,Workset Name\nM1,A\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := runCmd(t, "render", p, "-f", "csv")
	if err == nil || !strings.Contains(err.Error(), `missing column "Revit Model Name"`) {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestCLI_RenderUnknownFormat(t *testing.T) {
	in := writeExport(t, t.TempDir())
	if _, err := runCmd(t, "render", in, "-f", "gif"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestCLI_ConfigSetThenShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfgPath := filepath.Join(home, "cfg.yaml")

	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "star_prefix", "#"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	b, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(b), "star_prefix: '#'") {
		t.Fatalf("config not saved: %s", b)
	}
	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "dpi", "abc"); err == nil {
		t.Fatalf("expected invalid dpi error")
	}
	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "max_cells", "2"); err != nil {
		t.Fatalf("config set max_cells: %v", err)
	}
	in := filepath.Join(home, "w.csv")
	if err := os.WriteFile(in, []byte("Revit Model Name,Workset Name\nM1,A\nM2,B\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, "--config", cfgPath, "render", in, "-f", "csv"); err == nil || !strings.Contains(err.Error(), "cell limit") {
		t.Fatalf("expected cell limit error, got %v", err)
	}
}
