package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/worksetmap/internal/dataset"
	"github.com/KaramelBytes/worksetmap/internal/render"
	"github.com/KaramelBytes/worksetmap/internal/utils"
	"github.com/spf13/cobra"
)

var (
	rbOutDir  string
	rbSheet   string
	rbQuiet   bool
	rbKeepErr bool
)

var renderBatchCmd = &cobra.Command{
	Use:   "render-batch <files...>",
	Short: "Render one heatmap PNG per CSV/TSV/XLSX export",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		seen := map[string]struct{}{}
		for _, arg := range args {
			matches, _ := filepath.Glob(arg)
			if len(matches) == 0 {
				// treat as literal path if exists
				if _, err := os.Stat(arg); err == nil {
					matches = []string{arg}
				}
			}
			for _, m := range matches {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		sort.Strings(files)
		if rbOutDir == "" {
			return fmt.Errorf("--out-dir is required")
		}
		if err := os.MkdirAll(rbOutDir, 0o755); err != nil {
			return fmt.Errorf("mkdir out dir: %w", err)
		}

		c := currentConfig()
		opt := c.DatasetOptions()
		if rbSheet != "" {
			opt.Sheet = rbSheet
		}
		r := render.New()
		if c.DPI > 0 {
			r.Style.DPI = c.DPI
		}
		out := cmd.OutOrStdout()

		total := len(files)
		failed := 0
		for i, path := range files {
			if !rbQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			png, err := renderFile(r, path, opt)
			if err != nil {
				if !rbKeepErr {
					return fmt.Errorf("%s: %w", path, err)
				}
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipping %s: %v\n", filepath.Base(path), err)
				continue
			}
			outFile, err := uniquePath(rbOutDir, filepath.Base(path))
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(outFile, png); err != nil {
				return fmt.Errorf("write heatmap: %w", err)
			}
			if !rbQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", filepath.Base(outFile))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, total)
		}
		return nil
	},
}

func renderFile(r *render.Renderer, path string, opt dataset.Options) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	res, err := dataset.Process(path, f, opt)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, res.Matrix, res.Canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// uniquePath returns dir/<base>.png, adding a __N suffix when that file already exists.
// A path counts as free only when it does not exist.
func uniquePath(dir, base string) (string, error) {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for idx := 1; ; idx++ {
		cand := filepath.Join(dir, stem+".png")
		if idx > 1 {
			cand = filepath.Join(dir, fmt.Sprintf("%s__%d.png", stem, idx))
		}
		_, err := os.Stat(cand)
		if os.IsNotExist(err) {
			return cand, nil
		}
		if err != nil {
			return "", fmt.Errorf("check output path: %w", err)
		}
	}
}

func init() {
	rootCmd.AddCommand(renderBatchCmd)
	renderBatchCmd.Flags().StringVarP(&rbOutDir, "out-dir", "o", "", "directory to write heatmap PNGs into")
	renderBatchCmd.Flags().StringVar(&rbSheet, "sheet", "", "XLSX: sheet name to read (default: first sheet)")
	renderBatchCmd.Flags().BoolVar(&rbQuiet, "quiet", false, "suppress progress and non-essential output")
	renderBatchCmd.Flags().BoolVar(&rbKeepErr, "keep-going", false, "skip files that fail instead of stopping")
}
