package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/worksetmap/internal/dataset"
	"github.com/KaramelBytes/worksetmap/internal/render"
	"github.com/KaramelBytes/worksetmap/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	renOutputPath string
	renFormat     string
	renSheet      string
	renStarPrefix string
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a workset heatmap from a CSV/TSV/XLSX export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := currentConfig()
		opt := c.DatasetOptions()
		if renSheet != "" {
			opt.Sheet = renSheet
		}
		if renStarPrefix != "" {
			opt.StarPrefix = renStarPrefix
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		res, err := dataset.Process(path, f, opt)
		if err != nil {
			return err
		}

		var out []byte
		switch strings.ToLower(strings.TrimSpace(renFormat)) {
		case "png", "":
			if renOutputPath == "" {
				return fmt.Errorf("--output is required for png output")
			}
			r := render.New()
			if c.DPI > 0 {
				r.Style.DPI = c.DPI
			}
			var buf bytes.Buffer
			if err := r.Render(&buf, res.Matrix, res.Canvas); err != nil {
				return err
			}
			out = buf.Bytes()
		case "markdown", "md":
			out = []byte(res.Matrix.Markdown())
		case "csv":
			var buf bytes.Buffer
			if err := res.Matrix.WriteCSV(&buf); err != nil {
				return err
			}
			out = buf.Bytes()
		case "json":
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			out = append(b, '\n')
		case "yaml":
			b, err := yaml.Marshal(res)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			out = b
		default:
			return fmt.Errorf("unsupported --format: %s (use png|markdown|csv|json|yaml)", renFormat)
		}

		if renOutputPath == "" {
			_, err := cmd.OutOrStdout().Write(out)
			return err
		}
		if err := utils.SafeWriteFile(renOutputPath, out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		rows, cols := res.Matrix.Shape()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d worksets x %d models (%.1fx%.1fin) to %s\n",
			rows, cols, res.Canvas.Width, res.Canvas.Height, renOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renOutputPath, "output", "o", "", "path to write the result (required for png)")
	renderCmd.Flags().StringVarP(&renFormat, "format", "f", "png", "output format: png|markdown|csv|json|yaml")
	renderCmd.Flags().StringVar(&renSheet, "sheet", "", "XLSX: sheet name to read (default: first sheet)")
	renderCmd.Flags().StringVar(&renStarPrefix, "star-prefix", "", "prefix marking worksets listed after all others (overrides config)")
}
