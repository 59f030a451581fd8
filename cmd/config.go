package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/worksetmap/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set worksetmap configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "addr: %s\n", cfg.Addr)
		fmt.Fprintf(out, "max_upload_mb: %d\n", cfg.MaxUploadMB)
		fmt.Fprintf(out, "model_column: %s\n", cfg.ModelColumn)
		fmt.Fprintf(out, "workset_column: %s\n", cfg.WorksetColumn)
		fmt.Fprintf(out, "star_prefix: %s\n", cfg.StarPrefix)
		if cfg.XLSXSheet != "" {
			fmt.Fprintf(out, "xlsx_sheet: %s\n", cfg.XLSXSheet)
		}
		fmt.Fprintf(out, "max_cells: %d\n", cfg.MaxCells)
		fmt.Fprintf(out, "cell_size: %.2f\n", cfg.CellSize)
		fmt.Fprintf(out, "max_width: %.2f\n", cfg.MaxWidth)
		fmt.Fprintf(out, "max_height: %.2f\n", cfg.MaxHeight)
		fmt.Fprintf(out, "dpi: %.0f\n", cfg.DPI)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "addr":
			cfg.Addr = val
		case "max_upload_mb":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for max_upload_mb: %v", val)
			}
			cfg.MaxUploadMB = i
		case "max_cells":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for max_cells: %v", val)
			}
			cfg.MaxCells = i
		case "model_column":
			cfg.ModelColumn = val
		case "workset_column":
			cfg.WorksetColumn = val
		case "star_prefix":
			if val == "" {
				return fmt.Errorf("star_prefix cannot be empty")
			}
			cfg.StarPrefix = val
		case "xlsx_sheet":
			cfg.XLSXSheet = val
		case "cell_size", "max_width", "max_height", "dpi":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid positive float for %s: %v", key, val)
			}
			switch key {
			case "cell_size":
				cfg.CellSize = f
			case "max_width":
				cfg.MaxWidth = f
			case "max_height":
				cfg.MaxHeight = f
			case "dpi":
				cfg.DPI = f
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
