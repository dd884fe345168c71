package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/mabhi256/gclog/internal/config"
	"github.com/mabhi256/gclog/internal/gc"
	"github.com/mabhi256/gclog/utils"
	"github.com/spf13/cobra"
)

var outputFormat string

var gcLogExtensions = []string{".log", ".txt", ".gc"}

// errNoCycles marks a log in which no GC cycle was recognised.
var errNoCycles = errors.New("no GC cycles recognised")

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Parse GC logs",
}

var gcParseCmd = &cobra.Command{
	Use:               "parse [gc-log-file...]",
	Short:             "Parse GC log files into a cycle model",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension(gcLogExtensions, true),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat == "" {
			outputFormat = cfg.Output.Format
		}
		if !slices.Contains(config.OutputFormats(), outputFormat) {
			return fmt.Errorf("invalid output format: %s. Valid options: %v", outputFormat, config.OutputFormats())
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, path := range args {
			model, err := parseLog(cmd, path)
			if err != nil {
				return err
			}
			if err := writeModel(out, path, model, len(args) > 1); err != nil {
				return err
			}
		}
		return nil
	},
}

var gcValidateCmd = &cobra.Command{
	Use:               "validate [gc-log-file]",
	Short:             "Check that a GC log yields at least one cycle",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension(gcLogExtensions, true),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := parseLog(cmd, args[0])
		if err != nil {
			return err
		}

		d := model.Diagnostics
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, utils.SectionHeader(args[0]))
		fmt.Fprintln(out, utils.FormatKeyValue("Cycles", fmt.Sprint(model.CycleCount()), 12))
		fmt.Fprintln(out, utils.FormatKeyValue("Lines", fmt.Sprint(d.LinesTotal), 12))
		fmt.Fprintln(out, utils.FormatKeyValue("Ignored", fmt.Sprint(d.Ignored), 12))
		fmt.Fprintln(out, utils.FormatKeyValue("Dropped", fmt.Sprint(d.Dropped), 12))
		fmt.Fprintln(out, utils.FormatKeyValue("Orphaned", fmt.Sprint(d.Orphaned), 12))

		if model.CycleCount() == 0 {
			fmt.Fprintln(out, utils.CriticalStyle.Render("❌ not a recognisable JDK 8 GC log"))
			return fmt.Errorf("%s: %w", args[0], errNoCycles)
		}
		fmt.Fprintln(out, utils.GoodStyle.Render("✅ valid"))
		return nil
	},
}

func parseLog(cmd *cobra.Command, path string) (*gc.GCLogFile, error) {
	logger := slog.Default().With("file", path)
	model, err := gc.ParseFile(cmd.Context(), path,
		gc.WithLogger(logger),
		gc.WithMaxLineBytes(cfg.Parser.MaxLineBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	logger.Info("parsed gc log",
		"cycles", model.CycleCount(),
		"lines", model.Diagnostics.LinesTotal,
		"dropped", model.Diagnostics.Dropped)
	return model, nil
}

func writeModel(w io.Writer, path string, model *gc.GCLogFile, withHeader bool) error {
	switch outputFormat {
	case "json":
		return model.WriteJSON(w, cfg.Output.Indent)
	case "yaml":
		if withHeader {
			if _, err := fmt.Fprintln(w, "---"); err != nil {
				return err
			}
		}
		return model.WriteYAML(w)
	default:
		if withHeader {
			if _, err := fmt.Fprintln(w, utils.TitleStyle.Render("📄 "+path)); err != nil {
				return err
			}
		}
		return model.WriteText(w)
	}
}

func init() {
	rootCmd.AddCommand(gcCmd)

	gcCmd.AddCommand(gcParseCmd)
	gcCmd.AddCommand(gcValidateCmd)

	gcParseCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: json, yaml or text (default from config)")

	// When user types: gclog gc parse file.log -o <TAB>
	gcParseCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}
