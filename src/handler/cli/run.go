package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cq-suite/src/controller"
	"cq-suite/src/handler/interactive"
	"cq-suite/src/model"
	"cq-suite/src/service/tool"
	"cq-suite/src/util"
)

func (h *Handler) runCmd() *cobra.Command {
	var (
		tools       string
		preset      string
		interact    bool
		listTools   bool
		format      string
		toolTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run analysis tools against the configured project",
		Long: "Runs the selected tools and writes their reports, the analysis summary and the numeric\n" +
			"summary into the report directory. Without --tools or --preset an interactive menu is shown.",
		Example: "  cq run                          # interactive mode\n" +
			"  cq run --tools code_metrics\n" +
			"  cq run --tools pylint,docstrings\n" +
			"  cq run --preset quick",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if listTools {
				printTools(out, h.toolDescriptions())
				return nil
			}
			if err := h.requireProject(); err != nil {
				return err
			}

			if format != "" {
				h.cfg.Output.Formats = []string{"json", format}
			}
			if toolTimeout > 0 {
				h.cfg.Tools.Timeout = toolTimeout
			}

			selected, err := selectTools(tools, preset)
			if err != nil {
				return err
			}

			ctrl := controller.NewAnalysisController(h.cfg, h.exec)
			runTools := func(ctx context.Context, names []string) error {
				outcome, err := ctrl.Analyze(ctx, controller.AnalyzeRequest{Tools: names})
				if outcome != nil && outcome.Summary != nil {
					printResults(out, outcome)
				}
				return err
			}

			if interact || len(selected) == 0 {
				prompter, err := interactive.NewReadlinePrompter()
				if err != nil {
					return err
				}
				defer prompter.Close()

				menu := interactive.NewMenu(prompter, out, h.cfg.Project, ctrl.Registry().Descriptions(), runTools)
				return menu.Run(cmd.Context())
			}

			return runTools(cmd.Context(), selected)
		},
	}

	cmd.Flags().StringVar(&tools, "tools", "", "Comma-separated list of tools to run")
	cmd.Flags().StringVar(&preset, "preset", "", "Predefined tool combination ("+strings.Join(tool.PresetNames, ", ")+")")
	cmd.Flags().BoolVarP(&interact, "interactive", "i", false, "Force interactive mode")
	cmd.Flags().BoolVar(&listTools, "list-tools", false, "List available tools and presets")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Extra summary format (markdown, sarif)")
	cmd.Flags().DurationVarP(&toolTimeout, "timeout", "t", 0, "Per-tool timeout (default from config)")

	cmd.MarkFlagsMutuallyExclusive("tools", "preset")

	return cmd
}

// selectTools resolves --tools or --preset; nil means no selection was made
func selectTools(tools, preset string) ([]string, error) {
	switch {
	case preset != "":
		return tool.ResolvePreset(preset)
	case tools != "":
		names := tool.ParseToolList(tools)
		var unknown []string
		for _, n := range names {
			if !isKnownTool(n) {
				unknown = append(unknown, n)
			}
		}
		if len(unknown) > 0 {
			// unknown names still run and are recorded as failed
			util.Warn("Unknown tools: %s (available: %s)", strings.Join(unknown, ", "), strings.Join(tool.Names, ", "))
		}
		if len(names) == 0 {
			return nil, errors.New("--tools is empty")
		}
		return names, nil
	}
	return nil, nil
}

func isKnownTool(name string) bool {
	for _, n := range tool.Names {
		if n == name {
			return true
		}
	}
	return false
}

func printResults(w io.Writer, outcome *controller.AnalysisOutcome) {
	s := outcome.Summary
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("ANALYSIS RESULTS SUMMARY") + "\n\n")
	sb.WriteString(labelStyle.Render("Project: ") + s.ProjectName + "\n")
	sb.WriteString(labelStyle.Render("Root:    ") + s.ProjectRoot + "\n")
	sb.WriteString(labelStyle.Render("Files:   ") + fmt.Sprint(s.FilesAnalyzed) + "\n")

	if len(s.SuccessfulTools) > 0 {
		sb.WriteString(fmt.Sprintf("\n%s\n", successStyle.Render(fmt.Sprintf("Successful tools (%d):", len(s.SuccessfulTools)))))
		for _, r := range outcome.Results {
			if r.Succeeded() {
				sb.WriteString(fmt.Sprintf("  %s %s (%.2fs)\n", successStyle.Render("+"), r.Name, r.DurationS))
			}
		}
	}
	if len(s.FailedTools) > 0 {
		sb.WriteString(fmt.Sprintf("\n%s\n", errorStyle.Render(fmt.Sprintf("Failed tools (%d):", len(s.FailedTools)))))
		for _, r := range outcome.Results {
			if r.Succeeded() {
				continue
			}
			style := errorStyle
			if r.Status == model.ToolUnavailable {
				style = warningStyle
			}
			sb.WriteString(fmt.Sprintf("  %s %s: %s\n", style.Render("-"), r.Name, r.Error))
		}
	}

	sb.WriteString(fmt.Sprintf("\n%s %.1f%% (%d/%d)\n", labelStyle.Render("Success rate:"),
		s.SuccessRate*100, len(s.SuccessfulTools), s.TotalTools))

	if n := outcome.Numeric; n != nil && len(n.OverallScores) > 0 {
		sb.WriteString("\n" + labelStyle.Render("Scores:") + "\n")
		keys := make([]string, 0, len(n.OverallScores))
		for k := range n.OverallScores {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", k, n.OverallScores[k]))
		}
	}

	if outcome.SummaryPath != "" {
		sb.WriteString("\n" + labelStyle.Render("Reports saved to: ") + filepath.Dir(outcome.SummaryPath))
	}

	fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(sb.String(), "\n")))
}
