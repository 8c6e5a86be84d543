package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cq-suite/src/controller"
	"cq-suite/src/service/discovery"
)

// excludePreviewLimit caps the exclude patterns shown in the configure summary
const excludePreviewLimit = 5

func (h *Handler) configureCmd() *cobra.Command {
	var (
		projectPath   string
		include       string
		exclude       string
		reportsDir    string
		showDetection bool
	)

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure the project to analyze",
		Long: "Detects the project structure, builds the active configuration and saves it.\n" +
			"Include directories are relative to the project root or absolute; exclude patterns are\n" +
			"added to the built-in defaults.",
		Example: "  cq configure --project ./shop\n" +
			"  cq configure --project ./shop --include src,app --exclude migrations\n" +
			"  cq configure --project ../wayne --reports-dir ./reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ctrl := controller.NewConfigureController(h.cfg, h.loader)

			if showDetection {
				det, err := ctrl.Detect(projectPath)
				if err != nil {
					return err
				}
				printDetection(out, det)
			}

			res, err := ctrl.Configure(controller.ConfigureRequest{
				ProjectPath:     projectPath,
				IncludeDirs:     splitList(include),
				ExcludePatterns: splitList(exclude),
				ReportsDir:      reportsDir,
				ConfigPath:      h.configPath,
			})
			if err != nil {
				return fmt.Errorf("configuring project: %w", err)
			}

			printConfigureSummary(out, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "Path to the project directory to analyze (required)")
	cmd.Flags().StringVar(&include, "include", "", "Comma-separated directories to include")
	cmd.Flags().StringVar(&exclude, "exclude", "", "Comma-separated additional patterns to exclude")
	cmd.Flags().StringVar(&reportsDir, "reports-dir", "", "Directory to save analysis reports")
	cmd.Flags().BoolVar(&showDetection, "show-detection", false, "Show project structure detection details")

	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func printDetection(w io.Writer, det *discovery.Detection) {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Project: "+det.Name) + "\n")
	sb.WriteString(labelStyle.Render("Root: ") + det.Root + "\n")
	sb.WriteString(labelStyle.Render("Detected features:") + "\n")
	for _, f := range det.Features {
		sb.WriteString("  " + successStyle.Render("+") + " " + f + "\n")
	}
	sb.WriteString(labelStyle.Render("Suggested include directories:") + "\n")
	for _, dir := range det.SuggestedIncludeDirs {
		sb.WriteString("  " + dir + "\n")
	}
	fmt.Fprintln(w, sb.String())
}

func printConfigureSummary(w io.Writer, res *controller.ConfigureResult) {
	p := res.Config.Project
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("CODE QUALITY SUITE CONFIGURATION SET") + "\n\n")
	sb.WriteString(labelStyle.Render("Project:      ") + p.Name + "\n")
	sb.WriteString(labelStyle.Render("Project root: ") + p.Root + "\n")
	if p.PackageName != "" {
		sb.WriteString(labelStyle.Render("Package:      ") + p.PackageName + "\n")
	}

	if len(p.DetectedFeatures) > 0 {
		sb.WriteString("\n" + labelStyle.Render("Detected features:") + "\n")
		for _, f := range p.DetectedFeatures {
			sb.WriteString("  " + successStyle.Render("+") + " " + f + "\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\n%s\n", labelStyle.Render(fmt.Sprintf("Include directories (%d):", len(p.IncludeDirs)))))
	for _, dir := range p.IncludeDirs {
		sb.WriteString("  " + successStyle.Render("+") + " " + dir + "\n")
	}

	sb.WriteString(fmt.Sprintf("\n%s\n", labelStyle.Render(fmt.Sprintf("Exclude patterns (%d):", len(p.ExcludePatterns)))))
	for _, pattern := range p.ExcludePatterns[:min(len(p.ExcludePatterns), excludePreviewLimit)] {
		sb.WriteString("  " + errorStyle.Render("-") + " " + pattern + "\n")
	}
	if extra := len(p.ExcludePatterns) - excludePreviewLimit; extra > 0 {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", extra))
	}

	sb.WriteString("\n" + labelStyle.Render("Reports directory: ") + p.ReportDir + "\n")
	sb.WriteString(labelStyle.Render("Configuration:     ") + res.ConfigPath + "\n\n")
	sb.WriteString("Run " + cmdStyle.Render("cq run") + " to analyze.")

	fmt.Fprintln(w, boxStyle.Render(sb.String()))
}

// splitList splits a comma-separated flag value, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
