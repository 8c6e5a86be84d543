package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"cq-suite/src/controller"
)

func (h *Handler) filesCmd() *cobra.Command {
	var (
		relative bool
		stats    bool
	)

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the files the tools will analyze",
		Long:  "Runs file discovery with the active configuration and prints the resulting file set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := h.requireProject(); err != nil {
				return err
			}

			ctrl := controller.NewAnalysisController(h.cfg, h.exec)
			res, err := ctrl.Files(cmd.Context())
			if err != nil {
				return fmt.Errorf("discovering files: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, f := range res.Files {
				if relative {
					if rel, err := filepath.Rel(h.cfg.Project.Root, f); err == nil {
						f = rel
					}
				}
				fmt.Fprintln(out, f)
			}

			if stats {
				errOut := cmd.ErrOrStderr()
				fmt.Fprintln(errOut)
				fmt.Fprintln(errOut, titleStyle.Render(fmt.Sprintf("%d files", len(res.Files))))
				includes := make([]string, 0, len(res.PerInclude))
				for inc := range res.PerInclude {
					includes = append(includes, inc)
				}
				sort.Strings(includes)
				for _, inc := range includes {
					fmt.Fprintf(errOut, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%6d", res.PerInclude[inc])), inc)
				}
				fmt.Fprintf(errOut, "  %s excluded entries\n", labelStyle.Render(fmt.Sprintf("%6d", res.Excluded)))
				for _, m := range res.Missing {
					fmt.Fprintf(errOut, "  %s %s\n", warningStyle.Render("missing"), m)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&relative, "relative", "r", false, "Print paths relative to the project root")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print discovery statistics to stderr")

	return cmd
}
