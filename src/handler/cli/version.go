package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cq-suite/src/service/discovery"
	"cq-suite/src/service/tool"
)

func (h *Handler) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", h.cfg.Agent.Name, h.cfg.Agent.Version)
		},
	}
}

func (h *Handler) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools and presets",
		Run: func(cmd *cobra.Command, args []string) {
			printTools(cmd.OutOrStdout(), h.toolDescriptions())
		},
	}
}

// toolDescriptions lists the registered tools without touching the project
func (h *Handler) toolDescriptions() []string {
	return tool.NewRegistry(discovery.NewProvider(discovery.OptionsFromConfig(h.cfg)), h.exec, h.cfg).Descriptions()
}

func printTools(w io.Writer, descriptions []string) {
	fmt.Fprintln(w, titleStyle.Render("Available tools:"))
	for i, desc := range descriptions {
		fmt.Fprintf(w, "  %d. %s  %s\n", i+1, cmdStyle.Render(tool.Names[i]), desc)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Available presets:"))
	for _, name := range tool.PresetNames {
		fmt.Fprintf(w, "  %-14s %s\n", name, labelStyle.Render(strings.Join(tool.Presets[name], ", ")))
	}
}
