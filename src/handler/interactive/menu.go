// Package interactive implements the tool selection menu.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"cq-suite/src/config"
	"cq-suite/src/service/tool"
)

// ErrInvalidSelection is returned for input that selects no tool
var ErrInvalidSelection = errors.New("invalid selection")

// Action is what the user asked the menu to do
type Action int

const (
	ActionRun Action = iota
	ActionMenu
	ActionExit
)

// Selection is a parsed menu choice
type Selection struct {
	Action Action
	Tools  []string
}

// ParseSelection interprets one line of menu input: comma-separated tool
// numbers, a preset name, "all", tool names, "menu" or "exit".
func ParseSelection(input string) (Selection, error) {
	choice := strings.ToLower(strings.TrimSpace(input))
	switch choice {
	case "exit", "quit":
		return Selection{Action: ActionExit}, nil
	case "menu":
		return Selection{Action: ActionMenu}, nil
	case "all":
		return Selection{Action: ActionRun, Tools: append([]string(nil), tool.Names...)}, nil
	}

	if tools, err := tool.ResolvePreset(choice); err == nil {
		return Selection{Action: ActionRun, Tools: tools}, nil
	}

	parts := tool.ParseToolList(choice)
	if isNumeric(parts) {
		var tools []string
		for _, p := range parts {
			n, _ := strconv.Atoi(p)
			if n >= 1 && n <= len(tool.Names) {
				tools = append(tools, tool.Names[n-1])
			}
		}
		if len(tools) == 0 {
			return Selection{}, fmt.Errorf("%w: choose numbers between 1 and %d", ErrInvalidSelection, len(tool.Names))
		}
		return Selection{Action: ActionRun, Tools: tool.UniqueNames(tools)}, nil
	}

	var tools []string
	for _, p := range parts {
		if isTool(p) {
			tools = append(tools, p)
		}
	}
	if len(tools) == 0 {
		return Selection{}, fmt.Errorf("%w: %q", ErrInvalidSelection, input)
	}
	return Selection{Action: ActionRun, Tools: tools}, nil
}

func isNumeric(parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return false
		}
	}
	return true
}

func isTool(name string) bool {
	for _, n := range tool.Names {
		if n == name {
			return true
		}
	}
	return false
}

// IsYes reports whether a confirmation answer accepts; empty means yes
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes":
		return true
	}
	return false
}

// Prompter reads a line of user input after showing a prompt.
// It returns readline.ErrInterrupt on Ctrl-C and io.EOF on Ctrl-D.
type Prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

type readlinePrompter struct {
	rl *readline.Instance
}

// NewReadlinePrompter creates a terminal prompter with in-memory history
func NewReadlinePrompter() (Prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &readlinePrompter{rl: rl}, nil
}

func (p *readlinePrompter) Prompt(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	return p.rl.Readline()
}

func (p *readlinePrompter) Close() error {
	return p.rl.Close()
}

// RunFunc runs the selected tools and reports the results
type RunFunc func(ctx context.Context, tools []string) error

// Menu is the interactive tool selection loop
type Menu struct {
	in           Prompter
	out          io.Writer
	project      config.ProjectConfig
	descriptions []string
	run          RunFunc
}

// NewMenu creates a menu over the given tool descriptions
func NewMenu(in Prompter, out io.Writer, project config.ProjectConfig, descriptions []string, run RunFunc) *Menu {
	return &Menu{in: in, out: out, project: project, descriptions: descriptions, run: run}
}

// Run shows the menu until the user exits. Ctrl-C re-prompts, Ctrl-D exits.
func (m *Menu) Run(ctx context.Context) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	showMenu := true
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if showMenu {
			m.printMenu()
			showMenu = false
		}

		line, err := m.in.Prompt(cyan("Your choice: "))
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		sel, err := ParseSelection(line)
		if err != nil {
			fmt.Fprintf(m.out, "%s %v. Please try again.\n", red("Error:"), err)
			continue
		}

		switch sel.Action {
		case ActionExit:
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		case ActionMenu:
			showMenu = true
			continue
		}

		fmt.Fprintf(m.out, "\nSelected tools: %s\n", strings.Join(sel.Tools, ", "))
		ok, err := m.confirm("Continue? (y/n): ")
		if err != nil {
			return nil
		}
		if !ok {
			showMenu = true
			continue
		}

		if err := m.run(ctx, sel.Tools); err != nil {
			fmt.Fprintf(m.out, "%s %v\n", red("Error:"), err)
		}

		again, err := m.confirm("\nRun another analysis? (y/n): ")
		if err != nil || !again {
			fmt.Fprintln(m.out, green("Analysis complete!"))
			return nil
		}
		showMenu = true
	}
}

// confirm asks a yes/no question; Ctrl-C counts as no and Ctrl-D aborts
func (m *Menu) confirm(prompt string) (bool, error) {
	answer, err := m.in.Prompt(prompt)
	if errors.Is(err, readline.ErrInterrupt) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

func (m *Menu) printMenu() {
	bold := color.New(color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(m.out, "\n%s\n%s\n%s\n", rule, bold("CODE QUALITY ANALYSIS - INTERACTIVE MODE"), rule)
	fmt.Fprintf(m.out, "Project: %s\n", m.project.Name)
	fmt.Fprintf(m.out, "Root: %s\n\n", m.project.Root)

	fmt.Fprintln(m.out, bold("Available Tools:"))
	for i, desc := range m.descriptions {
		fmt.Fprintf(m.out, "   %d. %s\n", i+1, desc)
	}

	fmt.Fprintf(m.out, "\n%s\n", bold("Available Presets:"))
	for _, name := range tool.PresetNames {
		fmt.Fprintf(m.out, "   %s: %s\n", yellow(name), strings.Join(tool.Presets[name], ", "))
	}

	fmt.Fprintf(m.out, "\n%s\n", strings.Repeat("-", 40))
	fmt.Fprintln(m.out, "Options:")
	fmt.Fprintln(m.out, "  - Enter tool numbers (e.g., 1,2,3)")
	fmt.Fprintln(m.out, "  - Enter preset name (e.g., quick)")
	fmt.Fprintln(m.out, "  - Type 'all' for all tools")
	fmt.Fprintln(m.out, "  - Type 'menu' to see this menu again")
	fmt.Fprintln(m.out, "  - Type 'exit' to quit")
	fmt.Fprintln(m.out, strings.Repeat("-", 40))
}
