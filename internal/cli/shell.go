package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/evaluator"
	"github.com/matzehuels/quicksilver/pkg/graph"
	"github.com/matzehuels/quicksilver/pkg/planner"
	"github.com/matzehuels/quicksilver/pkg/query"
)

// shellCommand creates the interactive query shell.
func (c *CLI) shellCommand() *cobra.Command {
	var opts engineOpts
	var strategy string

	cmd := &cobra.Command{
		Use:   "shell [graph]",
		Short: "Evaluate queries interactively",
		Long: `Load a graph once and evaluate queries interactively.

Each query prints its exact result, the estimate and the executed plan.
Use the arrow keys to recall earlier queries and esc to quit.`,
		Example: `  quicksilver shell graph.txt`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseStrategyFlag(strategy)
			if err != nil {
				return err
			}
			opts.strategy = s
			return c.runShell(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "planning strategy: auto, greedy, exhaustive (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runShell(ctx context.Context, graphPath string, opts engineOpts) error {
	spinner := newSpinner("Loading graph...")
	spinner.Start()
	eng, err := c.loadEngine(ctx, graphPath, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	p := tea.NewProgram(newShellModel(eng.ev, graphPath), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// =============================================================================
// ShellModel
// =============================================================================

var (
	shellPromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	shellErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	shellDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// shellEntry is one evaluated query.
type shellEntry struct {
	Query    string
	Result   graph.CardStat
	Estimate graph.CardStat
	Plan     *planner.Plan
	Elapsed  time.Duration
	Err      error
}

// shellResultMsg carries a finished evaluation back to the model.
type shellResultMsg shellEntry

// ShellModel is the bubbletea model for the query shell.
type ShellModel struct {
	ev      *evaluator.Evaluator
	name    string
	input   []rune
	history []string
	recall  int // index into history while browsing, len(history) otherwise
	entries []shellEntry
	busy    bool
}

func newShellModel(ev *evaluator.Evaluator, name string) ShellModel {
	return ShellModel{ev: ev, name: name}
}

func (m ShellModel) Init() tea.Cmd {
	return nil
}

func (m ShellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case shellResultMsg:
		m.busy = false
		m.entries = append(m.entries, shellEntry(msg))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(string(m.input))
			if text == "" || m.busy {
				return m, nil
			}
			m.history = append(m.history, text)
			m.recall = len(m.history)
			m.input = nil
			m.busy = true
			return m, evaluateCmd(m.ev, text)
		case "up":
			if m.recall > 0 {
				m.recall--
				m.input = []rune(m.history[m.recall])
			}
		case "down":
			if m.recall < len(m.history)-1 {
				m.recall++
				m.input = []rune(m.history[m.recall])
			} else {
				m.recall = len(m.history)
				m.input = nil
			}
		case "backspace":
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case "ctrl+u":
			m.input = nil
		default:
			switch msg.Type {
			case tea.KeyRunes:
				m.input = append(m.input, msg.Runes...)
			case tea.KeySpace:
				m.input = append(m.input, ' ')
			}
		}
	}
	return m, nil
}

// evaluateCmd evaluates text off the UI loop.
func evaluateCmd(ev *evaluator.Evaluator, text string) tea.Cmd {
	return func() tea.Msg {
		entry := shellEntry{Query: text}
		q, err := query.Parse(text)
		if err != nil {
			entry.Err = err
			return shellResultMsg(entry)
		}
		if ev.Estimator() != nil {
			if entry.Estimate, err = ev.Estimate(q); err != nil {
				entry.Err = err
				return shellResultMsg(entry)
			}
		}
		start := time.Now()
		entry.Result, entry.Err = ev.Evaluate(q)
		entry.Elapsed = time.Since(start)
		entry.Plan = ev.LastPlan()
		return shellResultMsg(entry)
	}
}

func (m ShellModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("quicksilver shell"))
	b.WriteString(" " + shellDimStyle.Render(m.name))
	b.WriteString("\n")
	b.WriteString(shellDimStyle.Render("enter: evaluate  arrows: history  esc: quit"))
	b.WriteString("\n\n")

	for _, e := range m.entries {
		b.WriteString(shellPromptStyle.Render("> ") + e.Query + "\n")
		if e.Err != nil {
			b.WriteString("  " + shellErrorStyle.Render(e.Err.Error()) + "\n")
			continue
		}
		fmt.Fprintf(&b, "  %s %s  %s %s  %s\n",
			shellDimStyle.Render("paths"), StyleNumber.Render(fmt.Sprint(e.Result.NoPaths)),
			shellDimStyle.Render("estimate"), e.Estimate,
			shellDimStyle.Render(e.Elapsed.Round(time.Microsecond).String()))
		if e.Plan != nil && !e.Plan.Root.IsLeaf() {
			fmt.Fprintf(&b, "  %s %s %s\n",
				shellDimStyle.Render("plan"), e.Plan.Root, shellDimStyle.Render(string(e.Plan.Strategy)))
		}
	}

	b.WriteString(shellPromptStyle.Render("> ") + string(m.input))
	if m.busy {
		b.WriteString(shellDimStyle.Render(" evaluating..."))
	} else {
		b.WriteString("█")
	}
	b.WriteString("\n")

	return b.String()
}
