package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/1broseidon/zonetile/internal/ipc"
)

// GeneratorForm is the overlay for creating a layout from a generator.
type GeneratorForm struct {
	form *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fKind  string
	fCount string
	fCols  string
	fRows  string
}

// NewGeneratorForm builds the huh form with defaults.
func NewGeneratorForm() *GeneratorForm {
	g := &GeneratorForm{
		fKind:  "columns",
		fCount: "2",
		fCols:  "2",
		fRows:  "2",
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Generator").
				Options(
					huh.NewOption("columns", "columns"),
					huh.NewOption("rows", "rows"),
					huh.NewOption("grid", "grid"),
				).
				Value(&g.fKind),
			huh.NewInput().
				Title("Count (columns/rows)").
				Value(&g.fCount).
				Validate(validateCount),
			huh.NewInput().
				Title("Cols (grid)").
				Value(&g.fCols).
				Validate(validateCount),
			huh.NewInput().
				Title("Rows (grid)").
				Value(&g.fRows).
				Validate(validateCount),
		),
	)
	return g
}

func validateCount(s string) error {
	if s == "" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

// Init implements the sub-model contract.
func (g *GeneratorForm) Init() tea.Cmd {
	return g.form.Init()
}

// Update feeds a message into the form.
func (g *GeneratorForm) Update(msg tea.Msg) (*GeneratorForm, tea.Cmd) {
	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}
	return g, cmd
}

// Done reports whether the form was submitted.
func (g *GeneratorForm) Done() bool {
	return g.form.State == huh.StateCompleted
}

// View renders the form.
func (g *GeneratorForm) View() string {
	return g.form.View()
}

// Payload converts the submitted values into a generate request.
func (g *GeneratorForm) Payload() (ipc.GenerateLayoutPayload, error) {
	p := ipc.GenerateLayoutPayload{Kind: g.fKind}
	var err error
	switch g.fKind {
	case "grid":
		if p.Cols, err = atoiDefault(g.fCols, 2); err != nil {
			return p, err
		}
		if p.Rows, err = atoiDefault(g.fRows, 2); err != nil {
			return p, err
		}
	default:
		if p.Count, err = atoiDefault(g.fCount, 2); err != nil {
			return p, err
		}
	}
	return p, nil
}

func atoiDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}
