package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/1F47E/kmlorm/pkg/models"
	"github.com/1F47E/kmlorm/pkg/query"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse FILE|URL",
		Short: "Browse placemarks interactively and filter them with lookups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			m := newBrowseModel(f.Name(), f.Placemarks().All())
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

var browseColumns = []table.Column{
	{Title: "ID", Width: 12},
	{Title: "Name", Width: 28},
	{Title: "Lon", Width: 11},
	{Title: "Lat", Width: 11},
	{Title: "Geometry", Width: 14},
	{Title: "Address", Width: 30},
}

type browseModel struct {
	title     string
	base      *query.QuerySet[*models.Placemark]
	current   *query.QuerySet[*models.Placemark]
	filter    string
	table     table.Model
	input     textinput.Model
	filtering bool
	err       error
}

func newBrowseModel(title string, base *query.QuerySet[*models.Placemark]) browseModel {
	ti := textinput.New()
	ti.Placeholder = "name__icontains=store latitude__gte=39"
	ti.Prompt = "/ "
	ti.CharLimit = 256

	t := table.New(
		table.WithColumns(browseColumns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#BD93F9")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#282A36")).
		Background(lipgloss.Color("#FF79C6"))
	t.SetStyles(s)

	m := browseModel{title: title, base: base, table: t, input: ti}
	m.apply("")
	return m
}

// apply filters the base set with a whitespace-separated list of lookups.
// An empty expression resets the view.
func (m *browseModel) apply(expr string) {
	m.err = nil
	qs := m.base
	if expr = strings.TrimSpace(expr); expr != "" {
		lookups, err := parseLookups(strings.Fields(expr))
		if err == nil {
			qs, err = m.base.Filter(lookups)
		}
		if err != nil {
			m.err = err
			return
		}
	}
	m.filter = expr
	m.current = qs
	m.table.SetRows(placemarkRows(qs))
	m.table.GotoTop()
}

func placemarkRows(qs *query.QuerySet[*models.Placemark]) []table.Row {
	rows := make([]table.Row, 0, qs.Count())
	for pm := range qs.Iter() {
		lon, lat := "", ""
		if c, ok := pm.Location(); ok {
			lon = fmt.Sprintf("%.5f", c.Longitude)
			lat = fmt.Sprintf("%.5f", c.Latitude)
		}
		rows = append(rows, table.Row{pm.ID, pm.Name, lon, lat, pm.GeometryType(), pm.Address})
	}
	return rows
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.Type {
			case tea.KeyEnter:
				m.apply(m.input.Value())
				m.filtering = false
				m.input.Blur()
				m.table.Focus()
				return m, nil
			case tea.KeyEsc:
				m.filtering = false
				m.input.Blur()
				m.table.Focus()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.filtering = true
			m.table.Blur()
			return m, m.input.Focus()
		case "esc":
			m.input.SetValue("")
			m.apply("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	var b strings.Builder

	title := m.title
	if title == "" {
		title = "KML document"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	switch {
	case m.filtering:
		b.WriteString(m.input.View())
	case m.filter != "":
		b.WriteString(subtitleStyle.Render("Filter: ") + m.filter)
	default:
		b.WriteString(dimStyle.Render("No filter"))
	}
	b.WriteString("\n")

	b.WriteString(boxStyle.Render(m.table.View()))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	} else {
		b.WriteString(statStyle.Render(fmt.Sprintf("%d of %d placemarks", m.current.Count(), m.base.Count())))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("/ filter • esc clear • ↑/↓ move • q quit"))
	return b.String()
}
