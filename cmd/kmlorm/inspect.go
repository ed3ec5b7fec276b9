package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/1F47E/kmlorm/pkg/kml"
	"github.com/1F47E/kmlorm/pkg/models"
	"github.com/1F47E/kmlorm/pkg/query"
)

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect FILE|URL",
		Short: "Show document summary, element counts and folder tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summarize(f))
			}
			printInspect(cmd.OutOrStdout(), f)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

type folderSummary struct {
	Name       string          `json:"name"`
	ID         string          `json:"id,omitempty"`
	Placemarks int             `json:"placemarks"`
	Folders    []folderSummary `json:"folders,omitempty"`
}

type documentSummary struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Source      string          `json:"source,omitempty"`
	Counts      map[string]int  `json:"counts"`
	Folders     []folderSummary `json:"folders,omitempty"`
}

func summarize(f *kml.File) documentSummary {
	return documentSummary{
		Name:        f.Name(),
		Description: f.Description(),
		Source:      f.Source,
		Counts:      f.DeepElementCounts(),
		Folders:     summarizeFolders(f.Document),
	}
}

func summarizeFolders(c models.Container) []folderSummary {
	var out []folderSummary
	for folder := range query.Folders(c).Children().Iter() {
		out = append(out, folderSummary{
			Name:       folder.Name,
			ID:         folder.ID,
			Placemarks: query.Placemarks(folder).Count(),
			Folders:    summarizeFolders(folder),
		})
	}
	return out
}

func printInspect(w io.Writer, f *kml.File) {
	s := summarize(f)

	name := s.Name
	if name == "" {
		name = "(unnamed document)"
	}
	fmt.Fprintln(w, render(titleStyle, name))
	if s.Description != "" {
		fmt.Fprintln(w, render(dimStyle, s.Description))
	}
	if s.Source != "" {
		fmt.Fprintf(w, "%s %s\n", render(subtitleStyle, "Source:"), s.Source)
	}
	fmt.Fprintln(w)

	kinds := make([]string, 0, len(s.Counts))
	for k := range s.Counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	t := table.New().Border(lipgloss.NormalBorder()).Headers("ELEMENT", "COUNT")
	for _, k := range kinds {
		t.Row(k, fmt.Sprint(s.Counts[k]))
	}
	fmt.Fprintln(w, t.String())

	if len(s.Folders) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, render(subtitleStyle, "Folders"))
		printTree(w, s.Folders, 0)
	}
}

func printTree(w io.Writer, folders []folderSummary, depth int) {
	for _, f := range folders {
		fmt.Fprintf(w, "%s%s %s\n",
			strings.Repeat("  ", depth),
			render(successStyle, "▸ "+f.Name),
			render(dimStyle, fmt.Sprintf("(%d placemarks)", f.Placemarks)))
		printTree(w, f.Folders, depth+1)
	}
}
