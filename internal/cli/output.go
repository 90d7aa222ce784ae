package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

// tabular is implemented by values that know how to lay themselves out as a table.
type tabular interface {
	headers() []string
	rows() [][]string
}

// printer writes command results in the format chosen with --output.
type printer struct {
	out    io.Writer
	format string
}

func validOutput(format string) error {
	switch format {
	case OutputTable, OutputJSON, OutputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// print renders v. Table output needs v to be tabular; anything else falls back to YAML.
func (p printer) print(v any) error {
	switch p.format {
	case OutputJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		return p.yaml(v)
	}

	t, ok := v.(tabular)
	if !ok {
		return p.yaml(v)
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(t.headers()...).
		Rows(t.rows()...)
	_, err := fmt.Fprintln(p.out, tbl.Render())
	return err
}

func (p printer) yaml(v any) error {
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// message prints a confirmation line. It is suppressed for machine readable output.
func (p printer) message(format string, args ...any) {
	if p.format != OutputTable {
		return
	}
	fmt.Fprintln(p.out, successStyle.Render(fmt.Sprintf(format, args...)))
}

// keyValues is a two column table of labelled values.
type keyValues [][2]string

func (kv keyValues) headers() []string { return []string{"Field", "Value"} }

func (kv keyValues) rows() [][]string {
	rows := make([][]string, 0, len(kv))
	for _, pair := range kv {
		rows = append(rows, []string{labelStyle.Render(pair[0]), pair[1]})
	}
	return rows
}
