package main

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// colorEnabled is true when stdout is a terminal; piped output stays plain.
var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

var (
	hashStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	decorationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	addStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	delStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hunkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle     = lipgloss.NewStyle().Bold(true)
)

func render(s lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return s.Render(text)
}

func styleHash(s string) string       { return render(hashStyle, s) }
func styleDecoration(s string) string { return render(decorationStyle, s) }
func styleAdded(s string) string      { return render(addStyle, s) }
func styleRemoved(s string) string    { return render(delStyle, s) }

// writeDiff copies a unified diff to out, colouring it line by line.
func writeDiff(out io.Writer, diff []byte) error {
	if !colorEnabled {
		_, err := out.Write(diff)
		return err
	}
	w := bufio.NewWriter(out)
	sc := bufio.NewScanner(bytes.NewReader(diff))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case len(line) >= 3 && (line[:3] == "---" || line[:3] == "+++"):
			line = headerStyle.Render(line)
		case len(line) >= 2 && line[:2] == "@@":
			line = hunkStyle.Render(line)
		case len(line) > 0 && line[0] == '+':
			line = addStyle.Render(line)
		case len(line) > 0 && line[0] == '-':
			line = delStyle.Render(line)
		}
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return w.Flush()
}
