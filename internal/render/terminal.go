package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/depot/internal/card"
)

var (
	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	missingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	sizeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	linkStyle = lipgloss.NewStyle().
			PaddingLeft(3).
			Foreground(lipgloss.Color("63"))

	errorStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("196"))
)

// Terminal writes every visible card as a short text block.
func Terminal(w io.Writer, views []CardView) error {
	for _, v := range views {
		if !v.Visible {
			continue
		}
		if _, err := io.WriteString(w, terminalCard(v.Card)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func terminalCard(c card.Card) string {
	var b strings.Builder

	label := nameStyle.Render(c.Label)
	if !c.Available {
		label = missingStyle.Render(c.Label)
	}
	fmt.Fprintf(&b, "%s %s %s\n", c.Icon, label, sizeStyle.Render(c.Size))

	if len(c.Tags) > 0 {
		chips := make([]string, len(c.Tags))
		for i, t := range c.Tags {
			chips[i] = tagStyle.Render(t)
		}
		b.WriteString("   " + lipgloss.JoinHorizontal(lipgloss.Top, chips...) + "\n")
	}

	action := c.Action
	if c.Download {
		action += ": " + c.Href
	}
	b.WriteString(linkStyle.Render(action) + "\n")
	return b.String()
}

// TerminalError writes the catalog failure panel.
func TerminalError(w io.Writer, resource string, err error) error {
	msg := fmt.Sprintf("Could not load %s.\n%v", resource, err)
	_, werr := io.WriteString(w, errorStyle.Render(msg)+"\n")
	return werr
}
