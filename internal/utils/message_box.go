package utils

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// MessageType selects the color and icon of a message box.
type MessageType int

const (
	InfoMessage MessageType = iota
	SuccessMessage
	WarningMessage
	ErrorMessage
)

var messageStyles = map[MessageType]struct {
	icon  string
	color lipgloss.Color
}{
	InfoMessage:    {"ℹ", lipgloss.Color("86")},
	SuccessMessage: {"✓", lipgloss.Color("42")},
	WarningMessage: {"⚠", lipgloss.Color("178")},
	ErrorMessage:   {"✗", lipgloss.Color("196")},
}

// Box is a bordered message for the end of a command.
type Box struct {
	messageType MessageType
	title       string
	lines       []string
	width       int
}

// NewBox creates a box sized to the terminal.
func NewBox(messageType MessageType, title string) *Box {
	return &Box{
		messageType: messageType,
		title:       title,
		width:       terminalWidth() - 8,
	}
}

// AddLine appends a line of content.
func (b *Box) AddLine(text string) *Box {
	b.lines = append(b.lines, text)
	return b
}

// AddBullet appends a bulleted line of content.
func (b *Box) AddBullet(text string) *Box {
	b.lines = append(b.lines, "• "+text)
	return b
}

// WithWidth overrides the maximum width.
func (b *Box) WithWidth(width int) *Box {
	b.width = width
	return b
}

// Render returns the box. Long lines are wrapped to the box width.
func (b *Box) Render() string {
	style, ok := messageStyles[b.messageType]
	if !ok {
		style = messageStyles[InfoMessage]
	}

	accent := lipgloss.NewStyle().Foreground(style.color)
	header := accent.Bold(true).Render(style.icon + " " + b.title)
	body := append([]string{header}, b.lines...)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.color).
		Padding(0, 1)

	content := strings.Join(body, "\n")
	if b.width > 4 && lipgloss.Width(content)+4 > b.width {
		box = box.Width(b.width - 2)
	}
	return box.Render(content)
}

func Info(title string, lines ...string) string {
	return render(InfoMessage, title, lines)
}

func Success(title string, lines ...string) string {
	return render(SuccessMessage, title, lines)
}

func Warning(title string, lines ...string) string {
	return render(WarningMessage, title, lines)
}

func Error(title string, lines ...string) string {
	return render(ErrorMessage, title, lines)
}

func render(messageType MessageType, title string, lines []string) string {
	box := NewBox(messageType, title)
	for _, line := range lines {
		box.AddLine(line)
	}
	return box.Render()
}

// terminalWidth returns the width of stdout, or 80 when it is not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
