package formatter

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// Style picks the accent colour of a panel.
type Style string

const (
	StyleInfo    Style = "info"
	StyleTitle   Style = "title"
	StyleCommand Style = "command"
	StyleWarn    Style = "warn"
	StyleError   Style = "error"
	StyleSuccess Style = "success"
)

// Kind controls how a panel body is rendered.
type Kind int

const (
	KindText Kind = iota
	KindCode
	KindMarkdown
)

// Panel is a titled block of output.
type Panel struct {
	Title string
	Body  string
	Style Style
	Kind  Kind
}

// Console renders panels and status lines to a terminal.
type Console struct {
	out     io.Writer
	spinner bool
	width   int
}

type ConsoleOption func(*Console)

// WithoutSpinner disables progress spinners, for non-interactive output.
func WithoutSpinner() ConsoleOption {
	return func(c *Console) { c.spinner = false }
}

func WithWidth(w int) ConsoleOption {
	return func(c *Console) { c.width = w }
}

func NewConsole(out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{out: out, spinner: true, width: 100}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var borderColors = map[Style]lipgloss.Color{
	StyleInfo:    lipgloss.Color("6"),
	StyleTitle:   lipgloss.Color("5"),
	StyleCommand: lipgloss.Color("4"),
	StyleWarn:    lipgloss.Color("3"),
	StyleError:   lipgloss.Color("1"),
	StyleSuccess: lipgloss.Color("2"),
}

func (c *Console) Panel(p Panel) {
	accent, ok := borderColors[p.Style]
	if !ok {
		accent = borderColors[StyleInfo]
	}

	var body string
	switch p.Kind {
	case KindCode:
		body = numberLines(p.Body)
	case KindMarkdown:
		body = c.renderMarkdown(p.Body)
	default:
		body = p.Body
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render(p.Title)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		MaxWidth(c.width).
		Render(body)

	fmt.Fprintln(c.out, title)
	fmt.Fprintln(c.out, box)
}

// Status prints a one line progress message.
func (c *Console) Status(msg string) {
	color.New(color.FgYellow, color.Bold).Fprintf(c.out, ">> %s\n", msg)
}

func (c *Console) Success(msg string) {
	color.New(color.FgGreen).Fprintf(c.out, "✓ %s\n", msg)
}

func (c *Console) Warn(msg string) {
	color.New(color.FgRed, color.Bold).Fprintf(c.out, "✗ %s\n", msg)
}

// Rule prints a section header spanning the console width.
func (c *Console) Rule(title string) {
	line := strings.Repeat("─", 3)
	rest := c.width - len(title) - 8
	if rest < 3 {
		rest = 3
	}
	color.New(color.FgBlue, color.Bold).Fprintf(c.out, "\n%s %s %s\n", line, title, strings.Repeat("─", rest))
}

// Progress shows a spinner with msg until the returned stop func is called.
func (c *Console) Progress(msg string) func() {
	if !c.spinner {
		fmt.Fprintf(c.out, "%s\n", msg)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(c.out))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}

// WaitForEnter blocks until a line is read from in, then clears the screen.
func (c *Console) WaitForEnter(in io.Reader) {
	fmt.Fprint(c.out, "Press Enter to continue to the next scenario...")
	_, _ = bufio.NewReader(in).ReadString('\n')
	fmt.Fprint(c.out, "\033[H\033[2J")
}

func (c *Console) renderMarkdown(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(c.width-4),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func numberLines(text string) string {
	lines := strings.Split(text, "\n")
	width := len(fmt.Sprint(len(lines)))
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%*d │ %s", width, i+1, line)
	}
	return b.String()
}
