// Package notify writes operator-facing status lines to the console.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	fcolor "github.com/fatih/color"
)

// Message type constants. Each type determines colour and symbol.
const (
	// ErrorType is red with a ✗ symbol.
	ErrorType MessageType = iota
	// WarningType is yellow with a ⚠ symbol.
	WarningType
	// ActivityType is an unstyled progress line.
	ActivityType
	// SuccessType is green with a ✓ symbol.
	SuccessType
	// InfoType is blue, no symbol.
	InfoType
	// TitleType is bold, followed by its underline and a blank line.
	TitleType
)

// MessageType defines the type of notification message.
type MessageType int

// Message is a single status line (or block) shown to the operator.
type Message struct {
	Type    MessageType
	Content string
	Args    []any
	// Writer defaults to os.Stdout.
	Writer io.Writer
	// Underline is printed below TitleType content.
	Underline string
	// Verbatim leaves continuation lines of multi-line content unindented.
	Verbatim bool
}

type messageConfig struct {
	symbol string
	color  *fcolor.Color
}

func getMessageConfig(t MessageType) messageConfig {
	switch t {
	case ErrorType:
		return messageConfig{symbol: "✗ ", color: fcolor.New(fcolor.FgRed)}
	case WarningType:
		return messageConfig{symbol: "⚠ ", color: fcolor.New(fcolor.FgYellow)}
	case SuccessType:
		return messageConfig{symbol: "✓ ", color: fcolor.New(fcolor.FgGreen)}
	case InfoType:
		return messageConfig{color: fcolor.New(fcolor.FgBlue)}
	case TitleType:
		return messageConfig{color: fcolor.New(fcolor.Bold)}
	default:
		return messageConfig{color: fcolor.New(fcolor.Reset)}
	}
}

// WriteMessage formats and writes msg.
func WriteMessage(msg Message) {
	if msg.Writer == nil {
		msg.Writer = os.Stdout
	}
	content := msg.Content
	if len(msg.Args) > 0 {
		content = fmt.Sprintf(msg.Content, msg.Args...)
	}
	cfg := getMessageConfig(msg.Type)

	if msg.Type == TitleType {
		_, _ = cfg.color.Fprintf(msg.Writer, "%s\n%s\n\n", content, msg.Underline)
		return
	}

	if !msg.Verbatim {
		content = indentMultilineContent(content, cfg.symbol)
	}
	_, _ = cfg.color.Fprintf(msg.Writer, "%s%s\n", cfg.symbol, content)
}

// continuation lines line up under the first character after the symbol
func indentMultilineContent(content, symbol string) string {
	if symbol == "" || !strings.Contains(content, "\n") {
		return content
	}
	pad := strings.Repeat(" ", utf8.RuneCountInString(symbol))
	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// Errorf writes an error line.
func Errorf(w io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ErrorType, Content: format, Args: args, Writer: w})
}

// Warningf writes a warning line.
func Warningf(w io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: WarningType, Content: format, Args: args, Writer: w})
}

// Activityf writes a progress line preceded by a blank line.
func Activityf(w io.Writer, format string, args ...any) {
	Blank(w)
	WriteMessage(Message{Type: ActivityType, Content: format, Args: args, Writer: w})
}

// Successf writes a success line.
func Successf(w io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, Writer: w})
}

// Infof writes an informational line.
func Infof(w io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: InfoType, Content: format, Args: args, Writer: w})
}

// Titlef writes a title, the given underline and a blank line.
func Titlef(w io.Writer, underline, format string, args ...any) {
	WriteMessage(Message{Type: TitleType, Content: format, Args: args, Writer: w, Underline: underline})
}

// Blank writes an empty line.
func Blank(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	_, _ = fmt.Fprintln(w)
}

// Raw writes text verbatim, without styling or a trailing newline.
func Raw(w io.Writer, text string) {
	if w == nil {
		w = os.Stdout
	}
	_, _ = io.WriteString(w, text)
}
