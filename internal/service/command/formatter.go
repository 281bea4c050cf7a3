package command

import (
	"fmt"
	"strings"

	"github.com/sandevgo/ceramicsrag/internal/service/ui"
)

// ResponseFormatter renders command output for the terminal.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

func (f *ResponseFormatter) Info(title string) string {
	return ui.TitleStyle.Render(title)
}

func (f *ResponseFormatter) Success(message string) string {
	return ui.UsageStyle.Render("✓ " + message)
}

func (f *ResponseFormatter) Error(err error) string {
	return ui.ErrorStyle.Render("Error: " + err.Error())
}

func (f *ResponseFormatter) Label(label, value string) string {
	return fmt.Sprintf("%s  ›  %s", ui.DescStyle.Render(label), value)
}

func (f *ResponseFormatter) Usage(command string) string {
	return fmt.Sprintf("%s %s", ui.DescStyle.Render("Usage:"), ui.UsageStyle.Render(command))
}

func (f *ResponseFormatter) List(items []string) string {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("› " + item)
	}
	return sb.String()
}

func (f *ResponseFormatter) Tip(text string) string {
	return ui.DescStyle.Render("Tip: " + text)
}

func (f *ResponseFormatter) Combine(sections ...string) string {
	var parts []string
	for _, s := range sections {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
