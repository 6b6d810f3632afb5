package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

var colorPalette = []*color.Color{
	color.New(color.FgCyan),
	color.New(color.FgGreen),
	color.New(color.FgBlue),
	color.New(color.FgMagenta),
	color.New(color.FgWhite),
}

var levelColors = map[string]*color.Color{
	"ERROR": color.New(color.FgRed, color.Bold),
	"WARN":  color.New(color.FgYellow),
	"DEBUG": color.New(color.Faint),
}

// levelPattern matches the level of slog text (level=WARN) and JSON ("level":"WARN") lines.
var levelPattern = regexp.MustCompile(`"?level"?[=:]"?([A-Za-z]+)`)

// levelOf returns the upper-cased slog level of line, or "" when it has none.
func levelOf(line string) string {
	m := levelPattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// formatLine prefixes line with the service name in its color and colors
// warning and error lines by level.
func formatLine(service string, serviceColor *color.Color, line string) string {
	prefix := serviceColor.Sprintf("[%s]", service)
	if c, ok := levelColors[levelOf(line)]; ok {
		line = c.Sprint(line)
	}
	return fmt.Sprintf("%-25s %s", prefix, line)
}
