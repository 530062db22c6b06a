package errors

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"mercator-hq/saturn/pkg/brl/ast"
)

// ExtractContext reads the rule file and extracts the surrounding lines
// around the given location for error context display. The offending span
// is underlined with length carets (at least one).
func ExtractContext(location ast.Location, length, contextLines int) string {
	if !location.IsValid() {
		return ""
	}

	file, err := os.Open(location.File)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lines := make([]string, 0)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return ""
	}

	errorLine := location.Line - 1
	if errorLine >= len(lines) {
		return ""
	}
	startLine := max(errorLine-contextLines, 0)
	endLine := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		lineNumStr := fmt.Sprintf("%*d", maxLineNumWidth, i+1)
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}

		sb.WriteString(fmt.Sprintf("%s %s | %s\n", prefix, lineNumStr, lines[i]))

		if i == errorLine && location.Column > 0 {
			padding := strings.Repeat(" ", location.Column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s%s\n", strings.Repeat(" ", maxLineNumWidth), padding, strings.Repeat("^", max(length, 1))))
		}
	}

	return sb.String()
}

// WithContext fills in err.Context from the source file.
func WithContext(err *Error, contextLines int) *Error {
	if err.Location.IsValid() {
		err.Context = ExtractContext(err.Location, err.Length, contextLines)
	}
	return err
}

// AddContext enriches every error in the list with two lines of source context.
func (el *ErrorList) AddContext() {
	for _, err := range el.Errors {
		WithContext(err, 2)
	}
}
