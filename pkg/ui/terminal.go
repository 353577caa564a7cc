package ui

import (
	"fmt"
	"io"
	"os"
)

// Output is where the Print helpers write
var Output io.Writer = os.Stdout

// PrintError prints msg, and detail when given, in red
func PrintError(msg string, detail ...interface{}) {
	fmt.Fprintln(Output, errorStyle.Render(withDetail(msg, detail)))
}

// PrintWarning prints msg, and detail when given, in orange
func PrintWarning(msg string, detail ...interface{}) {
	fmt.Fprintln(Output, warningStyle.Render(withDetail(msg, detail)))
}

func PrintSuccess(msg string) {
	fmt.Fprintln(Output, successStyle.Render(msg))
}

// PrintInfo prints a label: value line
func PrintInfo(label, value string) {
	fmt.Fprintf(Output, "%s: %s\n", labelStyle.Render(label), valueStyle.Render(value))
}

func withDetail(msg string, detail []interface{}) string {
	if len(detail) == 0 || detail[0] == "" {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, detail[0])
}
