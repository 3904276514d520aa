// Package colors holds the terminal color helpers shared by the CLI
// and the request-log middleware
package colors

import "github.com/fatih/color"

var (
	Green  = color.New(color.FgGreen).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
)
