// Package ui provides styled terminal output for the lightstack CLI commands.
//
// The interactive dashboard lives in package tui. This package is for the
// "run once and exit" commands: scan, show, validate, fmt and rows. They
// render through a Printer so output can be captured in tests.
//
// # Components
//
//   - Header: command banner with the command name and its parameters
//   - Result: success, failure and warning boxes with ordered details
//   - Table: aligned columns, measured in terminal cells
//   - Diff: line diff of a card file before and after a change
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	p.PrintHeader("Card rows", "lightstack rows add", ui.Detail{Key: "Card", Value: path})
//	if p.PrintDiff(before, after) {
//		p.PrintSuccess("Row added", ui.Detail{Key: "Entity", Value: "light.kitchen"})
//	}
//
// # Prompts
//
// Confirm asks a yes/no question. ReadToken reads an access token without
// echoing it when stdin is a terminal.
//
// # Logging Integration
//
// Logging is controlled via LIGHTSTACK_LOG_LEVEL. When unset, zap logging is
// silent so the output of this package is displayed cleanly.
package ui
