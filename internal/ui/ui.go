package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Shared styles for terminal output.
var (
	Self   = color.New(color.FgHiGreen, color.Bold)
	Peer   = color.New(color.FgCyan)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Bad    = color.New(color.FgRed)

	header = color.New(color.Bold)
)

var protocolStyles = map[string]*color.Color{
	"tcp":  color.New(color.FgBlue),
	"udp":  color.New(color.FgMagenta),
	"quic": color.New(color.FgHiMagenta),
	"ws":   color.New(color.FgCyan),
	"wss":  color.New(color.FgHiCyan),
	"p2p":  color.New(color.FgGreen),
	"http": color.New(color.FgYellow),
}

// ProtocolStyle returns the display style for a canonical protocol class.
// Unknown classes fall back to the subtle style.
func ProtocolStyle(class string) *color.Color {
	if c, ok := protocolStyles[class]; ok {
		return c
	}
	return Subtle
}

// Table prints rows under a bold header with columns sized to their widest
// cell.
func Table(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		header.Fprintf(w, "%-*s", widths[i]+2, h)
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(w, "%-*s", widths[i]+2, cell)
			}
		}
		fmt.Fprintln(w)
	}
}
