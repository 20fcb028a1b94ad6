package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/javajack/xlflat"
	"github.com/mattn/go-isatty"
)

// newLogger returns a text logger without timestamps. Debug records are
// only emitted in verbose mode.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// isTerminal reports whether w is a terminal that can render colour.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func painter(w io.Writer, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if isTerminal(w) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func printError(w io.Writer, err error) {
	painter(w, color.FgRed, color.Bold).Fprint(w, "error: ")
	fmt.Fprintln(w, err)
}

func printStatus(w io.Writer, format string, args ...any) {
	painter(w, color.FgGreen).Fprintf(w, format+"\n", args...)
}

func printIssue(w io.Writer, is xlflat.ValidationIssue) {
	attr := color.FgRed
	if is.Severity == xlflat.SeverityWarning {
		attr = color.FgYellow
	}
	painter(w, attr).Fprintln(w, is.String())
}
