// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	labelColor   = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
)

type field struct {
	label string
	value string
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printFields(w io.Writer, fields ...field) {
	width := 0
	for _, f := range fields {
		if len(f.label) > width {
			width = len(f.label)
		}
	}
	for _, f := range fields {
		labelColor.Fprintf(w, "%-*s ", width+1, f.label+":")
		fmt.Fprintln(w, f.value)
	}
}

type txResult struct {
	Operation string `json:"operation"`
	Hash      string `json:"hash"`
}

// printTx reports a submitted transaction.
func printTx(w io.Writer, operation, hash string) error {
	if JSONFlag {
		return printJSON(w, txResult{Operation: operation, Hash: hash})
	}
	successColor.Fprintf(w, "✓ %s submitted\n", operation)
	printFields(w, field{"hash", hash})
	dimColor.Fprintln(w, "The transaction is pending; it settles once included in a ledger.")
	return nil
}

// FormatError renders err with its taxonomy kind for the terminal.
func FormatError(err error) string {
	kind := errors.KindOf(err)
	if kind == "" || kind == "Unknown" {
		return errorColor.Sprint("Error: ") + err.Error()
	}
	return errorColor.Sprintf("Error [%s]: ", kind) + err.Error()
}
