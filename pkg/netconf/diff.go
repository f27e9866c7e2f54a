// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package netconf

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff renders a unified diff between two config texts with three
// lines of context, in the usual ---/+++/@@ format. An empty string means
// the texts are identical.
func unifiedDiff(fromText, toText, fromLabel, toLabel string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(fromText),
		B:        difflib.SplitLines(toText),
		FromFile: fromLabel,
		ToFile:   toLabel,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return strings.TrimRight(text, "\n")
}
