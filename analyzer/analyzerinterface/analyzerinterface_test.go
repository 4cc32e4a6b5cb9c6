/*
GoPowers - A rule-based style analyzer for Go source code
Copyright (C) 2026  James Ainslie

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package analyzerinterface

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/goruleslib/severity"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return dir
}

func TestCollectPaths(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.go":            "package a\n",
		"pkg/b.go":        "package pkg\n",
		"pkg/b_test.go":   "package pkg\n",
		"pkg/_ignored.go": "package pkg\n",
		"pkg/doc.md":      "docs\n",
		"vendor/v.go":     "package v\n",
		"testdata/bad.go": "package bad\n",
		".hidden/h.go":    "package h\n",
		"_tools/gen.go":   "package tools\n",
	})
	got, err := CollectPaths(dir, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"a.go", "pkg/b.go", "pkg/b_test.go"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("unexpected result for collect. got: %v. expected: %v.", got, expected)
	}

	got, err = CollectPaths(dir, []string{"pkg/**"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected = []string{"a.go"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("unexpected result for ignored collect. got: %v. expected: %v.", got, expected)
	}
}

func TestMatchIgnoreDirPatterns(t *testing.T) {
	tests := []struct {
		patterns []string
		filePath string
		expected bool
	}{
		{[]string{"generated/**"}, "generated/x/y.go", true},
		{[]string{"generated/**"}, "src/a.go", false},
		{[]string{"**/*_mock.go"}, "internal/store/db_mock.go", true},
		{nil, "src/a.go", false},
	}
	for _, tt := range tests {
		got, err := MatchIgnoreDirPatterns(tt.patterns, tt.filePath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.expected {
			t.Errorf("unexpected result for %v. got: %v. expected: %v.", tt.filePath, got, tt.expected)
		}
	}
	if _, err := MatchIgnoreDirPatterns([]string{"["}, "src/a.go"); err == nil {
		t.Errorf("expected an error for a malformed pattern")
	}
}

func TestProcessIgnoreDir(t *testing.T) {
	allResults := &results.ResultsList{Results: []*results.Result{
		{Path: "gen/api.go", RuleId: "err-ignored"},
		{Path: "store/tx.go", RuleId: "err-ignored"},
	}}
	patterns := ArrayFlags{"gen/**"}
	filtered := ProcessIgnoreDir(allResults, &patterns)
	if len(filtered.Results) != 1 || filtered.Results[0].Path != "store/tx.go" {
		t.Errorf("unexpected result for ignore dir. got: %v.", filtered.Results)
	}
}

func TestAddIDDeterministic(t *testing.T) {
	build := func() *results.ResultsList {
		return &results.ResultsList{Results: []*results.Result{
			{Path: "a.go", LineNumber: 3, Column: 2, RuleId: "err-ignored", ErrorMessage: "m1"},
			{Path: "a.go", LineNumber: 3, Column: 2, RuleId: "err-ignored", ErrorMessage: "m2"},
		}}
	}
	first := build()
	second := build()
	AddID(first)
	AddID(second)
	for i := range first.Results {
		if first.Results[i].Id == "" {
			t.Fatalf("expected an id on result %d", i)
		}
		if first.Results[i].Id != second.Results[i].Id {
			t.Errorf("unexpected id for rerun. got: %v. expected: %v.",
				second.Results[i].Id, first.Results[i].Id)
		}
	}
	if first.Results[0].Id == first.Results[1].Id {
		t.Errorf("expected distinct findings to get distinct ids")
	}
}

func TestAddCodeLineHash(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.go": "package a\nvar x = 1\n",
		"b.go": "package b\n\n  var x = 1\nvar y = 2\n",
	})
	allResults := &results.ResultsList{Results: []*results.Result{
		{Path: "a.go", LineNumber: 1, RuleId: "r1"},
		{Path: "a.go", LineNumber: 2, RuleId: "r1"},
		{Path: "a.go", LineNumber: 2, RuleId: "r2"},
		{Path: "b.go", LineNumber: 3, RuleId: "r1"},
		{Path: "b.go", LineNumber: 4, RuleId: "r1"},
	}}
	AddCodeLineHash(allResults, dir)
	for i, result := range allResults.Results {
		if len(result.CodeLineHash) != 16 {
			t.Fatalf("unexpected hash on result %d. got: %q.", i, result.CodeLineHash)
		}
	}
	if allResults.Results[1].CodeLineHash != allResults.Results[2].CodeLineHash {
		t.Errorf("expected both findings on one line to share a hash")
	}
	if allResults.Results[1].CodeLineHash != allResults.Results[3].CodeLineHash {
		t.Errorf("expected the same trimmed line in another file to share a hash")
	}
	if allResults.Results[0].CodeLineHash == allResults.Results[1].CodeLineHash {
		t.Errorf("expected different lines to get different hashes")
	}
	if allResults.Results[3].CodeLineHash == allResults.Results[4].CodeLineHash {
		t.Errorf("expected different lines to get different hashes across a file boundary")
	}
}

func TestAddCodeLineHashLineBeyondFile(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.go": "package a\nvar x = 1\n",
		"b.go": "package b\nvar y = 2\n",
	})
	// a stale suppression entry reports its finding at a line the file
	// no longer has; a.go carries no other finding to resync on
	allResults := &results.ResultsList{Results: []*results.Result{
		{Path: "a.go", LineNumber: 500, RuleId: "r1"},
		{Path: "b.go", LineNumber: 2, RuleId: "r1"},
		{Path: "b.go", LineNumber: 999, RuleId: "r1"},
	}}
	done := make(chan struct{})
	go func() {
		AddCodeLineHash(allResults, dir)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("AddCodeLineHash did not return for a finding beyond the end of the file")
	}
	if allResults.Results[0].CodeLineHash != "" {
		t.Errorf("unexpected hash for a line beyond the file. got: %q.", allResults.Results[0].CodeLineHash)
	}
	if len(allResults.Results[1].CodeLineHash) != 16 {
		t.Errorf("unexpected hash on the file after the skipped one. got: %q.", allResults.Results[1].CodeLineHash)
	}
	if allResults.Results[2].CodeLineHash != "" {
		t.Errorf("unexpected hash for a trailing line beyond the file. got: %q.", allResults.Results[2].CodeLineHash)
	}
}

func TestWriteAndReadResults(t *testing.T) {
	allResults := &results.ResultsList{Results: []*results.Result{
		{
			Path:         "store/tx.go",
			LineNumber:   12,
			Column:       2,
			RuleId:       "err-discarded",
			Category:     "error-handling",
			Severity:     severity.Error,
			ErrorMessage: "error return of tx.Commit is discarded",
		},
	}}
	path := filepath.Join(t.TempDir(), "results.gp_results")
	if err := WriteResults(allResults, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := ReadResults(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(loaded, allResults) {
		t.Errorf("unexpected result for roundtrip. got: %v. expected: %v.", loaded, allResults)
	}
}

func TestWriteJsonResults(t *testing.T) {
	list := &results.ResultsList{Results: []*results.Result{
		{Path: "a.go", LineNumber: 1, Column: 1, RuleId: "chan-unbounded",
			Category: "concurrency", Severity: severity.Warning,
			ErrorMessage: "buffer 4096 > limit 1024"},
	}}
	doc := results.NewDocument(list, nil, 1, 10)
	path := filepath.Join(t.TempDir(), "results.json")
	if err := WriteJsonResults(doc, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(data, []byte("buffer 4096 > limit 1024")) {
		t.Errorf("expected the message to survive unescaped. got: %s.", data)
	}
	if !bytes.Contains(data, []byte(`"severity": "warning"`)) {
		t.Errorf("expected indented severity text. got: %s.", data)
	}
}

func TestGenerateReport(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"store/tx.go": "package store\n\nfunc commit() {\n\t_ = run()\n}\n",
	})
	allResults := &results.ResultsList{Results: []*results.Result{
		{Path: "store/tx.go", LineNumber: 4, Column: 2, RuleId: "err-discarded",
			Category: "error-handling", Severity: severity.Error,
			ErrorMessage: "error return is discarded"},
		{Path: "store/tx.go", LineNumber: 3, Column: 1, RuleId: "func-too-long",
			Category: "organization", Severity: severity.Warning,
			ErrorMessage: "function commit is too long"},
	}}
	reportPath := filepath.Join(t.TempDir(), "report.json")
	if err := GenerateReport(allResults, dir, reportPath, "en"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report := readReport(t, data)
	if len(report.Rules) != 2 {
		t.Fatalf("unexpected rule count. got: %v. expected: %v.", len(report.Rules), 2)
	}
	if report.Rules[0].Ident != "error-handling/err-discarded" {
		t.Errorf("unexpected rule order. got: %v.", report.Rules[0].Ident)
	}
	if report.Rules[0].Severity != "error" {
		t.Errorf("unexpected severity label. got: %v.", report.Rules[0].Severity)
	}
	code := report.Rules[0].Violations[0].Code
	if !strings.Contains(code, "> 4| \t_ = run()") {
		t.Errorf("unexpected code excerpt. got: %q.", code)
	}
}

func readReport(t *testing.T, data []byte) *Report {
	t.Helper()
	report := &Report{}
	if err := json.Unmarshal(data, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return report
}

func TestCleanResultDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"results.gp_results", "report.json", "severity_stats.gp_metadata", "baseline.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "cache"), os.ModePerm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cache", "entry.gp_cache"), []byte("x"), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CleanResultDir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"severity_stats.gp_metadata", "baseline.json", "cache/entry.gp_cache"} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			t.Errorf("expected %s to survive the clean: %v", name, err)
		}
	}
	for _, name := range []string{"results.gp_results", "report.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed", name)
		}
	}
}

func TestCountGoLines(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.go":       "package a\n\nvar x = 1\n",
		"docs/b.md":  "notes\n",
		"gen/big.go": "package gen\n\nvar y = 1\nvar z = 2\n",
	})
	sum, err := CountGoLines(dir, []string{"gen/**"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 2 {
		t.Errorf("unexpected result for loc. got: %v. expected: %v.", sum, 2)
	}
}
