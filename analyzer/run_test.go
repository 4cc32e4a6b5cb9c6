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

package analyzer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/goruleslib/i18n"
	"github.com/jamesainslie/go-powers/goruleslib/options"
)

func writeRunTree(t *testing.T, files map[string]string) string {
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

func newRunOptions(srcDir, resultsDir string) *options.SharedOptions {
	defaults := options.Defaults
	defaults.SrcDir = srcDir
	defaults.ResultsDir = resultsDir
	defaults.ShowResults = false
	return &options.SharedOptions{
		AddLineHash:       &defaults.AddLineHash,
		BaselinePath:      &defaults.BaselinePath,
		CacheResults:      &defaults.CacheResults,
		CheckProgress:     &defaults.CheckProgress,
		ConfigPath:        &defaults.ConfigPath,
		DebugMode:         &defaults.DebugMode,
		IgnoreDirPatterns: defaults.IgnoreDirPatterns,
		Jobs:              &defaults.Jobs,
		Lang:              &defaults.Lang,
		ProjectName:       &defaults.ProjectName,
		ResultsDir:        &defaults.ResultsDir,
		ShowJsonResults:   &defaults.ShowJsonResults,
		ShowLineNumber:    &defaults.ShowLineNumber,
		ShowResults:       &defaults.ShowResults,
		ShowResultsCount:  &defaults.ShowResultsCount,
		SrcDir:            &defaults.SrcDir,
		WarningsAsErrors:  &defaults.WarningsAsErrors,
		Watch:             &defaults.Watch,
	}
}

func TestRunPipelineIdempotent(t *testing.T) {
	srcDir := writeRunTree(t, map[string]string{
		"mylib/do.go": `package mylib

import "fmt"

func Do(x int) error {
	err := work(x)
	if err != nil {
		return err
	}
	return nil
}

func Watch() {
	go func() {
		for {
			fmt.Println("tick")
		}
	}()
}
`,
		"clean/clean.go": "package clean\n",
		// a suppression left behind after its file shrank; the line it
		// names no longer exists in clean.go
		"policy.suppressions.yaml": "suppressions:\n" +
			"  - rule: err-wrap-missing\n" +
			"    path: clean/clean.go\n" +
			"    from_line: 500\n",
	})
	resultsDir := t.TempDir()
	sharedOptions := newRunOptions(srcDir, resultsDir)
	*sharedOptions.AddLineHash = true
	config := options.DefaultCheckConfig()
	printer := i18n.GetPrinter("en")

	firstStatus := Run(sharedOptions, config, printer)
	if firstStatus != results.ExitFindings {
		t.Fatalf("unexpected exit status. got: %d. expected: %d.", firstStatus, results.ExitFindings)
	}
	firstJson, err := os.ReadFile(filepath.Join(resultsDir, "results.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cached, err := os.ReadDir(filepath.Join(resultsDir, "cache"))
	if err != nil || len(cached) == 0 {
		t.Fatalf("expected cache entries after the first run. got: %d, %v.", len(cached), err)
	}

	secondStatus := Run(sharedOptions, config, printer)
	if secondStatus != firstStatus {
		t.Errorf("unexpected exit status on the second run. got: %d. expected: %d.", secondStatus, firstStatus)
	}
	secondJson, err := os.ReadFile(filepath.Join(resultsDir, "results.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(firstJson, secondJson) {
		t.Errorf("expected byte identical results.json across runs. first: %s. second: %s.",
			firstJson, secondJson)
	}

	doc := &results.Document{}
	if err := json.Unmarshal(secondJson, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Faults) != 0 {
		t.Fatalf("unexpected faults: %v", doc.Faults)
	}
	if len(doc.Findings) != 3 || doc.Summary.Total != 3 {
		for _, finding := range doc.Findings {
			t.Logf("finding: %s at %s:%d", finding.RuleId, finding.Path, finding.LineNumber)
		}
		t.Fatalf("unexpected finding count. got: %d. expected: 3.", len(doc.Findings))
	}
	if doc.Findings[0].RuleId != "suppress-missing-justification" || doc.Findings[0].Path != "clean/clean.go" {
		t.Errorf("unexpected first finding. got: %s at %s. expected: suppress-missing-justification at clean/clean.go.",
			doc.Findings[0].RuleId, doc.Findings[0].Path)
	}
	if doc.Findings[1].RuleId != "err-wrap-missing" || doc.Findings[1].LineNumber != 8 {
		t.Errorf("unexpected second finding. got: %s at line %d. expected: err-wrap-missing at line 8.",
			doc.Findings[1].RuleId, doc.Findings[1].LineNumber)
	}
	if doc.Findings[2].RuleId != "goroutine-lifecycle" || doc.Findings[2].LineNumber != 14 {
		t.Errorf("unexpected third finding. got: %s at line %d. expected: goroutine-lifecycle at line 14.",
			doc.Findings[2].RuleId, doc.Findings[2].LineNumber)
	}
	if doc.Findings[0].CodeLineHash != "" {
		t.Errorf("unexpected hash for a line beyond the file. got: %q.", doc.Findings[0].CodeLineHash)
	}
	if len(doc.Findings[1].CodeLineHash) != 16 || len(doc.Findings[2].CodeLineHash) != 16 {
		t.Errorf("expected line hashes on the in range findings. got: %q, %q.",
			doc.Findings[1].CodeLineHash, doc.Findings[2].CodeLineHash)
	}
}

func TestRunCleanTree(t *testing.T) {
	srcDir := writeRunTree(t, map[string]string{
		"lib/lib.go": `package lib

// Add returns the sum of a and b.
func Add(a, b int) int {
	return a + b
}
`,
	})
	resultsDir := t.TempDir()
	sharedOptions := newRunOptions(srcDir, resultsDir)
	config := options.DefaultCheckConfig()
	printer := i18n.GetPrinter("en")

	status := Run(sharedOptions, config, printer)
	if status != results.ExitClean {
		t.Fatalf("unexpected exit status. got: %d. expected: %d.", status, results.ExitClean)
	}
	content, err := os.ReadFile(filepath.Join(resultsDir, "results.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := &results.Document{}
	if err := json.Unmarshal(content, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Findings) != 0 || len(doc.Faults) != 0 {
		t.Errorf("unexpected report for a clean tree. findings: %d. faults: %d.",
			len(doc.Findings), len(doc.Faults))
	}
	if doc.Summary.FileCount != 1 || doc.Summary.Loc == 0 {
		t.Errorf("unexpected summary. files: %d. loc: %d.", doc.Summary.FileCount, doc.Summary.Loc)
	}
}
