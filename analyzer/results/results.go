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

// Package results holds the finding model shared by the matcher, the
// suppression resolver and the reporters.
package results

import (
	"golang.org/x/exp/slices"

	"github.com/jamesainslie/go-powers/goruleslib/severity"
)

// Result is one finding. Id and CodeLineHash are filled by dedicated
// passes right before reporting and stay empty during matching.
type Result struct {
	Path         string            `json:"path"`
	LineNumber   int32             `json:"line_number"`
	Column       int32             `json:"column"`
	RuleId       string            `json:"rule_id"`
	Category     string            `json:"category"`
	Severity     severity.Severity `json:"severity"`
	ErrorMessage string            `json:"error_message"`
	Id           string            `json:"id,omitempty"`
	CodeLineHash string            `json:"code_line_hash,omitempty"`
}

type ResultsList struct {
	Results []*Result `json:"results"`
}

// ToolFault records a file the tool itself could not handle, as
// opposed to a finding about the code. Any fault forces exit status 2.
type ToolFault struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

type resultBlood struct {
	path         string
	lineNumber   int32
	column       int32
	ruleId       string
	errorMessage string
}

// ResultsSet is an alternative to ResultsList. When Add() is called,
// it checks resultBlood to identify unique Results, so the same rule
// reporting the same message twice at one position collapses to a
// single finding. Distinct messages stay distinct even at the same
// position. It preserves Results' adding order.
type ResultsSet struct {
	// You can manipulate ResultsList beyond the limits.
	ResultsList
	stored map[resultBlood]struct{}
}

func NewResultsSet() *ResultsSet {
	set := ResultsSet{}
	set.stored = make(map[resultBlood]struct{})
	return &set
}

func NewResultsSetFromList(list *ResultsList) *ResultsSet {
	set := NewResultsSet()
	set.AddList(list)
	return set
}

func (rs *ResultsSet) Add(r *Result) {
	blood := resultBlood{
		path:         r.Path,
		lineNumber:   r.LineNumber,
		column:       r.Column,
		ruleId:       r.RuleId,
		errorMessage: r.ErrorMessage,
	}
	if _, reported := rs.stored[blood]; !reported {
		rs.stored[blood] = struct{}{}
		rs.Results = append(rs.Results, r)
	}
}

func (rs *ResultsSet) AddList(list *ResultsList) {
	for _, r := range list.Results {
		rs.Add(r)
	}
}

// Sort orders findings by (path, line, column, rule id, message). The
// message tiebreak matters: one rule can report several names declared
// at the same position. Reports and structured output rely on this
// order being applied exactly once, last, so unchanged input yields
// byte-identical output.
func Sort(list *ResultsList) {
	slices.SortStableFunc(list.Results, func(a, b *Result) bool {
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.LineNumber != b.LineNumber {
			return a.LineNumber < b.LineNumber
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.RuleId != b.RuleId {
			return a.RuleId < b.RuleId
		}
		return a.ErrorMessage < b.ErrorMessage
	})
}

type SeverityCount struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Unknown  int `json:"unknown"`
}

func CountSeverities(list *ResultsList) *SeverityCount {
	count := &SeverityCount{}
	for _, r := range list.Results {
		switch r.Severity {
		case severity.Error:
			count.Errors++
		case severity.Warning:
			count.Warnings++
		case severity.Info:
			count.Infos++
		default:
			count.Unknown++
		}
	}
	return count
}

const (
	ExitClean    = 0
	ExitFindings = 1
	ExitFault    = 2
)

// ExitStatus maps a finished run to the process exit code. A tool
// fault wins over findings: a run that could not analyze everything
// must not pass as a clean gate.
func ExitStatus(list *ResultsList, faults []*ToolFault, warningsAsErrors bool) int {
	if len(faults) > 0 {
		return ExitFault
	}
	for _, r := range list.Results {
		if r.Severity.Blocking(warningsAsErrors) {
			return ExitFindings
		}
	}
	return ExitClean
}

type FileCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

type Summary struct {
	FileCount int   `json:"file_count"`
	Loc       int64 `json:"loc"`
	Total     int   `json:"total"`
	SeverityCount
	Files []FileCount `json:"files"`
}

// Document is the machine-readable report. Field order and the sorted
// slices keep serialization stable across runs.
type Document struct {
	Findings []*Result    `json:"findings"`
	Faults   []*ToolFault `json:"faults"`
	Summary  *Summary     `json:"summary"`
}

func NewDocument(list *ResultsList, faults []*ToolFault, fileCount int, loc int64) *Document {
	perFile := map[string]int{}
	for _, r := range list.Results {
		perFile[r.Path]++
	}
	files := make([]FileCount, 0, len(perFile))
	for path, count := range perFile {
		files = append(files, FileCount{Path: path, Count: count})
	}
	slices.SortFunc(files, func(a, b FileCount) bool {
		return a.Path < b.Path
	})
	sortedFaults := make([]*ToolFault, len(faults))
	copy(sortedFaults, faults)
	slices.SortFunc(sortedFaults, func(a, b *ToolFault) bool {
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Message < b.Message
	})
	findings := list.Results
	if findings == nil {
		findings = []*Result{}
	}
	return &Document{
		Findings: findings,
		Faults:   sortedFaults,
		Summary: &Summary{
			FileCount:     fileCount,
			Loc:           loc,
			Total:         len(list.Results),
			SeverityCount: *CountSeverities(list),
			Files:         files,
		},
	}
}
