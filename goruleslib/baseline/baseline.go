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

// Package baseline subtracts known findings from a run so that an old
// tree can adopt the analyzer gate without fixing everything first.
// Known findings are matched by rule, path and the hash of the
// violating line, which survives the line moving around in the file.
package baseline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/atomic"
)

type Result struct {
	RuleId       string `json:"rule_id"`
	Path         string `json:"path"`
	LineNumber   int32  `json:"line_number"`
	CodeLineHash string `json:"code_line_hash,omitempty"`
	ErrorMessage string `json:"error_message"`
}

type Baseline struct {
	Results []Result `json:"results"`
}

func CreateBaselineFile(allResults *results.ResultsList, baselinePath string) error {
	var baseline Baseline
	baseline.Results = []Result{}
	for _, result := range allResults.Results {
		baseline.Results = append(baseline.Results, Result{
			RuleId:       result.RuleId,
			Path:         result.Path,
			LineNumber:   result.LineNumber,
			CodeLineHash: result.CodeLineHash,
			ErrorMessage: result.ErrorMessage,
		})
	}
	if err := atomic.WriteJSON(baselinePath, baseline); err != nil {
		return fmt.Errorf("cannot write %s: %v", baselinePath, err)
	}
	return nil
}

func GetBaseline(baselinePath string) (Baseline, error) {
	var baseline Baseline
	baselineFile, err := os.Open(baselinePath)
	if err != nil {
		return baseline, fmt.Errorf("cannot open %s: %v", baselinePath, err)
	}
	defer baselineFile.Close()
	baselineContent, err := io.ReadAll(baselineFile)
	if err != nil {
		return baseline, fmt.Errorf("cannot read %s: %v", baselinePath, err)
	}
	err = json.Unmarshal(baselineContent, &baseline)
	if err != nil {
		return baseline, fmt.Errorf("cannot parse %s: %v", baselinePath, err)
	}
	return baseline, nil
}

// isKnown reports whether the baseline already records this finding.
// When both sides carry a line hash the match ignores the line number,
// so findings survive unrelated edits above them. Without hashes the
// match falls back to the exact line and message.
func isKnown(result *results.Result, baseline *Baseline) bool {
	for _, old := range baseline.Results {
		if old.RuleId != result.RuleId || old.Path != result.Path {
			continue
		}
		if old.CodeLineHash != "" && result.CodeLineHash != "" {
			if old.CodeLineHash == result.CodeLineHash {
				return true
			}
			continue
		}
		if old.LineNumber == result.LineNumber && old.ErrorMessage == result.ErrorMessage {
			return true
		}
	}
	return false
}

// RemoveBaselineResults drops findings recorded in the baseline file.
// If the baseline file does not exist yet, the current findings are
// written to the results dir as a starting point and nothing is
// removed; promoting that file is a deliberate step for the user.
func RemoveBaselineResults(allResults *results.ResultsList, baselinePath, resultsDir string) *results.ResultsList {
	_, err := os.Stat(baselinePath)
	if err != nil {
		if os.IsNotExist(err) {
			created := filepath.Join(resultsDir, "baseline.json")
			if err := CreateBaselineFile(allResults, created); err != nil {
				glog.Errorf("%v", err)
			} else {
				glog.Infof("baseline %s does not exist; current findings written to %s", baselinePath, created)
			}
		} else {
			glog.Errorf("%v", err)
		}
		return allResults
	}

	baseline, err := GetBaseline(baselinePath)
	if err != nil {
		glog.Errorf("%v", err)
		return allResults
	}

	newResults := make([]*results.Result, 0)
	known := 0
	for _, currentResult := range allResults.Results {
		if isKnown(currentResult, &baseline) {
			known++
			continue
		}
		newResults = append(newResults, currentResult)
	}
	if known > 0 {
		glog.Infof("%d findings are filtered out by the baseline", known)
	}
	allResults.Results = newResults
	return allResults
}
