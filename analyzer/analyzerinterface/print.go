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
	"fmt"
	"sort"

	"github.com/fatih/color"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/goruleslib/severity"
)

var severityColors = map[severity.Severity]*color.Color{
	severity.Error:   color.New(color.FgRed, color.Bold),
	severity.Warning: color.New(color.FgYellow),
	severity.Info:    color.New(color.FgCyan),
}

func colorSeverity(s severity.Severity) string {
	c, ok := severityColors[s]
	if !ok {
		return s.String()
	}
	return c.Sprint(s.String())
}

// PrintResults writes findings to stdout in compiler style. The list
// must already be in its final order; printing does not sort.
func PrintResults(allResults *results.ResultsList, showLineNumber bool, printCounts bool) {
	resultCountMap := map[string]int{}

	for _, result := range allResults.Results {
		if showLineNumber {
			fmt.Printf("%s:%d:%d: [%s] %s: %s\n",
				result.Path, result.LineNumber, result.Column,
				colorSeverity(result.Severity), result.RuleId, result.ErrorMessage)
		} else {
			fmt.Printf("%s: [%s] %s: %s\n",
				result.Path,
				colorSeverity(result.Severity), result.RuleId, result.ErrorMessage)
		}
		resultCountMap[result.RuleId]++
	}
	if printCounts {
		// add a group by output to show how often each rule fired
		ruleIds := make([]string, 0, len(resultCountMap))
		for ruleId := range resultCountMap {
			ruleIds = append(ruleIds, ruleId)
		}
		sort.Strings(ruleIds)
		for _, ruleId := range ruleIds {
			fmt.Printf("count: %d rule: %s\n", resultCountMap[ruleId], ruleId)
		}
	}
}
