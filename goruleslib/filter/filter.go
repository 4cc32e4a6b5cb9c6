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

/*
This package should not import the matcher or the rule catalog to
avoid recursive import.
*/
package filter

import (
	"strings"

	"github.com/golang/glog"

	"github.com/jamesainslie/go-powers/analyzer/results"
)

// kGeneratedSuffixs marks files that are written by code generators.
// Style findings in them cannot be acted on by hand.
var kGeneratedSuffixs = []string{".pb.go", ".pb.gw.go", "_string.go", ".gen.go"}

// DeleteExceedResults caps how many findings a single rule may report.
// perRuleMax overrides defaultMax for the listed rule ids. A limit of
// zero or less means unlimited.
func DeleteExceedResults(allResults *results.ResultsList, defaultMax int, perRuleMax map[string]int) *results.ResultsList {
	reported := make(map[string]int)
	rtnResults := make([]*results.Result, 0)
	dropped := make(map[string]int)
	for _, currentResult := range allResults.Results {
		max, exist := perRuleMax[currentResult.RuleId]
		if !exist {
			max = defaultMax
		}
		if max <= 0 {
			rtnResults = append(rtnResults, currentResult)
			continue
		}
		reported[currentResult.RuleId]++
		if reported[currentResult.RuleId] <= max {
			rtnResults = append(rtnResults, currentResult)
		} else {
			dropped[currentResult.RuleId]++
		}
	}
	for rule, count := range dropped {
		glog.Infof("%d findings of %s exceed the report limit and are dropped", count, rule)
	}
	allResults.Results = rtnResults
	return allResults
}

func DeleteResultsWithCertainSuffixs(allResults *results.ResultsList, suffixs []string) *results.ResultsList {
	rtnResults := make([]*results.Result, 0)
	for _, currentResult := range allResults.Results {
		deleted := false
		for _, suffix := range suffixs {
			if strings.HasSuffix(currentResult.Path, suffix) {
				deleted = true
				break
			}
		}
		if !deleted {
			rtnResults = append(rtnResults, currentResult)
		}
	}
	allResults.Results = rtnResults
	return allResults
}

func DeleteGeneratedResults(allResults *results.ResultsList) *results.ResultsList {
	return DeleteResultsWithCertainSuffixs(allResults, kGeneratedSuffixs)
}
