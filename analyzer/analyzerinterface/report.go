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
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/glog"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/atomic"
	"github.com/jamesainslie/go-powers/goruleslib/severity"
)

var severityLabels = map[severity.Severity]string{
	severity.Error:   "错误",
	severity.Warning: "警告",
	severity.Info:    "提示",
}

func severityName(s severity.Severity, lang string) string {
	if lang == "zh" {
		if label, exist := severityLabels[s]; exist {
			return label
		}
		return "未定义"
	}
	return s.String()
}

type Violation struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

type Rule struct {
	Ident      string      `json:"ident"`
	Subject    string      `json:"subject"`
	Severity   string      `json:"severity"`
	Violations []Violation `json:"violations"`
}

type Report struct {
	Rules []Rule `json:"rules"`
}

// GenerateReport writes the human oriented report: findings grouped
// by rule, each with an excerpt of the offending code. allResults must
// already be in its final order so the report is stable across runs.
func GenerateReport(allResults *results.ResultsList, srcDir, reportPath, lang string) error {
	ruleMap := make(map[string]Rule)
	ruleNameList := []string{}
	for _, result := range allResults.Results {
		fullRuleName := fmt.Sprintf("%s/%s", result.Category, result.RuleId)

		rule, exist := ruleMap[fullRuleName]
		if !exist {
			ruleNameList = append(ruleNameList, fullRuleName)
			rule = Rule{
				Ident:      fullRuleName,
				Subject:    result.ErrorMessage,
				Severity:   severityName(result.Severity, lang),
				Violations: make([]Violation, 0),
			}
		}

		code, err := getCode(filepath.Join(srcDir, filepath.FromSlash(result.Path)), result.LineNumber)
		if err != nil {
			glog.Errorf("getCode: %v", err)
			continue
		}
		rule.Violations = append(rule.Violations, Violation{
			Path:    result.Path,
			Code:    code,
			Details: result.ErrorMessage,
		})
		ruleMap[fullRuleName] = rule
	}
	sort.Strings(ruleNameList)
	rules := []Rule{}
	for _, ruleName := range ruleNameList {
		rule := ruleMap[ruleName]
		if len(rule.Violations) > 0 {
			rules = append(rules, rule)
		}
	}
	report := Report{Rules: rules}
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(&report)
	if err != nil {
		return fmt.Errorf("enc.Encode: %v", err)
	}
	return atomic.Write(reportPath, buf.Bytes())
}

// getCode returns the finding's source line with two lines of context
// on each side. The offending line is marked with a leading >.
func getCode(path string, lineNumber int32) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lower := lineNumber - 2
	upper := lineNumber + 2
	var lineCount int32 = 0
	var output string = ""
	for scanner.Scan() {
		lineCount++
		if lineCount < lower {
			continue
		} else if lineCount > upper {
			break
		}
		if lineCount == lineNumber {
			output = output + fmt.Sprintf("> %d| %s\n", lineCount, scanner.Text())
		} else {
			output = output + fmt.Sprintf("%d| %s\n", lineCount, scanner.Text())
		}
	}
	if err = scanner.Err(); err != nil {
		return "", err
	}
	return output, err
}
