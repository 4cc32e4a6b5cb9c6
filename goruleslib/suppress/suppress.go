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

// Package suppress resolves justified exemptions against findings.
//
// A suppression comes from one of two places: an inline comment
// directive
//
//	// gopowers:ignore <rule-id|*>: <justification>
//
// which covers its own line and the line below it, or an entry in a
// side file
//
//	suppressions:
//	  - rule: err-wrap-missing
//	    path: internal/store/*.go
//	    from_line: 10
//	    to_line: 40
//	    justification: wrapped at the transport boundary
//
// A suppression only removes findings when its justification is
// non-empty. One without a justification removes nothing and is
// itself reported. Wildcard suppressions are reported even when
// justified, so broad exemptions stay visible. When several
// suppressions cover the same finding, any justified one among them
// is sufficient.
package suppress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
	"gopkg.in/yaml.v2"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

// DirectivePrefix introduces an inline suppression comment.
const DirectivePrefix = "gopowers:ignore"

// SideFileSuffix marks YAML suppression files picked up by LoadDir.
const SideFileSuffix = ".suppressions.yaml"

// Suppression is one exemption: a rule (or every rule), a path, a
// line range and the reason the exemption exists.
type Suppression struct {
	Rule          string
	Path          string
	FromLine      int32
	ToLine        int32
	Justification string
	Wildcard      bool
}

func (s *Suppression) label() string {
	if s.Wildcard {
		return "all rules"
	}
	return s.Rule
}

// Covers reports whether the finding falls inside this suppression's
// rule and position range. Justification is not considered here.
func (s *Suppression) Covers(result *results.Result) bool {
	if !s.Wildcard && s.Rule != result.RuleId {
		return false
	}
	if result.LineNumber < s.FromLine || result.LineNumber > s.ToLine {
		return false
	}
	return s.matchPath(result.Path)
}

func (s *Suppression) matchPath(path string) bool {
	if s.Path == path {
		return true
	}
	matched, err := doublestar.Match(filepath.ToSlash(s.Path), filepath.ToSlash(path))
	if err != nil {
		glog.Warningf("suppress.matchPath: bad pattern %q: %v", s.Path, err)
		return false
	}
	return matched
}

// ParseComments extracts inline directives from one decomposed file.
// A malformed directive is logged and skipped, never guessed at.
func ParseComments(file *srcmodel.File) []*Suppression {
	var sups []*Suppression
	for _, comment := range file.Comments {
		text, ok := directiveText(comment.Text)
		if !ok {
			continue
		}
		rule, justification, _ := strings.Cut(text, ":")
		rule = strings.TrimSpace(rule)
		if rule == "" || strings.ContainsAny(rule, " \t") {
			glog.Warningf("suppress.ParseComments: malformed directive at %s:%d: %q",
				file.Path, comment.Pos.Line, strings.TrimSpace(comment.Text))
			continue
		}
		if line, _, cut := strings.Cut(justification, "\n"); cut {
			justification = line
		}
		sups = append(sups, &Suppression{
			Rule:          rule,
			Path:          file.Path,
			FromLine:      comment.Pos.Line,
			ToLine:        comment.Pos.Line + 1,
			Justification: strings.TrimSpace(justification),
			Wildcard:      rule == "*",
		})
	}
	return sups
}

// directiveText strips the comment markers and returns what follows
// the directive prefix.
func directiveText(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "//") {
		text = strings.TrimPrefix(text, "//")
	} else if strings.HasPrefix(text, "/*") {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	}
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, DirectivePrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(text, DirectivePrefix)), true
}

type sideFile struct {
	Suppressions []sideEntry `yaml:"suppressions"`
}

type sideEntry struct {
	Rule          string `yaml:"rule"`
	Path          string `yaml:"path"`
	FromLine      int32  `yaml:"from_line"`
	ToLine        int32  `yaml:"to_line"`
	Justification string `yaml:"justification"`
}

// LoadFile reads one YAML suppression file. Unknown keys are errors,
// so a typoed justification field cannot silently allow a bare
// suppression.
func LoadFile(path string) ([]*Suppression, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suppression file: %v", err)
	}
	parsed := sideFile{}
	if err := yaml.UnmarshalStrict(content, &parsed); err != nil {
		return nil, fmt.Errorf("parse suppression file %s: %v", path, err)
	}
	sups := make([]*Suppression, 0, len(parsed.Suppressions))
	for i, entry := range parsed.Suppressions {
		if entry.Rule == "" {
			return nil, fmt.Errorf("suppression entry %d in %s has no rule", i, path)
		}
		if entry.Path == "" {
			return nil, fmt.Errorf("suppression entry %d in %s has no path", i, path)
		}
		if entry.FromLine < 1 {
			return nil, fmt.Errorf("suppression entry %d in %s has from_line %d", i, path, entry.FromLine)
		}
		toLine := entry.ToLine
		if toLine == 0 {
			toLine = entry.FromLine
		}
		if toLine < entry.FromLine {
			return nil, fmt.Errorf("suppression entry %d in %s ends before it starts", i, path)
		}
		sups = append(sups, &Suppression{
			Rule:          entry.Rule,
			Path:          entry.Path,
			FromLine:      entry.FromLine,
			ToLine:        toLine,
			Justification: strings.TrimSpace(entry.Justification),
			Wildcard:      entry.Rule == "*",
		})
	}
	return sups, nil
}

// LoadDir walks dir and loads every side file it finds, in path order.
func LoadDir(dir string) ([]*Suppression, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, SideFileSuffix) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	var sups []*Suppression
	for _, file := range files {
		loaded, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		sups = append(sups, loaded...)
	}
	return sups, nil
}

// Resolver applies a fixed set of suppressions to findings. The
// registry supplies the reserved rules the resolver reports under.
type Resolver struct {
	registry     *rulesets.Registry
	suppressions []*Suppression
}

func NewResolver(registry *rulesets.Registry, suppressions []*Suppression) *Resolver {
	return &Resolver{registry: registry, suppressions: suppressions}
}

// Filter removes every finding covered by a justified suppression.
// An unjustified suppression removes nothing.
func (r *Resolver) Filter(list *results.ResultsList) *results.ResultsList {
	countMap := make(map[string]int)
	kept := []*results.Result{}
	for _, result := range list.Results {
		if r.suppressed(result) {
			countMap[result.RuleId]++
			continue
		}
		kept = append(kept, result)
	}
	for ruleId, count := range countMap {
		glog.Infof("%d findings of %s are filtered out with suppression", count, ruleId)
	}
	list.Results = kept
	return list
}

func (r *Resolver) suppressed(result *results.Result) bool {
	for _, s := range r.suppressions {
		if s.Justification != "" && s.Covers(result) {
			return true
		}
	}
	return false
}

// PolicyFindings reports the suppressions themselves: every entry
// without a justification, and every wildcard whether justified or
// not. These findings are appended after Filter runs, so no
// suppression can hide them.
func (r *Resolver) PolicyFindings() []*results.Result {
	var policy []*results.Result
	for _, s := range r.suppressions {
		if s.Justification == "" {
			policy = append(policy, r.reserved(rulesets.RuleMissingJustification, s,
				fmt.Sprintf("suppression of %s has no justification and suppresses nothing; state why the finding does not apply", s.label())))
		}
		if s.Wildcard {
			policy = append(policy, r.reserved(rulesets.RuleWildcardSuppression, s,
				fmt.Sprintf("wildcard suppression hides every rule from line %d to %d; scope it to the rule it is meant for", s.FromLine, s.ToLine)))
		}
	}
	return policy
}

func (r *Resolver) reserved(id string, s *Suppression, message string) *results.Result {
	rule := r.registry.Get(id)
	if rule == nil {
		glog.Errorf("suppress.reserved: rule %s is not registered", id)
		return &results.Result{
			Path:         s.Path,
			LineNumber:   s.FromLine,
			Column:       1,
			RuleId:       id,
			ErrorMessage: message,
		}
	}
	return &results.Result{
		Path:         s.Path,
		LineNumber:   s.FromLine,
		Column:       1,
		RuleId:       rule.Id,
		Category:     string(rule.Category),
		Severity:     rule.Severity,
		ErrorMessage: message,
	}
}
