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

// Package rulesets defines the rule model and the registry the matcher
// engine evaluates. Rules are registered once at process start; the
// registry hands them out in a stable order so runs are reproducible.
package rulesets

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/srcmodel"
)

type Category string

const (
	CategoryErrorHandling   Category = "error-handling"
	CategoryInterfaceDesign Category = "interface-design"
	CategoryConcurrency     Category = "concurrency"
	CategoryNaming          Category = "naming"
	CategoryTesting         Category = "testing"
	CategoryOrganization    Category = "organization"
)

var categorySet = map[Category]bool{
	CategoryErrorHandling:   true,
	CategoryInterfaceDesign: true,
	CategoryConcurrency:     true,
	CategoryNaming:          true,
	CategoryTesting:         true,
	CategoryOrganization:    true,
}

// Categories returns every known category in sorted order.
func Categories() []Category {
	categories := make([]Category, 0, len(categorySet))
	for category := range categorySet {
		categories = append(categories, category)
	}
	slices.SortFunc(categories, func(a, b Category) bool {
		return a < b
	})
	return categories
}

// Reserved identifiers for findings the engine synthesizes itself.
// They carry no matcher and are exempt from category filtering.
const (
	RuleMissingJustification = "suppress-missing-justification"
	RuleWildcardSuppression  = "suppress-wildcard"
	RuleInternalPanic        = "internal-rule-panic"
)

// Limits holds the numeric and name thresholds matchers compare
// against. The zero value is unusable; start from DefaultLimits.
type Limits struct {
	MaxInterfaceMethods   int      `yaml:"max_interface_methods"`
	ErrorInterfaceMethods int      `yaml:"error_interface_methods"`
	MaxFuncLines          int      `yaml:"max_func_lines"`
	MaxFileLines          int      `yaml:"max_file_lines"`
	MaxNesting            int      `yaml:"max_nesting"`
	MaxChanBuffer         int64    `yaml:"max_chan_buffer"`
	GenericPackageNames   []string `yaml:"generic_package_names"`
}

func DefaultLimits() *Limits {
	return &Limits{
		MaxInterfaceMethods:   2,
		ErrorInterfaceMethods: 5,
		MaxFuncLines:          80,
		MaxFileLines:          1000,
		MaxNesting:            4,
		MaxChanBuffer:         1024,
		GenericPackageNames:   []string{"util", "common", "helpers", "misc", "utils", "shared", "base"},
	}
}

// Violation is one match a rule reports for a unit. A zero Severity
// keeps the rule's default, a non-zero one overrides it.
type Violation struct {
	Pos      srcmodel.Pos
	Message  string
	Severity severity.Severity
}

// MatchFunc is a pure predicate over one unit in the context of its
// file. It must not retain unit or file past the call.
type MatchFunc func(unit *srcmodel.Unit, file *srcmodel.File, limits *Limits) []Violation

type Rule struct {
	Id       string
	Category Category
	Severity severity.Severity
	Title    string
	Kinds    []srcmodel.Kind
	Match    MatchFunc
}

// Meta reports whether the rule is a reserved engine rule without a
// matcher of its own.
func (r *Rule) Meta() bool {
	return len(r.Kinds) == 0 && r.Match == nil
}

type DuplicateRuleError struct {
	Id string
}

func (e *DuplicateRuleError) Error() string {
	return fmt.Sprintf("rule %s is already registered", e.Id)
}

type Registry struct {
	rules map[string]*Rule
}

func NewRegistry() *Registry {
	return &Registry{rules: map[string]*Rule{}}
}

// Register validates and stores one rule. Registering an id twice
// fails with *DuplicateRuleError.
func (r *Registry) Register(rule *Rule) error {
	if rule.Id == "" {
		return fmt.Errorf("rule with empty id")
	}
	if !categorySet[rule.Category] {
		return fmt.Errorf("rule %s has unknown category %q", rule.Id, rule.Category)
	}
	if rule.Severity == severity.Unknown {
		return fmt.Errorf("rule %s has no severity", rule.Id)
	}
	if !rule.Meta() && (rule.Match == nil || len(rule.Kinds) == 0) {
		return fmt.Errorf("rule %s needs both unit kinds and a matcher", rule.Id)
	}
	if _, exists := r.rules[rule.Id]; exists {
		return &DuplicateRuleError{Id: rule.Id}
	}
	r.rules[rule.Id] = rule
	return nil
}

func (r *Registry) Get(id string) *Rule {
	return r.rules[id]
}

func (r *Registry) Len() int {
	return len(r.rules)
}

// All returns every registered rule ordered by category then id.
func (r *Registry) All() []*Rule {
	rules := make([]*Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sortRules(rules)
	return rules
}

// Enabled returns the rules selected by the configuration: every rule
// whose category is enabled (empty set means all) minus explicitly
// disabled ids. Reserved engine rules ignore the category filter and
// can only be dropped by id. Unknown names fail the call so a typo in
// a config file surfaces as a tool fault instead of silently relaxing
// the rule set.
func (r *Registry) Enabled(enabledCategories []string, disabledRules []string) ([]*Rule, error) {
	for _, name := range enabledCategories {
		if !categorySet[Category(name)] {
			return nil, fmt.Errorf("unknown category %q in configuration", name)
		}
	}
	for _, id := range disabledRules {
		if _, exists := r.rules[id]; !exists {
			return nil, fmt.Errorf("unknown rule %q in configuration", id)
		}
	}
	var rules []*Rule
	for _, rule := range r.rules {
		if slices.Contains(disabledRules, rule.Id) {
			continue
		}
		if !rule.Meta() && len(enabledCategories) > 0 &&
			!slices.Contains(enabledCategories, string(rule.Category)) {
			continue
		}
		rules = append(rules, rule)
	}
	sortRules(rules)
	return rules, nil
}

func sortRules(rules []*Rule) {
	slices.SortFunc(rules, func(a, b *Rule) bool {
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Id < b.Id
	})
}
