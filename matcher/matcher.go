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

// Package matcher evaluates rules against the units of one file.
// Rules declare which unit kinds they accept, so each unit only meets
// the rules that can match it.
package matcher

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

type Engine struct {
	buckets   map[srcmodel.Kind][]*rulesets.Rule
	limits    *rulesets.Limits
	panicRule *rulesets.Rule
}

// NewEngine indexes rules by the unit kinds they accept. The rule
// order within a bucket follows the order of the input slice, so
// passing Registry.Enabled output keeps evaluation deterministic.
func NewEngine(rules []*rulesets.Rule, limits *rulesets.Limits) *Engine {
	engine := &Engine{
		buckets: map[srcmodel.Kind][]*rulesets.Rule{},
		limits:  limits,
	}
	for _, rule := range rules {
		if rule.Id == rulesets.RuleInternalPanic {
			engine.panicRule = rule
			continue
		}
		for _, kind := range rule.Kinds {
			engine.buckets[kind] = append(engine.buckets[kind], rule)
		}
	}
	return engine
}

// Run evaluates every accepted rule against every unit of file. The
// returned list is in (unit, rule) evaluation order; the aggregator
// sorts and deduplicates later.
func (e *Engine) Run(file *srcmodel.File) *results.ResultsList {
	list := &results.ResultsList{}
	for _, unit := range file.Units {
		for _, rule := range e.buckets[unit.Kind] {
			e.eval(rule, unit, file, list)
		}
	}
	return list
}

// eval applies one rule to one unit. A panicking matcher must not take
// the run down: the panic becomes a finding scoped to this rule and
// unit, and evaluation continues.
func (e *Engine) eval(rule *rulesets.Rule, unit *srcmodel.Unit, file *srcmodel.File, list *results.ResultsList) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		glog.Errorf("matcher.eval: rule %s panicked at %s:%d:%d: %v",
			rule.Id, file.Path, unit.Pos.Line, unit.Pos.Col, r)
		if e.panicRule == nil {
			return
		}
		list.Results = append(list.Results, &results.Result{
			Path:         file.Path,
			LineNumber:   unit.Pos.Line,
			Column:       unit.Pos.Col,
			RuleId:       e.panicRule.Id,
			Category:     string(e.panicRule.Category),
			Severity:     e.panicRule.Severity,
			ErrorMessage: fmt.Sprintf("internal error in rule %s: %v", rule.Id, r),
		})
	}()
	for _, violation := range rule.Match(unit, file, e.limits) {
		sev := violation.Severity
		if sev == severity.Unknown {
			sev = rule.Severity
		}
		pos := violation.Pos
		if pos.Line == 0 {
			pos = unit.Pos
		}
		list.Results = append(list.Results, &results.Result{
			Path:         file.Path,
			LineNumber:   pos.Line,
			Column:       pos.Col,
			RuleId:       rule.Id,
			Category:     string(rule.Category),
			Severity:     sev,
			ErrorMessage: violation.Message,
		})
	}
}
