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

// Package catalog assembles every rule the analyzer ships into one
// registry.
package catalog

import (
	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/gostyle/concurrency"
	"github.com/jamesainslie/go-powers/gostyle/errhandling"
	"github.com/jamesainslie/go-powers/gostyle/ifacedesign"
	"github.com/jamesainslie/go-powers/gostyle/naming"
	"github.com/jamesainslie/go-powers/gostyle/organization"
	"github.com/jamesainslie/go-powers/gostyle/testhygiene"
	"github.com/jamesainslie/go-powers/rulesets"
)

// metaRules carry the ids the analyzer itself reports under. They
// match no units, so they pass through category filtering untouched.
func metaRules() []*rulesets.Rule {
	return []*rulesets.Rule{
		{
			Id:       rulesets.RuleMissingJustification,
			Category: rulesets.CategoryOrganization,
			Severity: severity.Error,
			Title:    "a suppression must say why",
		},
		{
			Id:       rulesets.RuleWildcardSuppression,
			Category: rulesets.CategoryOrganization,
			Severity: severity.Info,
			Title:    "wildcard suppressions stay visible",
		},
		{
			Id:       rulesets.RuleInternalPanic,
			Category: rulesets.CategoryOrganization,
			Severity: severity.Warning,
			Title:    "a rule crashed while matching",
		},
	}
}

// NewRegistry builds the full shipped rule set. A duplicate or
// malformed rule definition surfaces here rather than at match time.
func NewRegistry() (*rulesets.Registry, error) {
	registry := rulesets.NewRegistry()
	groups := [][]*rulesets.Rule{
		errhandling.Rules(),
		ifacedesign.Rules(),
		concurrency.Rules(),
		naming.Rules(),
		testhygiene.Rules(),
		organization.Rules(),
		metaRules(),
	}
	for _, rules := range groups {
		for _, rule := range rules {
			if err := registry.Register(rule); err != nil {
				return nil, err
			}
		}
	}
	return registry, nil
}
