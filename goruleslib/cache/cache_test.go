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

package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/goruleslib/suppress"
	"github.com/jamesainslie/go-powers/rulesets"
)

func sampleEntry() *Entry {
	return &Entry{
		Findings: []*results.Result{
			{
				Path:         "store/tx.go",
				LineNumber:   12,
				Column:       2,
				RuleId:       "err-discarded",
				Category:     "error-handling",
				Severity:     severity.Error,
				ErrorMessage: "error return of tx.Commit is discarded",
			},
		},
		Suppressions: []*suppress.Suppression{
			{
				Rule:          "err-discarded",
				Path:          "store/tx.go",
				FromLine:      30,
				ToLine:        30,
				Justification: "rollback failure is logged by the caller",
			},
		},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c, err := New(t.TempDir(), "digest-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := []byte("package store\n")
	entry := sampleEntry()
	c.Store("store/tx.go", content, entry)
	loaded, hit := c.Load("store/tx.go", content)
	if !hit {
		t.Fatalf("expected a cache hit after Store")
	}
	if !reflect.DeepEqual(loaded, entry) {
		t.Errorf("unexpected result for load. got: %v. expected: %v.", loaded, entry)
	}
}

func TestCacheMissOnChange(t *testing.T) {
	c, err := New(t.TempDir(), "digest-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := []byte("package store\n")
	c.Store("store/tx.go", content, sampleEntry())
	if _, hit := c.Load("store/tx.go", []byte("package store\n\nvar x int\n")); hit {
		t.Errorf("expected a miss after the content changed")
	}
	if _, hit := c.Load("store/tx_copy.go", content); hit {
		t.Errorf("expected a miss for the same content under another path")
	}
}

func TestCacheMissOnRuleDigestChange(t *testing.T) {
	dir := t.TempDir()
	content := []byte("package store\n")
	c, err := New(dir, "digest-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Store("store/tx.go", content, sampleEntry())
	reopened, err := New(dir, "digest-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, hit := reopened.Load("store/tx.go", content); hit {
		t.Errorf("expected a miss after the rule digest changed")
	}
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	content := []byte("package store\n")
	c, err := New(dir, "digest-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Store("store/tx.go", content, sampleEntry())
	names, err := filepath.Glob(filepath.Join(dir, "cache", "*.gp_cache"))
	if err != nil || len(names) != 1 {
		t.Fatalf("unexpected cache entries %v: %v", names, err)
	}
	if err := os.WriteFile(names[0], []byte("not msgpack"), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, hit := c.Load("store/tx.go", content); hit {
		t.Errorf("expected a corrupt entry to read as a miss")
	}
}

func TestRuleDigest(t *testing.T) {
	rules := []*rulesets.Rule{
		{Id: "err-discarded", Category: rulesets.CategoryErrorHandling, Severity: severity.Error},
		{Id: "iface-too-big", Category: rulesets.CategoryInterfaceDesign, Severity: severity.Warning},
	}
	limits := rulesets.DefaultLimits()
	base := RuleDigest(rules, limits)
	if again := RuleDigest(rules, limits); again != base {
		t.Errorf("unexpected result for repeated digest. got: %v. expected: %v.", again, base)
	}
	demoted := []*rulesets.Rule{
		{Id: "err-discarded", Category: rulesets.CategoryErrorHandling, Severity: severity.Warning},
		rules[1],
	}
	if d := RuleDigest(demoted, limits); d == base {
		t.Errorf("expected the digest to change with a severity")
	}
	raised := rulesets.DefaultLimits()
	raised.MaxFuncLines = 200
	if d := RuleDigest(rules, raised); d == base {
		t.Errorf("expected the digest to change with a limit")
	}
	if d := RuleDigest(rules[:1], limits); d == base {
		t.Errorf("expected the digest to change with the rule set")
	}
}
