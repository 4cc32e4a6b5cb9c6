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

// Package cache stores per-file analysis outcomes keyed by the file
// path and content, so unchanged files skip matching on the next run.
// The cache is best effort: every failure is a miss, never an error.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/atomic"
	"github.com/jamesainslie/go-powers/goruleslib/suppress"
	"github.com/jamesainslie/go-powers/rulesets"
)

// schemaVersion is bumped whenever the payload layout changes, which
// turns every existing entry into a miss.
const schemaVersion uint16 = 1

// Entry is the cached outcome of analyzing one file.
type Entry struct {
	Findings     []*results.Result
	Suppressions []*suppress.Suppression
	Fault        *results.ToolFault
}

type payload struct {
	Schema       uint16                  `msgpack:"schema"`
	RuleDigest   string                  `msgpack:"rule_digest"`
	Findings     []*results.Result       `msgpack:"findings"`
	Suppressions []*suppress.Suppression `msgpack:"suppressions"`
	Fault        *results.ToolFault      `msgpack:"fault"`
}

type Cache struct {
	dir        string
	ruleDigest string
}

// New opens the cache directory under resultsDir. ruleDigest must
// change whenever the outcome of analyzing an unchanged file could
// change; see RuleDigest.
func New(resultsDir string, ruleDigest string) (*Cache, error) {
	dir := filepath.Join(resultsDir, "cache")
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %v", err)
	}
	return &Cache{dir: dir, ruleDigest: ruleDigest}, nil
}

// RuleDigest fingerprints the enabled rules and limits. Entries
// written under a different digest are misses, and a config change
// overwrites them in place instead of growing the cache.
func RuleDigest(rules []*rulesets.Rule, limits *rulesets.Limits) string {
	h := sha256.New()
	fmt.Fprintf(h, "schema %d\n", schemaVersion)
	fmt.Fprintf(h, "limits %d %d %d %d %d %d %q\n",
		limits.MaxInterfaceMethods,
		limits.ErrorInterfaceMethods,
		limits.MaxFuncLines,
		limits.MaxFileLines,
		limits.MaxNesting,
		limits.MaxChanBuffer,
		limits.GenericPackageNames)
	for _, rule := range rules {
		fmt.Fprintf(h, "%s %s %d\n", rule.Id, rule.Category, rule.Severity)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// The key covers the path as well as the content. Findings carry
// their path, so an identical file elsewhere must not replay them.
func (c *Cache) entryPath(path string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	return filepath.Join(c.dir, hex.EncodeToString(h.Sum(nil))+".gp_cache")
}

func (c *Cache) Load(path string, content []byte) (*Entry, bool) {
	data, err := os.ReadFile(c.entryPath(path, content))
	if err != nil {
		return nil, false
	}
	var p payload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		glog.Warningf("discarding cache entry for %s: %v", path, err)
		return nil, false
	}
	if p.Schema != schemaVersion || p.RuleDigest != c.ruleDigest {
		return nil, false
	}
	return &Entry{
		Findings:     p.Findings,
		Suppressions: p.Suppressions,
		Fault:        p.Fault,
	}, true
}

func (c *Cache) Store(path string, content []byte, entry *Entry) {
	data, err := msgpack.Marshal(&payload{
		Schema:       schemaVersion,
		RuleDigest:   c.ruleDigest,
		Findings:     entry.Findings,
		Suppressions: entry.Suppressions,
		Fault:        entry.Fault,
	})
	if err != nil {
		glog.Errorf("failed to encode cache entry for %s: %v", path, err)
		return
	}
	if err := atomic.Write(c.entryPath(path, content), data); err != nil {
		glog.Errorf("failed to write cache entry for %s: %v", path, err)
	}
}
