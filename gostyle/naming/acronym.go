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

package naming

import (
	"fmt"

	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

// initialisms lists the spellings Go code keeps in a single case,
// ordered so scans are deterministic.
var initialisms = []struct {
	mixed string
	upper string
}{
	{"Api", "API"},
	{"Cpu", "CPU"},
	{"Db", "DB"},
	{"Html", "HTML"},
	{"Http", "HTTP"},
	{"Https", "HTTPS"},
	{"Id", "ID"},
	{"Json", "JSON"},
	{"Sql", "SQL"},
	{"Tcp", "TCP"},
	{"Tls", "TLS"},
	{"Udp", "UDP"},
	{"Uid", "UID"},
	{"Uri", "URI"},
	{"Url", "URL"},
	{"Uuid", "UUID"},
	{"Xml", "XML"},
}

// fixAcronym rewrites the first mixed-case initialism found at a camel
// word boundary, or reports that the name is clean.
func fixAcronym(name string) (string, bool) {
	for i := 0; i < len(name); i++ {
		best := -1
		for k, entry := range initialisms {
			n := len(entry.mixed)
			if i+n > len(name) || name[i:i+n] != entry.mixed {
				continue
			}
			// The word must end where the initialism does,
			// otherwise Id matches Identity.
			if i+n < len(name) && !upperAt(name, i+n) {
				continue
			}
			if best < 0 || n > len(initialisms[best].mixed) {
				best = k
			}
		}
		if best >= 0 {
			entry := initialisms[best]
			return name[:i] + entry.upper + name[i+len(entry.mixed):], true
		}
	}
	return "", false
}

func nameAcronymCase() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "name-acronym-case",
		Category: rulesets.CategoryNaming,
		Severity: severity.Info,
		Title:    "initialisms keep one case",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc, srcmodel.KindType, srcmodel.KindInterface, srcmodel.KindVar},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			names := []string{unit.Name}
			if unit.Kind == srcmodel.KindVar {
				names = unit.Var.Names
			}
			var violations []rulesets.Violation
			for _, name := range names {
				fixed, ok := fixAcronym(name)
				if !ok {
					continue
				}
				// a name can hold several initialisms, the suggestion
				// must fix them all
				for {
					next, more := fixAcronym(fixed)
					if !more {
						break
					}
					fixed = next
				}
				violations = append(violations, rulesets.Violation{
					Message: fmt.Sprintf("%s writes an initialism in mixed case; Go style is %s", name, fixed),
				})
			}
			return violations
		},
	}
}
