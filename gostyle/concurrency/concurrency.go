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

// Package concurrency holds the rules about goroutines, locks,
// channels and deferred work.
package concurrency

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/go-powers/goruleslib/severity"
	"github.com/jamesainslie/go-powers/rulesets"
	"github.com/jamesainslie/go-powers/srcmodel"
)

func Rules() []*rulesets.Rule {
	return []*rulesets.Rule{
		goroutineLifecycle(),
		mutexByValue(),
		waitGroupParamValue(),
		deferInLoop(),
		chanSize(),
		selectDefaultSpin(),
		goInInit(),
	}
}

func goroutineLifecycle() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "goroutine-lifecycle",
		Category: rulesets.CategoryConcurrency,
		Severity: severity.Error,
		Title:    "every goroutine needs a way to stop",
		Kinds:    []srcmodel.Kind{srcmodel.KindGo},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			if unit.Go.Lifecycle != srcmodel.LifecycleUnbounded {
				return nil
			}
			return []rulesets.Violation{{
				Message: "goroutine loops forever with no cancellation wait on some path; watch a context or done channel",
			}}
		},
	}
}

// syncFieldOwner finds the declared struct type carrying synchronization
// primitives by value, if the receiver or parameter type is declared in
// this file.
func syncFieldOwner(file *srcmodel.File, typeName string) *srcmodel.TypeInfo {
	base := strings.TrimPrefix(typeName, "*")
	for _, unit := range file.Units {
		if unit.Kind != srcmodel.KindType {
			continue
		}
		if unit.Type.Name == base && len(unit.Type.SyncFields) > 0 {
			return unit.Type
		}
	}
	return nil
}

func isValueLockType(typeName string) bool {
	return typeName == "sync.Mutex" || typeName == "sync.RWMutex"
}

func mutexByValue() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "mutex-by-value",
		Category: rulesets.CategoryConcurrency,
		Severity: severity.Error,
		Title:    "a copied lock guards nothing",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			fn := unit.Func
			var violations []rulesets.Violation
			if fn.Recv != nil && !fn.Recv.Pointer {
				if owner := syncFieldOwner(file, fn.Recv.Type); owner != nil {
					violations = append(violations, rulesets.Violation{
						Message: fmt.Sprintf("method %s copies %s and its %s field; use a pointer receiver", fn.Name, owner.Name, owner.SyncFields[0]),
					})
				}
			}
			for _, param := range fn.Params {
				if isValueLockType(param.Type) {
					violations = append(violations, rulesets.Violation{
						Message: fmt.Sprintf("%s receives a %s by value; the callee locks a copy", fn.Name, param.Type),
					})
					continue
				}
				if !strings.HasPrefix(param.Type, "*") {
					if owner := syncFieldOwner(file, param.Type); owner != nil {
						violations = append(violations, rulesets.Violation{
							Message: fmt.Sprintf("%s receives %s by value, copying its %s field; pass a pointer", fn.Name, owner.Name, owner.SyncFields[0]),
						})
					}
				}
			}
			return violations
		},
	}
}

func waitGroupParamValue() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "waitgroup-param-value",
		Category: rulesets.CategoryConcurrency,
		Severity: severity.Error,
		Title:    "WaitGroup copies count nothing",
		Kinds:    []srcmodel.Kind{srcmodel.KindFunc},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			for _, param := range unit.Func.Params {
				if param.Type != "sync.WaitGroup" {
					continue
				}
				return []rulesets.Violation{{
					Message: fmt.Sprintf("%s takes sync.WaitGroup by value, so Done acts on a copy; pass *sync.WaitGroup", unit.Func.Name),
				}}
			}
			return nil
		},
	}
}

func deferInLoop() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "defer-in-loop",
		Category: rulesets.CategoryConcurrency,
		Severity: severity.Warning,
		Title:    "defers accumulate until the function returns",
		Kinds:    []srcmodel.Kind{srcmodel.KindDefer},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			if !unit.Defer.InLoop {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("defer %s inside a loop runs only when the function returns, not per iteration", unit.Defer.Call),
			}}
		},
	}
}

func chanSize() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "chan-size",
		Category: rulesets.CategoryConcurrency,
		Severity: severity.Warning,
		Title:    "oversized buffers hide backpressure",
		Kinds:    []srcmodel.Kind{srcmodel.KindChanMake},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			ch := unit.Chan
			if !ch.SizeKnown || ch.Size <= limits.MaxChanBuffer {
				return nil
			}
			return []rulesets.Violation{{
				Message: fmt.Sprintf("channel buffer of %d delays blocking instead of handling load; size buffers deliberately", ch.Size),
			}}
		},
	}
}

func selectDefaultSpin() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "select-default-spin",
		Category: rulesets.CategoryConcurrency,
		Severity: severity.Info,
		Title:    "empty default turns select into a busy loop",
		Kinds:    []srcmodel.Kind{srcmodel.KindSelect},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			sel := unit.Select
			if !sel.InLoop || !sel.HasDefault || !sel.DefaultEmpty {
				return nil
			}
			return []rulesets.Violation{{
				Message: "select with an empty default inside a loop spins the CPU; drop the default or add backoff",
			}}
		},
	}
}

func goInInit() *rulesets.Rule {
	return &rulesets.Rule{
		Id:       "go-in-init",
		Category: rulesets.CategoryConcurrency,
		Severity: severity.Warning,
		Title:    "init is no place for background work",
		Kinds:    []srcmodel.Kind{srcmodel.KindGo},
		Match: func(unit *srcmodel.Unit, file *srcmodel.File, limits *rulesets.Limits) []rulesets.Violation {
			if !unit.Go.InInit {
				return nil
			}
			return []rulesets.Violation{{
				Message: "goroutine launched from init runs before main starts; start background work from an explicit entry point",
			}}
		},
	}
}
