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

package analyzer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"golang.org/x/text/message"

	"github.com/jamesainslie/go-powers/goruleslib/basic"
	"github.com/jamesainslie/go-powers/goruleslib/options"
	"github.com/jamesainslie/go-powers/goruleslib/suppress"
)

const watchDebounce = 300 * time.Millisecond

// Watch runs one pass, then reruns the analysis whenever a Go source
// file or suppression side file under srcDir changes. Every pass is a
// full Run; the per file cache keeps unchanged files cheap. Watch only
// returns on a watcher setup failure, the process normally ends with
// an interrupt.
func Watch(sharedOptions *options.SharedOptions, config *options.CheckConfig, printer *message.Printer) error {
	return watchWithStop(sharedOptions, config, printer, nil)
}

func watchWithStop(sharedOptions *options.SharedOptions, config *options.CheckConfig, printer *message.Printer, stop <-chan struct{}) error {
	srcDir := sharedOptions.GetSrcDir()
	absResults, err := filepath.Abs(sharedOptions.GetResultsDir())
	if err != nil {
		absResults = sharedOptions.GetResultsDir()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %v", err)
	}
	defer watcher.Close()
	if err := addWatchRecursive(watcher, srcDir, absResults); err != nil {
		return fmt.Errorf("cannot watch %s: %v", srcDir, err)
	}

	basic.PrintfWithTimeStamp(printer.Sprintf("Watching %s for changes", srcDir))
	Run(sharedOptions, config, printer)

	trigger := func() {
		basic.PrintfWithTimeStamp(printer.Sprintf("Change detected, analyzing again"))
		Run(sharedOptions, config, printer)
	}

	var timer *time.Timer
	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !shouldRerun(watcher, ev, absResults) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			glog.Errorf("watcher error: %v", err)
		}
	}
}

// shouldRerun filters watcher noise: artifacts the run itself writes,
// editor temp files and anything the analysis would not read anyway.
// A newly created directory is added to the watch on the way.
func shouldRerun(watcher *fsnotify.Watcher, ev fsnotify.Event, absResults string) bool {
	absName, err := filepath.Abs(ev.Name)
	if err == nil && (absName == absResults ||
		strings.HasPrefix(absName, absResults+string(filepath.Separator))) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
		return false
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := watcher.Add(ev.Name); err != nil {
				glog.Warningf("cannot watch new directory %s: %v", ev.Name, err)
			}
			return true
		}
	}
	return strings.HasSuffix(base, ".go") || strings.HasSuffix(base, suppress.SideFileSuffix)
}

func addWatchRecursive(watcher *fsnotify.Watcher, srcDir, absResults string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != srcDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
			name == "vendor" || name == "testdata") {
			return filepath.SkipDir
		}
		if absPath, err := filepath.Abs(path); err == nil && absPath == absResults {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
