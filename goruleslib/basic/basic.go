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

// Package basic carries the small helpers shared by the runner and the
// command line entry point: timestamped console output, duration
// formatting and the analyzing progress printer.
package basic

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/message"
)

func PrintfWithTimeStamp(format string, arg ...any) {
	prefix := fmt.Sprintf("%v ", time.Now().Format("2006-01-02 15:04:05"))
	message := fmt.Sprintf(prefix+format, arg...)
	fmt.Println(message)
	glog.Info(message)
}

func GetPercentString(v1, v2 int) string {
	if v2 == 0 {
		return "100%"
	}
	percent := (int)((v1 * 100) / v2)
	return fmt.Sprintf("%d%%", percent)
}

func FormatTimeDuration(d time.Duration) string {
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	if ms == 0 {
		return fmt.Sprintf("%ds", s)
	}
	frac := strings.TrimRight(fmt.Sprintf("%03d", ms), "0")
	return fmt.Sprintf("%d.%ss", s, frac)
}

// AnalyzingProcessPrinter tracks how far the per-file analysis has
// come. Starting a file is bookkeeping only; one line is printed when
// the file finishes, so the console shows one line per file.
type AnalyzingProcessPrinter struct {
	mutex             sync.Mutex
	startedAt         time.Time
	timeElapsed       map[string]time.Time
	startedFileCount  int
	finishedFileCount int
	totalFileCount    int
}

func NewAnalyzingProcessPrinter(totalFileCount int) AnalyzingProcessPrinter {
	return AnalyzingProcessPrinter{
		totalFileCount: totalFileCount,
		timeElapsed:    make(map[string]time.Time),
		startedAt:      time.Now(),
	}
}

func (c *AnalyzingProcessPrinter) StartAnalyzeFile(path string) {
	c.mutex.Lock()
	c.startedFileCount++
	c.timeElapsed[path] = time.Now()
	c.mutex.Unlock()
}

func (c *AnalyzingProcessPrinter) FinishAnalyzeFile(path string, printer *message.Printer) {
	c.mutex.Lock()
	elapsed := time.Since(c.timeElapsed[path])
	delete(c.timeElapsed, path)
	c.finishedFileCount++
	percent := GetPercentString(c.finishedFileCount, c.totalFileCount)
	timeUsed := FormatTimeDuration(elapsed)
	PrintfWithTimeStamp(printer.Sprintf("Analyzed %s (%s, %v/%v) [%s]", path, percent, c.finishedFileCount, c.totalFileCount, timeUsed))
	c.mutex.Unlock()
}

func (c *AnalyzingProcessPrinter) GetPercentString() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return GetPercentString(c.finishedFileCount, c.totalFileCount)
}

func (c *AnalyzingProcessPrinter) GetStartedAt() time.Time {
	return c.startedAt
}
