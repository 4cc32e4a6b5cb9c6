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

package runner

import (
	"errors"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"sync"
	"syscall"

	"github.com/golang/glog"
	"golang.org/x/text/message"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/goruleslib/basic"
	"github.com/jamesainslie/go-powers/goruleslib/i18n"
	"github.com/jamesainslie/go-powers/goruleslib/stats"
	"github.com/jamesainslie/go-powers/goruleslib/suppress"
)

// The task for Runner to run in parallels
type FileTask struct {
	Id      int
	Path    string
	Analyze func(path string) *FileOutcome
}

// FileOutcome is everything one file contributes to the run. A file
// that cannot be analyzed carries a Fault instead of findings.
type FileOutcome struct {
	Findings     *results.ResultsList
	Suppressions []*suppress.Suppression
	Fault        *results.ToolFault
}

// Collected is the merged outcome of all finished files. The order of
// findings follows collection and is not deterministic; callers sort
// before reporting.
type Collected struct {
	Findings     *results.ResultsList
	Suppressions []*suppress.Suppression
	Faults       []*results.ToolFault
}

type fileResult struct {
	id      int
	path    string
	outcome *FileOutcome
	err     error
}

// A goroutine workgroup to analyze files in parallel.
type ParaFileRunner struct {
	showProgress   bool
	resultsDir     string
	workerWg       sync.WaitGroup
	collectorWg    sync.WaitGroup
	jobs_chan      chan FileTask
	results_chan   chan fileResult
	sigs_exiting   chan bool
	collected      *Collected
	errors         []error
	processPrinter basic.AnalyzingProcessPrinter
}

func (pt *ParaFileRunner) worker(jobs <-chan FileTask, out chan<- fileResult, printer *message.Printer) {
	for j := range jobs {
		if pt.showProgress {
			pt.processPrinter.StartAnalyzeFile(j.Path)
		}
		func() {
			defer func() {
				// recover from possible panic
				if r := recover(); r != nil {
					glog.Error("Recovered in analyze: ", r, string(debug.Stack()))
					out <- fileResult{id: j.Id, path: j.Path, err: errors.New("panic while analyzing " + j.Path)}
					if pt.showProgress {
						pt.processPrinter.FinishAnalyzeFile(j.Path, printer)
					}
				}
			}()
			outcome := j.Analyze(j.Path)
			out <- fileResult{id: j.Id, path: j.Path, outcome: outcome}
			if pt.showProgress {
				pt.processPrinter.FinishAnalyzeFile(j.Path, printer)
				stats.WriteProgress(pt.resultsDir, stats.Analysis, pt.processPrinter.GetPercentString(), pt.processPrinter.GetStartedAt())
			}
		}()
	}
	pt.workerWg.Done()
}

// Create a new file runner and results collector.
func NewParaFileRunner(numWorkers int32, taskNums int, showProgress bool, lang string, resultsDir string) *ParaFileRunner {
	printer := i18n.GetPrinter(lang)
	if numWorkers == 0 {
		numWorkers = int32(runtime.NumCPU())
		if showProgress {
			basic.PrintfWithTimeStamp(printer.Sprintf("Use %d CPU(s)", numWorkers))
		}
	}
	paraRunner := &ParaFileRunner{
		showProgress: showProgress,
		resultsDir:   resultsDir,
		jobs_chan:    make(chan FileTask, numWorkers),
		results_chan: make(chan fileResult, numWorkers),
		sigs_exiting: make(chan bool, 1),
		collected: &Collected{
			Findings: &results.ResultsList{},
		},
		errors:         make([]error, taskNums),
		processPrinter: basic.NewAnalyzingProcessPrinter(taskNums),
	}
	for w := 0; w < int(numWorkers); w++ {
		paraRunner.workerWg.Add(1)
		go paraRunner.worker(paraRunner.jobs_chan, paraRunner.results_chan, printer)
	}

	sigs := make(chan os.Signal, 1)
	// if a signal is received, notify the loop to stop sending new workers
	signal.Notify(sigs, syscall.SIGINT)
	// collect results
	paraRunner.collectorWg.Add(1)
	go func() {
		for job_result := range paraRunner.results_chan {
			select {
			case <-sigs:
				// if received a SIGINT, stop collector and the file loop
				if paraRunner.showProgress {
					basic.PrintfWithTimeStamp("Ctrl C Pressed. Stop analysis")
				}
				// notify the task feeding loop to exit
				paraRunner.sigs_exiting <- true
				paraRunner.collectorWg.Done()
				return
			default:
			}
			if job_result.err == nil {
				outcome := job_result.outcome
				if outcome.Fault != nil {
					paraRunner.collected.Faults = append(paraRunner.collected.Faults, outcome.Fault)
				}
				if outcome.Findings != nil {
					paraRunner.collected.Findings.Results = append(paraRunner.collected.Findings.Results, outcome.Findings.Results...)
				}
				paraRunner.collected.Suppressions = append(paraRunner.collected.Suppressions, outcome.Suppressions...)
			} else {
				glog.Errorf("Analyze %v got error %v", job_result.path, job_result.err)
			}
			paraRunner.errors[job_result.id] = job_result.err
		}
		paraRunner.collectorWg.Done()
	}()
	return paraRunner
}

// Check for the SIGINT exiting signal.
// If the exiting signal was received, it returns what has been
// collected so far; finished files keep their findings. Collected
// will never be nil in that case.
// If the exiting signal was not received, it returns nil and nil.
func (pt *ParaFileRunner) CheckSignalExiting() (collected *Collected, errors []error) {
	select {
	// if received a SIGINT, stop the file feeding loop
	case <-pt.sigs_exiting:
		// close the jobs_chan to let workers end
		close(pt.jobs_chan)
		pt.collectorWg.Wait()
		// return directly because the collector has stopped.
		return pt.collected, pt.errors
	default:
		return nil, nil
	}
}

// Add a task to the runner and start analyzing the file.
func (pt *ParaFileRunner) AddTask(task FileTask) {
	pt.jobs_chan <- task
}

// Wait until all the workers and the collector are finished and all
// results are collected. Return the collected outcome and errors.
func (pt *ParaFileRunner) CollectResultsAndErrors() (collected *Collected, errors []error) {
	go func() {
		pt.workerWg.Wait()
		close(pt.results_chan)
	}()
	close(pt.jobs_chan)
	pt.collectorWg.Wait()
	return pt.collected, pt.errors
}
