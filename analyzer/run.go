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

// Package analyzer runs one analysis pass over a source tree: list the
// files, match every rule against every file in parallel, resolve
// suppressions and write the result artifacts.
package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"
	"github.com/golang/glog"
	"golang.org/x/text/message"

	"github.com/jamesainslie/go-powers/analyzer/analyzerinterface"
	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/goruleslib/baseline"
	"github.com/jamesainslie/go-powers/goruleslib/basic"
	"github.com/jamesainslie/go-powers/goruleslib/cache"
	"github.com/jamesainslie/go-powers/goruleslib/filter"
	"github.com/jamesainslie/go-powers/goruleslib/options"
	"github.com/jamesainslie/go-powers/goruleslib/runner"
	"github.com/jamesainslie/go-powers/goruleslib/stats"
	"github.com/jamesainslie/go-powers/goruleslib/suppress"
	"github.com/jamesainslie/go-powers/gostyle/catalog"
	"github.com/jamesainslie/go-powers/matcher"
	"github.com/jamesainslie/go-powers/srcmodel"
)

// Run performs one full pass and returns the process exit status:
// 0 for a clean tree, 1 for blocking findings, 2 for a tool fault.
func Run(sharedOptions *options.SharedOptions, config *options.CheckConfig, printer *message.Printer) int {
	start := time.Now()
	srcDir := sharedOptions.GetSrcDir()
	resultsDir := sharedOptions.GetResultsDir()

	registry, err := catalog.NewRegistry()
	if err != nil {
		glog.Errorf("catalog.NewRegistry: %v", err)
		return results.ExitFault
	}
	enabledRules, err := registry.Enabled(config.Categories, config.DisabledRules)
	if err != nil {
		glog.Errorf("invalid check configuration: %v", err)
		return results.ExitFault
	}
	engine := matcher.NewEngine(enabledRules, config.Limits)

	if sharedOptions.GetCheckProgress() {
		basic.PrintfWithTimeStamp(printer.Sprintf("Start collecting Go source files"))
		stats.WriteProgress(resultsDir, stats.Listing, "0%", start)
	}
	paths, err := analyzerinterface.CollectPaths(srcDir, sharedOptions.GetIgnoreDirPatterns())
	if err != nil {
		glog.Errorf("analyzerinterface.CollectPaths: %v", err)
		return results.ExitFault
	}
	if sharedOptions.GetCheckProgress() {
		basic.PrintfWithTimeStamp(printer.Sprintf("Found %d Go files to analyze", len(paths)))
	}

	linesCount, err := analyzerinterface.CountGoLines(srcDir, sharedOptions.GetIgnoreDirPatterns())
	if err != nil {
		glog.Errorf("analyzerinterface.CountGoLines: %v", err)
	} else {
		stats.WriteLOC(resultsDir, linesCount)
	}

	var resultsCache *cache.Cache
	if sharedOptions.GetCacheResults() {
		resultsCache, err = cache.New(resultsDir, cache.RuleDigest(enabledRules, config.Limits))
		if err != nil {
			// analysis works without the cache, it is just slower
			glog.Errorf("cache.New: %v", err)
			resultsCache = nil
		}
	}

	collected, errors, interrupted := analyzeFiles(sharedOptions, printer, engine, resultsCache, srcDir, paths)
	if interrupted {
		glog.Warning("analysis interrupted, reporting the files finished so far")
	}

	allFaults := collected.Faults
	for id, err := range errors {
		if err != nil {
			allFaults = append(allFaults, &results.ToolFault{Path: paths[id], Message: err.Error()})
		}
	}

	if sharedOptions.GetCheckProgress() {
		stats.WriteProgress(resultsDir, stats.Reports, "0%", time.Now())
	}

	// duplicates must collapse before suppression accounting and the
	// per rule report caps, or they would consume both twice
	set := results.NewResultsSetFromList(collected.Findings)
	allResults := &set.ResultsList

	allResults = analyzerinterface.ProcessIgnoreDir(allResults, &sharedOptions.IgnoreDirPatterns)
	if len(config.GeneratedSuffixes) > 0 {
		allResults = filter.DeleteResultsWithCertainSuffixs(allResults, config.GeneratedSuffixes)
	} else {
		allResults = filter.DeleteGeneratedResults(allResults)
	}

	sideSuppressions, err := suppress.LoadDir(srcDir)
	if err != nil {
		glog.Errorf("suppress.LoadDir: %v", err)
		allFaults = append(allFaults, &results.ToolFault{Message: err.Error()})
	}
	resolver := suppress.NewResolver(registry, append(collected.Suppressions, sideSuppressions...))
	allResults = resolver.Filter(allResults)
	allResults.Results = append(allResults.Results, resolver.PolicyFindings()...)

	// the single sort of the pipeline; everything after here must keep
	// the order so the artifacts come out byte identical between runs
	results.Sort(allResults)
	allResults = filter.DeleteExceedResults(allResults, config.MaxReportsPerRule, config.RuleMaxReports)

	baselineEnabled := sharedOptions.GetBaselinePath() != ""
	if sharedOptions.GetAddLineHash() || baselineEnabled {
		// the baseline matches moved findings by line hash, so hashes
		// are needed even when add_line_hash is off
		analyzerinterface.AddCodeLineHash(allResults, srcDir)
	}
	if baselineEnabled {
		allResults = baseline.RemoveBaselineResults(allResults, sharedOptions.GetBaselinePath(), resultsDir)
	}

	analyzerinterface.AddID(allResults)

	resultsPath := filepath.Join(resultsDir, "results.gp_results")
	err = analyzerinterface.WriteResults(allResults, resultsPath)
	if err != nil {
		glog.Errorf("analyzerinterface.WriteResults: %v", err)
		allFaults = append(allFaults, &results.ToolFault{Message: fmt.Sprintf("cannot write %s: %v", resultsPath, err)})
	}
	if sharedOptions.GetShowJsonResults() {
		doc := results.NewDocument(allResults, allFaults, len(paths), linesCount)
		resultsJsonPath := filepath.Join(resultsDir, "results.json")
		err = analyzerinterface.WriteJsonResults(doc, resultsJsonPath)
		if err != nil {
			glog.Errorf("analyzerinterface.WriteJsonResults: %v", err)
			allFaults = append(allFaults, &results.ToolFault{Message: fmt.Sprintf("cannot write %s: %v", resultsJsonPath, err)})
		}
	}

	stats.CountSeverityAndWrite(allResults, resultsDir)

	err = analyzerinterface.GenerateReport(allResults, srcDir, filepath.Join(resultsDir, "report.json"), sharedOptions.GetLang())
	if err != nil {
		glog.Errorf("failed to generate report: %v", err)
	}

	glog.Infof("All results have been written to %s (%d in total)", resultsPath, len(allResults.Results))
	if sharedOptions.GetCheckProgress() {
		basic.PrintfWithTimeStamp(printer.Sprintf("Results have been written to %s", resultsDir))
	}
	if sharedOptions.GetShowResults() {
		analyzerinterface.PrintResults(allResults, sharedOptions.GetShowLineNumber(), sharedOptions.GetShowResultsCount())
	}
	count := results.CountSeverities(allResults)
	fmt.Println(printer.Sprintf("%d findings, %d errors, %d warnings", len(allResults.Results), count.Errors, count.Warnings))

	if sharedOptions.GetCheckProgress() {
		stats.WriteProgress(resultsDir, stats.End, "100%", start)
	}

	warningsAsErrors := sharedOptions.GetWarningsAsErrors() || config.WarningsAsErrors
	return results.ExitStatus(allResults, allFaults, warningsAsErrors)
}

// analyzeFiles feeds every file through the parallel runner. A SIGINT
// stops feeding and returns what finished so far.
func analyzeFiles(
	sharedOptions *options.SharedOptions,
	printer *message.Printer,
	engine *matcher.Engine,
	resultsCache *cache.Cache,
	srcDir string,
	paths []string,
) (*runner.Collected, []error, bool) {
	analysisStart := time.Now()
	if sharedOptions.GetCheckProgress() {
		basic.PrintfWithTimeStamp(printer.Sprintf("Start analyzing Go files"))
		stats.WriteProgress(sharedOptions.GetResultsDir(), stats.Analysis, "0%", analysisStart)
	}

	numWorkers := int32(0)
	if jobs := sharedOptions.GetJobs(); jobs > 0 {
		converted, err := safecast.Conv[int32](jobs)
		if err != nil {
			glog.Errorf("invalid jobs value %d: %v", jobs, err)
		} else {
			numWorkers = converted
		}
	}

	analyze := func(path string) *runner.FileOutcome {
		return analyzeOneFile(engine, resultsCache, srcDir, path)
	}

	paraRunner := runner.NewParaFileRunner(
		numWorkers, len(paths), sharedOptions.GetCheckProgress(),
		sharedOptions.GetLang(), sharedOptions.GetResultsDir())
	var collected *runner.Collected
	var errors []error
	interrupted := false
	for id, path := range paths {
		collected, errors = paraRunner.CheckSignalExiting()
		if collected != nil {
			interrupted = true
			break
		}
		paraRunner.AddTask(runner.FileTask{Id: id, Path: path, Analyze: analyze})
	}
	if !interrupted {
		collected, errors = paraRunner.CollectResultsAndErrors()
	}

	if sharedOptions.GetCheckProgress() {
		timeUsed := basic.FormatTimeDuration(time.Since(analysisStart))
		basic.PrintfWithTimeStamp(printer.Sprintf("Analyzing Go files completed [%s]", timeUsed))
	}
	return collected, errors, interrupted
}

// analyzeOneFile reads, extracts and matches a single file. A file the
// tool cannot read or parse becomes a fault, not a finding. Outcomes
// are cached keyed by content, so an unchanged file costs one read.
func analyzeOneFile(engine *matcher.Engine, resultsCache *cache.Cache, srcDir, path string) *runner.FileOutcome {
	fullPath := filepath.Join(srcDir, filepath.FromSlash(path))
	src, err := os.ReadFile(fullPath)
	if err != nil {
		return &runner.FileOutcome{
			Fault: &results.ToolFault{Path: path, Message: fmt.Sprintf("cannot read file: %v", err)},
		}
	}
	if resultsCache != nil {
		if entry, hit := resultsCache.Load(path, src); hit {
			return &runner.FileOutcome{
				Findings:     &results.ResultsList{Results: entry.Findings},
				Suppressions: entry.Suppressions,
				Fault:        entry.Fault,
			}
		}
	}

	outcome := &runner.FileOutcome{}
	file, err := srcmodel.Extract(path, src)
	if err != nil {
		outcome.Fault = &results.ToolFault{Path: path, Message: err.Error()}
	} else {
		outcome.Findings = engine.Run(file)
		outcome.Suppressions = suppress.ParseComments(file)
	}

	if resultsCache != nil {
		entry := &cache.Entry{Suppressions: outcome.Suppressions, Fault: outcome.Fault}
		if outcome.Findings != nil {
			entry.Findings = outcome.Findings.Results
		}
		resultsCache.Store(path, src, entry)
	}
	return outcome
}
