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

package options

import (
	"flag"

	"github.com/jamesainslie/go-powers/analyzer/analyzerinterface"
)

type SharedOptions struct {
	AddLineHash       *bool
	BaselinePath      *string
	CacheResults      *bool
	CheckProgress     *bool
	ConfigPath        *string
	DebugMode         *bool
	IgnoreDirPatterns analyzerinterface.ArrayFlags
	Jobs              *int64
	Lang              *string
	ProjectName       *string
	ResultsDir        *string
	ShowJsonResults   *bool
	ShowLineNumber    *bool
	ShowResults       *bool
	ShowResultsCount  *bool
	SrcDir            *string
	WarningsAsErrors  *bool
	Watch             *bool
}

func (s SharedOptions) GetAddLineHash() bool {
	return *s.AddLineHash
}

func (s SharedOptions) GetBaselinePath() string {
	return *s.BaselinePath
}

func (s SharedOptions) GetCacheResults() bool {
	return *s.CacheResults
}

func (s SharedOptions) GetCheckProgress() bool {
	return *s.CheckProgress
}

func (s SharedOptions) GetConfigPath() string {
	return *s.ConfigPath
}

func (s SharedOptions) GetDebugMode() bool {
	return *s.DebugMode
}

func (s SharedOptions) GetIgnoreDirPatterns() analyzerinterface.ArrayFlags {
	return s.IgnoreDirPatterns
}

func (s SharedOptions) GetJobs() int64 {
	return *s.Jobs
}

func (s SharedOptions) GetLang() string {
	return *s.Lang
}

func (s SharedOptions) GetProjectName() string {
	return *s.ProjectName
}

func (s SharedOptions) GetResultsDir() string {
	return *s.ResultsDir
}

func (s SharedOptions) GetShowJsonResults() bool {
	return *s.ShowJsonResults
}

func (s SharedOptions) GetShowLineNumber() bool {
	return *s.ShowLineNumber
}

func (s SharedOptions) GetShowResults() bool {
	return *s.ShowResults
}

func (s SharedOptions) GetShowResultsCount() bool {
	return *s.ShowResultsCount
}

func (s SharedOptions) GetSrcDir() string {
	return *s.SrcDir
}

func (s SharedOptions) GetWarningsAsErrors() bool {
	return *s.WarningsAsErrors
}

func (s SharedOptions) GetWatch() bool {
	return *s.Watch
}

func (s SharedOptions) SetLang(lang string) {
	*s.Lang = lang
}

func (s SharedOptions) SetResultsDir(resultsDir string) {
	*s.ResultsDir = resultsDir
}

func (s SharedOptions) SetSrcDir(srcdir string) {
	*s.SrcDir = srcdir
}

type DefaultOptionValues struct {
	AddLineHash       bool
	BaselinePath      string
	CacheResults      bool
	CheckProgress     bool
	ConfigPath        string
	DebugMode         bool
	IgnoreDirPatterns analyzerinterface.ArrayFlags
	Jobs              int64
	Lang              string
	ProjectName       string
	ResultsDir        string
	ShowJsonResults   bool
	ShowLineNumber    bool
	ShowResults       bool
	ShowResultsCount  bool
	SrcDir            string
	WarningsAsErrors  bool
	Watch             bool
}

var Defaults = DefaultOptionValues{
	AddLineHash:       false,
	BaselinePath:      "",
	CacheResults:      true,
	CheckProgress:     false,
	ConfigPath:        "",
	DebugMode:         false,
	IgnoreDirPatterns: []string{},
	Jobs:              0,
	Lang:              "en",
	ProjectName:       "",
	ResultsDir:        ".gopowers",
	ShowJsonResults:   true,
	ShowLineNumber:    true,
	ShowResults:       true,
	ShowResultsCount:  false,
	SrcDir:            ".",
	WarningsAsErrors:  false,
	Watch:             false,
}

func NewSharedOptions() *SharedOptions {
	option := &SharedOptions{}

	option.AddLineHash = flag.Bool("add_line_hash", Defaults.AddLineHash, "Whether to add code line hash into results")
	option.BaselinePath = flag.String("baseline", Defaults.BaselinePath, "Path to a baseline file of known findings to subtract from the report")
	option.CacheResults = flag.Bool("cache_results", Defaults.CacheResults, "Reuse per-file results for files that did not change")
	option.CheckProgress = flag.Bool("check_progress", Defaults.CheckProgress, "Show the checking progress")
	option.ConfigPath = flag.String("config", Defaults.ConfigPath, "Path to the check configuration file in YAML format")
	option.DebugMode = flag.Bool("debug_mode", Defaults.DebugMode, "Whether to display error information")
	option.Jobs = flag.Int64("jobs", Defaults.Jobs, "Number of parallel analysis workers. 0 means one per CPU")
	option.Lang = flag.String("lang", Defaults.Lang, "Language of the console output. Support en and zh")
	option.ProjectName = flag.String("project_name", Defaults.ProjectName, "Name of the checked project.")
	option.ResultsDir = flag.String("results_dir", Defaults.ResultsDir, "Path to the directory of results files")
	option.ShowJsonResults = flag.Bool("json_results", Defaults.ShowJsonResults, "Whether to output results in JSON format")
	option.ShowLineNumber = flag.Bool("show_line_number", Defaults.ShowLineNumber, "Show line count information")
	option.ShowResults = flag.Bool("show_results", Defaults.ShowResults, "Show results after the analysis")
	option.ShowResultsCount = flag.Bool("show_results_count", Defaults.ShowResultsCount, "Show results count group by rules after the analysis")
	option.SrcDir = flag.String("src_dir", Defaults.SrcDir, "Path to the root of the source tree to analyze")
	option.WarningsAsErrors = flag.Bool("warnings_as_errors", Defaults.WarningsAsErrors, "Treat warning findings as blocking, like errors")
	option.Watch = flag.Bool("watch", Defaults.Watch, "Watch the source tree and analyze again on changes")

	flag.Var(&option.IgnoreDirPatterns, "ignore_dir", "Shell file name pattern to a directory that will be ignored")

	return option
}
