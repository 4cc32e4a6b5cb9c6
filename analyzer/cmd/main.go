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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"

	"github.com/jamesainslie/go-powers/analyzer"
	"github.com/jamesainslie/go-powers/analyzer/analyzerinterface"
	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/goruleslib/basic"
	"github.com/jamesainslie/go-powers/goruleslib/i18n"
	"github.com/jamesainslie/go-powers/goruleslib/options"
)

// defaultConfigName is looked up in the source tree root when no
// -config flag is given.
const defaultConfigName = "gopowers.yaml"

func main() {
	sharedOptions := options.NewSharedOptions()
	flag.Parse()
	defer glog.Flush()

	// Do not call any logging functions of glog before this part.
	printer := i18n.GetPrinter(sharedOptions.GetLang())

	logDir := flag.Lookup("log_dir")
	if logDir.Value.String() == "" {
		err := flag.Set("log_dir", filepath.Join(sharedOptions.GetResultsDir(), "logs"))
		if err != nil {
			glog.Fatalf("failed to set default log_dir: %v", err)
		}
	}
	err := analyzerinterface.CreateLogDir(logDir.Value.String())
	if err != nil {
		glog.Fatalf("failed to create log dir: %v", err)
	}

	if !sharedOptions.GetDebugMode() {
		err := flag.Set("stderrthreshold", "FATAL")
		if err != nil {
			glog.Fatalf("failed to set default stderrthreshold: %v", err)
		}
	}

	fmt.Println("GoPowers (c) 2026 James Ainslie")

	glog.Info("jobs: ", sharedOptions.GetJobs())
	glog.Info("srcDir: ", sharedOptions.GetSrcDir())
	glog.Info("configPath: ", sharedOptions.GetConfigPath())

	err = analyzerinterface.CreateResultDir(sharedOptions.GetResultsDir())
	if err != nil {
		glog.Fatalf("failed to create result dir: %v", err)
	}

	config := loadConfig(sharedOptions)

	err = analyzerinterface.CleanResultDir(sharedOptions.GetResultsDir())
	if err != nil {
		glog.Errorf("failed to clean result dir: %v", err)
	}

	if sharedOptions.GetWatch() {
		err := analyzer.Watch(sharedOptions, config, printer)
		if err != nil {
			glog.Errorf("analyzer.Watch: %v", err)
			fmt.Fprintf(os.Stderr, "gopowers: %v\n", err)
			glog.Flush()
			os.Exit(results.ExitFault)
		}
		return
	}

	start := time.Now()
	status := analyzer.Run(sharedOptions, config, printer)
	if sharedOptions.GetCheckProgress() {
		timeUsed := basic.FormatTimeDuration(time.Since(start))
		basic.PrintfWithTimeStamp(printer.Sprintf("Total time for analysis: %s", timeUsed))
	}

	glog.Flush()
	os.Exit(status)
}

// loadConfig resolves the check configuration. A missing default file
// means default settings, but a file the user named explicitly must
// load or the run fails.
func loadConfig(sharedOptions *options.SharedOptions) *options.CheckConfig {
	configPath := sharedOptions.GetConfigPath()
	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(sharedOptions.GetSrcDir(), defaultConfigName)
	}
	config, err := options.LoadCheckConfig(configPath)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return options.DefaultCheckConfig()
		}
		glog.Errorf("options.LoadCheckConfig: %v", err)
		fmt.Fprintf(os.Stderr, "gopowers: cannot load %s: %v\n", configPath, err)
		glog.Flush()
		os.Exit(results.ExitFault)
	}
	return config
}
