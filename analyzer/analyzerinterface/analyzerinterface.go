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

package analyzerinterface

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/hhatto/gocloc"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jamesainslie/go-powers/analyzer/results"
	"github.com/jamesainslie/go-powers/atomic"
)

type ArrayFlags []string

func (i *ArrayFlags) String() string {
	return "array flags"
}

func (i *ArrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func CreateLogDir(logDir string) error {
	return os.MkdirAll(logDir, os.ModePerm)
}

func CreateResultDir(resultsDir string) error {
	dir, err := os.Stat(resultsDir)
	if err != nil {
		if os.IsNotExist(err) {
			err = os.MkdirAll(resultsDir, os.ModePerm)
			return err
		} else {
			return err
		}
	}

	if !dir.IsDir() {
		// a file exists instead of dir
		return os.ErrExist
	}

	return nil
}

// CleanResultDir removes stale artifacts of the previous run. Progress
// metadata, the analysis cache, a baseline stored inside the results
// dir and the log dir must all survive the clean.
func CleanResultDir(resultsDir string) error {
	filesToIgnore := []string{"cache", "baseline.json"}
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".gp_metadata") {
			filesToIgnore = append(filesToIgnore, entry.Name())
		}
	}

	cleanedLogDir := filepath.Clean(flag.Lookup("log_dir").Value.String())
	cleanedResultsDir := filepath.Clean(resultsDir)

	// If logDir is in resultsDir, we shall keep it.
	if strings.HasPrefix(cleanedLogDir, cleanedResultsDir) {
		relPath, err := filepath.Rel(cleanedResultsDir, cleanedLogDir)
		if err != nil {
			glog.Errorf("filepath.Rel: %v", err)
		}
		ignoredName := strings.Split(relPath, string(filepath.Separator))[0]
		glog.Infof("clean results: ignoring log dir: %s", ignoredName)
		filesToIgnore = append(filesToIgnore, ignoredName)
	}

	filesSaveMap := make(map[string]bool)
	for _, fileName := range filesToIgnore {
		filesSaveMap[fileName] = true
	}
	for _, entry := range entries {
		if filesSaveMap[entry.Name()] {
			continue
		}
		glog.Infof("remove %s", filepath.Join(resultsDir, entry.Name()))
		err = os.RemoveAll(filepath.Join(resultsDir, entry.Name()))
		if err != nil {
			return err
		}
	}
	return nil
}

// CollectPaths walks srcDir and returns the Go files to analyze as
// sorted slash paths relative to srcDir. Directories the Go toolchain
// skips (hidden, underscore prefixed, vendor, testdata) are skipped
// here too, as are files matching an ignore_dir pattern.
func CollectPaths(srcDir string, ignoreDirPatterns []string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == srcDir {
				return nil
			}
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "testdata" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") ||
			strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}
		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		matched, err := MatchIgnoreDirPatterns(ignoreDirPatterns, relPath)
		if err != nil {
			return err
		}
		if matched {
			return nil
		}
		paths = append(paths, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func MatchIgnoreDirPatterns(ignoreDirPatterns []string, filePath string) (bool, error) {
	matched := false
	var err error
	for _, ignoreDirPattern := range ignoreDirPatterns {
		matched, err = doublestar.Match(ignoreDirPattern, filePath)
		if err != nil {
			return matched, fmt.Errorf("malformed ignore_dir pattern %s", ignoreDirPattern)
		}
		if matched {
			glog.Infof("Source file %s ignored due to pattern %s", filePath, ignoreDirPattern)
			break
		}
	}
	return matched, nil
}

func ProcessIgnoreDir(allResults *results.ResultsList, ignoreDirPatterns *ArrayFlags) *results.ResultsList {
	for _, ignoreDirPattern := range *ignoreDirPatterns {
		newResults := []*results.Result{}
		for _, result := range allResults.Results {
			matched, err := doublestar.Match(ignoreDirPattern, result.Path)
			if err != nil {
				glog.Error("malformed ignore_dir pattern ", ignoreDirPattern)
				newResults = allResults.Results
				break
			}
			if matched {
				glog.Infof("Result in path %s ignored due to pattern %s", result.Path, ignoreDirPattern)
			} else {
				newResults = append(newResults, result)
			}
		}
		allResults.Results = newResults
	}
	return allResults
}

// AddID assigns each finding a name-based UUID derived from its
// identifying fields. Reruns over unchanged input keep the same ids,
// so the structured artifacts stay byte identical.
func AddID(allResults *results.ResultsList) {
	for i := 0; i < len(allResults.Results); i++ {
		result := allResults.Results[i]
		key := fmt.Sprintf("%s|%d|%d|%s|%s",
			result.Path, result.LineNumber, result.Column, result.RuleId, result.ErrorMessage)
		allResults.Results[i].Id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
	}
}

// AddCodeLineHash stores a short hash of each finding's source line.
// The baseline matches moved findings by this hash. allResults must
// already be sorted so each file is scanned once.
func AddCodeLineHash(allResults *results.ResultsList, srcDir string) {
	start := time.Now()
	var lastLineHash string
	for i := 0; i < len(allResults.Results); {
		result := allResults.Results[i]
		// rescan file only when the path is different from the last one
		if i != 0 && result.Path == allResults.Results[i-1].Path {
			i++
			continue
		}
		filePath := filepath.Join(srcDir, filepath.FromSlash(result.Path))
		fi, err := os.Stat(filePath)
		// skip if the path does not exist or other errors occur
		if err != nil {
			glog.Errorf("os.Stat('%s'): %v", filePath, err)
			i++
			continue
		}
		if fi.IsDir() {
			glog.Warningf("'%s' is not a file", filePath)
			i++
			continue
		}
		fileContent, err := os.Open(filePath)
		if err != nil {
			glog.Errorf("os.Open('%s'): %v", filePath, err)
			i++
			continue
		}
		fileScanner := bufio.NewScanner(fileContent)
		var count int32 = 1
		for fileScanner.Scan() {
			for ; i < len(allResults.Results); i++ {
				curResult := allResults.Results[i]
				if curResult.Path != result.Path || count != curResult.LineNumber {
					break
				}
				// recompute line hash only when the lineNumber is different
				if i != 0 && curResult.LineNumber == allResults.Results[i-1].LineNumber &&
					curResult.Path == allResults.Results[i-1].Path {
					curResult.CodeLineHash = lastLineHash
					continue
				}
				content := strings.TrimSpace(fileScanner.Text())
				h := sha1.New()
				h.Write([]byte(content))
				contentSha1 := hex.EncodeToString(h.Sum(nil))
				lastLineHash = contentSha1[:16]
				curResult.CodeLineHash = lastLineHash
			}
			count++
		}
		fileContent.Close()
		// a result whose line number lies past the last line keeps an
		// empty hash; skip the rest of this path so the outer loop
		// does not reopen the same file
		for ; i < len(allResults.Results) && allResults.Results[i].Path == result.Path; i++ {
			glog.Warningf("%s:%d is beyond the %d lines of the file",
				result.Path, allResults.Results[i].LineNumber, count-1)
		}
	}
	glog.Infof("spent %s on adding CodeLineHash for all results", time.Since(start))
}

func WriteResults(allResults *results.ResultsList, resultsPath string) error {
	out, err := msgpack.Marshal(allResults)
	if err != nil {
		return err
	}
	return atomic.Write(resultsPath, out)
}

func ReadResults(resultsPath string) (*results.ResultsList, error) {
	data, err := os.ReadFile(resultsPath)
	if err != nil {
		return nil, err
	}
	allResults := &results.ResultsList{}
	if err := msgpack.Unmarshal(data, allResults); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %v", resultsPath, err)
	}
	return allResults, nil
}

func WriteJsonResults(doc *results.Document, resultsPath string) error {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("enc.Encode: %v", err)
	}
	return atomic.Write(resultsPath, buf.Bytes())
}

// CountGoLines reports the lines of Go code under srcDir, minus files
// matching an ignore_dir pattern. The count is informational and goes
// into the run summary.
func CountGoLines(srcDir string, ignoreDirPatterns []string) (int64, error) {
	clocOpts := gocloc.NewClocOptions()
	languages := gocloc.NewDefinedLanguages()
	clocOpts.IncludeLangs["Go"] = struct{}{}
	processor := gocloc.NewProcessor(languages, clocOpts)
	result, err := processor.Analyze([]string{srcDir})
	if err != nil {
		glog.Errorf("gocloc fail: %v", err)
		return 0, err
	}
	var sum int64 = 0
	for _, file := range result.Files {
		relPath, err := filepath.Rel(srcDir, file.Name)
		if err != nil {
			relPath = file.Name
		}
		matched, err := MatchIgnoreDirPatterns(ignoreDirPatterns, filepath.ToSlash(relPath))
		if err != nil {
			glog.Error(err)
			continue
		}
		if matched {
			continue
		}
		sum += int64(file.Code)
	}

	return sum, nil
}
