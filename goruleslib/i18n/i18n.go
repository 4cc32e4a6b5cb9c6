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

// Package i18n localizes the console strings of the analyzer. Finding
// messages themselves are not translated; they are part of the stable
// report format.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var languageMap = map[string]language.Tag{"en": language.English, "zh": language.Chinese}

var zhTranslations = []struct {
	key string
	zh  string
}{
	{"Use %d CPU(s)", "使用 %d 个 CPU"},
	{"Start collecting Go source files", "开始收集 Go 源文件"},
	{"Found %d Go files to analyze", "共有 %d 个待分析的 Go 文件"},
	{"Start analyzing Go files", "开始分析 Go 文件"},
	{"Analyzing Go files completed [%s]", "Go 文件分析完成 [%s]"},
	{"Analyzed %s (%s, %v/%v) [%s]", "已分析 %s (%s, %v/%v) [%s]"},
	{"Total time for analysis: %s", "分析总耗时: %s"},
	{"Results have been written to %s", "结果已写入 %s"},
	{"%d findings, %d errors, %d warnings", "共 %d 条发现, %d 条错误, %d 条警告"},
	{"Watching %s for changes", "正在监视 %s 的变更"},
	{"Change detected, analyzing again", "检测到变更, 重新分析"},
}

func init() {
	for _, entry := range zhTranslations {
		// glog must not be used before flag.Parse, so errors here
		// are dropped. A missing entry falls back to English.
		_ = message.SetString(language.Chinese, entry.key, entry.zh)
	}
}

func GetPrinter(lang string) *message.Printer {
	var langTag language.Tag
	if _, exist := languageMap[lang]; exist {
		langTag = languageMap[lang]
	} else {
		langTag = languageMap["en"]
	}
	return message.NewPrinter(langTag)
}
