// Copyright © 2018-2021 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/shenwei356/breader"
	"github.com/shenwei356/go-logging"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

// log is the package-level logger every command writes progress and
// warnings through; main.go wires its backend before cmd.Execute runs.
var log = logging.MustGetLogger("seedani")

// Options carries the persistent flags shared by every subcommand.
type Options struct {
	NumCPUs      int
	Verbose      bool
	AminoAcid    bool
	ModelPath    string
	NoLearnedANI bool
}

func getOptions(cmd *cobra.Command) *Options {
	return &Options{
		NumCPUs:      getFlagPositiveInt(cmd, "threads"),
		Verbose:      getFlagBool(cmd, "verbose"),
		AminoAcid:    getFlagBool(cmd, "aai"),
		ModelPath:    getFlagString(cmd, "model"),
		NoLearnedANI: getFlagBool(cmd, "no-learned-ani"),
	}
}

// checkError aborts the process with a message on stderr when err is
// non-nil. Most command bodies funnel every fallible call through this
// rather than threading error returns up through cobra's Run signature.
func checkError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "seedani:", err)
		os.Exit(1)
	}
}

func getFlagString(cmd *cobra.Command, flag string) string {
	value, err := cmd.Flags().GetString(flag)
	checkError(err)
	return value
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	value, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return value
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	value, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return value
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	value := getFlagInt(cmd, flag)
	if value <= 0 {
		checkError(fmt.Errorf("value of flag --%s should be a positive integer", flag))
	}
	return value
}

func getFlagNonNegativeInt(cmd *cobra.Command, flag string) int {
	value := getFlagInt(cmd, flag)
	if value < 0 {
		checkError(fmt.Errorf("value of flag --%s should be a non-negative integer", flag))
	}
	return value
}

func getFlagFloat64(cmd *cobra.Command, flag string) float64 {
	value, err := cmd.Flags().GetFloat64(flag)
	checkError(err)
	return value
}

func getFlagStringSlice(cmd *cobra.Command, flag string) []string {
	value, err := cmd.Flags().GetStringSlice(flag)
	checkError(err)
	return value
}

func isStdin(file string) bool {
	return file == "-"
}

// getFileList returns the non-empty positional arguments in order,
// defaulting to stdin ("-") when none were given.
func getFileList(args []string) []string {
	files := make([]string, 0, len(args))
	for _, f := range args {
		if f != "" {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		files = append(files, "-")
	}
	return files
}

// getFileListFromArgsAndFile: when --infile-list names a file, its lines
// replace the positional arguments entirely; otherwise args is used
// as-is via getFileList.
func getFileListFromArgsAndFile(cmd *cobra.Command, args []string) []string {
	infileList := getFlagString(cmd, "infile-list")
	if infileList == "" {
		return getFileList(args)
	}
	files, err := readLines(infileList)
	checkError(err)
	if len(files) == 0 {
		checkError(fmt.Errorf("no files found in --infile-list %s", infileList))
	}
	return files
}

// filterInputFiles drops every path in files that does not exist,
// warning per missing path, so a missing input is skipped rather than
// surfacing as a bare open error mid-run. Stdin ("-") is always
// considered present. The run aborts only when nothing is left.
func filterInputFiles(files []string) []string {
	kept := make([]string, 0, len(files))
	for _, f := range files {
		if isStdin(f) {
			kept = append(kept, f)
			continue
		}
		ok, err := pathutil.Exists(f)
		if err != nil {
			log.Warningf("skipping %s: %v", f, err)
			continue
		}
		if !ok {
			log.Warningf("skipping %s: file not found", f)
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		checkError(fmt.Errorf("no readable input files"))
	}
	return kept
}

// readLines reads path line by line via a gzip-transparent xopen
// reader, skipping blank lines, used for the file-of-files
// (--infile-list) flag.
func readLines(path string) ([]string, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var lines []string
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// nameMapRecord is one parsed row of a -M/--name-map file: two
// whitespace/tab-separated columns, file path then friendly name.
type nameMapRecord struct {
	File, Name string
}

// loadNameMap parses a -M/--name-map file into a file->friendly-name
// table using breader's parallel buffered line reader; empty when
// path is "".
func loadNameMap(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	fn := func(line string) (interface{}, bool, error) {
		line = strings.TrimSpace(line)
		if line == "" {
			return nil, false, nil
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, false, nil
		}
		return nameMapRecord{File: fields[0], Name: fields[1]}, true, nil
	}

	reader, err := breader.NewBufferedReader(path, 2, 100, fn)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		for _, item := range chunk.Data {
			rec := item.(nameMapRecord)
			out[rec.File] = rec.Name
		}
	}
	return out, nil
}
