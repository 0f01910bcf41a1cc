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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/cobra"

	"github.com/shenwei356/seedani"
	refidx "github.com/shenwei356/seedani/index"
)

var distCmd = &cobra.Command{
	Use:   "dist",
	Short: "estimate ANI/AAI between query genomes and a set of references",
	Long: `estimate ANI/AAI between query genomes and a set of references

References come either from -r/--ref FASTA files (sketched on the fly)
or from a database directory built by "seedani sketch" (--db), which is
memory-mapped so large collections don't need to fit in RAM up front.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		queryFiles := getFlagStringSlice(cmd, "query")
		if len(queryFiles) == 0 {
			queryFiles = getFileListFromArgsAndFile(cmd, args)
		}
		refFiles := getFlagStringSlice(cmd, "ref")
		dbDir := getFlagString(cmd, "db")
		presetName := getFlagString(cmd, "preset")
		outFile := getFlagString(cmd, "out")
		tsv := getFlagBool(cmd, "tsv")
		robust := getFlagBool(cmd, "robust")
		median := getFlagBool(cmd, "median")
		ci := getFlagBool(cmd, "ci")
		detailed := getFlagBool(cmd, "detailed")
		nameMapFile := getFlagString(cmd, "name-map")

		if len(refFiles) == 0 && dbDir == "" {
			checkError(fmt.Errorf("one of -r/--ref or --db is required"))
		}

		queryFiles = filterInputFiles(queryFiles)
		if len(refFiles) > 0 {
			refFiles = filterInputFiles(refFiles)
		}
		nameMap, err := loadNameMap(nameMapFile)
		checkError(err)

		params := seedani.DefaultDNAParams()
		if opt.AminoAcid {
			params = seedani.DefaultAAParams()
		}
		params, fasterSmall := seedani.Preset(presetName, params)
		checkError(params.Validate())

		var refSource seedani.SketchSource
		var refSketches []RefEntry
		var mmapSource *refidx.MmapSource

		if dbDir != "" {
			info, err := refidx.InfoFromFile(filepath.Join(dbDir, refidx.InfoFileName))
			checkError(err)
			params.C, params.K, params.MarkerC, params.AminoAcid = info.C, info.K, info.MarkerC, info.AminoAcid

			mmapSource, err = refidx.OpenMmapSource(filepath.Join(dbDir, "sketches.db"), filepath.Join(dbDir, "index.db"))
			checkError(err)
			defer mmapSource.Close()

			refSource = mmapSource
			for i, e := range mmapSource.Entries() {
				refSketches = append(refSketches, RefEntry{ID: i, FileName: e.FileName})
			}
		} else {
			refs := sketchFilesParallel(refFiles, params, false, opt.NumCPUs)
			refSource = sliceSource{refs: refs}
			for i, s := range refs {
				refSketches = append(refSketches, RefEntry{ID: i, FileName: s.FileName})
			}
		}

		queries := sketchFilesParallel(queryFiles, params, false, opt.NumCPUs)

		markerRefs := make([]seedani.RefSketch, 0, len(refSketches))
		if mmapSource != nil {
			for _, e := range refSketches {
				s, err := mmapSource.Load(e.ID)
				checkError(err)
				// keep only the markers resident; fine seeds are decoded
				// again from the mapped file for references that survive
				markerOnly := *s
				markerOnly.FineSeeds = nil
				markerRefs = append(markerRefs, seedani.RefSketch{ID: e.ID, Sketch: &markerOnly})
			}
		} else {
			ss := refSource.(sliceSource)
			for i, s := range ss.refs {
				markerRefs = append(markerRefs, seedani.RefSketch{ID: i, Sketch: s})
			}
		}
		index := seedani.NewMarkerIndex(markerRefs)

		flavor := seedani.SummaryMean
		if median {
			flavor = seedani.SummaryMedian
		} else if robust {
			flavor = seedani.SummaryRobustMean
		}

		ctx := seedani.DefaultEngineContext(log, opt.AminoAcid)
		ctx.Threads = opt.NumCPUs
		ctx.FasterSmall = fasterSmall
		ctx.Estimator.Flavor = flavor
		ctx.Estimator.Bootstrap = ci
		ctx.Adjuster = loadAdjuster(opt)

		orch := seedani.NewOrchestrator(ctx, index, refSource)

		var results []seedani.AniEstResult
		var mu sync.Mutex
		orch.Run(queries, func(r seedani.AniEstResult) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		})

		var out *os.File
		if outFile == "" || outFile == "-" {
			out = os.Stdout
		} else {
			var err error
			out, err = os.Create(outFile)
			checkError(err)
			defer out.Close()
		}

		if tsv {
			writeResultsTSV(out, results, nameMap, ci, detailed)
		} else {
			writeResultsTable(out, results)
		}

		if outFile != "" && outFile != "-" {
			afFh, err := os.Create(outFile + ".af")
			checkError(err)
			writeAlignedFractions(afFh, results)
			checkError(afFh.Close())
		}
	},
}

// RefEntry names a reference sketch by the id the MarkerIndex/SketchSource address it by.
type RefEntry struct {
	ID       int
	FileName string
}

func sketchFilesParallel(files []string, params seedani.SketchParams, markerOnly bool, threads int) []*seedani.Sketch {
	out := make([]*seedani.Sketch, len(files))
	var wg sync.WaitGroup
	sem := make(chan struct{}, threads)
	for i, file := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, file string) {
			defer wg.Done()
			defer func() { <-sem }()
			s, err := sketchFile(file, params, markerOnly)
			checkError(err)
			out[i] = s
		}(i, file)
	}
	wg.Wait()
	return out
}

func init() {
	RootCmd.AddCommand(distCmd)

	distCmd.Flags().StringSliceP("query", "q", nil, "query FASTA/FASTQ file(s)")
	distCmd.Flags().StringSliceP("ref", "r", nil, "reference FASTA/FASTQ file(s)")
	distCmd.Flags().StringP("db", "", "", "reference database directory built by 'seedani sketch'")
	distCmd.Flags().StringP("preset", "p", "", `sketching preset: "slow", "medium", "fast" or "small-genomes"`)
	distCmd.Flags().StringP("out", "o", "-", `output file ("-" for stdout)`)
	distCmd.Flags().BoolP("tsv", "", false, "write a plain tab-separated table instead of the aligned one")
	distCmd.Flags().BoolP("robust", "", false, "summarize chain identities with a trimmed mean instead of the mean")
	distCmd.Flags().BoolP("median", "", false, "summarize chain identities with the median instead of the mean")
	distCmd.Flags().BoolP("ci", "", false, "compute a bootstrap confidence interval for each ANI estimate")
	distCmd.Flags().BoolP("detailed", "", false, "add contig-length quantiles and chain statistics to the TSV output")
	distCmd.Flags().StringP("name-map", "M", "", "tab-separated file mapping input file path to a friendly display name")
}
