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
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"

	"github.com/shenwei356/natsort"
	"github.com/shenwei356/seedani"
)

var triangleCmd = &cobra.Command{
	Use:   "triangle",
	Short: "all-vs-all ANI/AAI estimation over a set of genomes",
	Long: `all-vs-all ANI/AAI estimation over a set of genomes

Every input file is sketched once and compared against every other,
with the result rendered as a Phylip-format lower/square distance
matrix (1-ANI) suitable for neighbour-joining or other distance-matrix
tree builders.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		files := getFileListFromArgsAndFile(cmd, args)
		presetName := getFlagString(cmd, "preset")
		outFile := getFlagString(cmd, "out")
		fullMatrix := getFlagBool(cmd, "full-matrix")
		diagonal := getFlagBool(cmd, "diagonal")

		files = filterInputFiles(files)

		params := seedani.DefaultDNAParams()
		if opt.AminoAcid {
			params = seedani.DefaultAAParams()
		}
		params, fasterSmall := seedani.Preset(presetName, params)
		checkError(params.Validate())

		sketches := sketchFilesParallel(files, params, false, opt.NumCPUs)

		markerRefs := make([]seedani.RefSketch, len(sketches))
		for i, s := range sketches {
			markerRefs[i] = seedani.RefSketch{ID: i, Sketch: s}
		}
		index := seedani.NewMarkerIndex(markerRefs)

		ctx := seedani.DefaultEngineContext(log, opt.AminoAcid)
		ctx.Threads = opt.NumCPUs
		ctx.FasterSmall = fasterSmall
		ctx.Adjuster = loadAdjuster(opt)

		orch := seedani.NewOrchestrator(ctx, index, sliceSource{refs: sketches})

		stats := make(map[[2]string]pairStat)
		var mu sync.Mutex
		orch.Run(sketches, func(r seedani.AniEstResult) {
			mu.Lock()
			stats[[2]string{r.QueryFile, r.RefFile}] = pairStat{
				ANI:      r.ANI,
				AFQuery:  r.AlignFractionQuery,
				AFRef:    r.AlignFractionRef,
				Observed: true,
			}
			mu.Unlock()
		})

		names := make([]string, len(sketches))
		for i, s := range sketches {
			names[i] = s.FileName
		}
		natsort.Sort(names)

		var out *os.File
		if outFile == "" || outFile == "-" {
			out = os.Stdout
		} else {
			var err error
			out, err = os.Create(outFile)
			checkError(err)
			defer out.Close()
		}
		writePhylipMatrix(out, names, stats, fullMatrix, diagonal)

		if outFile != "" && outFile != "-" {
			afFh, err := os.Create(outFile + ".af")
			checkError(err)
			writeAFMatrix(afFh, names, stats)
			checkError(afFh.Close())
		}
	},
}

func init() {
	RootCmd.AddCommand(triangleCmd)

	triangleCmd.Flags().StringP("preset", "p", "", `sketching preset: "slow", "medium", "fast" or "small-genomes"`)
	triangleCmd.Flags().StringP("out", "o", "-", `output file ("-" for stdout)`)
	triangleCmd.Flags().BoolP("full-matrix", "", false, "fill the upper triangle too instead of leaving it blank")
	triangleCmd.Flags().BoolP("diagonal", "", false, "emit the all-zero diagonal")
}
