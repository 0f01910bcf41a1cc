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

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/shenwei356/seedani"
	refidx "github.com/shenwei356/seedani/index"
)

var sketchCmd = &cobra.Command{
	Use:   "sketch",
	Short: "build a consolidated reference database from FASTA/FASTQ files",
	Long: `build a consolidated reference database from FASTA/FASTQ files

Every input file becomes one reference Sketch. The sketches are
concatenated into sketches.db, with index.db recording where each one
starts so large collections can be memory-mapped and decoded lazily
rather than loaded up front.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		files := getFileListFromArgsAndFile(cmd, args)
		outDir := getFlagString(cmd, "out-dir")
		presetName := getFlagString(cmd, "preset")

		files = filterInputFiles(files)

		params := seedani.DefaultDNAParams()
		if opt.AminoAcid {
			params = seedani.DefaultAAParams()
		}
		params, _ = seedani.Preset(presetName, params)
		checkError(params.Validate())

		legacy := getFlagBool(cmd, "legacy")

		checkError(os.MkdirAll(outDir, 0755))

		sketches := make([]*seedani.Sketch, len(files))
		var wg sync.WaitGroup
		sem := make(chan struct{}, opt.NumCPUs)
		for i, file := range files {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, file string) {
				defer wg.Done()
				defer func() { <-sem }()
				s, err := sketchFile(file, params, false)
				checkError(err)
				sketches[i] = s
				if opt.Verbose {
					log.Infof("sketched %s (%d seeds)", file, s.NumFineSeeds())
				}
			}(i, file)
		}
		wg.Wait()

		// Legacy form: one gzip-compressed .sketch/.marker pair per
		// reference, predating the consolidated database.
		// Kept alongside the default consolidated form for readers
		// that still expect per-file artefacts.
		if legacy {
			for _, s := range sketches {
				base := filepath.Base(s.FileName)
				checkError(refidx.WriteLegacySketchFile(outDir, base, s))
				checkError(refidx.WriteLegacyMarkerFile(outDir, base, s))
			}
		}

		sketchesPath := filepath.Join(outDir, "sketches.db")
		indexPath := filepath.Join(outDir, "index.db")
		infoPath := filepath.Join(outDir, refidx.InfoFileName)

		sketchesFh, err := os.Create(sketchesPath)
		checkError(err)
		entries, err := refidx.BuildSketchDB(sketchesFh, sketches)
		checkError(err)
		checkError(sketchesFh.Close())

		indexFh, err := os.Create(indexPath)
		checkError(err)
		checkError(refidx.WriteCatalog(indexFh, entries))
		checkError(indexFh.Close())

		info := refidx.Info{
			Version:   VERSION,
			C:         params.C,
			K:         params.K,
			MarkerC:   params.MarkerC,
			AminoAcid: params.AminoAcid,
			NumRefs:   len(sketches),
		}
		infoFh, err := os.Create(infoPath)
		checkError(err)
		checkError(info.WriteTo(infoFh))
		checkError(infoFh.Close())

		if opt.Verbose {
			log.Infof("%d reference sketches written to %s", len(sketches), outDir)
		}
		fmt.Fprintf(os.Stderr, "wrote %s sketches to %s\n", humanize.Comma(int64(len(sketches))), outDir)
	},
}

func init() {
	RootCmd.AddCommand(sketchCmd)

	sketchCmd.Flags().StringP("out-dir", "O", "seedani.db", "output database directory")
	sketchCmd.Flags().StringP("preset", "p", "", `sketching preset: "slow", "medium", "fast" or "small-genomes"`)
	sketchCmd.Flags().BoolP("legacy", "", false, "also write per-reference .sketch/.marker files alongside the consolidated database")
}
