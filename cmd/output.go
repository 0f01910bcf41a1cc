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
	"io"

	"github.com/shenwei356/stable"

	"github.com/shenwei356/seedani"
)

// identityLabel returns "AAI" or "ANI" depending on the result's
// alphabet.
func identityLabel(r seedani.AniEstResult) string {
	if r.AAI {
		return "AAI"
	}
	return "ANI"
}

// displayName resolves file to its friendly name from a name-map (-M),
// falling back to the file path itself when unmapped.
func displayName(nameMap map[string]string, file string) string {
	if nameMap == nil {
		return file
	}
	if name, ok := nameMap[file]; ok {
		return name
	}
	return file
}

// plain table style: no box-drawing, two spaces between columns.
var resultStyle = &stable.TableStyle{
	Name:      "plain",
	HeaderRow: stable.RowStyle{Begin: "", Sep: "  ", End: ""},
	DataRow:   stable.RowStyle{Begin: "", Sep: "  ", End: ""},
	Padding:   "",
}

func resultColumns() []stable.Column {
	return []stable.Column{
		{Header: "query"},
		{Header: "reference"},
		{Header: "ani", Align: stable.AlignRight},
		{Header: "align_frac_query", Align: stable.AlignRight},
		{Header: "align_frac_ref", Align: stable.AlignRight},
		{Header: "ci_lower", Align: stable.AlignRight},
		{Header: "ci_upper", Align: stable.AlignRight},
		{Header: "bases_covered", Align: stable.AlignRight},
	}
}

// writeResultsTable renders one row per AniEstResult to w using the
// engine's plain-table style.
func writeResultsTable(w io.Writer, results []seedani.AniEstResult) {
	tbl := stable.New()
	columns := resultColumns()
	tbl.HeaderWithFormat(columns)

	for _, r := range results {
		tbl.AddRow([]interface{}{
			r.QueryFile,
			r.RefFile,
			fmt.Sprintf("%.4f", r.ANI),
			fmt.Sprintf("%.4f", r.AlignFractionQuery),
			fmt.Sprintf("%.4f", r.AlignFractionRef),
			fmt.Sprintf("%.4f", r.CILower),
			fmt.Sprintf("%.4f", r.CIUpper),
			r.TotalBasesCovered,
		})
	}
	w.Write(tbl.Render(resultStyle))
}

// writeResultsTSV renders the result set as a TSV table:
// Ref_file, Query_file, ANI|AAI, Align_fraction_ref, Align_fraction_query,
// Ref_name, Query_name, extended with the CI columns when ci is true and
// the detailed contig/chain-statistics columns when detailed is true.
// Identities and fractions are printed x100 with two-decimal precision.
func writeResultsTSV(w io.Writer, results []seedani.AniEstResult, nameMap map[string]string, ci, detailed bool) {
	label := "ANI"
	if len(results) > 0 {
		label = identityLabel(results[0])
	}

	header := fmt.Sprintf("Ref_file\tQuery_file\t%s\tAlign_fraction_ref\tAlign_fraction_query\tRef_name\tQuery_name", label)
	if ci {
		header += fmt.Sprintf("\t%s_5_percentile\t%s_95_percentile", label, label)
	}
	if detailed {
		header += "\tStd\tNum_contigs_r\tNum_contigs_q\tQ10_r\tQ50_r\tQ90_r\tQ10_q\tQ50_q\tQ90_q\tAvg_chain_int_len\tTotal_bases_covered"
	}
	fmt.Fprintln(w, header)

	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t%s",
			r.RefFile, r.QueryFile, r.ANI*100, r.AlignFractionRef*100, r.AlignFractionQuery*100,
			displayName(nameMap, r.RefFile), displayName(nameMap, r.QueryFile))
		if ci {
			fmt.Fprintf(w, "\t%.2f\t%.2f", r.CILower*100, r.CIUpper*100)
		}
		if detailed {
			fmt.Fprintf(w, "\t%.4f\t%d\t%d\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%.2f\t%d",
				r.Std, r.NumContigsR, r.NumContigsQ, r.Q10R, r.Q50R, r.Q90R, r.Q10Q, r.Q50Q, r.Q90Q,
				r.AvgChainIntLen, r.TotalBasesCovered)
		}
		fmt.Fprintln(w)
	}
}

// writeAlignedFractions writes the ".af" companion file alongside the
// main distance table: just query, reference and the two aligned
// fractions, one pair per line.
func writeAlignedFractions(w io.Writer, results []seedani.AniEstResult) {
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%.6f\t%.6f\n", r.QueryFile, r.RefFile, r.AlignFractionQuery, r.AlignFractionRef)
	}
}

// pairStat is one all-vs-all cell for the Phylip and .af matrices.
type pairStat struct {
	ANI      float64
	AFQuery  float64
	AFRef    float64
	Observed bool
}

func lookupPair(stats map[[2]string]pairStat, a, b string) (ani, afA, afB float64, ok bool) {
	if v, found := stats[[2]string{a, b}]; found && v.Observed {
		return v.ANI, v.AFQuery, v.AFRef, true
	}
	if v, found := stats[[2]string{b, a}]; found && v.Observed {
		return v.ANI, v.AFRef, v.AFQuery, true
	}
	return 0, 0, 0, false
}

// writePhylipMatrix renders an all-vs-all ANI result set as a
// Phylip-format distance matrix (1-ANI): sketch count on the first
// line, then one row per sketch. The upper triangle is left blank
// unless fullMatrix is set; the diagonal is emitted only when diagonal
// is set.
func writePhylipMatrix(w io.Writer, names []string, stats map[[2]string]pairStat, fullMatrix, diagonal bool) {
	fmt.Fprintf(w, "%d\n", len(names))
	for i, a := range names {
		fmt.Fprint(w, a)
		for j, b := range names {
			if j > i && !fullMatrix {
				break
			}
			if j == i {
				if diagonal {
					fmt.Fprintf(w, "\t%.6f", 0.0)
				}
				continue
			}
			d := 1.0
			if ani, _, _, ok := lookupPair(stats, a, b); ok {
				d = 1 - ani
			}
			fmt.Fprintf(w, "\t%.6f", d)
		}
		fmt.Fprintln(w)
	}
}

// writeAFMatrix renders the .af companion of the Phylip matrix. It is
// always a full matrix so both sides' aligned fractions are visible:
// cell [a][b] is a's aligned fraction in the (a, b) comparison.
func writeAFMatrix(w io.Writer, names []string, stats map[[2]string]pairStat) {
	fmt.Fprintf(w, "%d\n", len(names))
	for _, a := range names {
		fmt.Fprint(w, a)
		for _, b := range names {
			af := 1.0
			if a != b {
				af = 0
				if _, afA, _, ok := lookupPair(stats, a, b); ok {
					af = afA
				}
			}
			fmt.Fprintf(w, "\t%.6f", af)
		}
		fmt.Fprintln(w)
	}
}
