// Package report renders analysis results for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/OpenTraceLab/OpenTraceJIC/pkg/bitstream"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/classify"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/knowledge"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/pininfo"
)

var failClr = color.New(color.FgRed)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Classifications writes one row per batch result. Failed pins show their
// error in place of the classification.
func Classifications(w io.Writer, results []classify.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pin", "Role", "Direction", "Pull-up", "Differential", "I/O Standard", "Termination"})
	table.SetAutoWrapText(false)
	for _, r := range results {
		if r.Err != nil {
			table.Append([]string{r.Pin, "", failClr.Sprint("error"), "", "", failClr.Sprint(r.Err.Error()), ""})
			continue
		}
		cl := r.Classification
		table.Append([]string{
			cl.Pin,
			cl.Role.String(),
			cl.Direction().String(),
			yesNo(cl.PullUp),
			yesNo(cl.Differential),
			cl.IOStandard,
			orDash(cl.Termination.String()),
		})
	}
	table.Render()
}

// ImageSummary writes a one-line description of an image.
func ImageSummary(w io.Writer, name string, img *bitstream.Image) {
	fmt.Fprintf(w, "%s: %s, %s bits, fingerprint %016x\n",
		name, humanize.IBytes(uint64(img.Size())), humanize.Comma(int64(img.Len())), img.Fingerprint())
}

// Changes writes the differing bits of two images.
func Changes(w io.Writer, changes []bitstream.BitChange) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Bit", "Byte", "A", "B"})
	for _, c := range changes {
		table.Append([]string{
			strconv.Itoa(c.Addr),
			fmt.Sprintf("0x%x", c.Addr/8),
			bit(c.A),
			bit(c.B),
		})
	}
	table.Render()
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Offsets writes true addresses next to the nominal offsets they map to.
func Offsets(w io.Writer, addrs, offsets []int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Address", "Offset"})
	for i := range addrs {
		table.Append([]string{strconv.Itoa(addrs[i]), fmt.Sprintf("%+d", offsets[i])})
	}
	table.Render()
}

// Translations writes input addresses next to their translation.
func Translations(w io.Writer, from, to string, in, out []int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{from, to})
	for i := range in {
		table.Append([]string{strconv.Itoa(in[i]), strconv.Itoa(out[i])})
	}
	table.Render()
}

// Pins writes the datasheet rows of t.
func Pins(w io.Writer, t *pininfo.Table) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pin", "Bank", "Function", "Tx/Rx Channel", "Role"})
	for _, name := range t.Pins() {
		p, _ := t.Pin(name)
		table.Append([]string{p.Name, p.Bank, p.Function, orDash(p.TxRxChannel), p.Role().String()})
	}
	table.Render()
}

// Measurements writes the drive bits found for each pin. Pins whose drive
// bits are not at the usual spacing are highlighted.
func Measurements(w io.Writer, ms []knowledge.Measurement) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pin", "4mA Bit", "8mA Bit", "Spacing", "Anchor"})
	for _, m := range ms {
		spacing := fmt.Sprintf("%+d", m.Bit4mA-m.Bit8mA)
		if !m.Consistent() {
			spacing = failClr.Sprint(spacing)
		}
		table.Append([]string{m.Pin, strconv.Itoa(m.Bit4mA), strconv.Itoa(m.Bit8mA), spacing, strconv.Itoa(m.Anchor())})
	}
	table.Render()
}

type jsonResult struct {
	*classify.Classification
	Pin   string `json:"pin"`
	Error string `json:"error,omitempty"`
}

// ClassificationsJSON writes batch results as a JSON array.
func ClassificationsJSON(w io.Writer, results []classify.Result) error {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{Classification: r.Classification, Pin: r.Pin}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return JSON(w, out)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Error formats a failure the way every command prints it.
func Error(err error) string {
	return color.RedString("Error: ") + err.Error()
}
