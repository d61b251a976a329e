package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceJIC/pkg/bitstream"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/classify"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/knowledge"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/pininfo"
)

func testResults() []classify.Result {
	return []classify.Result{
		{
			Pin: "PIN_A6",
			Classification: &classify.Classification{
				Pin:         "PIN_A6",
				Role:        pininfo.RoleDiffRx,
				Output:      true,
				PullUp:      true,
				IOStandard:  "SSTL-15",
				Termination: classify.TermClass12,
			},
		},
		{Pin: "PIN_B7", Err: errors.New("boom")},
	}
}

func TestClassifications(t *testing.T) {
	var buf bytes.Buffer
	Classifications(&buf, testResults())

	out := buf.String()
	for _, want := range []string{"PIN_A6", "diff-rx", "output", "SSTL-15", "SSTL cl1/2, term", "PIN_B7", "boom"} {
		assert.Contains(t, out, want)
	}
}

func TestClassificationsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ClassificationsJSON(&buf, testResults()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "PIN_A6", got[0]["pin"])
	assert.Equal(t, "diff-rx", got[0]["role"])
	assert.Equal(t, "SSTL cl1/2, term", got[0]["termination"])
	assert.Equal(t, true, got[0]["pull_up"])
	assert.NotContains(t, got[0], "error")

	assert.Equal(t, "PIN_B7", got[1]["pin"])
	assert.Equal(t, "boom", got[1]["error"])
	assert.NotContains(t, got[1], "io_standard")
}

func TestChanges(t *testing.T) {
	var buf bytes.Buffer
	Changes(&buf, []bitstream.BitChange{{Addr: 83, A: false, B: true}})
	assert.Contains(t, buf.String(), "83")
	assert.Contains(t, buf.String(), "0xa")
}

func TestMeasurements(t *testing.T) {
	var buf bytes.Buffer
	Measurements(&buf, []knowledge.Measurement{
		{Pin: "PIN_A6", Bit4mA: 40032, Bit8mA: 40000},
		{Pin: "PIN_B7", Bit4mA: 48100, Bit8mA: 48000},
	})

	out := buf.String()
	for _, want := range []string{"PIN_A6", "40032", "40000", "+32", "PIN_B7", "+100"} {
		assert.Contains(t, out, want)
	}
}
