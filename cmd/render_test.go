package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmcalc/llmcalc/calc"
	"github.com/llmcalc/llmcalc/calc/catalog"
	"github.com/llmcalc/llmcalc/calc/history"
	"github.com/llmcalc/llmcalc/calc/sweep"
)

func renderFixture(t *testing.T) *calc.CalculationResult {
	t.Helper()
	store := catalog.NewStore()
	hw, err := store.Hardware("a100-80gb")
	require.NoError(t, err)
	m, err := store.Model("llama-2-7b")
	require.NoError(t, err)

	in := calc.CalculationInput{
		GPUCount:        1,
		ContextLength:   2048,
		GeneratedLength: 256,
		BatchSize:       1,
		TTFTMillis:      350,
		TPOTMillis:      40,
	}.WithPrecision(calc.PrecisionFP16)

	res, err := calc.ComputeUtilization(in, hw, m)
	require.NoError(t, err)
	return res
}

func TestRenderUtilization_TableShowsHeadlineNumbers(t *testing.T) {
	// GIVEN a computed utilization result
	res := renderFixture(t)

	// WHEN rendering as a table
	var buf bytes.Buffer
	err := renderUtilization(&buf, res, formatTable)
	require.NoError(t, err)
	out := buf.String()

	// THEN the headline metrics and catalog ids appear
	assert.Contains(t, out, "a100-80gb")
	assert.Contains(t, out, "llama-2-7b")
	assert.Contains(t, out, "MFU")
	assert.Contains(t, out, "Bandwidth needed")
	assert.Contains(t, out, "KV cache per request")
	assert.Contains(t, out, string(res.Bottleneck))
}

func TestRenderUtilization_JSONRoundTrips(t *testing.T) {
	// GIVEN a computed utilization result
	res := renderFixture(t)

	// WHEN rendering as JSON
	var buf bytes.Buffer
	err := renderUtilization(&buf, res, formatJSON)
	require.NoError(t, err)

	// THEN decoding the output reproduces the numbers exactly
	var decoded calc.CalculationResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, res.MFUPercent, decoded.MFUPercent)
	assert.Equal(t, res.KVCacheGB, decoded.KVCacheGB)
	assert.Equal(t, res.Bottleneck, decoded.Bottleneck)
}

func TestRenderUtilization_CSVHasHeaderAndOneRow(t *testing.T) {
	// GIVEN a computed utilization result
	res := renderFixture(t)

	// WHEN rendering as CSV
	var buf bytes.Buffer
	err := renderUtilization(&buf, res, formatCSV)
	require.NoError(t, err)

	// THEN the output is a header line plus one data row
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,hardware_id,model_id"), "unexpected header: %s", lines[0])
	assert.Contains(t, lines[1], "a100-80gb")
	assert.Contains(t, lines[1], string(res.Bottleneck))
}

func TestRenderUtilization_UnknownFormatFails(t *testing.T) {
	res := renderFixture(t)

	var buf bytes.Buffer
	err := renderUtilization(&buf, res, "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestRenderConcurrency_TableShowsPoolBreakdown(t *testing.T) {
	// GIVEN a computed concurrency result
	store := catalog.NewStore()
	hw, err := store.Hardware("a100-80gb")
	require.NoError(t, err)
	m, err := store.Model("llama-2-7b")
	require.NoError(t, err)
	res, err := calc.ComputeMaxConcurrency(calc.NewConcurrencyInput(calc.PrecisionFP16, 1, 2048), hw, m)
	require.NoError(t, err)

	// WHEN rendering as a table
	var buf bytes.Buffer
	require.NoError(t, renderConcurrency(&buf, res, formatTable))
	out := buf.String()

	// THEN the memory pool breakdown and both concurrency figures appear
	assert.Contains(t, out, "KV cache pool")
	assert.Contains(t, out, "Max concurrency (paged)")
	assert.Contains(t, out, strconv.Itoa(res.MaxConcurrency))
	assert.Contains(t, out, strconv.Itoa(res.MaxConcurrencyPaged))
}

func TestRenderSweep_TableMarksFailedScenarios(t *testing.T) {
	// GIVEN one successful and one failed sweep outcome
	res := renderFixture(t)
	outcomes := []sweep.Outcome{
		{Name: "1x-fp16", Input: res.Input, Result: res},
		{Name: "3x-fp16", Input: res.Input, Err: errors.New("gpu_count must be one of 1, 2, 4, 8, 16, 32")},
	}

	// WHEN rendering as a table
	var buf bytes.Buffer
	require.NoError(t, renderSweep(&buf, outcomes, formatTable))
	out := buf.String()

	// THEN the winner is ranked and the failure is marked
	assert.Contains(t, out, "1x-fp16")
	assert.Contains(t, out, "3x-fp16")
	assert.Contains(t, out, "error: gpu_count")
}

func TestRenderSweep_JSONCarriesErrors(t *testing.T) {
	// GIVEN a failed outcome
	outcomes := []sweep.Outcome{
		{Name: "8x-int8", Err: errors.New("boom")},
	}

	// WHEN rendering as JSON
	var buf bytes.Buffer
	require.NoError(t, renderSweep(&buf, outcomes, formatJSON))

	// THEN the error string is serialized alongside the scenario name
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "8x-int8", rows[0]["name"])
	assert.Equal(t, "boom", rows[0]["error"])
}

func TestRenderHardwareList_ContainsBuiltins(t *testing.T) {
	store := catalog.NewStore()

	var buf bytes.Buffer
	require.NoError(t, renderHardwareList(&buf, store.ListHardware(), formatTable))
	out := buf.String()

	assert.Contains(t, out, "a100-80gb")
	assert.Contains(t, out, "h100-sxm")
}

func TestRenderModelList_ShowsAttentionKind(t *testing.T) {
	store := catalog.NewStore()

	var buf bytes.Buffer
	require.NoError(t, renderModelList(&buf, store.ListModels(), formatCSV))
	out := buf.String()

	// llama-3.1-8b groups 32 heads over 8 kv heads
	assert.Contains(t, out, "llama-3.1-8b")
	assert.Contains(t, out, "gqa")
}

func TestRenderHistory_HeadlinePerKind(t *testing.T) {
	// GIVEN one utilization and one concurrency entry
	entries := []history.Entry{
		{
			Kind:             history.KindUtilization,
			ID:               "calc-1",
			Timestamp:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			HardwareID:       "a100-80gb",
			ModelID:          "llama-2-7b",
			MFUPercent:       0.93,
			BandwidthPercent: 15.4,
			Bottleneck:       "memory",
		},
		{
			Kind:                "concurrency",
			ID:                  "calc-2",
			Timestamp:           time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
			HardwareID:          "h100-sxm",
			ModelID:             "falcon-7b",
			MaxConcurrency:      56,
			MaxConcurrencyPaged: 130,
		},
	}

	// WHEN rendering as a table
	var buf bytes.Buffer
	require.NoError(t, renderHistory(&buf, entries, formatTable))
	out := buf.String()

	// THEN each kind gets its own headline summary
	assert.Contains(t, out, "memory")
	assert.Contains(t, out, "56 requests (130 paged)")
}
