package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/llmcalc/llmcalc/calc"
	"github.com/llmcalc/llmcalc/calc/history"
	"github.com/llmcalc/llmcalc/calc/sweep"
)

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func writeTable(w io.Writer, headers []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		tw.Append(row)
	}
	tw.Render()
}

func writeCSVTo(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSONTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func fmtG(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// renderUtilization writes one utilization result in the chosen format.
func renderUtilization(w io.Writer, res *calc.CalculationResult, format string) error {
	switch format {
	case formatJSON:
		return writeJSONTo(w, res)
	case formatCSV:
		headers := []string{
			"id", "hardware_id", "model_id", "attention_kind",
			"mfu_percent", "bandwidth_percent", "actual_tflops", "peak_tflops",
			"required_bandwidth_gb_s", "hardware_bandwidth_gb_s",
			"model_memory_gb", "kv_cache_gb", "bottleneck", "suggestions",
		}
		row := []string{
			res.ID, res.HardwareID, res.ModelID, string(res.Attention),
			fmtG(res.MFUPercent), fmtG(res.BandwidthPercent),
			fmtG(res.ActualTFLOPS), fmtG(res.PeakTFLOPS),
			fmtG(res.RequiredBandwidthGBs), fmtG(res.HardwareBandwidthGBs),
			fmtG(res.ModelMemoryGB), fmtG(res.KVCacheGB),
			string(res.Bottleneck), strings.Join(res.Suggestions, ";"),
		}
		return writeCSVTo(w, headers, [][]string{row})
	case formatTable:
		rows := [][]string{
			{"Hardware", res.HardwareID},
			{"Model", res.ModelID},
			{"Attention", string(res.Attention)},
			{"MFU", fmtF(res.MFUPercent) + " %"},
			{"Achieved", fmtF(res.ActualTFLOPS) + " TFLOPS"},
			{"Peak", fmtF(res.PeakTFLOPS) + " TFLOPS"},
			{"Bandwidth needed", fmtF(res.RequiredBandwidthGBs) + " GB/s"},
			{"Bandwidth available", fmtF(res.HardwareBandwidthGBs) + " GB/s"},
			{"Bandwidth used", fmtF(res.BandwidthPercent) + " %"},
			{"Prefill MFU / BW", fmtF(res.Prefill.MFUPercent) + " % / " + fmtF(res.Prefill.BandwidthPercent) + " %"},
			{"Decode MFU / BW", fmtF(res.Decode.MFUPercent) + " % / " + fmtF(res.Decode.BandwidthPercent) + " %"},
			{"Model memory", fmtF(res.ModelMemoryGB) + " GB"},
			{"KV cache per request", fmtF(res.KVCacheGB) + " GB"},
			{"Bottleneck", string(res.Bottleneck)},
		}
		for i, s := range res.Suggestions {
			label := ""
			if i == 0 {
				label = "Suggestions"
			}
			rows = append(rows, []string{label, s})
		}
		writeTable(w, []string{"Metric", "Value"}, rows)
		return nil
	}
	return fmt.Errorf("unknown output format %q (valid: table, json, csv)", format)
}

// renderConcurrency writes one concurrency result in the chosen format.
func renderConcurrency(w io.Writer, res *calc.ConcurrencyResult, format string) error {
	switch format {
	case formatJSON:
		return writeJSONTo(w, res)
	case formatCSV:
		headers := []string{
			"id", "hardware_id", "model_id", "attention_kind",
			"total_memory_gb", "weights_gb", "framework_overhead_gb",
			"activation_reserve_gb", "kv_cache_pool_gb",
			"per_request_kv_gb", "max_concurrency", "max_concurrency_paged",
		}
		row := []string{
			res.ID, res.HardwareID, res.ModelID, string(res.Attention),
			fmtG(res.TotalMemoryGB), fmtG(res.Memory.WeightsGB),
			fmtG(res.Memory.FrameworkOverheadGB), fmtG(res.Memory.ActivationReserveGB),
			fmtG(res.Memory.KVCachePoolGB), fmtG(res.PerRequestKVGB),
			strconv.Itoa(res.MaxConcurrency), strconv.Itoa(res.MaxConcurrencyPaged),
		}
		return writeCSVTo(w, headers, [][]string{row})
	case formatTable:
		rows := [][]string{
			{"Hardware", res.HardwareID},
			{"Model", res.ModelID},
			{"Attention", string(res.Attention)},
			{"Fleet memory", fmtF(res.TotalMemoryGB) + " GB"},
			{"Weights", fmtF(res.Memory.WeightsGB) + " GB"},
			{"Framework overhead", fmtF(res.Memory.FrameworkOverheadGB) + " GB"},
			{"Activation reserve", fmtF(res.Memory.ActivationReserveGB) + " GB"},
			{"KV cache pool", fmtF(res.Memory.KVCachePoolGB) + " GB"},
			{"KV per request", fmtF(res.PerRequestKVGB) + " GB"},
			{"Max concurrency", strconv.Itoa(res.MaxConcurrency)},
			{"Max concurrency (paged)", strconv.Itoa(res.MaxConcurrencyPaged)},
		}
		writeTable(w, []string{"Metric", "Value"}, rows)
		return nil
	}
	return fmt.Errorf("unknown output format %q (valid: table, json, csv)", format)
}

// renderSweep writes the ranked outcomes in the chosen format.
func renderSweep(w io.Writer, outcomes []sweep.Outcome, format string) error {
	switch format {
	case formatJSON:
		type row struct {
			Name             string                `json:"name"`
			Input            calc.CalculationInput `json:"input"`
			MFUPercent       *float64              `json:"mfu_percent,omitempty"`
			BandwidthPercent *float64              `json:"bandwidth_percent,omitempty"`
			Bottleneck       string                `json:"bottleneck,omitempty"`
			Error            string                `json:"error,omitempty"`
		}
		rows := make([]row, 0, len(outcomes))
		for _, o := range outcomes {
			r := row{Name: o.Name, Input: o.Input}
			if o.Err != nil {
				r.Error = o.Err.Error()
			} else {
				r.MFUPercent = &o.Result.MFUPercent
				r.BandwidthPercent = &o.Result.BandwidthPercent
				r.Bottleneck = string(o.Result.Bottleneck)
			}
			rows = append(rows, r)
		}
		return writeJSONTo(w, rows)
	case formatCSV, formatTable:
		headers := []string{"rank", "scenario", "gpus", "precision", "mfu_percent", "bandwidth_percent", "bottleneck"}
		rows := make([][]string, 0, len(outcomes))
		for i, o := range outcomes {
			if o.Err != nil {
				rows = append(rows, []string{
					strconv.Itoa(i + 1), o.Name, strconv.Itoa(o.Input.GPUCount),
					string(o.Input.AttentionPrecision), "-", "-", "error: " + o.Err.Error(),
				})
				continue
			}
			rows = append(rows, []string{
				strconv.Itoa(i + 1), o.Name, strconv.Itoa(o.Input.GPUCount),
				string(o.Input.AttentionPrecision),
				fmtF(o.Result.MFUPercent), fmtF(o.Result.BandwidthPercent),
				string(o.Result.Bottleneck),
			})
		}
		if format == formatCSV {
			return writeCSVTo(w, headers, rows)
		}
		writeTable(w, headers, rows)
		return nil
	}
	return fmt.Errorf("unknown output format %q (valid: table, json, csv)", format)
}

// renderHardwareList writes the hardware catalog in the chosen format.
func renderHardwareList(w io.Writer, records []calc.Hardware, format string) error {
	switch format {
	case formatJSON:
		return writeJSONTo(w, records)
	case formatCSV, formatTable:
		headers := []string{"id", "name", "fp16_tflops", "int8_tflops", "memory_gb", "bandwidth_tb_s"}
		rows := make([][]string, 0, len(records))
		for _, h := range records {
			rows = append(rows, []string{
				h.ID, h.Name, fmtG(h.FP16TFLOPS), fmtG(h.INT8TFLOPS),
				fmtG(h.MemoryGB), fmtG(h.BandwidthTBs),
			})
		}
		if format == formatCSV {
			return writeCSVTo(w, headers, rows)
		}
		writeTable(w, headers, rows)
		return nil
	}
	return fmt.Errorf("unknown output format %q (valid: table, json, csv)", format)
}

// renderModelList writes the model catalog in the chosen format.
func renderModelList(w io.Writer, records []calc.Model, format string) error {
	switch format {
	case formatJSON:
		return writeJSONTo(w, records)
	case formatCSV, formatTable:
		headers := []string{"id", "name", "params_b", "layers", "heads", "kv_heads", "attention"}
		rows := make([][]string, 0, len(records))
		for _, m := range records {
			attn := calc.ResolveAttention(m)
			rows = append(rows, []string{
				m.ID, m.Name, fmtG(m.ParamsBillions),
				strconv.Itoa(m.NumLayers), strconv.Itoa(m.NumHeads),
				strconv.Itoa(m.NumKVHeads), string(attn.Kind),
			})
		}
		if format == formatCSV {
			return writeCSVTo(w, headers, rows)
		}
		writeTable(w, headers, rows)
		return nil
	}
	return fmt.Errorf("unknown output format %q (valid: table, json, csv)", format)
}

// renderHistory writes recorded entries in the chosen format.
func renderHistory(w io.Writer, entries []history.Entry, format string) error {
	switch format {
	case formatJSON:
		return writeJSONTo(w, entries)
	case formatCSV, formatTable:
		headers := []string{"when", "kind", "hardware", "model", "headline"}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			headline := fmt.Sprintf("mfu %s%%, bw %s%%, %s", fmtF(e.MFUPercent), fmtF(e.BandwidthPercent), e.Bottleneck)
			if e.Kind == history.KindConcurrency {
				headline = fmt.Sprintf("%d requests (%d paged)", e.MaxConcurrency, e.MaxConcurrencyPaged)
			}
			rows = append(rows, []string{
				e.Timestamp.Local().Format("2006-01-02 15:04"),
				string(e.Kind), e.HardwareID, e.ModelID, headline,
			})
		}
		if format == formatCSV {
			return writeCSVTo(w, headers, rows)
		}
		writeTable(w, headers, rows)
		return nil
	}
	return fmt.Errorf("unknown output format %q (valid: table, json, csv)", format)
}
