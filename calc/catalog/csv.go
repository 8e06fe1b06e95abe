package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/llmcalc/llmcalc/calc"
)

// Column layouts for catalog CSV exchange. Model rows carry the hybrid
// columns too, zeroed for pure transformers, so every checkpoint round-trips.
var (
	hardwareCSVHeader = []string{
		"id", "name",
		"fp16_tflops", "bf16_tflops", "int8_tflops", "fp32_tflops",
		"memory_gb", "bandwidth_tb_s",
	}
	modelCSVHeader = []string{
		"id", "name", "params_billions",
		"num_hidden_layers", "hidden_size", "num_attention_heads", "num_key_value_heads",
		"head_dim", "vocab_size", "intermediate_size", "max_position_embeddings",
		"full_attention_layers", "linear_attention_layers",
		"linear_key_heads", "linear_value_heads",
		"linear_key_head_dim", "linear_value_head_dim", "conv_kernel_size",
	}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ExportHardwareCSV writes records with the hardware column layout.
func ExportHardwareCSV(w io.Writer, records []calc.Hardware) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(hardwareCSVHeader); err != nil {
		return fmt.Errorf("write hardware CSV header: %w", err)
	}
	for _, h := range records {
		row := []string{
			h.ID, h.Name,
			formatFloat(h.FP16TFLOPS), formatFloat(h.BF16TFLOPS),
			formatFloat(h.INT8TFLOPS), formatFloat(h.FP32TFLOPS),
			formatFloat(h.MemoryGB), formatFloat(h.BandwidthTBs),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write hardware CSV row %q: %w", h.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportHardwareCSV parses records written by ExportHardwareCSV (or a
// spreadsheet following the same header). Every record is validated.
func ImportHardwareCSV(r io.Reader) ([]calc.Hardware, error) {
	records, err := readCSV(r, hardwareCSVHeader, "hardware")
	if err != nil {
		return nil, err
	}

	out := make([]calc.Hardware, 0, len(records))
	for i, rec := range records {
		rowNum := i + 2 // 1-based, after the header
		floats, err := parseFloats(rec[2:8], rowNum, "hardware")
		if err != nil {
			return nil, err
		}
		h := calc.Hardware{
			ID: rec[0], Name: rec[1],
			FP16TFLOPS: floats[0], BF16TFLOPS: floats[1],
			INT8TFLOPS: floats[2], FP32TFLOPS: floats[3],
			MemoryGB: floats[4], BandwidthTBs: floats[5],
		}
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("hardware CSV row %d: %w", rowNum, err)
		}
		out = append(out, h)
	}
	return out, nil
}

// ExportModelsCSV writes records with the model column layout.
func ExportModelsCSV(w io.Writer, records []calc.Model) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(modelCSVHeader); err != nil {
		return fmt.Errorf("write model CSV header: %w", err)
	}
	for _, m := range records {
		hybrid := m.Hybrid
		if hybrid == nil {
			hybrid = &calc.HybridConfig{}
		}
		row := []string{
			m.ID, m.Name, formatFloat(m.ParamsBillions),
			strconv.Itoa(m.NumLayers), strconv.Itoa(m.HiddenDim),
			strconv.Itoa(m.NumHeads), strconv.Itoa(m.NumKVHeads),
			strconv.Itoa(m.HeadDim), strconv.Itoa(m.VocabSize),
			strconv.Itoa(m.IntermediateDim), strconv.Itoa(m.MaxPositions),
			strconv.Itoa(hybrid.FullAttentionLayers), strconv.Itoa(hybrid.LinearAttentionLayers),
			strconv.Itoa(hybrid.LinearKeyHeads), strconv.Itoa(hybrid.LinearValueHeads),
			strconv.Itoa(hybrid.LinearKeyHeadDim), strconv.Itoa(hybrid.LinearValueHeadDim),
			strconv.Itoa(hybrid.ConvKernelSize),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write model CSV row %q: %w", m.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportModelsCSV parses records written by ExportModelsCSV. Rows with a
// nonzero full_attention_layers column come back as hybrid checkpoints.
func ImportModelsCSV(r io.Reader) ([]calc.Model, error) {
	records, err := readCSV(r, modelCSVHeader, "model")
	if err != nil {
		return nil, err
	}

	out := make([]calc.Model, 0, len(records))
	for i, rec := range records {
		rowNum := i + 2
		params, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("model CSV row %d: invalid params_billions: %w", rowNum, err)
		}
		ints, err := parseInts(rec[3:18], rowNum, "model")
		if err != nil {
			return nil, err
		}

		m := calc.Model{
			ID: rec[0], Name: rec[1], ParamsBillions: params,
			NumLayers: ints[0], HiddenDim: ints[1],
			NumHeads: ints[2], NumKVHeads: ints[3],
			HeadDim: ints[4], VocabSize: ints[5],
			IntermediateDim: ints[6], MaxPositions: ints[7],
		}
		if ints[8] > 0 {
			m.Hybrid = &calc.HybridConfig{
				FullAttentionLayers:   ints[8],
				LinearAttentionLayers: ints[9],
				LinearKeyHeads:        ints[10],
				LinearValueHeads:      ints[11],
				LinearKeyHeadDim:      ints[12],
				LinearValueHeadDim:    ints[13],
				ConvKernelSize:        ints[14],
			}
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("model CSV row %d: %w", rowNum, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// readCSV pulls all data rows after checking the header matches the expected
// layout exactly.
func readCSV(r io.Reader, header []string, what string) ([][]string, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s CSV: %w", what, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s CSV empty or missing header", what)
	}
	got := records[0]
	if len(got) != len(header) {
		return nil, fmt.Errorf("%s CSV header: expected %d columns, got %d", what, len(header), len(got))
	}
	for i, col := range header {
		if got[i] != col {
			return nil, fmt.Errorf("%s CSV header column %d: expected %q, got %q", what, i+1, col, got[i])
		}
	}
	return records[1:], nil
}

func parseFloats(cols []string, rowNum int, what string) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, col := range cols {
		v, err := strconv.ParseFloat(col, 64)
		if err != nil {
			return nil, fmt.Errorf("%s CSV row %d column %d: %w", what, rowNum, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(cols []string, rowNum int, what string) ([]int, error) {
	out := make([]int, len(cols))
	for i, col := range cols {
		v, err := strconv.Atoi(col)
		if err != nil {
			return nil, fmt.Errorf("%s CSV row %d column %d: %w", what, rowNum, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}
