package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/llmcalc/llmcalc/calc"
	"github.com/llmcalc/llmcalc/calc/catalog"
)

func newTestService(t *testing.T) (*Client, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore()
	ts := httptest.NewServer(NewServer(store).Handler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL), store
}

// A command pointed at a server must report the same numbers it would have
// computed in process, whichever Calculator implementation it holds.
func TestClientUtilization_MatchesLocal(t *testing.T) {
	client, store := newTestService(t)

	hw, err := store.Hardware("a100-80gb")
	if err != nil {
		t.Fatal(err)
	}
	m, err := store.Model("llama-3.1-8b")
	if err != nil {
		t.Fatal(err)
	}
	in := calc.CalculationInput{
		AttentionPrecision: calc.PrecisionBF16,
		FFNPrecision:       calc.PrecisionBF16,
		GPUCount:           2,
		ContextLength:      4096,
		GeneratedLength:    512,
		BatchSize:          8,
		TTFTMillis:         500,
		TPOTMillis:         25,
	}

	ctx := context.Background()
	var implementations = map[string]calc.Calculator{
		"local":  calc.Local{},
		"remote": client,
	}

	results := map[string]*calc.CalculationResult{}
	for name, impl := range implementations {
		res, err := impl.Utilization(ctx, in, hw, m)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		results[name] = res
	}

	local, remote := results["local"], results["remote"]
	if remote.MFUPercent != local.MFUPercent {
		t.Errorf("mfu: remote %v, local %v", remote.MFUPercent, local.MFUPercent)
	}
	if remote.BandwidthPercent != local.BandwidthPercent {
		t.Errorf("bandwidth: remote %v, local %v", remote.BandwidthPercent, local.BandwidthPercent)
	}
	if remote.KVCacheGB != local.KVCacheGB {
		t.Errorf("kv cache: remote %v, local %v", remote.KVCacheGB, local.KVCacheGB)
	}
	if remote.Flops.Total() != local.Flops.Total() {
		t.Errorf("flops: remote %v, local %v", remote.Flops.Total(), local.Flops.Total())
	}
	if remote.Bottleneck != local.Bottleneck {
		t.Errorf("bottleneck: remote %s, local %s", remote.Bottleneck, local.Bottleneck)
	}
	if remote.Attention != local.Attention {
		t.Errorf("attention: remote %s, local %s", remote.Attention, local.Attention)
	}
}

func TestClientConcurrency_MatchesLocal(t *testing.T) {
	client, store := newTestService(t)

	hw, err := store.Hardware("h100-sxm")
	if err != nil {
		t.Fatal(err)
	}
	m, err := store.Model("falcon-7b")
	if err != nil {
		t.Fatal(err)
	}
	in := calc.NewConcurrencyInput(calc.PrecisionFP16, 1, 8192)

	ctx := context.Background()
	local, err := calc.Local{}.Concurrency(ctx, in, hw, m)
	if err != nil {
		t.Fatal(err)
	}
	remote, err := client.Concurrency(ctx, in, hw, m)
	if err != nil {
		t.Fatal(err)
	}

	if remote.MaxConcurrency != local.MaxConcurrency {
		t.Errorf("max concurrency: remote %d, local %d", remote.MaxConcurrency, local.MaxConcurrency)
	}
	if remote.MaxConcurrencyPaged != local.MaxConcurrencyPaged {
		t.Errorf("paged concurrency: remote %d, local %d", remote.MaxConcurrencyPaged, local.MaxConcurrencyPaged)
	}
	if remote.Memory.KVCachePoolGB != local.Memory.KVCachePoolGB {
		t.Errorf("kv pool: remote %v, local %v", remote.Memory.KVCachePoolGB, local.Memory.KVCachePoolGB)
	}
}

func TestClientUtilization_ServerErrorSurfaces(t *testing.T) {
	client, store := newTestService(t)

	hw, _ := store.Hardware("a100-80gb")
	m, _ := store.Model("llama-2-7b")
	m.ID = "not-in-server-catalog"

	in := calc.CalculationInput{
		AttentionPrecision: calc.PrecisionFP16,
		FFNPrecision:       calc.PrecisionFP16,
		GPUCount:           1,
		ContextLength:      2048,
		GeneratedLength:    256,
		BatchSize:          1,
		TTFTMillis:         350,
		TPOTMillis:         40,
	}

	_, err := client.Utilization(context.Background(), in, hw, m)
	if err == nil {
		t.Fatal("expected error for unknown model id")
	}
	if got := err.Error(); !strings.Contains(got, "404") || !strings.Contains(got, "not-in-server-catalog") {
		t.Errorf("error %q should carry the status and the offending id", got)
	}
}

func TestClientListHardware(t *testing.T) {
	client, store := newTestService(t)

	records, err := client.ListHardware(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(store.HardwareIDs()) {
		t.Errorf("got %d records, want %d", len(records), len(store.HardwareIDs()))
	}
}

func TestClientListModels(t *testing.T) {
	client, store := newTestService(t)

	records, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(store.ModelIDs()) {
		t.Errorf("got %d records, want %d", len(records), len(store.ModelIDs()))
	}
}
