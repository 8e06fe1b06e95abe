package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llmcalc/llmcalc/calc"
)

const (
	hfBaseURL       = "https://huggingface.co"
	hfConfigFile    = "config.json"
	llmcalcCacheDir = ".llmcalc"
	modelConfigsDir = "model_configs"
	hfHTTPTimeout   = 30 * time.Second
)

var (
	fetchConfigDir string  // Directory holding an already-downloaded config.json
	fetchParams    float64 // Pins the parameter count in billions
	fetchOut       string  // Output path; empty writes to stdout
)

// hfConfig is the subset of a HuggingFace config.json the catalog record
// needs. Hybrid checkpoints carry the linear_* fields; pure transformers
// leave them zero.
type hfConfig struct {
	ModelType             string `json:"model_type"`
	NumHiddenLayers       int    `json:"num_hidden_layers"`
	HiddenSize            int    `json:"hidden_size"`
	NumAttentionHeads     int    `json:"num_attention_heads"`
	NumKeyValueHeads      int    `json:"num_key_value_heads"`
	HeadDim               int    `json:"head_dim"`
	VocabSize             int    `json:"vocab_size"`
	IntermediateSize      int    `json:"intermediate_size"`
	MaxPositionEmbeddings int    `json:"max_position_embeddings"`

	LinearNumKeyHeads     int `json:"linear_num_key_heads"`
	LinearNumValueHeads   int `json:"linear_num_value_heads"`
	LinearKeyHeadDim      int `json:"linear_key_head_dim"`
	LinearValueHeadDim    int `json:"linear_value_head_dim"`
	LinearConvKernelDim   int `json:"linear_conv_kernel_dim"`
	FullAttentionInterval int `json:"full_attention_interval"`
}

// hfModelInfo is the subset of the HuggingFace /api/models response carrying
// the safetensors parameter count.
type hfModelInfo struct {
	Safetensors *struct {
		Total int64 `json:"total"`
	} `json:"safetensors"`
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <hf-repo>",
	Short: "Fetch a model config from HuggingFace and emit a catalog record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		repo := args[0]

		dir, err := resolveFetchedConfig(repo, fetchConfigDir)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		cfgPath := filepath.Join(dir, hfConfigFile)
		data, err := os.ReadFile(cfgPath)
		if err != nil {
			logrus.Fatalf("reading %s: %v", cfgPath, err)
		}
		var cfg hfConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			logrus.Fatalf("parsing %s: %v", cfgPath, err)
		}

		params := fetchParams
		if params <= 0 {
			total, err := fetchHFParamCount(repo)
			if err != nil {
				logrus.Warnf("Parameter count lookup failed for %s: %v", repo, err)
			}
			if total > 0 {
				params = float64(total) / 1e9
			} else {
				params = estimateParamsBillions(cfg)
				logrus.Warnf("Estimated %.2fB parameters from config dimensions; pass --params to pin the exact count", params)
			}
		}

		m := convertHFConfig(modelIDFromRepo(repo), repo, cfg, params)
		if err := m.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}

		out, closer, err := openOutput(fetchOut)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer closer()
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]calc.Model{m.ID: m}); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Wrote model %q; load it with --model-file", m.ID)
	},
}

// resolveFetchedConfig finds a config.json for the given repo.
// Resolution order: explicit flag > cache > HF fetch. Returns the path to a
// directory containing config.json.
func resolveFetchedConfig(repo, explicitDir string) (string, error) {
	if explicitDir != "" {
		return explicitDir, nil
	}

	// Sanitize the repo name for filesystem paths (replace / with -)
	cacheModelID := strings.ReplaceAll(repo, "/", "-")

	cacheDir := hfCacheDir(cacheModelID)
	cachePath := filepath.Join(cacheDir, hfConfigFile)
	if _, err := os.Stat(cachePath); err == nil {
		logrus.Infof("Using cached config from %s", cacheDir)
		return cacheDir, nil
	}

	fetchedDir, err := fetchHFConfig(repo, cacheModelID)
	if err != nil {
		return "", fmt.Errorf("could not resolve config.json for %q (tried cache %s, then HuggingFace): %w",
			repo, cachePath, err)
	}
	logrus.Infof("Fetched and cached config for %s", repo)
	return fetchedDir, nil
}

// fetchHFConfig downloads config.json from HuggingFace and caches it locally.
// Supports HF_TOKEN env var for gated models.
func fetchHFConfig(repo, cacheModelID string) (string, error) {
	url := fmt.Sprintf("%s/%s/resolve/main/%s", hfBaseURL, repo, hfConfigFile)
	return fetchHFConfigFromURL(url, cacheModelID)
}

// fetchHFConfigFromURL fetches config.json from the given URL and caches it.
// Extracted for testability (allows injecting test server URLs).
func fetchHFConfigFromURL(url, cacheModelID string) (string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	// Support gated models via HF_TOKEN
	if token := os.Getenv("HF_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: hfHTTPTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		// success, continue
	case http.StatusNotFound:
		return "", fmt.Errorf("not found on HuggingFace (HTTP 404). Check the repo spelling. URL: %s", url)
	case http.StatusUnauthorized:
		return "", fmt.Errorf("authentication required (HTTP 401). Set HF_TOKEN env var. URL: %s", url)
	default:
		return "", fmt.Errorf("unexpected HTTP %d from HuggingFace for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	cacheDir := hfCacheDir(cacheModelID)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir %s: %w", cacheDir, err)
	}

	cachePath := filepath.Join(cacheDir, hfConfigFile)
	if err := os.WriteFile(cachePath, body, 0o644); err != nil {
		return "", fmt.Errorf("write cache file %s: %w", cachePath, err)
	}

	return cacheDir, nil
}

// fetchHFParamCount asks the HuggingFace model API for the safetensors
// parameter total. Returns 0 without error when the repo carries no
// safetensors metadata.
func fetchHFParamCount(repo string) (int64, error) {
	url := fmt.Sprintf("%s/api/models/%s?expand[]=safetensors", hfBaseURL, repo)
	return fetchHFParamCountFromURL(url)
}

// fetchHFParamCountFromURL is the URL-injectable body of fetchHFParamCount.
func fetchHFParamCountFromURL(url string) (int64, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if token := os.Getenv("HF_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: hfHTTPTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected HTTP %d from HuggingFace for %s", resp.StatusCode, url)
	}

	var info hfModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return 0, fmt.Errorf("parse model info: %w", err)
	}
	if info.Safetensors == nil {
		return 0, nil
	}
	return info.Safetensors.Total, nil
}

// hfCacheDir returns the cache directory for a given model.
func hfCacheDir(cacheModelID string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, llmcalcCacheDir, modelConfigsDir, cacheModelID)
}

// modelIDFromRepo derives the catalog id from a repo name: the part after
// the org prefix, lowercased. "meta-llama/Llama-3.1-8B" becomes
// "llama-3.1-8b".
func modelIDFromRepo(repo string) string {
	short := repo
	if i := strings.LastIndex(repo, "/"); i >= 0 {
		short = repo[i+1:]
	}
	return strings.ToLower(short)
}

// estimateParamsBillions derives a parameter count from config dimensions
// when safetensors metadata is unavailable. Assumes untied embeddings and a
// gated FFN, which matches llama-family checkpoints.
func estimateParamsBillions(cfg hfConfig) float64 {
	heads := cfg.NumAttentionHeads
	kvHeads := cfg.NumKeyValueHeads
	if kvHeads == 0 {
		kvHeads = heads
	}
	headDim := cfg.HeadDim
	if headDim == 0 && heads > 0 {
		headDim = cfg.HiddenSize / heads
	}

	embed := 2 * float64(cfg.VocabSize) * float64(cfg.HiddenSize)
	attn := 2 * float64(cfg.HiddenSize) * float64(heads*headDim)   // q and o projections
	attn += 2 * float64(cfg.HiddenSize) * float64(kvHeads*headDim) // k and v projections
	ffn := 3 * float64(cfg.HiddenSize) * float64(cfg.IntermediateSize)
	return (embed + float64(cfg.NumHiddenLayers)*(attn+ffn)) / 1e9
}

// convertHFConfig maps a HuggingFace config onto a catalog record. A missing
// num_key_value_heads means every attention head carries its own KV, per
// HuggingFace convention.
func convertHFConfig(id, name string, cfg hfConfig, paramsBillions float64) calc.Model {
	kvHeads := cfg.NumKeyValueHeads
	if kvHeads == 0 {
		kvHeads = cfg.NumAttentionHeads
	}

	m := calc.Model{
		ID:              id,
		Name:            name,
		ParamsBillions:  paramsBillions,
		NumLayers:       cfg.NumHiddenLayers,
		HiddenDim:       cfg.HiddenSize,
		NumHeads:        cfg.NumAttentionHeads,
		NumKVHeads:      kvHeads,
		HeadDim:         cfg.HeadDim,
		VocabSize:       cfg.VocabSize,
		IntermediateDim: cfg.IntermediateSize,
		MaxPositions:    cfg.MaxPositionEmbeddings,
	}

	if cfg.LinearNumKeyHeads > 0 {
		interval := cfg.FullAttentionInterval
		if interval <= 0 {
			interval = 4
		}
		valueHeads := cfg.LinearNumValueHeads
		if valueHeads == 0 {
			valueHeads = cfg.LinearNumKeyHeads
		}
		valueDim := cfg.LinearValueHeadDim
		if valueDim == 0 {
			valueDim = cfg.LinearKeyHeadDim
		}
		convKernel := cfg.LinearConvKernelDim
		if convKernel == 0 {
			convKernel = 4
		}
		full := cfg.NumHiddenLayers / interval
		m.Hybrid = &calc.HybridConfig{
			FullAttentionLayers:   full,
			LinearAttentionLayers: cfg.NumHiddenLayers - full,
			LinearKeyHeads:        cfg.LinearNumKeyHeads,
			LinearValueHeads:      valueHeads,
			LinearKeyHeadDim:      cfg.LinearKeyHeadDim,
			LinearValueHeadDim:    valueDim,
			ConvKernelSize:        convKernel,
		}
	}

	return m
}

func init() {
	fetchCmd.Flags().StringVar(&fetchConfigDir, "config", "", "Directory holding an already-downloaded config.json")
	fetchCmd.Flags().Float64Var(&fetchParams, "params", 0, "Parameter count in billions (skips the HuggingFace lookup)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "Output file (default stdout)")

	rootCmd.AddCommand(fetchCmd)
}
