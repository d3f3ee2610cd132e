package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "roadmap-engine/0.1"). Per prd001-fetch R4.1.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the GitHub fetch stage.
// Per prd001-fetch R4.1-R4.3.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRetries is the retry budget for rate-limited GitHub requests (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxConcurrent caps the number of in-flight content file downloads
	// (default 20).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`

	// Token is an optional GitHub token for higher API rate limits.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.5-flash-lite").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// EnrichmentConfig holds settings for the enrichment stage.
// Per prd003-enrichment R3.1-R3.4, R4.2.
type EnrichmentConfig struct {
	AIConfig `yaml:",inline"`

	// MaxBatchSize is the largest number of rows sent in one model call
	// (default 20).
	MaxBatchSize int `json:"max_batch_size" yaml:"max_batch_size"`

	// MinCallInterval is the minimum time between consecutive outbound model
	// calls, across batches and fallback rows alike (default 4s).
	MinCallInterval time.Duration `json:"min_call_interval" yaml:"min_call_interval"`

	// BackoffBase is the base duration for exponential retry backoff (default 1s).
	BackoffBase time.Duration `json:"backoff_base" yaml:"backoff_base"`

	// CacheDir is the directory holding the enrichment cache database
	// (default ".cache").
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// OutputFormat selects the export output format.
type OutputFormat string

const (
	OutputCSV  OutputFormat = "csv"
	OutputYAML OutputFormat = "yaml"
)

// ExportConfig holds settings for the export stage.
// Per prd004-export R1.1-R1.3.
type ExportConfig struct {
	// OutputDir is the directory for exported files (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Format selects the output format: csv or yaml.
	Format OutputFormat `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Enrichment EnrichmentConfig `json:"enrichment" yaml:"enrichment"`
	Export     ExportConfig     `json:"export" yaml:"export"`
}
