package config

import "time"

// Config holds the configuration of the application
// Use config.LoadConfig to create a new instance
type Config struct {
	LLM        LLM              `mapstructure:"llm"        yaml:"llm"`
	Embeddings EmbeddingsConfig `mapstructure:"embeddings" yaml:"embeddings"`
	RAG        RAGConfig        `mapstructure:"rag"        yaml:"rag"`
	WebSearch  WebSearchConfig  `mapstructure:"websearch"  yaml:"websearch"`
	Store      StoreConfig      `mapstructure:"store"      yaml:"store"`
	Server     ServerConfig     `mapstructure:"server"     yaml:"server"`
	Log        LogConfig        `mapstructure:"log"        yaml:"log"`
	Tracing    TracingConfig    `mapstructure:"tracing"    yaml:"tracing"`
}

type LLM struct {
	// Service is either "openai" or "anthropic"
	Service string `mapstructure:"service" jsonschema:"enum=openai,enum=anthropic" yaml:"service"`
	Model   string `mapstructure:"model"                                          yaml:"model"`
	// OpenAIAPIKey is loaded from ENV not config file.
	OpenAIAPIKey string `mapstructure:"openai_api_key" yaml:"-"`
	// AnthropicAPIKey is loaded from ENV not config file.
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" yaml:"-"`
	OpenAIEndpoint  string `mapstructure:"openai_endpoint"   yaml:"openai_endpoint"`
}

type EmbeddingsConfig struct {
	Model string `mapstructure:"model" yaml:"model"`
	// OpenAIAPIKey falls back to llm.openai_api_key when unset.
	OpenAIAPIKey   string `mapstructure:"openai_api_key"  yaml:"-"`
	OpenAIEndpoint string `mapstructure:"openai_endpoint" yaml:"openai_endpoint"`
}

type RAGConfig struct {
	ChunkSize            int      `mapstructure:"chunk_size"             yaml:"chunk_size"`
	TopK                 int      `mapstructure:"top_k"                  yaml:"top_k"`
	TriggerKeywords      []string `mapstructure:"trigger_keywords"       yaml:"trigger_keywords"`
	SummaryExcerptChars  int      `mapstructure:"summary_excerpt_chars"  yaml:"summary_excerpt_chars"`
	SummarizerInputChars int      `mapstructure:"summarizer_input_chars" yaml:"summarizer_input_chars"`
	// AsyncWriteback routes Q&A write-back through the task queue instead of
	// committing inline after the response is produced.
	AsyncWriteback bool `mapstructure:"async_writeback" yaml:"async_writeback"`
}

type WebSearchConfig struct {
	Disabled         bool          `mapstructure:"disabled"          yaml:"disabled"`
	DuckDuckGoURL    string        `mapstructure:"duckduckgo_url"    yaml:"duckduckgo_url"`
	CoinGeckoURL     string        `mapstructure:"coingecko_url"     yaml:"coingecko_url"`
	Timeout          time.Duration `mapstructure:"timeout"           yaml:"timeout"`
	PriceTimeout     time.Duration `mapstructure:"price_timeout"     yaml:"price_timeout"`
	PriceAssets      []PriceAsset  `mapstructure:"price_assets"      yaml:"price_assets"`
	FallbackKeywords []string      `mapstructure:"fallback_keywords" yaml:"fallback_keywords"`
}

// PriceAsset maps a CoinGecko asset id to the ticker shown in results.
type PriceAsset struct {
	ID     string `mapstructure:"id"     yaml:"id"`
	Symbol string `mapstructure:"symbol" yaml:"symbol"`
}

type StoreConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// TracingConfig controls the OTLP trace exporter. Spans are always recorded
// against the global provider; nothing is exported unless Enabled is set.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Endpoint is host:port of an OTLP/HTTP collector. Empty uses the
	// OTEL_EXPORTER_OTLP_ENDPOINT env var or the exporter default.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`
}
