package config

import "time"

const (
	DefaultChunkSize   = 800
	DefaultTopK        = 3
	DefaultLLMModel    = "gpt-4o-mini"
	DefaultEmbedModel  = "text-embedding-3-small"
	DefaultStoreDir    = "./storage"
	DefaultServerPort  = 4000
	DefaultLLMService  = "openai"
	defaultDuckDuckGo  = "https://api.duckduckgo.com/"
	defaultCoinGecko   = "https://api.coingecko.com/api/v3/simple/price"
	defaultExcerpt     = 2000
	defaultSummarizeIn = 8000
)

// Defaults returns the configuration used for any value left unset by the
// config file and environment.
func Defaults() Config {
	return Config{
		LLM: LLM{
			Service: DefaultLLMService,
			Model:   DefaultLLMModel,
		},
		Embeddings: EmbeddingsConfig{
			Model: DefaultEmbedModel,
		},
		RAG: RAGConfig{
			ChunkSize:            DefaultChunkSize,
			TopK:                 DefaultTopK,
			TriggerKeywords:      []string{"price", "latest", "today", "current", "now"},
			SummaryExcerptChars:  defaultExcerpt,
			SummarizerInputChars: defaultSummarizeIn,
		},
		WebSearch: WebSearchConfig{
			DuckDuckGoURL: defaultDuckDuckGo,
			CoinGeckoURL:  defaultCoinGecko,
			Timeout:       5 * time.Second,
			PriceTimeout:  3 * time.Second,
			PriceAssets: []PriceAsset{
				{ID: "pulsechain", Symbol: "PLS"},
				{ID: "hex", Symbol: "HEX"},
				{ID: "pulsex", Symbol: "PLSX"},
			},
			FallbackKeywords: []string{"price", "pulsechain"},
		},
		Store: StoreConfig{
			Dir: DefaultStoreDir,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
