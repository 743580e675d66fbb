package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLMConfig holds connection details for one model endpoint.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "ollama" or "openai"
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Key      string `yaml:"key"`
}

// RAGConfig controls chunking and retrieval.
type RAGConfig struct {
	ChunkSize     int `yaml:"chunk_size"`
	ChunkOverlap  int `yaml:"chunk_overlap"`
	TopK          int `yaml:"top_k"`
	MaxFiles      int `yaml:"max_files"`
	HistoryWindow int `yaml:"history_window"`
}

// SafetyConfig lists disallowed words for the input filter.
type SafetyConfig struct {
	ToxicWords []string `yaml:"toxic_words"`
}

// RouterConfig enumerates the topic vocabulary for keyword-to-slide lookup.
type RouterConfig struct {
	TopicKeywords []string `yaml:"topic_keywords"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type Config struct {
	EmbedLLM LLMConfig    `yaml:"embed_llm"`
	ChatLLM  LLMConfig    `yaml:"chat_llm"`
	RAG      RAGConfig    `yaml:"rag"`
	Safety   SafetyConfig `yaml:"safety"`
	Router   RouterConfig `yaml:"router"`
	Server   ServerConfig `yaml:"server"`
}

const (
	defaultChunkSize     = 400
	defaultChunkOverlap  = 100
	defaultTopK          = 4
	defaultMaxFiles      = 5
	defaultHistoryWindow = 20
)

// Default returns the configuration the original deployment ran with.
func Default() *Config {
	return &Config{
		EmbedLLM: LLMConfig{
			Provider: "ollama",
			BaseURL:  "http://localhost:11434",
			Model:    "nomic-embed-text",
		},
		ChatLLM: LLMConfig{
			Provider: "ollama",
			BaseURL:  "http://localhost:11434",
			Model:    "llama3.2",
		},
		RAG: RAGConfig{
			ChunkSize:     defaultChunkSize,
			ChunkOverlap:  defaultChunkOverlap,
			TopK:          defaultTopK,
			MaxFiles:      defaultMaxFiles,
			HistoryWindow: defaultHistoryWindow,
		},
		Safety: SafetyConfig{
			ToxicWords: []string{"anjing", "babi", "kontol", "goblok", "bangsat", "tolol", "bodoh"},
		},
		Router: RouterConfig{
			TopicKeywords: []string{"mou", "pakta integritas", "kontrak kerja", "aspek pengadaan", "cism"},
		},
		Server: ServerConfig{
			Port: "8090",
		},
	}
}

// LoadConfig reads a yaml config from path, falling back to defaults for
// any unset field. A missing file yields the defaults. Model endpoint
// settings can be overridden by environment variables (a .env file is
// honored when present).
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		return nil, fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = def.RAG.ChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = def.RAG.ChunkOverlap
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = def.RAG.TopK
	}
	if cfg.RAG.MaxFiles == 0 {
		cfg.RAG.MaxFiles = def.RAG.MaxFiles
	}
	if cfg.RAG.HistoryWindow == 0 {
		cfg.RAG.HistoryWindow = def.RAG.HistoryWindow
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM = def.EmbedLLM
	}
	if cfg.ChatLLM.Provider == "" {
		cfg.ChatLLM = def.ChatLLM
	}
	if len(cfg.Safety.ToxicWords) == 0 {
		cfg.Safety.ToxicWords = def.Safety.ToxicWords
	}
	if len(cfg.Router.TopicKeywords) == 0 {
		cfg.Router.TopicKeywords = def.Router.TopicKeywords
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = def.Server.Port
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EMBED_BASE_URL"); v != "" {
		cfg.EmbedLLM.BaseURL = v
	}
	if v := os.Getenv("EMBED_MODEL"); v != "" {
		cfg.EmbedLLM.Model = v
	}
	if v := os.Getenv("CHAT_BASE_URL"); v != "" {
		cfg.ChatLLM.BaseURL = v
	}
	if v := os.Getenv("CHAT_MODEL"); v != "" {
		cfg.ChatLLM.Model = v
	}
	if v := os.Getenv("CHAT_API_KEY"); v != "" {
		cfg.ChatLLM.Key = v
	}
	if v := os.Getenv("EMBED_API_KEY"); v != "" {
		cfg.EmbedLLM.Key = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
}
