package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level confchat configuration, corresponding to .confchat.yml.
type Config struct {
	Provider          ProviderType   `yaml:"provider" koanf:"provider"`
	Model             string         `yaml:"model" koanf:"model"`
	Port              int            `yaml:"port" koanf:"port"`
	DataDir           string         `yaml:"data_dir" koanf:"data_dir"`
	AllowAllCORS      bool           `yaml:"allow_all_cors" koanf:"allow_all_cors"`
	MaxToolRounds     int            `yaml:"max_tool_rounds" koanf:"max_tool_rounds"`
	RequestsPerMinute int            `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	Schedule          ScheduleConfig `yaml:"schedule" koanf:"schedule"`
	Scrape            ScrapeConfig   `yaml:"scrape" koanf:"scrape"`
}

// ScheduleConfig points at the upstream conference schedule API.
type ScheduleConfig struct {
	SourceURL string `yaml:"source_url" koanf:"source_url"`
	CacheTTL  string `yaml:"cache_ttl" koanf:"cache_ttl"` // Go duration, e.g. "10m"
	Timezone  string `yaml:"timezone" koanf:"timezone"`
}

// ScrapeConfig points at the bulk profile scrape provider.
type ScrapeConfig struct {
	Endpoint string `yaml:"endpoint" koanf:"endpoint"`
	Token    string `yaml:"token" koanf:"token"`
	MaxItems int    `yaml:"max_items" koanf:"max_items"`
}
