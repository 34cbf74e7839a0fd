package config

// defaultModels maps each provider to its default chat model.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI: "gpt-4o",
	ProviderOllama: "llama3",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o",
		Port:              8080,
		DataDir:           ".confchat",
		MaxToolRounds:     6,
		RequestsPerMinute: 60,
		Schedule: ScheduleConfig{
			SourceURL: "https://api.devconnect.org/events",
			CacheTTL:  "10m",
			Timezone:  "America/Argentina/Buenos_Aires",
		},
		Scrape: ScrapeConfig{
			MaxItems: 50,
		},
	}
}

// DefaultModel returns the default chat model for the given provider.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderOpenAI]
}
