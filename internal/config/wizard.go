package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .confchat.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to confchat! Let's configure your assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = DefaultModel(cfg.Provider)

	// 2. Model override.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: cfg.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	cfg.Model = model

	// 3. Schedule source.
	sourcePrompt := promptui.Prompt{
		Label:   "Conference schedule API URL",
		Default: cfg.Schedule.SourceURL,
	}
	sourceURL, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("schedule source: %w", err)
	}
	cfg.Schedule.SourceURL = sourceURL

	// 4. Scrape provider endpoint (optional; profile analysis is disabled
	// without it).
	scrapePrompt := promptui.Prompt{
		Label:   "Profile scrape provider endpoint (leave blank to disable)",
		Default: "",
	}
	scrapeEndpoint, err := scrapePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("scrape endpoint: %w", err)
	}
	cfg.Scrape.Endpoint = scrapeEndpoint

	// 5. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("must be a port number")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// Check for API key.
	envVar := APIKeyEnvVar(cfg.Provider)
	if envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running confchat server.\n", envVar)
	}

	configPath := ".confchat.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
