package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the site-level configuration for one build. It is loaded once,
// validated, and treated as read-only for the duration of the build.
type Config struct {
	BaseURL      string            `yaml:"baseURL"`
	LanguageCode string            `yaml:"languageCode,omitempty"`
	Title        string            `yaml:"title"`
	Params       map[string]any    `yaml:"params,omitempty"`
	Menu         MenuConfig        `yaml:"menu,omitempty"`
	Taxonomies   map[string]string `yaml:"taxonomies,omitempty"`
	Outputs      []OutputFormat    `yaml:"outputs,omitempty"`
	Pagination   PaginationConfig  `yaml:"pagination,omitempty"`
	Content      ContentConfig     `yaml:"content,omitempty"`
	Output       OutputConfig      `yaml:"output,omitempty"`
}

// MenuConfig groups named menus; the blog only uses "main".
type MenuConfig struct {
	Main []MenuEntry `yaml:"main,omitempty"`
}

// MenuEntry represents one navigation menu item.
type MenuEntry struct {
	Identifier string `yaml:"identifier"`
	Name       string `yaml:"name"`
	URL        string `yaml:"url"`
	Weight     int    `yaml:"weight,omitempty"`
}

// PaginationConfig controls home index pagination.
type PaginationConfig struct {
	PageSize int `yaml:"page_size,omitempty"` // Documents per home page (default 10)
}

// ContentConfig locates the content tree.
type ContentConfig struct {
	Directory string `yaml:"directory,omitempty"` // Defaults to "content"
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory,omitempty"`
	Clean     bool   `yaml:"clean,omitempty"` // Remove the previous-output backup after a successful publish
}

// OutputFormat enumerates supported rendered output formats.
type OutputFormat string

const (
	OutputHTML OutputFormat = "html"
	OutputRSS  OutputFormat = "rss"
	OutputJSON OutputFormat = "json"
)

// NormalizeOutputFormat canonicalizes user input returning empty string if unknown.
func NormalizeOutputFormat(raw string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(OutputHTML):
		return OutputHTML
	case string(OutputRSS):
		return OutputRSS
	case string(OutputJSON):
		return OutputJSON
	default:
		return ""
	}
}

// HasOutput reports whether the given format is enabled.
func (c *Config) HasOutput(f OutputFormat) bool {
	for _, o := range c.Outputs {
		if o == f {
			return true
		}
	}
	return false
}

// SortedMenu returns the main menu entries ordered by weight (stable on name).
func (c *Config) SortedMenu() []MenuEntry {
	out := make([]MenuEntry, len(c.Menu.Main))
	copy(out, c.Menu.Main)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight < out[j].Weight
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TaxonomySingular returns the singular name configured for a taxonomy
// plural, falling back to the plural itself.
func (c *Config) TaxonomySingular(plural string) string {
	if s, ok := c.Taxonomies[plural]; ok && s != "" {
		return s
	}
	return plural
}

// Load reads, expands, normalizes, and validates a configuration file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; absence is not an error.
	for _, envPath := range []string{".env", ".env.local"} {
		if _, statErr := os.Stat(envPath); statErr == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("load %s: %w", envPath, err)
			}
			break
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(&config)
	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// normalize canonicalizes enumerations, dropping unknown output formats.
func normalize(config *Config) {
	formats := make([]OutputFormat, 0, len(config.Outputs))
	for _, o := range config.Outputs {
		if f := NormalizeOutputFormat(string(o)); f != "" {
			formats = append(formats, f)
		} else {
			fmt.Fprintf(os.Stderr, "config normalization: dropping unknown output format %q\n", o)
		}
	}
	config.Outputs = formats
	config.BaseURL = strings.TrimSpace(config.BaseURL)
}

// applyDefaults applies default values to configuration
func applyDefaults(config *Config) {
	if len(config.Outputs) == 0 {
		config.Outputs = []OutputFormat{OutputHTML, OutputRSS, OutputJSON}
	}
	if config.Pagination.PageSize <= 0 {
		config.Pagination.PageSize = 10
	}
	if config.Content.Directory == "" {
		config.Content.Directory = "content"
	}
	if config.Output.Directory == "" {
		config.Output.Directory = "public"
	}
	if config.LanguageCode == "" {
		config.LanguageCode = "en-us"
	}
	if config.Taxonomies == nil {
		config.Taxonomies = map[string]string{"tags": "tag", "series": "series"}
	}
}

// validate rejects configurations that cannot produce a coherent site.
func validate(config *Config) error {
	if config.Title == "" {
		return fmt.Errorf("title is required")
	}
	if config.BaseURL == "" {
		return fmt.Errorf("baseURL is required")
	}
	if !strings.HasPrefix(config.BaseURL, "http://") && !strings.HasPrefix(config.BaseURL, "https://") {
		return fmt.Errorf("baseURL must be an absolute http(s) URL: %s", config.BaseURL)
	}
	for i, m := range config.Menu.Main {
		if m.Name == "" || m.URL == "" {
			return fmt.Errorf("menu entry %d requires name and url", i)
		}
	}
	return nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		BaseURL:      "https://blog.example.com",
		LanguageCode: "en-us",
		Title:        "A Walking Skeleton",
		Params: map[string]any{
			"description":     "Notes on software design",
			"showReadingTime": true,
		},
		Menu: MenuConfig{Main: []MenuEntry{
			{Identifier: "home", Name: "Home", URL: "/", Weight: 10},
			{Identifier: "tags", Name: "Tags", URL: "/tags/", Weight: 20},
			{Identifier: "series", Name: "Series", URL: "/series/", Weight: 30},
		}},
		Taxonomies: map[string]string{"tags": "tag", "series": "series"},
		Outputs:    []OutputFormat{OutputHTML, OutputRSS, OutputJSON},
		Pagination: PaginationConfig{PageSize: 10},
		Content:    ContentConfig{Directory: "content"},
		Output:     OutputConfig{Directory: "public", Clean: true},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// #nosec G306 -- site configuration is not sensitive
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
