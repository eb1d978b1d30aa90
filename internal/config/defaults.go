package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	UI       UIConfig       `yaml:"ui"`
	Log      LogConfig      `yaml:"log"`
}

type ProviderConfig struct {
	Name        string  `yaml:"name"`        // Default: "groq" (groq | gemini)
	Model       string  `yaml:"model"`       // Default: "" (provider's default model)
	Temperature float32 `yaml:"temperature"` // Default: 0.2

	// Credentials
	APIKeyEnv string `yaml:"api_key_env"` // Default: "" (GROQ_API_KEY / GEMINI_API_KEY)
	APIKey    string `yaml:"api_key"`     // Default: "" (last resort after env and .env)

	BaseURL               string `yaml:"base_url"`                // Default: "" (provider's endpoint)
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"` // Default: 120
	SystemPrompt          string `yaml:"system_prompt"`
}

type DispatchConfig struct {
	// StrictRegistry turns duplicate capability names into a startup error.
	StrictRegistry bool `yaml:"strict_registry"` // Default: false
	// MaxPayloadBytes bounds how much response text is scanned for a tagged call. 0 = unlimited.
	MaxPayloadBytes int `yaml:"max_payload_bytes"` // Default: 0
}

type UIConfig struct {
	WordWrap     int    `yaml:"word_wrap"`     // Default: 100
	GlamourStyle string `yaml:"glamour_style"` // Default: "auto"
	ColorError   string `yaml:"color_error"`   // Default: "196"
	ColorTool    string `yaml:"color_tool"`    // Default: "63"
	ColorPrompt  string `yaml:"color_prompt"`  // Default: "42"
	Spinner      bool   `yaml:"spinner"`       // Default: true
}

type LogConfig struct {
	Level string `yaml:"level"` // Default: "warn"
	File  string `yaml:"file"`  // Default: "" (stderr)
}

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"

	DefaultSystemPrompt = "You are a helpful coding + Unity game development assistant."
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:                  ProviderGroq,
			Temperature:           0.2,
			RequestTimeoutSeconds: 120,
			SystemPrompt:          DefaultSystemPrompt,
		},
		Dispatch: DispatchConfig{
			StrictRegistry:  false,
			MaxPayloadBytes: 0,
		},
		UI: UIConfig{
			WordWrap:     100,
			GlamourStyle: "auto",
			ColorError:   "196",
			ColorTool:    "63",
			ColorPrompt:  "42",
			Spinner:      true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
