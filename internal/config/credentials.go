package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DotEnvFile is read from the working directory for credentials.
const DotEnvFile = ".env"

// Environment looks up process environment variables.
type Environment interface {
	LookupEnv(key string) (string, bool)
}

// OSEnvironment implements Environment with os.LookupEnv.
type OSEnvironment struct{}

func (OSEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// APIKeyEnvName returns the environment variable holding the provider's key.
func (p ProviderConfig) APIKeyEnvName() string {
	if p.APIKeyEnv != "" {
		return p.APIKeyEnv
	}
	switch p.Name {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "GROQ_API_KEY"
	}
}

// ResolveAPIKey returns the first non-empty key from, in order: the process
// environment, the parsed .env values, and provider.api_key.
func ResolveAPIKey(p ProviderConfig, env Environment, dotenv map[string]string) (string, error) {
	name := p.APIKeyEnvName()
	if v, ok := env.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	if v := strings.TrimSpace(dotenv[name]); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(p.APIKey); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: set %s in the environment or %s, or provider.api_key in ~/.config/%s/%s",
		ErrMissingCredential, name, DotEnvFile, ConfigDir, ConfigFile)
}

// LoadDotEnv reads and parses a .env file. A missing file yields no values.
func (l *Loader) LoadDotEnv(path string) (map[string]string, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to open env file: %w", err)
	}
	return ParseEnv(data)
}

// ParseEnv parses .env content and returns a map of environment variables.
// It supports:
// - KEY=VALUE format, with an optional "export " prefix
// - Comments starting with #
// - Empty lines
// - Basic quoted values (single and double quotes)
//
// It does NOT support:
// - Multi-line values
// - Variable expansion
// - Complex shell escaping
func ParseEnv(data []byte) (map[string]string, error) {
	env := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		// Split on first =
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			return nil, fmt.Errorf("invalid line %d: empty key", lineNum)
		}

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		env[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading env file: %w", err)
	}

	return env, nil
}
