package config

import (
	"os"
	"strings"
	"sync"
)

// Credentials is the optional per-call override bundle a caller may attach to
// a generation request. Fields left empty fall through to runtime-configured
// keys, then to environment defaults. The bundle is threaded through every
// remote call and never cached or mutated by the pipeline.
type Credentials struct {
	LLMAPIKey    string `json:"llm_api_key,omitempty"`
	LLMBaseURL   string `json:"llm_base_url,omitempty"`
	PlacesAPIKey string `json:"places_api_key,omitempty"`
}

// Environment variable names for the default credential layer.
const (
	EnvGeminiAPIKey  = "GOOGLE_GEMINI_API_KEY"
	EnvGeminiBaseURL = "GOOGLE_GEMINI_BASE_URL"
	EnvPlacesAPIKey  = "AMAP_WEB_API_KEY"
)

// effectiveValue implements the credential precedence as a pure function:
// per-call override beats runtime-configured value beats environment default.
func effectiveValue(override, runtime, envDefault string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if runtime != "" {
		return runtime
	}
	return envDefault
}

// KeyResolver resolves effective credentials for remote calls. Runtime keys
// can be updated while the service is running (admin config route); reads and
// writes may race across requests, hence the lock.
type KeyResolver struct {
	mu      sync.RWMutex
	runtime map[string]string
}

func NewKeyResolver() *KeyResolver {
	return &KeyResolver{runtime: make(map[string]string)}
}

// SetRuntimeKey installs or replaces a runtime-configured value for the given
// environment variable name. An empty value removes the runtime entry.
func (k *KeyResolver) SetRuntimeKey(name, value string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if value == "" {
		delete(k.runtime, name)
		return
	}
	k.runtime[name] = value
}

func (k *KeyResolver) runtimeKey(name string) string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.runtime[name]
}

// LLMAPIKey returns the effective Gemini API key for one call.
func (k *KeyResolver) LLMAPIKey(creds *Credentials) string {
	var override string
	if creds != nil {
		override = creds.LLMAPIKey
	}
	return effectiveValue(override, k.runtimeKey(EnvGeminiAPIKey), os.Getenv(EnvGeminiAPIKey))
}

// LLMBaseURL returns the effective Gemini endpoint override, empty for the
// provider default.
func (k *KeyResolver) LLMBaseURL(creds *Credentials) string {
	var override string
	if creds != nil {
		override = creds.LLMBaseURL
	}
	return effectiveValue(override, k.runtimeKey(EnvGeminiBaseURL), os.Getenv(EnvGeminiBaseURL))
}

// PlacesAPIKey returns the effective places-lookup API key for one call.
func (k *KeyResolver) PlacesAPIKey(creds *Credentials) string {
	var override string
	if creds != nil {
		override = creds.PlacesAPIKey
	}
	return effectiveValue(override, k.runtimeKey(EnvPlacesAPIKey), os.Getenv(EnvPlacesAPIKey))
}
