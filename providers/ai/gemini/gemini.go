package gemini

import (
	"errors"
	"net/http"
	"os"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
)

var (
	// ErrMissingAPIKey is returned by StreamMessage when no key is configured.
	ErrMissingAPIKey = errors.New("gemini: API key is not set (GEMINI_API_KEY or GOOGLE_API_KEY)")
	// ErrPromptBlocked is yielded when Gemini refuses the prompt outright.
	ErrPromptBlocked = errors.New("gemini: prompt blocked")
)

// Provider streams chat requests to the Gemini generative language API.
type Provider struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
}

// New returns a provider configured from the environment:
//   - GEMINI_API_KEY, or GOOGLE_API_KEY as a fallback
//   - GEMINI_API_BASE_URL (optional)
func New() *Provider {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	baseURL := os.Getenv("GEMINI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:       apiKey,
		baseURL:      baseURL,
		defaultModel: defaultModel,
		client:       &http.Client{},
	}
}

// WithAPIKey sets the API key.
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API root, e.g. for a proxy or a test server.
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	if baseURL != "" {
		p.baseURL = baseURL
	}
	return p
}

// WithModel sets the model used when a request does not name one.
func (p *Provider) WithModel(model string) *Provider {
	if model != "" {
		p.defaultModel = model
	}
	return p
}

// WithHttpClient sets the HTTP client.
func (p *Provider) WithHttpClient(httpClient *http.Client) *Provider {
	p.client = httpClient
	return p
}
