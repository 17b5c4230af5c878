package llm

import (
	"fmt"
	"net/http"
	"net/url"
)

// backend is one upstream API endpoint with its static headers. URLs left
// empty mean the backend does not serve that API.
type backend struct {
	host         string
	headers      http.Header
	embeddingURL string
	chatURL      string
	gpt4ChatURL  string
}

// urlFor returns the backend URL serving the given wire model name, or ""
// when the backend does not carry it.
func (b *backend) urlFor(name string) string {
	switch name {
	case EmbeddingModel:
		return b.embeddingURL
	case openaiNameGPT4:
		return b.gpt4ChatURL
	default:
		return b.chatURL
	}
}

func buildBackends(cfg Config) (*backend, []*backend, error) {
	endpoint, err := baseEndpoint(cfg.OpenAI.AgentEndpoint)
	if err != nil {
		return nil, nil, err
	}
	openai := &backend{
		host: "api.openai.com",
		headers: http.Header{
			"Authorization":       []string{"Bearer " + cfg.OpenAI.APIKey},
			"Openai-Organization": []string{cfg.OpenAI.OrgID},
		},
		embeddingURL: endpoint + "/v1/embeddings",
		chatURL:      endpoint + "/v1/chat/completions",
	}
	// the direct API takes the model from the request body, so the chat
	// URL serves gpt-4 as well
	openai.gpt4ChatURL = openai.chatURL
	openai.headers.Set(xForwardedHost, openai.host)

	azureais := make([]*backend, 0, len(cfg.AzureAIs))
	for _, az := range cfg.AzureAIs {
		endpoint, err := baseEndpoint(az.AgentEndpoint)
		if err != nil {
			return nil, nil, err
		}
		b := &backend{
			host: az.ResourceName + ".openai.azure.com",
			headers: http.Header{
				"Api-Key": []string{az.APIKey},
			},
		}
		b.headers.Set(xForwardedHost, b.host)
		if az.EmbeddingModel != "" {
			b.embeddingURL = fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
				endpoint, az.EmbeddingModel, az.APIVersion)
		}
		if az.ChatModel != "" {
			b.chatURL = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
				endpoint, az.ChatModel, az.APIVersion)
		}
		if az.GPT4ChatModel != "" {
			b.gpt4ChatURL = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
				endpoint, az.GPT4ChatModel, az.APIVersion)
		}
		azureais = append(azureais, b)
	}
	return openai, azureais, nil
}

// baseEndpoint reduces an agent endpoint to its origin, so joined paths
// are always absolute.
func baseEndpoint(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid agent endpoint %q: %w", endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid agent endpoint %q", endpoint)
	}
	return u.Scheme + "://" + u.Host, nil
}
