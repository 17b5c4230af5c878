package llm

// AgentConfig holds the client identity used against the AI agents.
type AgentConfig struct {
	ClientPemFile      string `mapstructure:"client_pem_file"`
	ClientRootCertFile string `mapstructure:"client_root_cert_file"`
}

// OpenAIConfig holds the direct OpenAI backend settings.
type OpenAIConfig struct {
	AgentEndpoint string `json:"agent_endpoint" mapstructure:"agent_endpoint"`
	APIKey        string `json:"-" mapstructure:"api_key"`
	OrgID         string `json:"org_id" mapstructure:"org_id"`
}

// AzureAIConfig holds one Azure OpenAI backend. A deployment model left
// empty means the backend does not serve that API.
type AzureAIConfig struct {
	AgentEndpoint  string `json:"agent_endpoint" mapstructure:"agent_endpoint"`
	ResourceName   string `json:"resource_name" mapstructure:"resource_name"`
	APIKey         string `json:"-" mapstructure:"api_key"`
	APIVersion     string `json:"api_version" mapstructure:"api_version"`
	EmbeddingModel string `json:"embedding_model" mapstructure:"embedding_model"`
	ChatModel      string `json:"chat_model" mapstructure:"chat_model"`
	GPT4ChatModel  string `json:"gpt4_chat_model" mapstructure:"gpt4_chat_model"`
}

// Config holds the LLM backend settings.
type Config struct {
	Agent    AgentConfig     `mapstructure:"agent"`
	OpenAI   OpenAIConfig    `mapstructure:"openai"`
	AzureAIs []AzureAIConfig `mapstructure:"azureais"`
}
