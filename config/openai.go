package config

type OpenAIConfig struct {
	OpenAIApiKey string `env:"OPENAI_API_KEY"`

	// SummaryModel is the chat model asked to extract Q/A pairs.
	SummaryModel string `env:"OPENAI_SUMMARY_MODEL"`
}

func NewOpenAIConfig() *OpenAIConfig {
	return &OpenAIConfig{
		SummaryModel: "gpt-4o-mini",
	}
}

func (c *OpenAIConfig) Resolve() error {
	return resolveConfig(c)
}
