package config

type ChatConfig struct {
	// SettingsPath is the persisted guild settings JSON document.
	SettingsPath string `env:"CHAT_SETTINGS_PATH"`

	// MaxAnswerLen truncates replies before they are sent.
	MaxAnswerLen int `env:"CHAT_MAX_ANSWER_LEN"`
}

func NewChatConfig() *ChatConfig {
	return &ChatConfig{
		SettingsPath: "data/settings.json",
		MaxAnswerLen: 1900,
	}
}

func (c *ChatConfig) Resolve() error {
	return resolveConfig(c)
}
