package config

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/archivista/archivist/errors"
)

// Rules carries the content-filtering knobs that are deployment data,
// not code: blocked vocabulary, denylisted fetch hosts and the validator
// thresholds. They live in a YAML file next to the database so operators
// can edit them without a rebuild.
type Rules struct {
	// MinLength is the minimum rune count of a valid text.
	MinLength int `yaml:"min_length"`

	// MinAllowedRatio is the minimum fraction of runes that must belong
	// to the recognized character set.
	MinAllowedRatio float64 `yaml:"min_allowed_ratio"`

	// BlockedTerms reject a text on case-insensitive substring match.
	BlockedTerms []string `yaml:"blocked_terms"`

	// DeniedHosts are never fetched by the network lane. A host matches
	// when it equals an entry or is a subdomain of one.
	DeniedHosts []string `yaml:"denied_hosts"`

	// FailClosed rejects text when language detection is unreliable.
	// The default is fail open: ingestion favors availability.
	FailClosed bool `yaml:"fail_closed"`
}

type RulesConfig struct {
	RulesPath  string `env:"RULES_PATH"`
	FailClosed bool   `env:"VALIDATE_FAIL_CLOSED"`
}

func NewRulesConfig() *RulesConfig {
	return &RulesConfig{
		RulesPath: "data/rules.yaml",
	}
}

func (c *RulesConfig) Resolve() error {
	return resolveConfig(c)
}

func DefaultRules() *Rules {
	return &Rules{
		MinLength:       10,
		MinAllowedRatio: 0.8,
		BlockedTerms:    []string{},
		DeniedHosts: []string{
			"cdn.discordapp.com",
			"media.discordapp.net",
			"discord.gg",
			"tenor.com",
			"giphy.com",
			"bit.ly",
			"t.co",
			"tinyurl.com",
			"goo.gl",
		},
	}
}

// LoadRules reads the rules file, falling back to the defaults when it is
// absent. A present-but-unreadable file is an error: silently ignoring a
// filter file would un-block vocabulary the operator meant to block.
func (c *RulesConfig) LoadRules() (*Rules, error) {
	rules := DefaultRules()
	rules.FailClosed = c.FailClosed

	data, err := os.ReadFile(c.RulesPath)
	if os.IsNotExist(err) {
		return rules, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to read rules file %s", c.RulesPath)
	}

	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, errors.Wrapf(err, "failed to parse rules file %s", c.RulesPath)
	}

	return rules, nil
}
