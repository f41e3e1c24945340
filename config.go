package recollect

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML policy file:
//
//	policies:
//	  - path: /api/product/{id}
//	    clientCacheSeconds: 60
//	    publicCache: always
//	    varyHeaders: accept,accept-encoding
//	    privateHeaders: [X-Request-Id]
type FileConfig struct {
	Policies []RuleConfig `yaml:"policies"`
}

type RuleConfig struct {
	Path         string `yaml:"path"`
	Prefix       string `yaml:"prefix"`
	Method       string `yaml:"method"`
	PolicyConfig `yaml:",inline"`
}

// PolicyConfig mirrors Policy with the option names of the config file.
// Omitted options keep their default.
type PolicyConfig struct {
	ClientCacheSeconds               int                 `yaml:"clientCacheSeconds"`
	ClientCacheExtendedOnNotModified bool                `yaml:"clientCacheExtendedOnNotModified"`
	MustRevalidate                   *bool               `yaml:"mustRevalidate"`
	NoStore                          bool                `yaml:"noStore"`
	NoCache                          bool                `yaml:"noCache"`
	PublicCache                      *PublicCacheAllowed `yaml:"publicCache"`
	SharedCacheSeconds               int                 `yaml:"sharedCacheSeconds"`
	NoTransform                      bool                `yaml:"noTransform"`
	VaryHeaders                      HeaderNames         `yaml:"varyHeaders"`
	PrivateHeaders                   HeaderNames         `yaml:"privateHeaders"`
	ProxyRevalidate                  bool                `yaml:"proxyRevalidate"`
}

// HeaderNames is a header name list in the config file, written either as
// a comma-separated string or as a YAML sequence.
type HeaderNames []string

func (h *HeaderNames) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*h = MergeHeaderList(nil, value.Value)
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*h = MergeHeaderList(nil, names...)
		return nil
	}
	return fmt.Errorf("line %d: header names must be a string or a list", value.Line)
}

// Policy converts the config into a policy, applying defaults.
func (c PolicyConfig) Policy() Policy {
	opts := []PolicyOption{
		WithClientCacheSeconds(c.ClientCacheSeconds),
		WithClientCacheExtendedOnNotModified(c.ClientCacheExtendedOnNotModified),
		WithNoStore(c.NoStore),
		WithNoCache(c.NoCache),
		WithSharedCacheSeconds(c.SharedCacheSeconds),
		WithNoTransform(c.NoTransform),
		WithVaryHeaders(c.VaryHeaders...),
		WithPrivateHeaders(c.PrivateHeaders...),
		WithProxyRevalidate(c.ProxyRevalidate),
	}
	if c.MustRevalidate != nil {
		opts = append(opts, WithMustRevalidate(*c.MustRevalidate))
	}
	if c.PublicCache != nil {
		opts = append(opts, WithPublicCache(*c.PublicCache))
	}
	return NewPolicy(opts...)
}

func (c RuleConfig) Rule() Rule {
	return Rule{
		Path:   c.Path,
		Prefix: c.Prefix,
		Method: c.Method,
		Policy: c.Policy(),
	}
}

// LoadConfig reads a YAML policy file.
func LoadConfig(filename string) (FileConfig, error) {
	var config FileConfig
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(configBytes)
}

func ParseConfig(configBytes []byte) (FileConfig, error) {
	var config FileConfig
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return config, fmt.Errorf("parse config: %w", err)
	}
	for i, rule := range config.Policies {
		if rule.Path == "" && rule.Prefix == "" {
			return config, fmt.Errorf("policy %d: path or prefix required", i)
		}
	}
	return config, nil
}

// Register adds every configured rule to reg, in file order.
func (c FileConfig) Register(reg *Registry) {
	for _, rule := range c.Policies {
		reg.RegisterRule(rule.Rule())
	}
}
