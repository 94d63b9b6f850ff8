package profiles

import "time"

// DefaultConfigKey is the reserved profile name applied to every client.
const DefaultConfigKey = "default"

// Properties is the root of the external profile source.
type Properties struct {
	// DefaultToProperties selects the precedence order: true means profile
	// values override code-declared configuration, false the reverse.
	DefaultToProperties bool `yaml:"default_to_properties" mapstructure:"default_to_properties"`

	// DefaultConfig names the reserved profile applied to every client.
	DefaultConfig string `yaml:"default_config" mapstructure:"default_config"`

	// Config holds one profile per context id plus the default profile.
	Config map[string]*ClientConfig `yaml:"config" mapstructure:"config"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (p *Properties) ApplyDefaults() {
	if p.DefaultConfig == "" {
		p.DefaultConfig = DefaultConfigKey
	}
	if p.Config == nil {
		p.Config = make(map[string]*ClientConfig)
	}
}

// Default returns the reserved default profile, or nil.
func (p *Properties) Default() *ClientConfig {
	if p == nil {
		return nil
	}
	return p.Config[p.DefaultConfig]
}

// For returns the profile for a context id, or nil.
func (p *Properties) For(contextID string) *ClientConfig {
	if p == nil {
		return nil
	}
	return p.Config[contextID]
}

// ClientConfig is one named profile. All fields are optional; absent fields
// fall through to whatever the builder already holds. Component references
// (retryer, error_decoder, codecs, interceptors) are registered component
// names resolved at compose time.
type ClientConfig struct {
	LogLevel            string        `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=none basic headers full"`
	ConnectTimeout      time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout" validate:"min=0"`
	ReadTimeout         time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"min=0"`
	Retryer             string        `yaml:"retryer" mapstructure:"retryer"`
	ErrorDecoder        string        `yaml:"error_decoder" mapstructure:"error_decoder"`
	RequestInterceptors []string      `yaml:"request_interceptors" mapstructure:"request_interceptors"`
	Encoder             string        `yaml:"encoder" mapstructure:"encoder"`
	Decoder             string        `yaml:"decoder" mapstructure:"decoder"`
	Contract            string        `yaml:"contract" mapstructure:"contract"`
	QueryEncoder        string        `yaml:"query_encoder" mapstructure:"query_encoder"`
	Decode404           *bool         `yaml:"decode404" mapstructure:"decode404"`
	ErrorPropagation    string        `yaml:"error_propagation" mapstructure:"error_propagation" validate:"omitempty,oneof=none unwrap"`
}
