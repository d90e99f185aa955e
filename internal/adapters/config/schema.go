package config

// Configfile represents the structure of a wipt.yaml configuration layer.
// Pointer fields distinguish "not set in this layer" from an explicit zero value.
type Configfile struct {
	Repositories []string `yaml:"repositories"`
	TargetDir    *string  `yaml:"targetDir"`
	PerUser      *bool    `yaml:"perUser"`
	Cache        string   `yaml:"cache"`
	Inventory    string   `yaml:"inventory"`
	Engine       string   `yaml:"engine"`
}

// Environment holds the WIPT_* environment overrides.
type Environment struct {
	Config       string       `envconfig:"CONFIG"`
	Repositories []string     `envconfig:"REPOSITORIES"`
	TargetDir    string       `envconfig:"TARGET_DIR"`
	PerUser      optionalBool `envconfig:"PER_USER"`
	Cache        string       `envconfig:"CACHE"`
	Inventory    string       `envconfig:"INVENTORY"`
	Engine       string       `envconfig:"ENGINE"`
}

// optionalBool records whether a boolean variable was present at all.
type optionalBool struct {
	set   bool
	value bool
}

// Decode implements envconfig.Decoder.
func (b *optionalBool) Decode(value string) error {
	switch value {
	case "1", "t", "T", "true", "TRUE", "True", "yes", "on":
		b.value = true
	case "":
		return nil
	case "0", "f", "F", "false", "FALSE", "False", "no", "off":
		b.value = false
	default:
		return errInvalidBool
	}
	b.set = true
	return nil
}
