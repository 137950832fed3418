package signature

// yamlModuleFile is the on-disk form of a signature file: every pattern for
// one image, in registration order.
type yamlModuleFile struct {
	Module     string          `yaml:"module"`
	Signatures []yamlSignature `yaml:"signatures"`
}

type yamlSignature struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Derive  string `yaml:"derive,omitempty"`
}
