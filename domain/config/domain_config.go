package config

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// History constraints
	HistoryLimit int `yaml:"historyLimit"`

	// Trash constraints
	TrashLimit int `yaml:"trashLimit"`

	// Context assembly
	MaxContextDepth        int `yaml:"maxContextDepth"`
	ChunkTokenBudget       int `yaml:"chunkTokenBudget"`
	ConversationTail       int `yaml:"conversationTail"`
	TitleFingerprintLength int `yaml:"titleFingerprintLength"`

	// Spawn/streaming visual flags
	SpawnFlagTTLSeconds int `yaml:"spawnFlagTtlSeconds"`

	// Validation settings
	AllowSelfConnections bool `yaml:"allowSelfConnections"`
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		HistoryLimit:           100,
		TrashLimit:             50,
		MaxContextDepth:        3,
		ChunkTokenBudget:       512,
		ConversationTail:       5,
		TitleFingerprintLength: 20,
		SpawnFlagTTLSeconds:    3,
		AllowSelfConnections:   false,
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 100
	}
	if c.TrashLimit <= 0 {
		c.TrashLimit = 50
	}
	if c.MaxContextDepth <= 0 {
		c.MaxContextDepth = 3
	}
	return nil
}
