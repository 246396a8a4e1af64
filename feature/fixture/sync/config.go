package sync

// Config holds configuration for the fixture sync engine.
type Config struct {
	// ChunkSize bounds the number of fixtures written concurrently.
	ChunkSize int `mapstructure:"chunk_size" default:"8"`
	// ErrorMessageLimit caps the length of error messages reported to the
	// run tracker.
	ErrorMessageLimit int `mapstructure:"error_message_limit" default:"500"`
}

const (
	defaultChunkSize         = 8
	defaultErrorMessageLimit = 500
)

func (c Config) chunkSize() int {
	if c.ChunkSize <= 0 {
		return defaultChunkSize
	}
	return c.ChunkSize
}

func (c Config) errorMessageLimit() int {
	if c.ErrorMessageLimit <= 0 {
		return defaultErrorMessageLimit
	}
	return c.ErrorMessageLimit
}
