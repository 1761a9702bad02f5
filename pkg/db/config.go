package db

type Config struct {
	// Dir is a directory to keep database files
	Dir string `toml:"dir"`
	// InMemory keeps everything in RAM, nothing survives a restart
	InMemory bool          `toml:"in_memory"`
	Badger   *BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB configuration parameters
// See https://github.com/dgraph-io/badger#memory-usage
type BadgerConfig struct {
	// SyncWrites makes every commit durable before the call returns
	SyncWrites bool `toml:"sync_writes"`
	// ValueLogFileSize in bytes, 0 keeps badger's default
	ValueLogFileSize int64 `toml:"value_log_file_size"`
}
