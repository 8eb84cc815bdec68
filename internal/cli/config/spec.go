package config

import (
	"time"

	"github.com/yndnr/shardkv/pkg/client"
)

// CLIConfig is the configuration for shardkv-cli.
type CLIConfig struct {
	Server    string        `yaml:"server" json:"server"`
	Output    string        `yaml:"output" json:"output"` // table, json, yaml
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	QueueSize int           `yaml:"queue_size" json:"queue_size"`

	// HistoryFile stores interactive mode history. Empty disables it.
	HistoryFile string `yaml:"history_file" json:"history_file"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:      "127.0.0.1:6379",
		Output:      "table",
		Timeout:     5 * time.Second,
		QueueSize:   client.DefaultQueueSize,
		HistoryFile: filepathInHome("history"),
	}
}
