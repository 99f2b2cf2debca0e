package config

import (
	"encoding/json"
	"os"

	"github.com/securechain/securechain/internal/flagx"
)

// JsonConfig is the DTO for reading CLI configuration from a JSON file.
type JsonConfig struct {
	ServerAddr   string `json:"server_addr"`
	DownloadsDir string `json:"downloads_dir"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag, if any.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.ServerAddr = c.ServerAddr
	config.DownloadsDir = c.DownloadsDir
}
