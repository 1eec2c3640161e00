package loader

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/ssc/database"
)

// Default file names for connection sources.
const (
	DefaultConnectionsFile = "ssc-connections.json"
	DefaultWebConfigFile   = "Web.config"
)

type connectionsFile struct {
	Connections []database.Connection `json:"connections" yaml:"connections"`
}

type webConfig struct {
	XMLName           xml.Name `xml:"configuration"`
	ConnectionStrings struct {
		Add []struct {
			Name             string `xml:"name,attr"`
			ConnectionString string `xml:"connectionString,attr"`
		} `xml:"add"`
	} `xml:"connectionStrings"`
}

// IsWebConfig reports whether path names a .NET configuration file.
func IsWebConfig(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".config")
}

// LoadConnections reads connections from a Web.config or from a JSON or
// YAML connections file, chosen by extension.
func LoadConnections(path string) ([]database.Connection, error) {
	if IsWebConfig(path) {
		return LoadWebConfig(path)
	}
	return LoadConnectionsFile(path)
}

// LoadConnectionsFile reads a file of the form {"connections": [...]}.
func LoadConnectionsFile(path string) ([]database.Connection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading connections file: %w", err)
	}

	var cf connectionsFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cf)
	default:
		err = json.Unmarshal(data, &cf)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing connections file %s: %w", path, err)
	}
	return cf.Connections, nil
}

// LoadWebConfig reads every connectionStrings/add entry of a Web.config.
func LoadWebConfig(path string) ([]database.Connection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading web config: %w", err)
	}
	return ParseWebConfig(data)
}

// ParseWebConfig parses Web.config content.
func ParseWebConfig(data []byte) ([]database.Connection, error) {
	var wc webConfig
	if err := xml.Unmarshal(data, &wc); err != nil {
		return nil, fmt.Errorf("parsing web config: %w", err)
	}
	if len(wc.ConnectionStrings.Add) == 0 {
		return nil, fmt.Errorf("could not find connection strings in web config")
	}

	conns := make([]database.Connection, 0, len(wc.ConnectionStrings.Add))
	for _, add := range wc.ConnectionStrings.Add {
		conns = append(conns, database.ParseConnectionString(add.Name, add.ConnectionString))
	}
	return conns, nil
}

// WriteConnectionsFile stores connections in the format LoadConnectionsFile
// reads.
func WriteConnectionsFile(path string, conns []database.Connection) error {
	cf := connectionsFile{Connections: conns}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cf)
	default:
		data, err = json.MarshalIndent(cf, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding connections: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
