package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/ssc/database"
	"github.com/ridoystarlord/ssc/filesync"
	"github.com/ridoystarlord/ssc/loader"
	"github.com/ridoystarlord/ssc/schema"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "ssc.json"

// EnvPrefix prefixes environment variables overriding configuration keys,
// e.g. SSC_OUTPUT_ROOT or SSC_IDEMPOTENCY_DATA.
const EnvPrefix = "SSC"

var (
	ErrConfigNotFound     = errors.New("could not find config file, use the init command to create one")
	ErrConnectionNotFound = errors.New("could not find connection")
)

// Output holds the generated-file root and one directory per object kind
// relative to it. An empty directory disables the kind.
type Output struct {
	Root      string
	Schemas   string
	Tables    string
	Types     string
	Views     string
	Functions string
	Procs     string
	Triggers  string
	Data      string
	Jobs      string
}

// Config is the resolved configuration of one run.
type Config struct {
	// Connections holds inline connections. When ConnectionsPath is set
	// they are read from that file instead.
	Connections     []database.Connection
	ConnectionsPath string

	Files                 []string
	Data                  []string
	Output                Output
	Idempotency           schema.Idempotency
	IncludeConstraintName bool
	EOL                   string

	// File is the configuration file that was read.
	File string
}

var outputDefaults = map[string]string{
	"root":      "./_sql-database",
	"schemas":   "./schemas",
	"tables":    "./tables",
	"types":     "./types",
	"views":     "./views",
	"functions": "./functions",
	"procs":     "./stored-procedures",
	"triggers":  "./triggers",
	"data":      "./data",
	"jobs":      "./jobs",
}

func setDefaults(v *viper.Viper) {
	for key, value := range outputDefaults {
		v.SetDefault("output."+key, value)
	}

	idem := schema.DefaultIdempotency()
	v.SetDefault("idempotency.tables", string(idem.Tables))
	v.SetDefault("idempotency.types", string(idem.Types))
	v.SetDefault("idempotency.views", string(idem.Views))
	v.SetDefault("idempotency.functions", string(idem.Functions))
	v.SetDefault("idempotency.procs", string(idem.Procs))
	v.SetDefault("idempotency.triggers", string(idem.Triggers))
	v.SetDefault("idempotency.data", string(idem.Data))
	v.SetDefault("idempotency.jobs", string(idem.Jobs))

	v.SetDefault("includeConstraintName", false)
	v.SetDefault("eol", filesync.EOLAuto)
	v.SetDefault("files", []string{})
	v.SetDefault("data", []string{})
}

// Load reads a configuration file. Missing keys take their defaults and
// any key can be overridden from the environment.
func Load(file string) (*Config, error) {
	if file == "" {
		file = DefaultFile
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(file)
	if filepath.Ext(file) == "" {
		v.SetConfigType("json")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, file)
		}
		return nil, fmt.Errorf("could not parse config file %s: %w", file, err)
	}

	cfg := &Config{
		File:                  file,
		Files:                 v.GetStringSlice("files"),
		Data:                  v.GetStringSlice("data"),
		IncludeConstraintName: v.GetBool("includeConstraintName"),
		EOL:                   strings.ToLower(v.GetString("eol")),
		Output: Output{
			Root:      outputDir(v, "root"),
			Schemas:   outputDir(v, "schemas"),
			Tables:    outputDir(v, "tables"),
			Types:     outputDir(v, "types"),
			Views:     outputDir(v, "views"),
			Functions: outputDir(v, "functions"),
			Procs:     outputDir(v, "procs"),
			Triggers:  outputDir(v, "triggers"),
			Data:      outputDir(v, "data"),
			Jobs:      outputDir(v, "jobs"),
		},
		Idempotency: schema.Idempotency{
			Tables:    policy(v, "tables"),
			Types:     policy(v, "types"),
			Views:     policy(v, "views"),
			Functions: policy(v, "functions"),
			Procs:     policy(v, "procs"),
			Triggers:  policy(v, "triggers"),
			Data:      policy(v, "data"),
			Jobs:      policy(v, "jobs"),
		},
	}

	switch conns := v.Get("connections").(type) {
	case nil:
	case string:
		cfg.ConnectionsPath = conns
	default:
		if err := v.UnmarshalKey("connections", &cfg.Connections); err != nil {
			return nil, fmt.Errorf("could not parse connections in %s: %w", file, err)
		}
	}

	return cfg, nil
}

// outputDir reads a directory setting, where false disables the kind.
func outputDir(v *viper.Viper, key string) string {
	switch value := v.Get("output." + key).(type) {
	case bool:
		if value {
			return outputDefaults[key]
		}
		return ""
	case nil:
		return ""
	default:
		s := strings.TrimSpace(fmt.Sprint(value))
		if strings.EqualFold(s, "false") {
			return ""
		}
		return s
	}
}

func policy(v *viper.Viper, key string) schema.Policy {
	return schema.Policy(strings.ToLower(strings.TrimSpace(v.GetString("idempotency." + key))))
}

// Root returns the generated-file root; an empty root or "." means the
// working directory.
func (c *Config) Root() string {
	root := c.Output.Root
	if root == "" || root == "." {
		return "./"
	}
	return root
}

// Layout returns the per-kind directories.
func (c *Config) Layout() schema.Layout {
	return schema.Layout{
		Schemas:   c.Output.Schemas,
		Tables:    c.Output.Tables,
		Types:     c.Output.Types,
		Views:     c.Output.Views,
		Functions: c.Output.Functions,
		Procs:     c.Output.Procs,
		Triggers:  c.Output.Triggers,
		Data:      c.Output.Data,
		Jobs:      c.Output.Jobs,
	}
}

// ResolveConnections returns the configured connections, reading them from
// the connections file when one is referenced.
func (c *Config) ResolveConnections() ([]database.Connection, error) {
	if c.ConnectionsPath == "" {
		return c.Connections, nil
	}
	conns, err := loader.LoadConnections(c.ConnectionsPath)
	if err != nil {
		return nil, fmt.Errorf("could not load connections from %s: %w", c.ConnectionsPath, err)
	}
	return conns, nil
}

// Connection finds a connection by name, ignoring case. An empty name
// selects the first connection.
func (c *Config) Connection(name string) (database.Connection, error) {
	conns, err := c.ResolveConnections()
	if err != nil {
		return database.Connection{}, err
	}

	if name == "" {
		if len(conns) == 0 {
			return database.Connection{}, fmt.Errorf("%w: no default connection configured", ErrConnectionNotFound)
		}
		return conns[0], nil
	}

	for _, conn := range conns {
		if strings.EqualFold(conn.Name, name) {
			return conn, nil
		}
	}
	return database.Connection{}, fmt.Errorf("%w: %q", ErrConnectionNotFound, name)
}

// Exists reports whether a configuration file is present.
func Exists(file string) bool {
	if file == "" {
		file = DefaultFile
	}
	_, err := os.Stat(file)
	return err == nil
}

// Write stores values as a configuration file: YAML for .yaml and .yml,
// JSON indented by two spaces otherwise.
func Write(values any, file string) error {
	if file == "" {
		file = DefaultFile
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(values)
	default:
		data, err = json.MarshalIndent(values, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(file, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
