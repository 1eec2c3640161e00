package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// Connection describes one SQL Server database.
type Connection struct {
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	Server   string `json:"server" yaml:"server" mapstructure:"server"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`
	Database string `json:"database" yaml:"database" mapstructure:"database"`
	User     string `json:"user" yaml:"user" mapstructure:"user"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
}

// ParseConnectionString reads an ADO style connection string such as
// "Server=host\instance,1435;Database=app;Uid=sa;Password=secret".
// Unknown keys are ignored.
func ParseConnectionString(name, s string) Connection {
	conn := Connection{Name: name}
	for _, part := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "server", "data source", "address", "addr":
			host, port, _ := strings.Cut(value, ",")
			conn.Server = strings.TrimSpace(host)
			if p, err := strconv.Atoi(strings.TrimSpace(port)); err == nil {
				conn.Port = p
			}
		case "database", "initial catalog":
			conn.Database = value
		case "uid", "user id", "user":
			conn.User = value
		case "password", "pwd":
			conn.Password = value
		}
	}
	return conn
}

// DSN renders the connection as a sqlserver:// URL. A server written as
// host\instance selects a named instance.
func (c Connection) DSN() string {
	host, instance, _ := strings.Cut(c.Server, `\`)
	if c.Port > 0 {
		host += ":" + strconv.Itoa(c.Port)
	}

	u := &url.URL{
		Scheme: "sqlserver",
		Host:   host,
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	if instance != "" {
		u.Path = "/" + instance
	}

	q := url.Values{}
	if c.Database != "" {
		q.Set("database", c.Database)
	}
	q.Set("app name", "ssc")
	u.RawQuery = q.Encode()
	return u.String()
}

// Open connects to the database and verifies the connection with a ping.
func Open(ctx context.Context, c Connection) (*sql.DB, error) {
	dsn := c.DSN()
	if _, err := msdsn.Parse(dsn); err != nil {
		return nil, fmt.Errorf("connection %q: %w", c.Name, err)
	}

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open connection %q: %w", c.Name, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to reach %s: %w", c.Server, err)
	}
	return db, nil
}

// ServerInfo is what the health check reports about a server.
type ServerInfo struct {
	Version  string
	Database string
	Login    string
}

// Inspect reads identifying details of the connected server.
func Inspect(ctx context.Context, db *sql.DB) (ServerInfo, error) {
	var info ServerInfo
	err := db.QueryRowContext(ctx, "SELECT @@VERSION, DB_NAME(), SUSER_SNAME()").
		Scan(&info.Version, &info.Database, &info.Login)
	if err != nil {
		return info, fmt.Errorf("query server info: %w", err)
	}
	return info, nil
}
