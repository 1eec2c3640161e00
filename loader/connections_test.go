package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/ssc/database"
)

const webConfigXML = `<?xml version="1.0" encoding="utf-8"?>
<configuration>
  <appSettings>
    <add key="x" value="y" />
  </appSettings>
  <connectionStrings>
    <add name="dev" connectionString="Server=dev.example.com\SQLEXPRESS,1435;Database=app;Uid=sa;Password=secret" providerName="System.Data.SqlClient" />
    <add name="prod" connectionString="server=prod;database=app;uid=reader;pwd=x" />
  </connectionStrings>
</configuration>`

func TestParseWebConfig(t *testing.T) {
	conns, err := ParseWebConfig([]byte(webConfigXML))
	require.NoError(t, err)
	require.Len(t, conns, 2)

	assert.Equal(t, database.Connection{
		Name: "dev", Server: `dev.example.com\SQLEXPRESS`, Port: 1435,
		Database: "app", User: "sa", Password: "secret",
	}, conns[0])
	assert.Equal(t, "reader", conns[1].User)
}

func TestParseWebConfigErrors(t *testing.T) {
	_, err := ParseWebConfig([]byte("<configuration></configuration>"))
	assert.Error(t, err)

	_, err = ParseWebConfig([]byte("not xml"))
	assert.Error(t, err)
}

func TestConnectionsFileRoundTrip(t *testing.T) {
	conns := []database.Connection{{Name: "dev", Server: "localhost", Port: 1433, Database: "app", User: "sa", Password: "p"}}

	for _, name := range []string{"conns.json", "conns.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteConnectionsFile(path, conns))

			got, err := LoadConnections(path)
			require.NoError(t, err)
			assert.Equal(t, conns, got)
		})
	}
}

func TestLoadConnectionsDispatchesWebConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Web.config")
	require.NoError(t, os.WriteFile(path, []byte(webConfigXML), 0644))

	conns, err := LoadConnections(path)
	require.NoError(t, err)
	assert.Len(t, conns, 2)
	assert.True(t, IsWebConfig("app/WEB.CONFIG"))
	assert.False(t, IsWebConfig("ssc-connections.json"))
}

func TestLoadConnectionsFileMissing(t *testing.T) {
	_, err := LoadConnections(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
