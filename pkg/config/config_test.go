package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fresh puts viper and the global config back to their startup state.
func fresh(t *testing.T) {
	t.Helper()
	reset := func() {
		viper.Reset()
		Global = Default
		Dir = ""
		setDefaults(viper.GetViper())
		bindEnvVars()
	}
	reset()
	t.Cleanup(reset)
}

func readConfigFile(t *testing.T, dir string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, FILE_NAME+"."+FILE_TYPE))
	require.NoError(t, err)
	var conf map[string]any
	require.NoError(t, json.Unmarshal(data, &conf))
	return conf
}

func TestInit_WritesDefaults(t *testing.T) {
	fresh(t)
	dir := filepath.Join(t.TempDir(), DIR_NAME)

	require.NoError(t, Init(InitArgs{ConfigDir: dir}))
	assert.Equal(t, dir, Dir)
	assert.Equal(t, DEFAULT_SERVER_IP, Global.Scaffolding.ServerIP)

	conf := readConfigFile(t, dir)
	scaffolding, ok := conf["scaffolding"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, DEFAULT_SERVER_IP, scaffolding["server_ip"])
	assert.Equal(t, DEFAULT_LIBOS, scaffolding["libos"])
}

func TestInit_FlagsDoNotPersist(t *testing.T) {
	fresh(t)
	dir := t.TempDir()

	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.String("server-ip", "", "")
	flags.Bool("sudo", false, "")
	require.NoError(t, viper.BindPFlag("scaffolding.server_ip", flags.Lookup("server-ip")))
	require.NoError(t, viper.BindPFlag("scaffolding.sudo", flags.Lookup("sudo")))
	require.NoError(t, flags.Parse([]string{"--server-ip", "10.9.9.9", "--sudo"}))

	require.NoError(t, Init(InitArgs{ConfigDir: dir}))
	assert.Equal(t, "10.9.9.9", Global.Scaffolding.ServerIP)
	assert.True(t, Global.Scaffolding.Sudo)

	scaffolding := readConfigFile(t, dir)["scaffolding"].(map[string]any)
	assert.Equal(t, DEFAULT_SERVER_IP, scaffolding["server_ip"])
	assert.Equal(t, false, scaffolding["sudo"])

	// next invocation, without flags
	fresh(t)
	require.NoError(t, Init(InitArgs{ConfigDir: dir}))
	assert.Equal(t, DEFAULT_SERVER_IP, Global.Scaffolding.ServerIP)
	assert.False(t, Global.Scaffolding.Sudo)
}

func TestInit_Env(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, c Config)
	}{
		{
			name: "prefixed nested key",
			env:  map[string]string{"NETBENCH_SCAFFOLDING_SERVER_IP": "10.1.1.1"},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "10.1.1.1", c.Scaffolding.ServerIP)
			},
		},
		{
			name: "server ip alias",
			env:  map[string]string{"SERVER_IP": "10.2.2.2"},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "10.2.2.2", c.Scaffolding.ServerIP)
			},
		},
		{
			name: "prefixed key wins over alias",
			env:  map[string]string{"NETBENCH_SCAFFOLDING_SERVER_IP": "10.1.1.1", "SERVER_IP": "10.2.2.2"},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "10.1.1.1", c.Scaffolding.ServerIP)
			},
		},
		{
			name: "libos alias",
			env:  map[string]string{"LIBOS": "catpowder"},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, "catpowder", c.Scaffolding.LibOS)
			},
		},
		{
			name: "typed values",
			env: map[string]string{
				"NETBENCH_SCAFFOLDING_DELAY": "5s",
				"NETBENCH_SCAFFOLDING_SUDO":  "true",
				"NETBENCH_LOG_LEVEL":         "debug",
				"NETBENCH_DB_BACKEND":        "sqlite",
			},
			check: func(t *testing.T, c Config) {
				assert.Equal(t, 5*time.Second, c.Scaffolding.Delay)
				assert.True(t, c.Scaffolding.Sudo)
				assert.Equal(t, "debug", c.LogLevel)
				assert.Equal(t, "sqlite", c.DB.Backend)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fresh(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			require.NoError(t, Init(InitArgs{ConfigDir: t.TempDir()}))
			tt.check(t, Global)
		})
	}
}

func TestInit_ConfigStringIsOneTime(t *testing.T) {
	fresh(t)
	dir := t.TempDir()

	require.NoError(t, Init(InitArgs{
		ConfigDir: dir,
		Config:    `{"aggregation": "last", "scaffolding": {"libos": "catpowder"}}`,
	}))
	assert.Equal(t, "last", Global.Aggregation)
	assert.Equal(t, "catpowder", Global.Scaffolding.LibOS)
	assert.Equal(t, DEFAULT_SERVER_IP, Global.Scaffolding.ServerIP, "keys not in the string keep their value")

	_, err := os.Stat(filepath.Join(dir, FILE_NAME+"."+FILE_TYPE))
	assert.True(t, os.IsNotExist(err), "a one-time config is never written")

	fresh(t)
	require.NoError(t, Init(InitArgs{ConfigDir: dir}))
	assert.Equal(t, DEFAULT_AGGREGATION, Global.Aggregation)
	assert.Equal(t, DEFAULT_LIBOS, Global.Scaffolding.LibOS)
}

func TestInit_ConfigFileOverridesDefaults(t *testing.T) {
	fresh(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"scaffolding": {"server_ip": "192.168.0.2", "delay": "500ms"}}`), FILE_PERM))

	require.NoError(t, Init(InitArgs{ConfigDir: dir}))
	assert.Equal(t, "192.168.0.2", Global.Scaffolding.ServerIP)
	assert.Equal(t, 500*time.Millisecond, Global.Scaffolding.Delay)
	assert.Equal(t, DEFAULT_LIBOS, Global.Scaffolding.LibOS)
}

func TestInit_Invalid(t *testing.T) {
	t.Run("unknown key in file", func(t *testing.T) {
		fresh(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"bogus": 1}`), FILE_PERM))

		assert.ErrorContains(t, Init(InitArgs{ConfigDir: dir}), "outdated or invalid")
	})

	t.Run("malformed file", func(t *testing.T) {
		fresh(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"log_level": `), FILE_PERM))

		assert.Error(t, Init(InitArgs{ConfigDir: dir}))
	})

	t.Run("malformed config string", func(t *testing.T) {
		fresh(t)
		err := Init(InitArgs{ConfigDir: t.TempDir(), Config: `not json`})
		assert.ErrorContains(t, err, "Provided config string is invalid")
	})
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "NETBENCH_LOG_LEVEL", EnvVar("log_level"))
	assert.Equal(t, "NETBENCH_SCAFFOLDING_SERVER_IP", EnvVar("scaffolding.server_ip"))
}
