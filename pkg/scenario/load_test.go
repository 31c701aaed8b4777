package scenario

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_List(t *testing.T) {
	data := []byte(`
scenarios:
  - label: B
    nrounds: 100
    bufsize: 1024
  - label: A
    nrounds: 10
    bufsize: 64
`)
	sets, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []ParameterSet{
		{Label: "B", NRounds: 100, BufSize: 1024},
		{Label: "A", NRounds: 10, BufSize: 64},
	}, sets)
}

func TestParse_MappingKeepsFileOrder(t *testing.T) {
	data := []byte(`
zeta: {nrounds: 3, bufsize: 30}
alpha: {nrounds: 1, bufsize: 10}
mid: {nrounds: 2, bufsize: 20}
`)
	sets, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, sets, 3)
	assert.Equal(t, "zeta", sets[0].Label)
	assert.Equal(t, "alpha", sets[1].Label)
	assert.Equal(t, "mid", sets[2].Label)
	assert.Equal(t, 2, sets[2].NRounds)
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{"scenarios": [{"nrounds": 5, "bufsize": 8}, {"nrounds": 6, "bufsize": 9}]}`)
	sets, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "scenario-0", sets[0].Label)
	assert.Equal(t, "scenario-1", sets[1].Label)
}

func TestParse_Empty(t *testing.T) {
	sets, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero rounds", "- {nrounds: 0, bufsize: 64}"},
		{"negative bufsize", "- {nrounds: 10, bufsize: -1}"},
		{"missing bufsize", "- {nrounds: 10}"},
		{"duplicate label", "- {label: x, nrounds: 1, bufsize: 1}\n- {label: x, nrounds: 2, bufsize: 2}"},
		{"scalar document", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParse_MalformedField(t *testing.T) {
	_, err := Parse([]byte("- {nrounds: ten, bufsize: 64}"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/netbench/scenarios.yaml", []byte(`
A: {nrounds: 10, bufsize: 64}
B: {nrounds: 100, bufsize: 1024}
`), 0o644))

	sets, err := Load(fs, "/etc/netbench/scenarios.yaml")
	require.NoError(t, err)
	assert.Equal(t, []ParameterSet{
		{Label: "A", NRounds: 10, BufSize: 64},
		{Label: "B", NRounds: 100, BufSize: 1024},
	}, sets)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.yaml")
	assert.Error(t, err)
}
