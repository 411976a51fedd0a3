package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestDuration_JSON(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"15m","b":1000000000}`), &v))
	assert.Equal(t, 15*time.Minute, v.A.Duration)
	assert.Equal(t, time.Second, v.B.Duration)

	out, err := json.Marshal(v.A)
	require.NoError(t, err)
	assert.Equal(t, `"15m0s"`, string(out))
}

func TestDuration_JSONInvalid(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"fifteen"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_YAML(t *testing.T) {
	var v struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 720h\nb: 5\n"), &v))
	assert.Equal(t, 720*time.Hour, v.A.Duration)
	assert.Equal(t, time.Duration(5), v.B.Duration)
}
