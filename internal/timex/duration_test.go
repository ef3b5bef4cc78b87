package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalString(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"2s"`), &d))
	assert.Equal(t, 2*time.Second, d.Duration)
}

func TestUnmarshalNanoseconds(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`200000000`), &d))
	assert.Equal(t, 200*time.Millisecond, d.Duration)
}

func TestUnmarshalInvalid(t *testing.T) {
	var d Duration
	require.Error(t, json.Unmarshal([]byte(`true`), &d))
	require.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
}

func TestMarshalRoundTrip(t *testing.T) {
	in := Duration{Duration: 1500 * time.Millisecond}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `"1.5s"`, string(raw))

	var out Duration
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.Duration, out.Duration)
}
