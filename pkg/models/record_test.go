package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodIsValid(t *testing.T) {
	for _, m := range AllMethods() {
		assert.True(t, m.IsValid(), "method %q should be valid", m)
	}

	assert.False(t, Method("").IsValid())
	assert.False(t, Method("sft").IsValid())
	assert.False(t, Method("PPO").IsValid(), "methods are lowercase on the wire")
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("dp-sft")
	require.NoError(t, err)
	assert.Equal(t, MethodDPSFT, m)

	_, err = ParseMethod("reward-model")
	assert.Error(t, err)
}

func TestEpsilonUnbounded(t *testing.T) {
	eps := EpsilonUnbounded()

	assert.True(t, eps.IsUnbounded())
	assert.True(t, eps.IsSet())
	assert.Equal(t, "unbounded", eps.String())
	assert.True(t, math.IsInf(eps.Value(), 1))
}

func TestEpsilonFinite(t *testing.T) {
	eps := Epsilon(0.5)

	assert.False(t, eps.IsUnbounded())
	assert.True(t, eps.IsSet())
	assert.Equal(t, "0.5", eps.String())

	assert.False(t, Epsilon(0).IsSet(), "zero value means unset")
}

func TestEpsilonJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		eps  Epsilon
		wire string
	}{
		{"finite", Epsilon(1.0), "1"},
		{"fractional", Epsilon(0.5), "0.5"},
		{"unbounded", EpsilonUnbounded(), `"unbounded"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.eps)
			require.NoError(t, err)
			assert.Equal(t, tt.wire, string(data))

			var decoded Epsilon
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.eps, decoded)
		})
	}
}

func TestEpsilonUnmarshalRejectsGarbage(t *testing.T) {
	var eps Epsilon
	assert.Error(t, json.Unmarshal([]byte(`"infinite"`), &eps))
	assert.Error(t, json.Unmarshal([]byte(`{"value":1}`), &eps))
}

func TestParseEpsilon(t *testing.T) {
	eps, err := ParseEpsilon("unbounded")
	require.NoError(t, err)
	assert.True(t, eps.IsUnbounded())

	eps, err = ParseEpsilon("2.5")
	require.NoError(t, err)
	assert.Equal(t, Epsilon(2.5), eps)

	_, err = ParseEpsilon("lots")
	assert.Error(t, err)
}

func TestIsTransformed(t *testing.T) {
	original := &PreferenceRecord{TransformedFrom: TransformedFromOriginal}
	assert.False(t, original.IsTransformed())

	clone := &PreferenceRecord{TransformedFrom: "ppo"}
	assert.True(t, clone.IsTransformed())
}
