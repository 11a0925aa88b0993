package model

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTripPredictions(t *testing.T) {
	p, x, _ := fitTestPipeline(t)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, p))

	loaded, err := Load(&buf)
	require.NoError(t, err)

	want, err := p.PredictProba(x)
	require.NoError(t, err)
	got, err := loaded.PredictProba(x)
	require.NoError(t, err)
	assert.Equal(t, want.RawMatrix().Data, got.RawMatrix().Data)
	assert.Equal(t, p.Features, loaded.Features)
}

func TestSave_NotFitted(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Save(&buf, &Pipeline{}), ErrNotFitted)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"invalid json", `{`, "load model"},
		{"missing stages", `{"features":["a"]}`, "not fitted"},
		{"scaler width", `{"features":["a","b"],"scaler":{"mean":[0],"scale":[1]},"forest":{"classes":[0],"n_features":2,"trees":[{"nodes":[{"feature":-1,"value":[1]}]}]}}`, "shape mismatch"},
		{"zero scale", `{"features":["a"],"scaler":{"mean":[0],"scale":[0]},"forest":{"classes":[0],"n_features":1,"trees":[{"nodes":[{"feature":-1,"value":[1]}]}]}}`, "zero"},
		{"feature out of range", `{"features":["a"],"scaler":{"mean":[0],"scale":[1]},"forest":{"classes":[0],"n_features":1,"trees":[{"nodes":[{"feature":3,"left":1,"right":2,"value":[1]},{"feature":-1,"value":[1]},{"feature":-1,"value":[1]}]}]}}`, "feature 3 out of range"},
		{"child cycle", `{"features":["a"],"scaler":{"mean":[0],"scale":[1]},"forest":{"classes":[0],"n_features":1,"trees":[{"nodes":[{"feature":0,"left":0,"right":1,"value":[1]},{"feature":-1,"value":[1]}]}]}}`, "child index"},
		{"value width", `{"features":["a"],"scaler":{"mean":[0],"scale":[1]},"forest":{"classes":[0,1],"n_features":1,"trees":[{"nodes":[{"feature":-1,"value":[1]}]}]}}`, "class values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
