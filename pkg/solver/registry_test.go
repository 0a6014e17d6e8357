package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Default(t *testing.T) {
	s, err := New(Settings{TimeLimit: time.Second}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "sat", s.Name())
}

func TestNew_CBC(t *testing.T) {
	s, err := New(Settings{Name: "cbc"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "cbc", s.Name())
}

func TestNew_Unknown(t *testing.T) {
	_, err := New(Settings{Name: "gurobi"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown solver")
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"cbc", "sat"}, Names())
}
