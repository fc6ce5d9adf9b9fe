package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceTo(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: 4}

	assert.InDelta(t, 5.0, a.DistanceTo(b), 1e-12)
	assert.InDelta(t, 5.0, b.DistanceTo(a), 1e-12)
	assert.Zero(t, a.DistanceTo(a))
}

func TestBlend(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 100, Y: 200}

	m := a.Blend(b, 0.9)
	assert.InDelta(t, 10.0, m.X, 1e-12)
	assert.InDelta(t, 20.0, m.Y, 1e-12)

	// Weight 1 keeps the receiver, weight 0 takes the argument.
	assert.Equal(t, a, a.Blend(b, 1))
	assert.Equal(t, b, a.Blend(b, 0))
}
