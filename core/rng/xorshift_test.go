package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXORShiftSequence(t *testing.T) {
	g := NewXORShift(1337)
	want := []float64{
		0.0791554548961938,
		0.8031260766561902,
		0.8962714820858724,
		0.2275766667974127,
		0.9033733557219089,
	}
	for i, w := range want {
		assert.Equal(t, w, g.Next(), "draw %d", i)
	}
}

func TestXORShiftState(t *testing.T) {
	g := NewXORShift(1337)
	g.Next()
	assert.Equal(t, uint32(339970090), g.State())
	g.Next()
	g.Next()
	assert.Equal(t, uint32(3849456703), g.State())
}

func TestXORShiftReproducible(t *testing.T) {
	a := NewXORShift(456789)
	b := NewXORShift(456789)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Next(), b.Next(), "diverged at draw %d", i)
	}
}

func TestXORShiftUnitInterval(t *testing.T) {
	g := NewXORShift(1337)
	for i := 0; i < 100000; i++ {
		v := g.Next()
		if v < 0 || v >= 1 {
			t.Fatalf("draw %d out of range: %v", i, v)
		}
	}
}

func TestXORShiftZeroSeedIsFixedPoint(t *testing.T) {
	g := NewXORShift(0)
	for i := 0; i < 10; i++ {
		assert.Zero(t, g.Next())
	}
	assert.Zero(t, g.State())
}

type constSource float64

func (c constSource) Next() float64 { return float64(c) }

func TestRange(t *testing.T) {
	assert.Equal(t, 5000.0, Range(constSource(0.5), 0, 10000))
	assert.Equal(t, 15.0, Range(constSource(0.25), 10, 30))
	assert.Equal(t, 10.0, Range(constSource(0), 10, 30))

	first := 0.0791554548961938
	g := NewXORShift(1337)
	assert.Equal(t, first*10000, g.Range(0, 10000))
}
