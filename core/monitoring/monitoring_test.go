package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordMonitor struct {
	errs    []error
	tags    map[string]string
	panics  []any
	flushed bool
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = tags
}
func (r *recordMonitor) CapturePanic(v any)  { r.panics = append(r.panics, v) }
func (r *recordMonitor) Flush(time.Duration) { r.flushed = true }

func TestCaptureException(t *testing.T) {
	mon := &recordMonitor{}
	Init(mon)
	defer Init(nil)

	CaptureException(nil, nil)
	CaptureException(errors.New("boom"), map[string]string{"module": "api"})
	assert.Len(t, mon.errs, 1)
	assert.Equal(t, "api", mon.tags["module"])
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	mon := &recordMonitor{}
	Init(mon)
	defer Init(nil)

	assert.PanicsWithValue(t, "bad tick", func() {
		defer Recover()
		panic("bad tick")
	})
	assert.Equal(t, []any{"bad tick"}, mon.panics)
	assert.True(t, mon.flushed)
}

func TestInitNilRestoresNop(t *testing.T) {
	Init(&recordMonitor{})
	Init(nil)
	_, ok := Current().(NopMonitor)
	assert.True(t, ok)
}
