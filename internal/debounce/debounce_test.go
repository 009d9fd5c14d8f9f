package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncer_SingleCall(t *testing.T) {
	var called int32
	d := New(50 * time.Millisecond)

	d.Debounce(func() { atomic.AddInt32(&called, 1) })
	assert.True(t, d.Pending())

	time.Sleep(120 * time.Millisecond)

	assert.EqualValues(t, 1, atomic.LoadInt32(&called))
	assert.False(t, d.Pending())
}

func TestDebouncer_KeystrokesInsideWindow(t *testing.T) {
	var called, last int32
	d := New(50 * time.Millisecond)

	for i := 1; i <= 10; i++ {
		value := int32(i)
		d.Debounce(func() {
			atomic.StoreInt32(&last, value)
			atomic.AddInt32(&called, 1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(120 * time.Millisecond)

	assert.EqualValues(t, 1, atomic.LoadInt32(&called), "only the last keystroke commits")
	assert.EqualValues(t, 10, atomic.LoadInt32(&last))
}

func TestDebouncer_Cancel(t *testing.T) {
	var called int32
	d := New(50 * time.Millisecond)

	d.Debounce(func() { atomic.AddInt32(&called, 1) })
	time.Sleep(10 * time.Millisecond)
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&called))
}

func TestDebouncer_Immediate(t *testing.T) {
	var debounced, immediate int32
	d := New(50 * time.Millisecond)

	d.Debounce(func() { atomic.AddInt32(&debounced, 1) })
	d.Immediate(func() { atomic.AddInt32(&immediate, 1) })

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&debounced))
	assert.EqualValues(t, 1, atomic.LoadInt32(&immediate))
}

func TestDebouncer_Flush(t *testing.T) {
	var called int32
	d := New(time.Hour)

	assert.False(t, d.Flush())

	d.Debounce(func() { atomic.AddInt32(&called, 1) })
	assert.True(t, d.Flush())
	assert.EqualValues(t, 1, atomic.LoadInt32(&called))
	assert.False(t, d.Flush(), "flushed calls do not run twice")
}

func TestNew_DefaultDuration(t *testing.T) {
	assert.Equal(t, DefaultDuration, New(0).Duration())
	assert.Equal(t, time.Second, New(time.Second).Duration())
}
