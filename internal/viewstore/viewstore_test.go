package viewstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	*Core[[]int]
}

func (c counter) Send(_ context.Context, n int) {
	c.Update(func(s []int) []int { return append(s, n) })
}

var _ Store[[]int, int] = counter{}

func cloneInts(s []int) []int {
	if s == nil {
		return nil
	}
	return append([]int(nil), s...)
}

func TestCore_SetNotifiesSubscribersInOrder(t *testing.T) {
	core := NewCore(0, nil)

	var calls []string
	core.Subscribe(func(v int) { calls = append(calls, "a") })
	core.Subscribe(func(v int) { calls = append(calls, "b") })

	core.Set(7)

	assert.Equal(t, 7, core.State())
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestCore_UnsubscribeStopsDelivery(t *testing.T) {
	core := NewCore("idle", nil)

	var seen []string
	cancel := core.Subscribe(func(v string) { seen = append(seen, v) })
	core.Set("busy")
	cancel()
	cancel()
	core.Set("done")

	assert.Equal(t, []string{"busy"}, seen)
}

func TestCore_StateIsCopied(t *testing.T) {
	c := counter{NewCore[[]int](nil, cloneInts)}
	c.Send(context.Background(), 1)
	c.Send(context.Background(), 2)

	got := c.State()
	require.Equal(t, []int{1, 2}, got)

	got[0] = 99
	assert.Equal(t, []int{1, 2}, c.State())
}
