package events

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmit_DeliversToAllHandlers(t *testing.T) {
	ch := NewChannel(slog.Default())

	var first, second []Verification
	ch.RegisterHandler(func(_ context.Context, v Verification) { first = append(first, v) })
	ch.RegisterHandler(func(_ context.Context, v Verification) { second = append(second, v) })

	ch.Emit(context.Background(), "user-1", "guild-2")

	want := Verification{UserID: "user-1", GuildID: "guild-2"}
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, want, first[0])
	assert.Equal(t, want, second[0])
}

func TestEmit_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	ch := NewChannel(slog.Default())

	ch.RegisterHandler(func(_ context.Context, _ Verification) { panic("boom") })

	var got []Verification
	ch.RegisterHandler(func(_ context.Context, v Verification) { got = append(got, v) })

	require.NotPanics(t, func() {
		ch.Emit(context.Background(), "user-1", "guild-2")
	})
	require.Len(t, got, 1)
	assert.Equal(t, "user-1", got[0].UserID)
}

func TestEmit_LateRegistrationSeesNoPastEvents(t *testing.T) {
	ch := NewChannel(slog.Default())

	ch.Emit(context.Background(), "user-1", "guild-2")

	var got []Verification
	ch.RegisterHandler(func(_ context.Context, v Verification) { got = append(got, v) })

	assert.Empty(t, got, "no buffering or replay")

	ch.Emit(context.Background(), "user-3", "guild-4")
	require.Len(t, got, 1)
	assert.Equal(t, "user-3", got[0].UserID)
}

func TestEmit_NoHandlers(t *testing.T) {
	ch := NewChannel(nil)
	require.NotPanics(t, func() {
		ch.Emit(context.Background(), "user-1", "guild-2")
	})
}
