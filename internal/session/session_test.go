package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(WithSession(context.Background(), Session{Username: "anon"}))
	assert.False(t, ok, "a session without uid is not authenticated")

	want := Session{UserUID: "uid-1", Username: "owner", Role: "user"}
	got, ok := FromContext(WithSession(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
