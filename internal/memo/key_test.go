package memo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type userID int

func (u userID) String() string { return "user-" + string(rune('0'+int(u))) }

func TestKeyString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "string", in: "abc", want: "abc"},
		{name: "int", in: 5, want: "5"},
		{name: "float", in: 2.5, want: "2.5"},
		{name: "nil", in: nil, want: "<nil>"},
		{name: "stringer", in: userID(7), want: "user-7"},
		{name: "error", in: errors.New("bad"), want: "bad"},
		{name: "map is ordered", in: map[string]int{"b": 2, "a": 1}, want: "map[a:1 b:2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyString(tt.in))
		})
	}
}

func TestKeyString_EqualTextSharesEntry(t *testing.T) {
	m := New(Infallible(func(a any) any { return a }), ByArgument[any], Config{})
	defer m.Close()

	_, _ = m.Call(5)
	res, err := m.CallDebug("5")
	assert.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 5, res.Value)
}
