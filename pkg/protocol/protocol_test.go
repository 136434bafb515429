package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		id   ID
		want error
	}{
		{"analytics", Analytics, nil},
		{"multistream", Multistream, nil},
		{"empty", "", ErrEmptyProtocol},
		{"no leading slash", "libp2p/analytics/1.0.0", ErrInvalidProtocol},
		{"no version segment", "/analytics", ErrInvalidProtocol},
		{"empty namespace", "//analytics/1.0.0", ErrInvalidProtocol},
		{"chat", "/chat/1.0.0", nil},
		{"trailing slash", "/libp2p/analytics/", ErrMissingVersion},
		{"newline", "/libp2p/ana\nlytics/1.0.0", ErrInvalidProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tt.id), tt.want)
		})
	}
}

func TestIsInternal(t *testing.T) {
	assert.True(t, IsInternal(Multistream))
	assert.False(t, IsInternal(Analytics))
	assert.False(t, IsInternal("/chat/1.0.0"))
}
