package search

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"weather-lookup/datasource"
	"weather-lookup/geolocation"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found", fmt.Errorf("resolve: %w", datasource.ErrNotFound), MsgNotFound},
		{"http status", &datasource.TransportError{Op: "geocoding", StatusCode: 429}, "HTTP 429 ao acessar API"},
		{"network", &datasource.TransportError{Op: "forecast", Err: errors.New("connection refused")}, MsgNetwork},
		{"malformed", &datasource.TransportError{Op: "forecast", Err: fmt.Errorf("%w: eof", datasource.ErrMalformedResponse)}, MsgMalformed},
		{"unsupported", geolocation.ErrUnsupported, MsgUnsupported},
		{"permission", fmt.Errorf("locate: %w", geolocation.ErrPermissionDenied), MsgPermissionDenied},
		{"unavailable", geolocation.ErrPositionUnavailable, MsgPositionUnavailable},
		{"timeout", geolocation.ErrTimeout, MsgLocationTimeout},
		{"other code", &geolocation.Error{Code: 42}, MsgLocationFailed},
		{"unknown", errors.New("boom"), MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, MsgUnexpected))
		})
	}
}
