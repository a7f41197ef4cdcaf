package errors

import (
	"errors"
	"fmt"
	"testing"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// TransportError Tests
// -----------------------------------------------------------------------------

func TestKindMessage(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		code    int
		message string
		want    string
	}{
		{"invalid url", KindInvalidURL, 0, "", "Invalid URL. Unable to proceed with the request."},
		{"decoding", KindDecoding, 0, "", "Failed to decode the response. Data format might be incorrect."},
		{"response code", KindInvalidResponseCode, 503, "", "Received invalid response code: 503."},
		{"no internet", KindNoInternetConnection, 0, "", "No internet connection. Please check your network settings."},
		{"timeout", KindTimeout, 0, "", "Request timed out. The server took too long to respond."},
		{"generic", KindGeneric, 0, "should fail", "should fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindMessage(tt.kind, tt.code, tt.message); got != tt.want {
				t.Errorf("KindMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *TransportError
		want string
	}{
		{
			name: "no endpoint",
			err:  NewInvalidResponseCode(404),
			want: "transport error: Received invalid response code: 404.",
		},
		{
			name: "with endpoint",
			err:  NewInvalidResponseCode(500).WithEndpoint("nextpath"),
			want: "transport error [endpoint=nextpath]: Received invalid response code: 500.",
		},
		{
			name: "with cause",
			err:  NewTimeout(New("deadline")).WithEndpoint("responsecode"),
			want: "transport error [endpoint=responsecode]: Request timed out. The server took too long to respond.: deadline",
		},
		{
			name: "generic hides cause",
			err:  NewGeneric("boom", New("dial tcp")),
			want: "transport error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransportError_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"invalid url", NewInvalidURL(nil), ErrInvalidURL},
		{"decoding", NewDecodingError(nil), ErrDecoding},
		{"response code", NewInvalidResponseCode(418), ErrInvalidResponseCode},
		{"no internet", NewNoInternetConnection(nil), ErrNoInternetConnection},
		{"timeout", NewTimeout(nil), ErrTimeout},
		{"generic", NewGeneric("x", nil), ErrGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.sentinel)
			}
			if errors.Is(tt.err, ErrStoreCorrupted) {
				t.Error("transport error should not match storage sentinel")
			}
			var te *TransportError
			if !errors.As(tt.err, &te) {
				t.Error("errors.As should find *TransportError")
			}
		})
	}
}

func TestTransportError_WrappedStillClassified(t *testing.T) {
	err := fmt.Errorf("fetch next path: %w", NewTimeout(nil))

	kind, ok := KindOf(err)
	if !ok {
		t.Fatal("KindOf() should find the transport error")
	}
	if kind != KindTimeout {
		t.Errorf("KindOf() = %v, want %v", kind, KindTimeout)
	}
	if !Is(err, ErrTimeout) {
		t.Error("wrapped timeout should match ErrTimeout")
	}
}

func TestTransportError_Retryable(t *testing.T) {
	if NewInvalidURL(nil).IsRetryable() {
		t.Error("invalid url must not be retryable")
	}
	for _, k := range []Kind{KindDecoding, KindInvalidResponseCode, KindNoInternetConnection, KindTimeout, KindGeneric} {
		if !NewTransportError(k, nil).IsRetryable() {
			t.Errorf("kind %v should be retryable", k)
		}
	}
}

func TestKind_String(t *testing.T) {
	if got := KindInvalidResponseCode.String(); got != "invalid_response_code" {
		t.Errorf("String() = %q", got)
	}
	if got := Kind(42).String(); got != "generic" {
		t.Errorf("String() = %q, want generic", got)
	}
}

// -----------------------------------------------------------------------------
// Classification Helper Tests
// -----------------------------------------------------------------------------

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"generic", NewGeneric("should fail", nil), "should fail"},
		{"wrapped", fmt.Errorf("outer: %w", NewInvalidResponseCode(502)), "Received invalid response code: 502."},
		{"plain", New("disk full"), "disk full"},
		{"generic without message", NewGeneric("", New("eof")), "transport error: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", New("x"), false},
		{"timeout sentinel", fmt.Errorf("wait: %w", ErrTimeout), true},
		{"invalid url", NewInvalidURL(nil), false},
		{"decoding", NewDecodingError(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if IsUserFacing(New("internal")) {
		t.Error("plain error should not be user facing")
	}
	if !IsUserFacing(NewTimeout(nil)) {
		t.Error("transport error should be user facing")
	}
}

func TestGetSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil", nil, SeverityDebug},
		{"plain", New("x"), SeverityError},
		{"timeout", NewTimeout(nil), SeverityWarning},
		{"offline", NewNoInternetConnection(nil), SeverityWarning},
		{"decoding", NewDecodingError(nil), SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSeverity(tt.err); got != tt.want {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	base := New("base")
	err := Wrapf(base, "load %s", "state")
	if err.Error() != "load state: base" {
		t.Errorf("Wrapf() = %q", err.Error())
	}
	if !Is(err, base) {
		t.Error("wrapped error should match base")
	}
	if Wrap(base, "ctx").Error() != "ctx: base" {
		t.Errorf("Wrap() = %q", Wrap(base, "ctx").Error())
	}
}
