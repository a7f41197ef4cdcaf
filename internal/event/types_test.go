package event

import "testing"

func TestTaskEventTypes(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewTaskLoadedEvent(1, "a"), TypeTaskLoaded},
		{NewTaskFetchStartedEvent(), TypeTaskFetchStarted},
		{NewTaskFetchSucceededEvent(2, "b", false), TypeTaskFetchSucceeded},
		{NewTaskFetchFailedEvent("generic", "should fail"), TypeTaskFetchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.event.EventType(); got != tt.want {
				t.Errorf("EventType() = %q, want %q", got, tt.want)
			}
			if tt.event.Timestamp().IsZero() {
				t.Error("Timestamp() should be set")
			}
		})
	}
}

func TestTaskFetchFailedEvent_Payload(t *testing.T) {
	e := NewTaskFetchFailedEvent("invalid_url", "Invalid URL. Unable to proceed with the request.")
	if e.Kind != "invalid_url" {
		t.Errorf("Kind = %q", e.Kind)
	}
	if e.Message != "Invalid URL. Unable to proceed with the request." {
		t.Errorf("Message = %q", e.Message)
	}
}
