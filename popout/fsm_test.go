package popout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_ValidTransitions(t *testing.T) {
	cases := []struct {
		from    Phase
		trigger Trigger
		to      Phase
	}{
		{PhaseNotAPopout, PopoutDetected, PhaseAwaitingState},
		{PhaseAwaitingState, StateReceived, PhaseSynced},
		{PhaseSynced, StateReceived, PhaseSynced},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_"+string(tc.trigger), func(t *testing.T) {
			result, err := ApplyTransition(tc.from, tc.trigger)
			require.NoError(t, err)
			assert.Equal(t, tc.to, result)
		})
	}
}

func TestTransition_InvalidTransitions(t *testing.T) {
	cases := []struct {
		from    Phase
		trigger Trigger
	}{
		{PhaseNotAPopout, StateReceived},     // a main window never applies state
		{PhaseAwaitingState, PopoutDetected}, // detected once
		{PhaseSynced, PopoutDetected},
		{Phase("bogus"), StateReceived},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_"+string(tc.trigger), func(t *testing.T) {
			_, err := ApplyTransition(tc.from, tc.trigger)
			assert.Error(t, err)
		})
	}
}
