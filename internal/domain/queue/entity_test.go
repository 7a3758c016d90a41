package queue

import (
	"testing"

	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		changed bool
		wantErr bool
	}{
		{StatusWaiting, StatusInvited, true, false},
		{StatusInvited, StatusInvited, false, false},
		{StatusInMeeting, StatusInvited, false, true},
		{StatusWaiting, StatusInMeeting, true, false},
		{StatusInvited, StatusInMeeting, true, false},
		{StatusInMeeting, StatusInMeeting, false, true},
		{StatusCompleted, StatusInMeeting, false, true},
		{StatusInMeeting, StatusCompleted, true, false},
		{StatusWaiting, StatusCompleted, false, true},
		{StatusWaiting, StatusLeftWithMessage, true, false},
		{StatusInMeeting, StatusLeftWithMessage, true, false},
		{StatusLeftWithMessage, StatusLeftWithMessage, false, false},
		{StatusCompleted, StatusLeftWithMessage, false, false},
	}
	for _, tc := range cases {
		changed, err := Entry{Status: tc.from}.Transition(tc.to)
		assert.Equal(t, tc.changed, changed, "%s -> %s", tc.from, tc.to)
		if tc.wantErr {
			assert.ErrorIs(t, err, jobfair_errors.ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
		} else {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestNextPosition(t *testing.T) {
	assert.Equal(t, 1, NextPosition(0))
	assert.Equal(t, 3, NextPosition(2))
	assert.Equal(t, 1, NextPosition(-1))
}
