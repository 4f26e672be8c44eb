package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepKey(t *testing.T) {
	require.Equal(t, "step_0", StepKey(0))
	require.Equal(t, "step_12", StepKey(12))
}

func TestSessionRecord_Completed(t *testing.T) {
	rec := SessionRecord{CurrentStepIndex: 2, TotalSteps: 3}
	assert.False(t, rec.Completed())
	rec.CurrentStepIndex = 3
	assert.True(t, rec.Completed())
}

func TestSessionRecord_Response(t *testing.T) {
	rec := SessionRecord{Responses: map[string]string{"step_1": "a dark cave"}}

	value, ok := rec.Response(1)
	assert.True(t, ok)
	assert.Equal(t, "a dark cave", value)

	_, ok = rec.Response(0)
	assert.False(t, ok)

	// Nil map is safe to read.
	_, ok = SessionRecord{}.Response(0)
	assert.False(t, ok)
}

func TestStatusDocument_FindActive(t *testing.T) {
	doc := NewStatusDocument()
	doc.ActiveSessions = []SessionRecord{{ID: "a"}, {ID: "b"}}

	assert.Equal(t, 1, doc.FindActive("b"))
	assert.Equal(t, -1, doc.FindActive("z"))
}

func TestStatusDocument_PrependCompleted_CapsAtTen(t *testing.T) {
	doc := NewStatusDocument()
	for i := 0; i < RecentCompletedCap+1; i++ {
		doc.PrependCompleted(CompletedSessionRecord{
			SessionID:   fmt.Sprintf("s%d", i),
			CompletedAt: time.Now(),
		})
	}

	require.Len(t, doc.RecentCompleted, RecentCompletedCap)
	// Most recent first; the oldest ("s0") was evicted.
	assert.Equal(t, "s10", doc.RecentCompleted[0].SessionID)
	assert.Equal(t, "s1", doc.RecentCompleted[RecentCompletedCap-1].SessionID)
}
