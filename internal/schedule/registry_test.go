package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBucketsEventsByTeacher(t *testing.T) {
	reg := NewRegistry(
		[]TeacherRef{{ID: "t1", Name: "Marta"}, {ID: "t2", Name: "Jonas"}},
		[]Event{
			{ID: "e1", Teacher: "t1", Start: "09:00", Duration: 60},
			{ID: "e2", Teacher: "t2", Start: "10:00", Duration: 120},
			{ID: "e3", Teacher: "t1", Start: "11:00", Duration: 60},
			{ID: "e4", Teacher: "ghost", Start: "09:00", Duration: 60}, // unknown, dropped
		},
	)

	seq1, ok := reg.Sequence("t1")
	require.True(t, ok)
	assert.Equal(t, 2, seq1.Len())

	seq2, ok := reg.Sequence("t2")
	require.True(t, ok)
	assert.Equal(t, 1, seq2.Len())

	_, ok = reg.Sequence("ghost")
	assert.False(t, ok)

	assert.Equal(t, "Marta", reg.TeacherName("t1"))
	assert.ElementsMatch(t, []string{"t1", "t2"}, reg.TeacherIDs())
}

func TestRegistryEveryTeacherHasSequence(t *testing.T) {
	reg := NewRegistry([]TeacherRef{{ID: "t1"}, {ID: "t2"}}, nil)
	for _, id := range []string{"t1", "t2"} {
		seq, ok := reg.Sequence(id)
		require.True(t, ok, "teacher %s", id)
		assert.Zero(t, seq.Len())
	}
}

func TestRegistryAvailabilityDelegates(t *testing.T) {
	reg := NewRegistry(
		[]TeacherRef{{ID: "t1"}},
		[]Event{{ID: "e1", Teacher: "t1", Start: "11:00", Duration: 120}},
	)

	avail := reg.TeacherLessonAvailability("t1", "11:00", 120, nil)
	require.Len(t, avail.Conflicts, 1)
	assert.Equal(t, ConflictTypeEvent, avail.Conflicts[0].Type)
	assert.Equal(t, "11:00", avail.Conflicts[0].Time)
	assert.Equal(t, "13:00", avail.CalculatedTime)
	assert.Equal(t, "15:00", avail.EndTime)
}

func TestRegistryUnknownTeacherFailsOpen(t *testing.T) {
	// Stale or late-arriving teacher data must not halt scheduling: an
	// unknown teacher reads as fully available at the requested time.
	reg := NewRegistry([]TeacherRef{{ID: "t1"}}, nil)

	avail := reg.TeacherLessonAvailability("unknown", "14:00", 90, nil)
	assert.Equal(t, "14:00", avail.CalculatedTime)
	assert.Equal(t, "15:30", avail.EndTime)
	assert.Empty(t, avail.Conflicts)
}
