package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePlacementsEmptyRegistry(t *testing.T) {
	// Single student, empty schedule: the lesson lands exactly at submit time.
	reg := NewRegistry([]TeacherRef{{ID: "t1"}}, nil)
	requests := []PendingRequest{{ID: "r1", TeacherID: "t1", Students: []string{"Ana"}}}

	placements := ComputePlacements(requests, "11:00", DurationSettings{Single: 120, Multiple: 180}, reg)

	p := placements["r1"]
	assert.Equal(t, "11:00", p.CalculatedTime)
	assert.Equal(t, "13:00", p.EndTime)
	assert.Empty(t, p.Conflicts)
	assert.Equal(t, 0, p.BatchIndex)
	assert.Equal(t, 1, p.BatchSize)
}

func TestComputePlacementsFirstAnchorsDespiteConflict(t *testing.T) {
	// The first request per teacher anchors at submit time even when the
	// registry reports a collision there; the conflict is surfaced for the
	// operator, never silently shifted.
	reg := NewRegistry(
		[]TeacherRef{{ID: "t1"}},
		[]Event{{ID: "e1", Teacher: "t1", Start: "11:00", Duration: 120}},
	)
	requests := []PendingRequest{{ID: "r1", TeacherID: "t1", Students: []string{"Ana"}}}

	placements := ComputePlacements(requests, "11:00", DurationSettings{Single: 120, Multiple: 180}, reg)

	p := placements["r1"]
	assert.Equal(t, "11:00", p.CalculatedTime)
	assert.Equal(t, "13:00", p.EndTime)
	require.Len(t, p.Conflicts, 1)
	assert.Equal(t, ConflictTypeEvent, p.Conflicts[0].Type)
	assert.Equal(t, "11:00", p.Conflicts[0].Time)
}

func TestComputePlacementsSameTeacherBackToBack(t *testing.T) {
	// Two requests for the same teacher pack sequentially with no conflicts
	// reported for the second: siblings in a batch are not registry events.
	reg := NewRegistry([]TeacherRef{{ID: "t1"}}, nil)
	requests := []PendingRequest{
		{ID: "r1", TeacherID: "t1", Students: []string{"Ana"}},
		{ID: "r2", TeacherID: "t1", Students: []string{"Ben"}},
	}

	placements := ComputePlacements(requests, "09:00", DurationSettings{Single: 60, Multiple: 90}, reg)

	first := placements["r1"]
	second := placements["r2"]
	assert.Equal(t, "09:00", first.CalculatedTime)
	assert.Equal(t, "10:00", first.EndTime)
	assert.Equal(t, "10:00", second.CalculatedTime)
	assert.Equal(t, "11:00", second.EndTime)
	assert.Empty(t, second.Conflicts)
	assert.Equal(t, 1, second.BatchIndex)
	assert.Equal(t, 2, second.BatchSize)

	// Non-overlap: R1 ends where R2 starts.
	assert.LessOrEqual(t, clockToMinutes(first.EndTime), clockToMinutes(second.CalculatedTime))
}

func TestComputePlacementsFirstInBatchSimultaneity(t *testing.T) {
	// Parallel teachers start together: every first-in-batch placement sits
	// at submit time regardless of how long another teacher's queue is.
	reg := NewRegistry([]TeacherRef{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}, nil)
	requests := []PendingRequest{
		{ID: "r1", TeacherID: "t1", Students: []string{"Ana"}},
		{ID: "r2", TeacherID: "t1", Students: []string{"Ben"}},
		{ID: "r3", TeacherID: "t2", Students: []string{"Cleo"}},
		{ID: "r4", TeacherID: "t3", Students: []string{"Dani", "Eli"}},
	}

	placements := ComputePlacements(requests, "10:00", DurationSettings{Single: 60, Multiple: 120}, reg)

	assert.Equal(t, "10:00", placements["r1"].CalculatedTime)
	assert.Equal(t, "10:00", placements["r3"].CalculatedTime)
	assert.Equal(t, "10:00", placements["r4"].CalculatedTime)
}

func TestComputePlacementsDurationSelection(t *testing.T) {
	reg := NewRegistry([]TeacherRef{{ID: "t1"}, {ID: "t2"}}, nil)
	requests := []PendingRequest{
		{ID: "solo", TeacherID: "t1", Students: []string{"Ana"}},
		{ID: "pair", TeacherID: "t2", Students: []string{"Ben", "Cleo"}},
	}

	placements := ComputePlacements(requests, "09:00", DurationSettings{Single: 60, Multiple: 90}, reg)

	assert.Equal(t, 60, placements["solo"].Duration)
	assert.Equal(t, "10:00", placements["solo"].EndTime)
	assert.Equal(t, 90, placements["pair"].Duration)
	assert.Equal(t, "10:30", placements["pair"].EndTime)
}

func TestComputePlacementsSubsequentNeverConflictShifted(t *testing.T) {
	// A registry collision against a subsequent request is reported but the
	// placement stays strictly sequential.
	reg := NewRegistry(
		[]TeacherRef{{ID: "t1"}},
		[]Event{{ID: "e1", Teacher: "t1", Start: "10:00", Duration: 60}},
	)
	requests := []PendingRequest{
		{ID: "r1", TeacherID: "t1", Students: []string{"Ana"}},
		{ID: "r2", TeacherID: "t1", Students: []string{"Ben"}},
	}

	placements := ComputePlacements(requests, "09:00", DurationSettings{Single: 60, Multiple: 90}, reg)

	second := placements["r2"]
	assert.Equal(t, "10:00", second.CalculatedTime, "back-to-back even though the registry is busy at 10:00")
	require.Len(t, second.Conflicts, 1)
	assert.Equal(t, "10:00", second.Conflicts[0].Time)
}

func TestComputePlacementsDayOverflow(t *testing.T) {
	reg := NewRegistry([]TeacherRef{{ID: "t1"}}, nil)
	requests := []PendingRequest{{ID: "r1", TeacherID: "t1", Students: []string{"Ana"}}}

	placements := ComputePlacements(requests, "23:30", DurationSettings{Single: 60, Multiple: 90}, reg)

	p := placements["r1"]
	require.Len(t, p.Conflicts, 1)
	assert.Equal(t, ConflictTypeDayOverflow, p.Conflicts[0].Type)
	assert.Equal(t, "23:59", p.EndTime)
}
