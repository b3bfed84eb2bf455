package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reflowFixture() []ReflowEvent {
	return []ReflowEvent{
		{Event: Event{ID: "e1", Teacher: "t1", Date: "2026-08-29", Start: "10:00", Duration: 60, Location: LocationLosLances, Students: []string{"Ana"}}},
		{Event: Event{ID: "e2", Teacher: "t1", Date: "2026-08-29", Start: "11:30", Duration: 60, Location: LocationLosLances, Students: []string{"Ben"}}},
	}
}

const LocationLosLances = "Los Lances"

func TestReflowCollapsesGaps(t *testing.T) {
	// Events at 10:00 and 11:30 with a 30-minute hole between them: anchored
	// at 09:00 with no explicit gaps the reflow packs back-to-back.
	recalc := Reflow(reflowFixture(), ReflowOptions{
		Anchor:        "09:00",
		Settings:      DurationSettings{Single: 60, Multiple: 120},
		Location:      LocationLosLances,
		KeepDurations: true,
	})

	require.Len(t, recalc, 2)
	assert.Equal(t, "09:00", recalc[0].NewTime)
	assert.Equal(t, "10:00", recalc[0].NewEndTime)
	assert.Equal(t, "10:00", recalc[1].NewTime)
	assert.Equal(t, "11:00", recalc[1].NewEndTime)
}

func TestReflowMonotonicity(t *testing.T) {
	// Without reordering, recalculated starts never decrease.
	events := []ReflowEvent{
		{Event: Event{ID: "e1", Start: "08:00", Duration: 90, Students: []string{"Ana"}}},
		{Event: Event{ID: "e2", Start: "10:00", Duration: 60, Students: []string{"Ben"}}},
		{Event: Event{ID: "e3", Start: "12:00", Duration: 120, Students: []string{"Cleo", "Dani"}}},
	}
	recalc := Reflow(events, ReflowOptions{
		Anchor:   "09:00",
		Settings: DurationSettings{Single: 60, Multiple: 120},
	})

	require.Len(t, recalc, 3)
	for i := 0; i < len(recalc)-1; i++ {
		assert.LessOrEqual(t, clockToMinutes(recalc[i].NewTime), clockToMinutes(recalc[i+1].NewTime))
		assert.Equal(t, recalc[i].NewEndTime, recalc[i+1].NewTime)
	}
	assert.Equal(t, recalc[0].ID, "e1")
	assert.Equal(t, recalc[2].ID, "e3")
}

func TestReflowAppliesGaps(t *testing.T) {
	events := reflowFixture()
	events[1].Gap = 30

	recalc := Reflow(events, ReflowOptions{
		Anchor:        "09:00",
		Settings:      DurationSettings{Single: 60, Multiple: 120},
		KeepDurations: true,
	})

	assert.Equal(t, "09:00", recalc[0].NewTime)
	assert.Equal(t, "10:30", recalc[1].NewTime)
	assert.Equal(t, "11:30", recalc[1].NewEndTime)
}

func TestReflowFirstEventGap(t *testing.T) {
	events := reflowFixture()
	events[0].Gap = 60

	recalc := Reflow(events, ReflowOptions{
		Anchor:        "09:00",
		Settings:      DurationSettings{Single: 60, Multiple: 120},
		KeepDurations: true,
	})

	assert.Equal(t, "10:00", recalc[0].NewTime)
}

func TestReflowRecomputesDurationsFromPartySize(t *testing.T) {
	events := []ReflowEvent{
		{Event: Event{ID: "e1", Start: "10:00", Duration: 45, Students: []string{"Ana", "Ben"}}},
	}

	recalc := Reflow(events, ReflowOptions{
		Anchor:   "09:00",
		Settings: DurationSettings{Single: 60, Multiple: 120},
	})

	assert.Equal(t, 120, recalc[0].NewDuration, "multi-student duration from current rules, not the original 45")

	kept := Reflow(events, ReflowOptions{
		Anchor:        "09:00",
		Settings:      DurationSettings{Single: 60, Multiple: 120},
		KeepDurations: true,
	})
	assert.Equal(t, 45, kept[0].NewDuration)
}

func TestReflowAppliesTargetLocationAndDate(t *testing.T) {
	recalc := Reflow(reflowFixture(), ReflowOptions{
		Anchor:   "09:00",
		Settings: DurationSettings{Single: 60, Multiple: 120},
		Location: "Valdevaqueros",
		Date:     "2026-08-30",
	})

	for _, rc := range recalc {
		assert.Equal(t, "Valdevaqueros", rc.NewLocation)
		assert.Equal(t, "2026-08-30", rc.NewDate)
	}
}

func TestSwapAdjacent(t *testing.T) {
	events := reflowFixture()
	SwapAdjacent(events, 0)
	assert.Equal(t, "e2", events[0].ID)
	assert.Equal(t, "e1", events[1].ID)

	// Out-of-range swaps are ignored.
	SwapAdjacent(events, -1)
	SwapAdjacent(events, 1)
	assert.Equal(t, "e2", events[0].ID)
}

func TestNormalizeGap(t *testing.T) {
	assert.Equal(t, 0, NormalizeGap(-30))
	assert.Equal(t, 0, NormalizeGap(0))
	assert.Equal(t, 0, NormalizeGap(29))
	assert.Equal(t, 30, NormalizeGap(30))
	assert.Equal(t, 30, NormalizeGap(59))
	assert.Equal(t, 90, NormalizeGap(90))
}

func TestHasChanges(t *testing.T) {
	unchanged := []Recalculated{{
		Event:       Event{ID: "e1", Date: "2026-08-29", Start: "10:00", Duration: 60, Location: LocationLosLances},
		NewTime:     "10:00",
		NewEndTime:  "11:00",
		NewDuration: 60,
		NewLocation: LocationLosLances,
		NewDate:     "2026-08-29",
	}}
	assert.False(t, HasChanges(unchanged))

	moved := make([]Recalculated, 1)
	moved[0] = unchanged[0]
	moved[0].NewTime = "09:00"
	assert.True(t, HasChanges(moved))

	relocated := make([]Recalculated, 1)
	relocated[0] = unchanged[0]
	relocated[0].NewLocation = "Balneario"
	assert.True(t, HasChanges(relocated))
}
