package slots

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FreetimeService/internal/domain"
	"github.com/m04kA/SMC-FreetimeService/internal/usecase/freetime"
)

func TestOverlap_JSON(t *testing.T) {
	tests := []struct {
		name    string
		overlap Overlap
		want    string
	}{
		{name: "free", overlap: 0, want: "false"},
		{name: "booked", overlap: 1, want: "1"},
		{name: "provisional", overlap: 2, want: "2"},
		{name: "past", overlap: 3, want: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.overlap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestFromUseCase_Compact(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	start := time.Date(2025, 3, 3, 8, 0, 0, 0, loc)
	in := []freetime.TimeSlot{{
		Start:   start,
		End:     start.Add(time.Hour),
		When:    "03/03-2025 08:00 - 03/03-2025 09:00",
		Overlap: domain.OverlapNone,
	}}

	data, err := json.Marshal(FromUseCase(in))
	require.NoError(t, err)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)

	slot := raw[0]
	assert.Equal(t, false, slot["overlap"])
	assert.Equal(t, float64(start.UnixMilli()), slot["start"])
	assert.Equal(t, "2025-03-03T08:00:00+01:00", slot["start_iso"])
	assert.Equal(t, "2025-03-03T09:00:00+01:00", slot["end_iso"])
	assert.NotContains(t, slot, "resource_id")
	assert.NotContains(t, slot, "overlap_reason")
	assert.NotContains(t, slot, "overlap_type")
	assert.NotContains(t, slot, "overlap_event")
}

func TestFromUseCase_Detailed(t *testing.T) {
	start := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	resourceID := int64(10)
	status := "ACCEPTED"

	in := []freetime.TimeSlot{{
		Start:      start,
		End:        start.Add(time.Hour),
		Overlap:    domain.OverlapBooked,
		Reason:     domain.ReasonCompleteContainment,
		Type:       domain.TypeComplete,
		ResourceID: &resourceID,
		Event: &freetime.OverlapEvent{
			ID:     5,
			Type:   domain.EntityTypeEvent,
			Status: &status,
		},
	}}

	out := FromUseCase(in)
	require.Len(t, out, 1)
	assert.Equal(t, Overlap(1), out[0].Overlap)
	assert.Equal(t, "complete_containment", out[0].OverlapReason)
	assert.Equal(t, "complete", out[0].OverlapType)
	require.NotNil(t, out[0].OverlapEvent)
	assert.Equal(t, int64(5), out[0].OverlapEvent.ID)
	assert.Equal(t, "event", out[0].OverlapEvent.Type)
	assert.Equal(t, &resourceID, out[0].ResourceID)
}

func TestFromUseCaseMap(t *testing.T) {
	out := FromUseCaseMap(map[int64][]freetime.TimeSlot{
		10: {},
		20: {{Start: time.Unix(0, 0), End: time.Unix(3600, 0)}},
	})

	require.Len(t, out, 2)
	assert.Empty(t, out["10"])
	assert.Len(t, out["20"], 1)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"10":[]`)
}
