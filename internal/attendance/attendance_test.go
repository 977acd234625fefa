package attendance_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/hrms/internal/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", "2026-03-02 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRecordDayScenario(t *testing.T) {
	rec := &attendance.Record{}

	rec.ClockInAt(at("09:00:00"), attendance.Location{})
	require.NoError(t, rec.StartBreakAt(at("12:00:00")))
	require.NoError(t, rec.EndBreakAt(at("12:30:00")))
	assert.Equal(t, 30, rec.TotalBreakMinutes)

	require.NoError(t, rec.ClockOutAt(at("18:00:00"), "HRMS", "API"))
	assert.Equal(t, 510, rec.TotalWorkMinutes)
	assert.Equal(t, attendance.StatusClockedOut, rec.Status)

	err := rec.ClockOutAt(at("19:00:00"), "HRMS", "API")
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)
	assert.Equal(t, 510, rec.TotalWorkMinutes)
}

func TestEndBreakWithoutStartLeavesRecordUnchanged(t *testing.T) {
	rec := &attendance.Record{}
	rec.ClockInAt(at("09:00:00"), attendance.Location{})
	before := *rec

	err := rec.EndBreakAt(at("10:00:00"))

	assert.ErrorIs(t, err, attendance.ErrInvalidBreakEnd)
	assert.Equal(t, before, *rec)
}

func TestStartBreakTwiceFails(t *testing.T) {
	rec := &attendance.Record{}
	rec.ClockInAt(at("09:00:00"), attendance.Location{})
	require.NoError(t, rec.StartBreakAt(at("10:00:00")))

	assert.ErrorIs(t, rec.StartBreakAt(at("10:05:00")), attendance.ErrInvalidBreakStart)
}

func TestBreakMinutesRoundToNearest(t *testing.T) {
	tests := []struct {
		name string
		end  string
		want int
	}{
		{"29m29s rounds down", "12:29:29", 29},
		{"29m30s rounds up", "12:29:30", 30},
		{"under half a minute", "12:00:20", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &attendance.Record{}
			rec.ClockInAt(at("09:00:00"), attendance.Location{})
			require.NoError(t, rec.StartBreakAt(at("12:00:00")))
			require.NoError(t, rec.EndBreakAt(at(tt.end)))
			assert.Equal(t, tt.want, rec.TotalBreakMinutes)
		})
	}
}

func TestClockOutFoldsOpenBreak(t *testing.T) {
	rec := &attendance.Record{}
	rec.ClockInAt(at("09:00:00"), attendance.Location{})
	require.NoError(t, rec.StartBreakAt(at("17:00:00")))

	require.NoError(t, rec.ClockOutAt(at("18:00:00"), "p", "t"))

	assert.Equal(t, 60, rec.TotalBreakMinutes)
	assert.Equal(t, 480, rec.TotalWorkMinutes)
	assert.Nil(t, rec.BreakStart)
}

func TestClockOutRequiresProjectAndTask(t *testing.T) {
	rec := &attendance.Record{}
	rec.ClockInAt(at("09:00:00"), attendance.Location{})

	assert.ErrorIs(t, rec.ClockOutAt(at("18:00:00"), " ", "task"), attendance.ErrProjectTaskRequired)
	assert.Equal(t, attendance.StatusWorking, rec.Status)
}

func TestClockInKeepsFirstClockInAndReopens(t *testing.T) {
	rec := &attendance.Record{}
	rec.ClockInAt(at("09:00:00"), attendance.Location{})
	require.NoError(t, rec.ClockOutAt(at("12:00:00"), "p", "t"))

	rec.ClockInAt(at("13:00:00"), attendance.Location{})

	assert.Equal(t, at("09:00:00"), *rec.ClockIn)
	assert.Nil(t, rec.ClockOut)
	assert.Equal(t, attendance.StatusWorking, rec.Status)
}

func TestClockInDuringBreakClosesTheBreak(t *testing.T) {
	rec := &attendance.Record{}
	rec.ClockInAt(at("09:00:00"), attendance.Location{})
	require.NoError(t, rec.StartBreakAt(at("12:00:00")))

	rec.ClockInAt(at("12:20:00"), attendance.Location{})

	assert.Equal(t, attendance.StatusWorking, rec.Status)
	assert.Nil(t, rec.BreakStart)
	assert.Equal(t, 20, rec.TotalBreakMinutes)
	assert.Equal(t, at("09:00:00"), *rec.ClockIn)

	// a fresh break can start straight away
	require.NoError(t, rec.StartBreakAt(at("15:00:00")))
	require.NoError(t, rec.EndBreakAt(at("15:10:00")))
	assert.Equal(t, 30, rec.TotalBreakMinutes)
}

func TestTodayProjection(t *testing.T) {
	clockIn := at("09:00:00")
	breakStart := at("12:00:00")

	tests := []struct {
		name       string
		rec        *attendance.Record
		now        time.Time
		wantStatus attendance.Status
		wantWorked int64
		wantBreak  int64
	}{
		{
			name:       "no record",
			rec:        nil,
			now:        at("10:00:00"),
			wantStatus: attendance.StatusNotStarted,
		},
		{
			name:       "working after one break",
			rec:        &attendance.Record{ClockIn: &clockIn, Status: attendance.StatusWorking, TotalBreakMinutes: 30},
			now:        at("13:00:00"),
			wantStatus: attendance.StatusWorking,
			wantWorked: 4*3600 - 30*60,
			wantBreak:  30 * 60,
		},
		{
			name:       "on break freezes worked time",
			rec:        &attendance.Record{ClockIn: &clockIn, BreakStart: &breakStart, Status: attendance.StatusOnBreak, TotalBreakMinutes: 10},
			now:        at("12:15:00"),
			wantStatus: attendance.StatusOnBreak,
			wantWorked: 3*3600 - 10*60,
			wantBreak:  10*60 + 15*60,
		},
		{
			name:       "clocked out reports stored minutes",
			rec:        &attendance.Record{ClockIn: &clockIn, Status: attendance.StatusClockedOut, TotalWorkMinutes: 510, TotalBreakMinutes: 30},
			now:        at("20:00:00"),
			wantStatus: attendance.StatusClockedOut,
			wantWorked: 510 * 60,
			wantBreak:  30 * 60,
		},
		{
			name:       "never negative",
			rec:        &attendance.Record{ClockIn: &clockIn, Status: attendance.StatusWorking, TotalBreakMinutes: 120},
			now:        at("09:30:00"),
			wantStatus: attendance.StatusWorking,
			wantWorked: 0,
			wantBreak:  120 * 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := attendance.Today(tt.rec, tt.now)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantWorked, got.WorkedSeconds)
			assert.Equal(t, tt.wantBreak, got.BreakSeconds)
		})
	}
}

func TestHistoryHoursRounding(t *testing.T) {
	rec := &attendance.Record{LogDate: "2026-03-02", TotalWorkMinutes: 505}
	assert.Equal(t, 8.42, rec.HistoryEntry().Hours)
}
