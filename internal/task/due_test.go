package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var chicago = mustLoad("America/Chicago")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestIsDue_OneTimeTask(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, chicago)

	assert.True(t, IsDue("", "", now), "never-completed one-time task is due")
	assert.False(t, IsDue("", "2024-01-01T00:00:00-06:00", now), "completed one-time task is never due again")
}

func TestIsDue_DailyAfterOldCompletion(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, chicago)
	lastCompleted := now.AddDate(-1, 0, 0).Format("2006-01-02T15:04:05-07:00")

	assert.True(t, IsDue("0 8 * * *", lastCompleted, now))
}

func TestIsDue_CompletedJustNow(t *testing.T) {
	// Completed at 09:00, daily 08:00 schedule: next occurrence is
	// tomorrow morning, so nothing is due for the rest of the day.
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, chicago)
	lastCompleted := time.Date(2024, 6, 1, 9, 0, 0, 0, chicago).Format("2006-01-02T15:04:05-07:00")

	assert.False(t, IsDue("0 8 * * *", lastCompleted, now))
}

func TestIsDue_FutureCompletionClockSkew(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, chicago)
	lastCompleted := now.Add(time.Hour).Format("2006-01-02T15:04:05-07:00")

	assert.False(t, IsDue("0 8 * * *", lastCompleted, now))
}

func TestIsDue_NeverCompletedRecurring(t *testing.T) {
	// No anchor: the sentinel guarantees the very first occurrence fires
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, chicago)

	assert.True(t, IsDue("0 8 * * *", "", now))
}

func TestIsDue_AnchorOffsetConverted(t *testing.T) {
	// Stored stamp carries a UTC offset; evaluation anchors to now's zone
	now := time.Date(2024, 6, 1, 7, 30, 0, 0, chicago)
	// 2024-06-01T07:00:00-05:00 == 12:00 UTC
	lastCompleted := "2024-06-01T12:00:00Z"

	// Daily 08:00 Chicago: completed 07:00 Chicago today, next run 08:00,
	// not yet reached at 07:30.
	assert.False(t, IsDue("0 8 * * *", lastCompleted, now))
}

func TestIsDue_NaiveTimestampReadInReferenceZone(t *testing.T) {
	now := time.Date(2024, 6, 2, 9, 0, 0, 0, chicago)
	assert.True(t, IsDue("0 8 * * *", "2024-06-01T09:00:00", now))
}

func TestIsDue_MalformedExpressionFailsClosed(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, chicago)

	assert.False(t, IsDue("not a cron", "", now))
	assert.False(t, IsDue("99 99 * * *", "", now))
}

func TestIsDue_MalformedTimestampFailsClosed(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, chicago)

	assert.False(t, IsDue("0 8 * * *", "yesterday-ish", now))
}

func TestIsDue_SixFieldExpression(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, chicago)

	assert.True(t, IsDue("0 0 8 * * *", "", now))
}

func TestIsDue_Descriptor(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, chicago)
	lastCompleted := now.AddDate(0, 0, -2).Format("2006-01-02T15:04:05-07:00")

	assert.True(t, IsDue("@daily", lastCompleted, now))
}
