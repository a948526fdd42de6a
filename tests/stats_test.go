package tests

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smolci/StudyBuddy/backend/models"
)

func TestWeeklyStatsEndpoint(t *testing.T) {
	requireDB(t)

	created := doRequest(t, "POST", "/api/subjects/", map[string]string{"name": "Statistics"})
	require.Equal(t, fiber.StatusCreated, created["_status"])
	subjectID := uint(created["data"].(map[string]interface{})["id"].(float64))

	// Seed a fixed week directly: Mon 2026-08-24 .. Sun 2026-08-30, plus one
	// session the week before for the percent-change baseline.
	mon := time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)
	seed := []models.StudySession{
		{StartTime: mon, DurationMinutes: 30, UserID: userID, SubjectID: &subjectID},
		{StartTime: mon.AddDate(0, 0, 2), DurationMinutes: 90, UserID: userID, SubjectID: &subjectID},
		{StartTime: mon.AddDate(0, 0, -7), DurationMinutes: 60, UserID: userID},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}
	t.Cleanup(func() {
		db.Where("user_id = ?", userID).Delete(&models.StudySession{})
	})

	result := doRequest(t, "GET", "/api/stats/weekly?date=2026-08-26", nil)
	require.Equal(t, fiber.StatusOK, result["_status"])

	assert.Equal(t, float64(120), result["totalWeekMinutes"])
	assert.Equal(t, float64(100), result["weekChangePercent"])
	assert.Equal(t, "Wed", result["bestDayName"])
	assert.Equal(t, float64(90), result["bestDayMinutes"])
	assert.Equal(t, float64(60), result["averageSessionMinutes"])
	assert.Equal(t, "Statistics", result["mostStudiedSubjectName"])

	days := result["days"].([]interface{})
	require.Len(t, days, 7)
	first := days[0].(map[string]interface{})
	assert.Equal(t, "Mon", first["dayName"])
	assert.Equal(t, float64(30), first["minutes"])
}

func TestWeeklyStatsEmpty(t *testing.T) {
	requireDB(t)

	// A week far in the past has no sessions.
	result := doRequest(t, "GET", "/api/stats/weekly?date=2020-01-15", nil)
	require.Equal(t, fiber.StatusOK, result["_status"])

	assert.Equal(t, float64(0), result["totalWeekMinutes"])
	assert.Equal(t, "—", result["mostStudiedSubjectName"])
	assert.Equal(t, "—", result["bestDayName"])
}

func TestWeeklyStatsBadDate(t *testing.T) {
	requireDB(t)

	result := doRequest(t, "GET", "/api/stats/weekly?date=yesterday", nil)
	assert.Equal(t, fiber.StatusBadRequest, result["_status"])
}
