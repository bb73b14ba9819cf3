package databases_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/accident-recon-api/databases"
	"github.com/linesmerrill/accident-recon-api/models"
)

func sampleCases() []models.Case {
	var cases []models.Case
	for i := 0; i < 40; i++ {
		status := models.CaseStatuses[i%len(models.CaseStatuses)]
		c := models.Case{
			ID:        string(rune('a' + i%26)),
			Status:    status,
			Priority:  models.Priorities[i%len(models.Priorities)],
			CreatedAt: now.Add(-time.Duration(i*7) * time.Hour),
		}
		if i%3 == 0 {
			c.DueDate = ptrTime(now.Add(-time.Duration(i) * time.Hour))
		}
		if status.Terminal() {
			c.ClosedAt = ptrTime(now.Add(-time.Hour))
		}
		cases = append(cases, c)
	}
	return cases
}

func TestSummarizeCases_PermutationInvariant(t *testing.T) {
	cases := sampleCases()
	want := databases.SummarizeCases(cases, now)
	assert.Equal(t, 40, want.Total)

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 25; i++ {
		shuffled := append([]models.Case(nil), cases...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, databases.SummarizeCases(shuffled, now))
	}
}

func TestSummarizeCases_Values(t *testing.T) {
	past := now.Add(-time.Hour)
	cases := []models.Case{
		{Status: models.CaseStatusActive, Priority: models.PriorityHigh, DueDate: &past, CreatedAt: now.Add(-36 * time.Hour)},
		{Status: models.CaseStatusClosed, Priority: models.PriorityHigh, DueDate: &past, CreatedAt: now.Add(-24 * time.Hour), ClosedAt: &past},
	}
	stats := databases.SummarizeCases(cases, now)
	assert.Equal(t, 2, stats.ByPriority[models.PriorityHigh])
	assert.Equal(t, 1, stats.OverdueCount)
	assert.Equal(t, 1.5, stats.AverageDaysOpen)

	empty := databases.SummarizeCases(nil, now)
	assert.Equal(t, 0, empty.Total)
	assert.Zero(t, empty.AverageDaysOpen)
	assert.NotNil(t, empty.ByStatus)
}

func TestSummarizeAccidents_PermutationInvariant(t *testing.T) {
	var accidents []models.Accident
	for i := 0; i < 30; i++ {
		a := models.Accident{
			Injuries:      i % 4,
			Fatalities:    i % 7 / 6,
			Weather:       []models.Weather{models.WeatherClear, models.WeatherRain, models.WeatherFog}[i%3],
			RoadCondition: []models.RoadCondition{models.RoadDry, models.RoadWet}[i%2],
		}
		if i%2 == 0 {
			a.EstimatedDamage = ptrFloat(0.1 * float64(i*37))
		}
		accidents = append(accidents, a)
	}
	want := databases.SummarizeAccidents(accidents)
	assert.Equal(t, 15, want.AccidentsWithDamage)

	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 25; i++ {
		shuffled := append([]models.Accident(nil), accidents...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, databases.SummarizeAccidents(shuffled))
	}
}

func TestSummarizeAccidents_Values(t *testing.T) {
	stats := databases.SummarizeAccidents([]models.Accident{
		{Injuries: 0, Weather: models.WeatherClear, RoadCondition: models.RoadDry, EstimatedDamage: ptrFloat(1000)},
		{Injuries: 3, Weather: models.WeatherRain, RoadCondition: models.RoadWet, EstimatedDamage: ptrFloat(3000)},
		{Injuries: 1, Fatalities: 1, Weather: models.WeatherRain, RoadCondition: models.RoadWet},
	})
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, map[models.Severity]int{
		models.SeverityMinor:  1,
		models.SeveritySevere: 1,
		models.SeverityFatal:  1,
	}, stats.BySeverity)
	assert.Equal(t, 2, stats.ByWeather[models.WeatherRain])
	assert.Equal(t, 4, stats.TotalInjuries)
	assert.Equal(t, 1, stats.TotalFatalities)
	assert.Equal(t, 4000.0, stats.TotalDamage)
	assert.Equal(t, 2000.0, stats.AverageDamage)
}

func TestSummarizeClaims(t *testing.T) {
	claims := []models.InsuranceClaim{
		{Status: models.ClaimStatusSubmitted, Type: models.ClaimTypeCollision, Amount: 1000},
		{Status: models.ClaimStatusApproved, Type: models.ClaimTypeCollision, Amount: 2000, ApprovedAmount: ptrFloat(1500), PaidAmount: ptrFloat(500)},
		{Status: models.ClaimStatusDenied, Type: models.ClaimTypeLiability, Amount: 800, ApprovedAmount: ptrFloat(0)},
		{Status: models.ClaimStatusAppealed, Type: models.ClaimTypeLiability, Amount: 300},
	}
	stats := databases.SummarizeClaims(claims)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 2, stats.ResolvedCount)
	assert.Equal(t, 2, stats.ByType[models.ClaimTypeLiability])
	assert.Equal(t, 4100.0, stats.TotalClaimed)
	assert.Equal(t, 1500.0, stats.TotalApproved)
	assert.Equal(t, 500.0, stats.TotalPaid)
	assert.Equal(t, 1000.0+1000.0+0+300.0, stats.TotalOutstanding)

	reversed := []models.InsuranceClaim{claims[3], claims[2], claims[1], claims[0]}
	assert.Equal(t, stats, databases.SummarizeClaims(reversed))
}
