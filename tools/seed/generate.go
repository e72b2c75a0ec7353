// Synthetic feed generation: a web event stream with duplicate raw
// deliveries and a creator works feed.

package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/store/schema"
)

var browserTypes = []string{"Chrome", "Firefox", "Safari", "Edge", "Opera"}

var pagePaths = []string{"/", "/index", "/search", "/works", "/feed", "/tags", "/popular", "/about"}

// rawEvent mirrors one delivery in the web_events_raw feed. Re-deliveries
// of the same event share every column except collected_at and batch_seq.
type rawEvent struct {
	UserID      string    `gorm:"column:user_id"`
	BrowserType string    `gorm:"column:browser_type"`
	Host        string    `gorm:"column:host"`
	URL         string    `gorm:"column:url"`
	Referrer    string    `gorm:"column:referrer"`
	EventTime   time.Time `gorm:"column:event_time"`
	CollectedAt time.Time `gorm:"column:collected_at"`
	BatchSeq    int64     `gorm:"column:batch_seq"`
}

func userPool(n int) []string {
	users := make([]string, n)
	for i := range users {
		users[i] = fmt.Sprintf("user-%05d", i+1)
	}
	return users
}

func hostPool(n int) []string {
	hosts := make([]string, n)
	for i := range hosts {
		hosts[i] = fmt.Sprintf("site-%03d.example.com", i+1)
	}
	return hosts
}

func creatorPool(n int) []string {
	creators := make([]string, n)
	for i := range creators {
		creators[i] = fmt.Sprintf("creator-%04d", i+1)
	}
	return creators
}

// generateDayEvents produces count events with timestamps spread across the
// given day. A user keeps one browser for the whole pool so device pairs
// stay stable across days.
func generateDayEvents(r *rand.Rand, day domain.Date, users, hosts []string, count int) []schema.WebEvent {
	events := make([]schema.WebEvent, 0, count)
	midnight := day.Time()

	for i := 0; i < count; i++ {
		userIdx := r.Intn(len(users))
		host := hosts[r.Intn(len(hosts))]

		referrer := ""
		if r.Intn(3) == 0 {
			referrer = "https://" + hosts[r.Intn(len(hosts))] + "/"
		}

		events = append(events, schema.WebEvent{
			UserID:      users[userIdx],
			BrowserType: browserTypes[userIdx%len(browserTypes)],
			Host:        host,
			URL:         pagePaths[r.Intn(len(pagePaths))],
			Referrer:    referrer,
			EventTime:   midnight.Add(time.Duration(r.Intn(86400)) * time.Second),
		})
	}
	return events
}

// duplicateEvents turns clean events into raw feed deliveries, re-delivering
// each event up to maxCopies times. Later copies carry a later collected_at,
// so the deduplicated winner is always the last delivery. seq numbers every
// delivery across the whole run.
func duplicateEvents(r *rand.Rand, events []schema.WebEvent, maxCopies int, seq *int64) []rawEvent {
	raw := make([]rawEvent, 0, len(events))
	for _, e := range events {
		copies := 1 + r.Intn(maxCopies)
		for c := 0; c < copies; c++ {
			*seq++
			raw = append(raw, rawEvent{
				UserID:      e.UserID,
				BrowserType: e.BrowserType,
				Host:        e.Host,
				URL:         e.URL,
				Referrer:    e.Referrer,
				EventTime:   e.EventTime,
				CollectedAt: e.EventTime.Add(time.Duration(c+1) * time.Minute),
				BatchSeq:    *seq,
			})
		}
	}
	return raw
}

// generateCreatorWorks produces up to n works for one creator, spread over
// the year range. Ratings cover the whole 1..10 scale with one decimal.
func generateCreatorWorks(r *rand.Rand, creatorID string, n, yearFrom, yearTo int) []schema.CreatorWork {
	// Vary output per creator so some have thin years
	count := 1 + r.Intn(n)
	works := make([]schema.CreatorWork, 0, count)

	for i := 0; i < count; i++ {
		workID := fmt.Sprintf("%s-w%03d", creatorID, i+1)
		works = append(works, schema.CreatorWork{
			CreatorID: creatorID,
			WorkID:    workID,
			Title:     fmt.Sprintf("Work %03d", i+1),
			Year:      yearFrom + r.Intn(yearTo-yearFrom+1),
			Rating:    math.Round((1+r.Float64()*9)*10) / 10,
			Votes:     int64(5 + r.Intn(5000)),
		})
	}
	return works
}
