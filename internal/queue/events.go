package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SubjectDayCompleted carries DayCompleted events
const SubjectDayCompleted = "correlator.day.completed"

// DayCompleted announces that a day's matrix has been written and
// registered in the catalog.
type DayCompleted struct {
	RunID       string    `json:"run_id"`
	Day         int       `json:"day"`
	Date        string    `json:"date"`
	Series      int       `json:"series"`
	Cells       int       `json:"cells"`
	Path        string    `json:"path"`
	Format      string    `json:"format"`
	Compression string    `json:"compression"`
	CompletedAt time.Time `json:"completed_at"`
}

// PublishDayCompleted encodes ev as JSON and publishes it
func PublishDayCompleted(ctx context.Context, pub Publisher, ev DayCompleted) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode day event: %w", err)
	}
	return pub.Publish(ctx, SubjectDayCompleted, data)
}

// SubscribeDayCompleted decodes every DayCompleted event for fn.
// Undecodable messages are acknowledged and dropped.
func SubscribeDayCompleted(sub Subscriber, fn func(DayCompleted) error) error {
	return sub.Subscribe(SubjectDayCompleted, func(data []byte) error {
		var ev DayCompleted
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil
		}
		return fn(ev)
	})
}
