package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/trackly/internal/domain"
	redisstore "github.com/gosuda/trackly/internal/store/redis"
)

// PubSubPublisher abstracts the Redis pub/sub publish operation.
type PubSubPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Recorder is the only write path into the activity log.
type Recorder struct {
	repo   domain.ActivityRepository
	pubsub PubSubPublisher // nil disables live fan-out
	now    func() time.Time
}

func NewRecorder(repo domain.ActivityRepository, pubsub PubSubPublisher) *Recorder {
	return &Recorder{
		repo:   repo,
		pubsub: pubsub,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record fills in the ID and timestamp when missing, appends the entry and
// announces it on the workspace activity channel. A failed announcement is
// logged and does not fail the call; the entry is already durable.
func (r *Recorder) Record(ctx context.Context, entry *domain.LogEntry) error {
	if entry == nil {
		return fmt.Errorf("activity.Recorder.Record: nil entry: %w", domain.ErrInvalidInput)
	}
	if entry.WorkspaceID == uuid.Nil {
		return fmt.Errorf("activity.Recorder.Record: workspace ID is required: %w", domain.ErrInvalidInput)
	}
	if entry.EntityType == "" || entry.EntityID == "" {
		return fmt.Errorf("activity.Recorder.Record: entity type and ID are required: %w", domain.ErrInvalidInput)
	}
	if entry.Action == "" {
		return fmt.Errorf("activity.Recorder.Record: action is required: %w", domain.ErrInvalidInput)
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	if entry.Changes == nil {
		entry.Changes = []domain.Change{}
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}

	if err := r.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("activity.Recorder.Record: %w", err)
	}

	r.announce(ctx, entry)
	return nil
}

func (r *Recorder) announce(ctx context.Context, entry *domain.LogEntry) {
	if r.pubsub == nil {
		return
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		log.Warn().Err(err).Str("entry_id", entry.ID.String()).Msg("activity.Recorder: failed to encode entry")
		return
	}

	channel := redisstore.ActivityChannel(entry.WorkspaceID)
	if pubErr := r.pubsub.Publish(ctx, channel, payload); pubErr != nil {
		log.Warn().Err(pubErr).Str("channel", channel).Msg("activity.Recorder: failed to publish entry")
	}
}

// ChangesBetween lists the fields whose values differ between before and
// after, sorted by field name. Fields present on only one side are included
// with nil on the other.
func ChangesBetween(before, after map[string]any) []domain.Change {
	fields := make([]string, 0, len(before)+len(after))
	for k := range before {
		fields = append(fields, k)
	}
	for k := range after {
		if _, ok := before[k]; !ok {
			fields = append(fields, k)
		}
	}
	slices.Sort(fields)

	changes := make([]domain.Change, 0, len(fields))
	for _, f := range fields {
		oldValue, newValue := before[f], after[f]
		if reflect.DeepEqual(oldValue, newValue) {
			continue
		}
		changes = append(changes, domain.Change{Field: f, OldValue: oldValue, NewValue: newValue})
	}
	return changes
}
