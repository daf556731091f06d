package visits

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder projects link events into the visit store.
type Recorder struct {
	store      Store
	classifier *Classifier
	logger     *zap.Logger
}

// NewRecorder creates a recorder.
func NewRecorder(store Store, classifier *Classifier, logger *zap.Logger) *Recorder {
	return &Recorder{
		store:      store,
		classifier: classifier,
		logger:     logger,
	}
}

// HandleVisited classifies the visitor and stores the visit.
func (r *Recorder) HandleVisited(ctx context.Context, event *LinkVisitedEvent) error {
	client := r.classifier.Classify(event.UserAgent)

	visit := &Visit{
		ID:        uuid.NewString(),
		Code:      event.Code,
		OwnerID:   event.OwnerID,
		VisitedAt: event.VisitedAt.UTC(),
		ClientIP:  event.ClientIP,
		Referrer:  event.Referrer,
		Browser:   client.Browser,
		OS:        client.OS,
		Device:    client.Device,
		Bot:       client.Device == DeviceBot,
	}

	if err := r.store.Record(ctx, visit); err != nil {
		return fmt.Errorf("record visit %s: %w", event.Code, err)
	}

	r.logger.Debug("visit recorded",
		zap.String("code", visit.Code),
		zap.String("device", visit.Device),
		zap.String("browser", visit.Browser),
	)

	return nil
}

// HandleCreated writes the creation to the audit log.
func (r *Recorder) HandleCreated(_ context.Context, event *LinkCreatedEvent) error {
	r.logger.Info("link created",
		zap.String("code", event.Code),
		zap.String("owner", event.OwnerID),
		zap.String("strategy", event.Strategy),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}
