// Package events connects document writes to corpus rebuilds. Writers
// announce a change; the searcher reacts by building a fresh snapshot.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/corpus"
	apperrors "github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/resilience"
)

// EventDocumentAdded is the event-type header of CorpusChanged messages.
const EventDocumentAdded = "document_added"

// CorpusChanged is the payload of the corpus-changed topic.
type CorpusChanged struct {
	DocumentID string    `json:"document_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher is implemented by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Rebuilder is implemented by *executor.Executor.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*corpus.Snapshot, error)
}

// KafkaNotifier announces document writes on the corpus-changed topic.
type KafkaNotifier struct {
	producer Publisher
}

func NewKafkaNotifier(producer Publisher) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) CorpusChanged(ctx context.Context, doc corpus.Document) error {
	err := n.producer.Publish(ctx, kafka.Event{
		Key:  doc.ID,
		Type: EventDocumentAdded,
		Value: CorpusChanged{
			DocumentID: doc.ID,
			Timestamp:  time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("announcing document %s: %w", doc.ID, err)
	}
	return nil
}

// LocalNotifier rebuilds in-process. It is used when Kafka is disabled.
type LocalNotifier struct {
	rebuilder Rebuilder
}

func NewLocalNotifier(r Rebuilder) *LocalNotifier {
	return &LocalNotifier{rebuilder: r}
}

func (n *LocalNotifier) CorpusChanged(ctx context.Context, doc corpus.Document) error {
	if _, err := n.rebuilder.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuilding after document %s: %w", doc.ID, err)
	}
	return nil
}

// RebuildHandler consumes corpus-changed messages. Malformed messages and
// rebuilds rejected for the corpus's content (an empty vocabulary, a bad
// rank setting) fail permanently; store and timeout failures are retried
// by the consumer.
func RebuildHandler(r Rebuilder) kafka.MessageHandler {
	logger := slog.Default().With("component", "corpus-events")
	return func(ctx context.Context, key []byte, value []byte) error {
		ev, err := kafka.DecodeJSON[CorpusChanged](value)
		if err != nil {
			return err
		}
		snap, err := r.Rebuild(ctx)
		if err != nil {
			err = fmt.Errorf("rebuild for document %s: %w", ev.DocumentID, err)
			if apperrors.HTTPStatusCode(err) < http.StatusInternalServerError {
				return resilience.Permanent(err)
			}
			return err
		}
		logger.Info("corpus rebuilt from event",
			"document_id", ev.DocumentID,
			"build_id", snap.BuildID,
			"lag", time.Since(ev.Timestamp).Round(time.Millisecond),
		)
		return nil
	}
}
