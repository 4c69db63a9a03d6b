//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"masterfile/internal/audit"
	"masterfile/internal/record"
	id "masterfile/pkg/domain"
	"masterfile/pkg/testutil/containers"
)

const testTopic = "masterfile.audit.events.test"

type RelayIntegrationSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redpanda *containers.RedpandaContainer
	store    *audit.PostgresStore
	producer *kgo.Client
}

func TestRelayIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RelayIntegrationSuite))
}

func (s *RelayIntegrationSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), audit.PostgresSchema)
	s.redpanda = containers.NewRedpandaContainer(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)

	producer, err := kgo.NewClient(kgo.SeedBrokers(s.redpanda.Brokers...))
	s.Require().NoError(err)
	s.T().Cleanup(producer.Close)
	s.producer = producer

	err = audit.EnsureTopic(context.Background(), kadm.NewClient(producer), testTopic)
	s.Require().NoError(err)
}

func (s *RelayIntegrationSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "audit_outbox", "audit_events")
	s.Require().NoError(err)
}

func (s *RelayIntegrationSuite) TestFlushPublishesAndMarks() {
	ctx := context.Background()
	entityID := id.NewEntityID()
	newValue := record.StringValue("Acme Holdings GmbH")

	event := audit.Event{
		EntityID:  entityID,
		FieldNo:   1,
		Action:    audit.ActionApplied,
		NewValue:  &newValue,
		NewSource: id.SourcePrimaryRegistry,
		Actor:     "system",
		Timestamp: time.Now().UTC(),
	}
	s.Require().NoError(s.store.Append(ctx, event))

	relay, err := audit.NewRelay(s.store, s.producer, testTopic)
	s.Require().NoError(err)
	s.Require().NoError(relay.Flush(ctx))

	// The outbox is drained.
	pending, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)

	// The event reached the topic, keyed by entity so per-entity order holds.
	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(testTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().NotEmpty(records)
	s.Equal(entityID.String(), string(records[0].Key))

	var published audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &published))
	s.Equal(audit.ActionApplied, published.Action)
	s.Equal(entityID, published.EntityID)
}

func (s *RelayIntegrationSuite) TestFlushIsIdempotentWhenEmpty() {
	relay, err := audit.NewRelay(s.store, s.producer, testTopic)
	s.Require().NoError(err)
	s.Require().NoError(relay.Flush(context.Background()))
}

func (s *RelayIntegrationSuite) TestObservedEventsRemainQueryable() {
	ctx := context.Background()
	entityID := id.NewEntityID()

	event := audit.Event{
		EntityID:  entityID,
		FieldNo:   16,
		Action:    audit.ActionRejected,
		NewSource: id.SourceDocExtraction,
		Actor:     "system",
		Reason:    "DOC_EXTRACTION cannot overwrite USER_INPUT",
		Timestamp: time.Now().UTC(),
	}
	s.Require().NoError(s.store.Append(ctx, event))

	relay, err := audit.NewRelay(s.store, s.producer, testTopic)
	s.Require().NoError(err)
	s.Require().NoError(relay.Flush(ctx))

	events, err := s.store.ListByEntity(ctx, entityID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionRejected, events[0].Action)
}
