package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/models"
	"github.com/tracktivity/tracktivity-api/internal/observability"
	"github.com/tracktivity/tracktivity-api/internal/repository"
)

// Collection names exposed over the live subscription, unchanged from the
// frontend's document-store days.
const (
	CollectionAdminActivities   = "AdminActivities"
	CollectionPendingActivities = "PendingActivities"
)

const snapshotSendBufferSize = 8

// ErrUnknownCollection indicates a subscription request for a collection the
// hub does not serve.
var ErrUnknownCollection = errors.New("unknown collection")

// SubscriptionOptions wraps metadata extracted during the HTTP upgrade.
type SubscriptionOptions struct {
	Collection    string
	UserID        string
	Role          string
	CorrelationID string
	Context       context.Context
}

// Snapshot is the wire payload delivered to subscribers. Every delivery is
// the full current state of the collection; clients replace, never merge.
type Snapshot struct {
	Collection string          `json:"collection"`
	Items      json.RawMessage `json:"items"`
	SentAt     time.Time       `json:"sentAt"`
}

// RealtimeService fans collection snapshots out to websocket subscribers.
// Mutating services call Publish after every write.
type RealtimeService interface {
	ServeConnection(conn *websocket.Conn, opts SubscriptionOptions)
	Publish(ctx context.Context, collection string)
	Start(ctx context.Context)
}

type realtimeService struct {
	activities  repository.ActivityRepository
	pending     repository.PendingActivityRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	hub         *snapshotHub
	nodeID      string
}

type snapshotHub struct {
	mu          sync.RWMutex
	collections map[string]map[*snapshotClient]struct{}
	log         zerolog.Logger
}

type snapshotClient struct {
	conn    *websocket.Conn
	send    chan Snapshot
	options SubscriptionOptions
	service *realtimeService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

type snapshotEvent struct {
	Source   string   `json:"source"`
	Snapshot Snapshot `json:"snapshot"`
}

// NewRealtimeService creates the snapshot hub instance.
func NewRealtimeService(activities repository.ActivityRepository, pending repository.PendingActivityRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) RealtimeService {
	hub := &snapshotHub{
		collections: make(map[string]map[*snapshotClient]struct{}),
		log:         logger.With().Str("component", "snapshot_hub").Logger(),
	}

	streamChannel := ""
	natsSubject := ""
	if channelBase != "" {
		streamChannel = channelBase + ":snapshots"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".snapshots"
	}

	return &realtimeService{
		activities:  activities,
		pending:     pending,
		redis:       redisClient,
		redisStream: streamChannel,
		nats:        natsConn,
		natsSubject: natsSubject,
		logger:      logger.With().Str("component", "realtime_service").Logger(),
		hub:         hub,
		nodeID:      uuid.NewString(),
	}
}

func (s *realtimeService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *realtimeService) ServeConnection(conn *websocket.Conn, opts SubscriptionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &snapshotClient{
		conn:    conn,
		send:    make(chan Snapshot, snapshotSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	s.hub.register(client)
	observability.RealtimeConnections().Inc()
	defer observability.RealtimeConnections().Dec()

	if snapshot, err := s.buildSnapshot(baseCtx, opts.Collection); err == nil {
		select {
		case client.send <- snapshot:
		default:
		}
	} else {
		s.logger.Warn().Err(err).Str("collection", opts.Collection).Msg("failed to build initial snapshot")
	}

	go client.writer()
	client.reader()
}

// Publish rebuilds the collection snapshot, delivers it to local subscribers
// and fans it out to the other nodes.
func (s *realtimeService) Publish(ctx context.Context, collection string) {
	snapshot, err := s.buildSnapshot(ctx, collection)
	if err != nil {
		s.logger.Error().Err(err).Str("collection", collection).Msg("failed to build snapshot")
		return
	}

	s.hub.broadcast(collection, snapshot)
	observability.RealtimeBroadcasts().WithLabelValues(collection).Inc()

	if err := s.fanOut(ctx, snapshot); err != nil {
		s.logger.Warn().Err(err).Str("collection", collection).Msg("failed to fan out snapshot")
	}
}

func (s *realtimeService) buildSnapshot(ctx context.Context, collection string) (Snapshot, error) {
	var payload interface{}

	switch collection {
	case CollectionAdminActivities:
		items, err := s.activities.List(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		payload = dto.NewActivityResponseSlice(items)
	case CollectionPendingActivities:
		items, err := s.pending.List(ctx, repository.PendingActivityFilter{Status: models.StatusPending})
		if err != nil {
			return Snapshot{}, err
		}
		payload = dto.NewSubmissionResponseSlice(items)
	default:
		return Snapshot{}, ErrUnknownCollection
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Collection: collection, Items: raw, SentAt: time.Now().UTC()}, nil
}

func (s *realtimeService) fanOut(ctx context.Context, snapshot Snapshot) error {
	event := snapshotEvent{Source: s.nodeID, Snapshot: snapshot}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *realtimeService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("snapshot redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *realtimeService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "tracktivity-snapshots", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats snapshot subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain snapshot nats subscription")
		}
	}()
}

func (s *realtimeService) handleEvent(data []byte) {
	var event snapshotEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid snapshot event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.hub.broadcast(event.Snapshot.Collection, event.Snapshot)
	observability.RealtimeBroadcasts().WithLabelValues(event.Snapshot.Collection).Inc()
}

func (h *snapshotHub) register(client *snapshotClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	collection := client.options.Collection
	if _, exists := h.collections[collection]; !exists {
		h.collections[collection] = make(map[*snapshotClient]struct{})
	}
	h.collections[collection][client] = struct{}{}
	h.log.Debug().Str("collection", collection).Str("user_id", client.options.UserID).Msg("subscriber connected")
}

func (h *snapshotHub) unregister(client *snapshotClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	collection := client.options.Collection
	if clients, ok := h.collections[collection]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.collections, collection)
		}
	}
	h.log.Debug().Str("collection", collection).Str("user_id", client.options.UserID).Msg("subscriber disconnected")
}

func (h *snapshotHub) broadcast(collection string, snapshot Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.collections[collection] {
		select {
		case client.send <- snapshot:
		default:
			h.log.Warn().Str("collection", collection).Str("user_id", client.options.UserID).Msg("dropping snapshot for slow subscriber")
		}
	}
}

// reader drains the connection; subscribers send nothing meaningful, but the
// read loop is what notices the peer going away.
func (c *snapshotClient) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.service.logger.Debug().Err(err).Msg("subscriber read loop ended")
			return
		}
	}
}

func (c *snapshotClient) writer() {
	defer c.close()

	for {
		select {
		case snapshot, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(snapshot); err != nil {
				c.service.logger.Debug().Err(err).Msg("subscriber write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("subscriber ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *snapshotClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
