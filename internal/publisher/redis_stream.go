// Package publisher announces harvest progress on a Redis stream so other
// services can pick up finished games without polling the output files.
package publisher

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/backfill"
	"github.com/fortuna/rinkside/internal/game"
	"github.com/fortuna/rinkside/internal/store"
)

// DefaultStream is the stream harvest messages are appended to.
const DefaultStream = "games.scraped.nhl"

// Message types.
const (
	TypeRunStarted    = "run_started"
	TypeGameProcessed = "game_processed"
	TypeCheckpoint    = "checkpoint"
	TypeRunComplete   = "run_complete"
)

// StreamAdder is the subset of the Redis client the publisher needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// GameMessage is the payload of a game_processed message.
type GameMessage struct {
	GameID     string     `json:"game_id"`
	Date       string     `json:"date"`
	Stage      game.Stage `json:"stage"`
	Path       game.Path  `json:"path,omitempty"`
	Events     int        `json:"events"`
	Shifts     int        `json:"shifts"`
	Missing    int        `json:"missing_ids"`
	Error      string     `json:"error,omitempty"`
	ShiftError string     `json:"shift_error,omitempty"`
}

// CheckpointMessage is the payload of a checkpoint message.
type CheckpointMessage struct {
	Label string `json:"label"`
	Games int    `json:"games"`
	Error string `json:"error,omitempty"`
}

// RedisStreamPublisher is a backfill.Reporter that appends one message per
// lifecycle callback. Publish failures are logged and never stop a run.
type RedisStreamPublisher struct {
	client StreamAdder
	stream string
	runID  string
	ctx    context.Context
	logger *zap.Logger
}

// NewRedisStreamPublisher creates a publisher on an existing client. An
// empty stream name uses DefaultStream.
func NewRedisStreamPublisher(ctx context.Context, client StreamAdder, stream string, logger *zap.Logger) *RedisStreamPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStreamPublisher{
		client: client,
		stream: stream,
		runID:  uuid.NewString(),
		ctx:    context.WithoutCancel(ctx),
		logger: logger.Named("publisher"),
	}
}

// RunID identifies every message of this run.
func (p *RedisStreamPublisher) RunID() string {
	return p.runID
}

func (p *RedisStreamPublisher) OnRunStart(spec backfill.RunSpec, total int) {
	p.publish(TypeRunStarted, map[string]any{
		"label":  spec.Label(),
		"season": spec.Season,
		"shifts": spec.Shifts,
		"total":  total,
	})
}

func (p *RedisStreamPublisher) OnGameStart(store.ScheduledGame, int, int) {}

func (p *RedisStreamPublisher) OnGameProcessed(out *game.Outcome, _ int, _ int) {
	msg := GameMessage{
		GameID:  out.Game.GameID,
		Date:    out.Game.DateString(),
		Stage:   out.Stage,
		Path:    out.Path,
		Events:  len(out.Events),
		Shifts:  len(out.Shifts),
		Missing: len(out.Missing),
	}
	if out.Failure != nil {
		msg.Error = out.Failure.Error()
	}
	if out.ShiftErr != nil {
		msg.ShiftError = out.ShiftErr.Error()
	}
	p.publish(TypeGameProcessed, msg)
}

func (p *RedisStreamPublisher) OnCheckpoint(label string, games int, err error) {
	msg := CheckpointMessage{Label: label, Games: games}
	if err != nil {
		msg.Error = err.Error()
	}
	p.publish(TypeCheckpoint, msg)
}

func (p *RedisStreamPublisher) OnRunComplete(report *backfill.Report) {
	p.publish(TypeRunComplete, report)
}

func (p *RedisStreamPublisher) publish(kind string, payload any) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		p.logger.Warn("encode message", zap.String("type", kind), zap.Error(err))
		return
	}

	err = p.client.XAdd(p.ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"type":      kind,
			"run_id":    p.runID,
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
	if err != nil {
		p.logger.Warn("publish failed", zap.String("stream", p.stream), zap.String("type", kind), zap.Error(err))
	}
}
