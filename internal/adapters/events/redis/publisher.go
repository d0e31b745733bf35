// Package redis publica los eventos del ledger en una lista de Redis.
// El worker de alertas los consume con BRPOP.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cold-chain-ledger/internal/domain/lots"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultQueue = "coldchain:events"

// DLQPrefix antecede al nombre de la cola para los mensajes que no se pudieron procesar.
const DLQPrefix = "dlq:"

// Envelope es lo que viaja por la cola.
type Envelope struct {
	Type    lots.EventType  `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Pusher es el subconjunto de *redis.Client que usa el publisher.
type Pusher interface {
	LPush(ctx context.Context, key string, values ...any) *goredis.IntCmd
}

type Publisher struct {
	rdb   Pusher
	queue string
}

func NewPublisher(rdb Pusher, queue string) (*Publisher, error) {
	if rdb == nil {
		return nil, errors.New("redis publisher: nil client")
	}
	queue = strings.TrimSpace(queue)
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{rdb: rdb, queue: queue}, nil
}

func (p *Publisher) Queue() string { return p.queue }

func (p *Publisher) Publish(ctx context.Context, e lots.Event) error {
	encoded, err := Encode(e)
	if err != nil {
		return err
	}
	if err := p.rdb.LPush(ctx, p.queue, encoded).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", p.queue, err)
	}
	return nil
}

func Encode(e lots.Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return json.Marshal(Envelope{Type: e.Type, Payload: payload})
}

// Decode valida el envelope y devuelve el evento.
func Decode(raw []byte) (lots.Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return lots.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Type == "" || len(env.Payload) == 0 {
		return lots.Event{}, errors.New("envelope without type or payload")
	}

	var e lots.Event
	if err := json.Unmarshal(env.Payload, &e); err != nil {
		return lots.Event{}, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	if e.Type != env.Type {
		return lots.Event{}, fmt.Errorf("envelope type %q does not match payload %q", env.Type, e.Type)
	}
	return e, nil
}

// Open crea el cliente a partir de una URL redis:// y verifica la conexión.
func Open(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
