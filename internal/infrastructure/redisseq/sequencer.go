package redisseq

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Brokewala/gestion-stock-aldin/internal/application/sales"
)

var _ sales.Sequencer = (*Sequencer)(nil)

const (
	seqKeyPrefix = "seq:"
	// Las claves son por día; 48h de vida cubren relojes desfasados.
	seqKeyTTL = 48 * time.Hour
)

// Sequencer entrega valores consecutivos por clave usando Redis INCR.
// INCR es atómico en el servidor, así que la generación de códigos queda
// serializada por clave de día sin leer-máximo-e-incrementar.
type Sequencer struct {
	client *redis.Client
}

// NewSequencer construye el secuenciador con el cliente Redis.
func NewSequencer(client *redis.Client) *Sequencer {
	return &Sequencer{client: client}
}

// Next retorna el siguiente valor del contador de la clave.
func (s *Sequencer) Next(ctx context.Context, key string) (int64, error) {
	full := seqKeyPrefix + key
	n, err := s.client.Incr(ctx, full).Result()
	if err != nil {
		return 0, fmt.Errorf("incr sequence %s: %w", key, err)
	}
	if n == 1 {
		// Primera emisión del día: la clave caduca sola.
		if err := s.client.Expire(ctx, full, seqKeyTTL).Err(); err != nil {
			return 0, fmt.Errorf("expire sequence %s: %w", key, err)
		}
	}
	return n, nil
}
