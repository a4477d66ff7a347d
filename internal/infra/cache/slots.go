package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/ConsultaVida01/consulta-scheduler/internal/domain/appointment"
)

// SlotCache guarda os horários livres calculados por (profissional,
// data, duração). Qualquer falha de Redis degrada para recomputar —
// nunca derruba a chamada.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSlotCache(rdb *redis.Client, ttl time.Duration) *SlotCache {
	if rdb == nil {
		return nil
	}
	return &SlotCache{rdb: rdb, ttl: ttl}
}

func (c *SlotCache) key(professionalID uint, date string, durationMin int) string {
	return fmt.Sprintf("slots:%d:%s:%d", professionalID, date, durationMin)
}

func (c *SlotCache) Get(
	ctx context.Context,
	professionalID uint,
	date string,
	durationMin int,
) ([]domain.TimeSlot, bool) {

	if c == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, c.key(professionalID, date, durationMin)).Result()
	if err != nil {
		return nil, false
	}

	var slots []domain.TimeSlot
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *SlotCache) Set(
	ctx context.Context,
	professionalID uint,
	date string,
	durationMin int,
	slots []domain.TimeSlot,
) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(professionalID, date, durationMin), raw, c.ttl).Err(); err != nil {
		log.Println("slot cache set error:", err)
	}
}

// Invalidate remove todas as durações cacheadas do dia do profissional.
func (c *SlotCache) Invalidate(ctx context.Context, professionalID uint, dates ...string) {
	if c == nil {
		return
	}

	for _, date := range dates {
		c.deletePattern(ctx, fmt.Sprintf("slots:%d:%s:*", professionalID, date))
	}
}

// InvalidateAll remove todas as entradas do profissional, qualquer data.
// Usado quando a grade semanal muda: os slots de todos os dias futuros
// ficam potencialmente errados de uma vez.
func (c *SlotCache) InvalidateAll(ctx context.Context, professionalID uint) {
	if c == nil {
		return
	}
	c.deletePattern(ctx, fmt.Sprintf("slots:%d:*", professionalID))
}

func (c *SlotCache) deletePattern(ctx context.Context, pattern string) {
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Println("slot cache del error:", err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Println("slot cache scan error:", err)
	}
}
