package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanoCerto/internal/pkg/metrics"
)

const planViewsKey = "plan:counters:views"

// ViewBuffer collects plan detail views in a Redis hash and periodically
// applies them to plans.view_count in one batched UPDATE.
type ViewBuffer struct {
	rdb *redis.Client
	db  *gorm.DB
}

func NewViewBuffer(rdb *redis.Client, db *gorm.DB) *ViewBuffer {
	return &ViewBuffer{rdb: rdb, db: db}
}

// AddPlanView increments the pending view counter for a plan in Redis
func (b *ViewBuffer) AddPlanView(ctx context.Context, planID uint) error {
	field := strconv.FormatUint(uint64(planID), 10)
	return b.rdb.HIncrBy(ctx, planViewsKey, field, 1).Err()
}

// Flush drains the pending views into the database.
func (b *ViewBuffer) Flush(ctx context.Context) error {
	err := b.flushHashToTable(ctx, planViewsKey, "plans", "view_count")
	metrics.RecordCounterFlush(err)
	return err
}

// flushHashToTable drains a Redis hash atomically and applies batched increments.
// Uses RENAME to a temporary key for atomic drain without losing in-flight increments.
func (b *ViewBuffer) flushHashToTable(ctx context.Context, redisKey, table, column string) error {
	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := b.rdb.Rename(ctx, redisKey, tmpKey).Err(); err != nil {
		// missing key means nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") || err == redis.Nil {
			return nil
		}
		return err
	}
	defer b.rdb.Del(ctx, tmpKey)

	data, err := b.rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}

	pairs := parseIncrements(data)
	if len(pairs) == 0 {
		return nil
	}

	sql, args := buildIncrementSQL(table, column, pairs)
	if err := b.db.WithContext(ctx).Exec(sql, args...).Error; err != nil {
		// put the drained increments back so the next flush retries them
		if rerr := b.restore(ctx, redisKey, pairs); rerr != nil {
			return fmt.Errorf("%w (restoring views failed: %v)", err, rerr)
		}
		return err
	}
	return nil
}

func (b *ViewBuffer) restore(ctx context.Context, redisKey string, pairs []increment) error {
	_, err := b.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range pairs {
			pipe.HIncrBy(ctx, redisKey, strconv.FormatUint(p.id, 10), p.inc)
		}
		return nil
	})
	return err
}

type increment struct {
	id  uint64
	inc int64
}

// parseIncrements turns a drained hash into id-sorted increments, skipping junk and zeros.
func parseIncrements(data map[string]string) []increment {
	pairs := make([]increment, 0, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		if perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, increment{id: id, inc: inc})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })
	return pairs
}

// buildIncrementSQL composes
// UPDATE <table> SET <column> = <column> + CASE id WHEN ? THEN ? ... END WHERE id IN ( ... )
func buildIncrementSQL(table, column string, pairs []increment) (string, []interface{}) {
	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*3)
	builder.WriteString("UPDATE ")
	builder.WriteString(table)
	builder.WriteString(" SET ")
	builder.WriteString(column)
	builder.WriteString(" = ")
	builder.WriteString(column)
	builder.WriteString(" + CASE id")
	for _, p := range pairs {
		builder.WriteString(" WHEN ? THEN ?")
		args = append(args, p.id, p.inc)
	}
	builder.WriteString(" END WHERE id IN (")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("?")
		args = append(args, p.id)
	}
	builder.WriteString(")")
	return builder.String(), args
}
