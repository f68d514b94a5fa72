package counter

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/churchatlas/churchatlas/internal/pkg/cache"
	"github.com/churchatlas/churchatlas/internal/pkg/database"
)

const (
	churchViewsKey = "church:counters:views"
	eventViewsKey  = "event:counters:views"
)

// AddChurchView increments the pending view counter for a church in Redis
func AddChurchView(churchID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(churchID), 10)
	return cache.GetClient().HIncrBy(ctx, churchViewsKey, field, 1).Err()
}

// AddEventView increments the pending view counter for an event in Redis
func AddEventView(eventID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(eventID), 10)
	return cache.GetClient().HIncrBy(ctx, eventViewsKey, field, 1).Err()
}

// FlushAll flushes the pending view counters to the database
func FlushAll() error {
	if err := flushHashToTable(churchViewsKey, "churches", "view_count"); err != nil {
		return err
	}
	if err := flushHashToTable(eventViewsKey, "events", "view_count"); err != nil {
		return err
	}
	return nil
}

// StartFlushLoop flushes the counters on a fixed interval until ctx is done.
func StartFlushLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if err := FlushAll(); err != nil {
					log.Printf("view counter final flush failed: %v", err)
				}
				return
			case <-ticker.C:
				if err := FlushAll(); err != nil {
					log.Printf("view counter flush failed: %v", err)
				}
			}
		}
	}()
}

// flushHashToTable drains a Redis hash atomically and applies batched increments.
// Uses RENAME to a temporary key for atomic drain without losing in-flight increments.
func flushHashToTable(redisKey, table, column string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	// Atomically move the hash to a temp key for draining
	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	// Ensure cleanup of tmpKey even if later steps fail
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	type pair struct {
		id  uint64
		inc int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		if perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{id: id, inc: inc})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	// UPDATE <table> SET <column> = <column> + CASE id WHEN ? THEN ? ... END WHERE id IN ( ... )
	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*3)
	builder.WriteString("UPDATE ")
	builder.WriteString(table)
	builder.WriteString(" SET ")
	builder.WriteString(column)
	builder.WriteString(" = ")
	builder.WriteString(column)
	builder.WriteString(" + CASE id ")
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

	db := database.GetDB()
	if err := db.Exec(builder.String(), args...).Error; err != nil {
		return err
	}
	return nil
}
