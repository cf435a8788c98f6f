package sim

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Idle session handling uses a Redis sorted set: each activity reschedules
// the session's expiry score, and the reaper stops whatever is overdue. The
// last_active key is the tiebreaker against races between a reschedule and a
// reap.

const idleScheduleKey = "session_idle"

func stateKey(token string) string {
	return "session:" + token + ":state"
}

func lastActiveKey(token string) string {
	return "last_active:" + token
}

// sessionCleanupKeys lists every per-session Redis key StopSession must
// remove. The zset member is handled separately via ZRem.
func sessionCleanupKeys(token string) []string {
	return []string{stateKey(token), lastActiveKey(token)}
}

func (sm *SessionManager) scheduleIdleExpiry(s *Session) {
	if sm.rdb == nil || sm.config == nil || sm.config.SessionIdleSeconds <= 0 {
		return
	}
	ctx := context.Background()
	now := time.Now().Unix()
	sm.rdb.Set(ctx, lastActiveKey(s.Token), fmt.Sprintf("%d", now), 0)
	sm.rdb.ZAdd(ctx, idleScheduleKey, redis.Z{
		Score:  float64(now + int64(sm.config.SessionIdleSeconds)),
		Member: s.Token,
	})
}

// StartReaper polls the idle schedule and stops sessions whose expiry has
// passed without fresh activity.
func (sm *SessionManager) StartReaper(ctx context.Context) {
	if sm.rdb == nil || sm.config == nil {
		log.Println("[REAPER] Redis or config missing; idle reaper not started")
		return
	}

	poll := sm.config.ReaperPollSeconds
	if poll <= 0 {
		poll = 10
	}

	log.Println("[REAPER] Idle session reaper started")
	ticker := time.NewTicker(time.Duration(poll) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[REAPER] Idle session reaper stopping")
			return
		case <-ticker.C:
			sm.reapOnce(ctx)
		}
	}
}

func (sm *SessionManager) reapOnce(ctx context.Context) {
	now := time.Now().Unix()
	tokens, err := sm.rdb.ZRangeByScore(ctx, idleScheduleKey, &redis.ZRangeBy{
		Min: "-inf", Max: fmt.Sprintf("%d", now),
	}).Result()
	if err != nil {
		log.Printf("[REAPER] Failed to fetch idle candidates: %v", err)
		return
	}

	for _, token := range tokens {
		// ZRem first so two reapers never stop the same session twice
		removed, _ := sm.rdb.ZRem(ctx, idleScheduleKey, token).Result()
		if removed == 0 {
			continue
		}

		last, _ := sm.rdb.Get(ctx, lastActiveKey(token)).Result()
		lastTs, _ := strconv.ParseInt(last, 10, 64)
		if now-lastTs < int64(sm.config.SessionIdleSeconds) {
			// Activity arrived after the score was set; put it back
			sm.rdb.ZAdd(ctx, idleScheduleKey, redis.Z{
				Score:  float64(lastTs + int64(sm.config.SessionIdleSeconds)),
				Member: token,
			})
			continue
		}

		log.Printf("[REAPER] Stopping idle session %s", token)
		if err := sm.StopSession(token); err != nil && err != ErrSessionNotFound {
			log.Printf("[REAPER] Failed to stop session %s: %v", token, err)
		}
		sm.rdb.Del(ctx, lastActiveKey(token))
	}
}
