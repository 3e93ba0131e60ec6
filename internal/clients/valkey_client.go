package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/kyokan/config"
	"github.com/spacesedan/kyokan/internal/models"
	"github.com/spacesedan/kyokan/internal/storage"
)

// ValkeyClient stores analysis results as JSON strings plus an index set of IDs.
type ValkeyClient struct {
	Client valkey.Client
	ttl    time.Duration
}

func NewValkeyClient(ctx context.Context, cfg config.ValkeyConfig) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			cfg.InitAddress,
		},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return &ValkeyClient{Client: client, ttl: cfg.TTL}, nil
}

func (vc *ValkeyClient) Close() {
	vc.Client.Close()
}

// Save writes the result only if its ID is unused and adds the ID to the index.
func (vc *ValkeyClient) Save(ctx context.Context, result models.AnalysisResult) error {
	if err := storage.ValidateID(result.ResultID); err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("[ValkeyClient] marshal result: %w", err)
	}

	key := resultKey(result.ResultID)
	res := vc.DoWithRetry(ctx, vc.Client.B().Set().Key(key).Value(string(data)).Nx().Build(), MAX_RETRIES)
	if err := res.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return fmt.Errorf("[ValkeyClient] %s: %w", result.ResultID, storage.ErrResultExists)
		}
		return fmt.Errorf("[ValkeyClient] store result: %w", err)
	}

	completed := []valkey.Completed{
		vc.Client.B().Sadd().Key(VALKEY_RESULT_INDEX_KEY).Member(result.ResultID).Build(),
	}
	if vc.ttl > 0 {
		completed = append(completed, vc.Client.B().Expire().Key(key).Seconds(int64(vc.ttl/time.Second)).Build())
	}
	for _, r := range vc.DoMultiWithRetry(ctx, completed, MAX_RETRIES) {
		if err := r.Error(); err != nil {
			vc.discard(ctx, result.ResultID)
			return fmt.Errorf("[ValkeyClient] index result: %w", err)
		}
	}

	slog.Info("[ValkeyClient] Result stored", slog.String("result_id", result.ResultID))
	return nil
}

// discard removes a half-written result so List and Get never see it.
func (vc *ValkeyClient) discard(ctx context.Context, id string) {
	results := vc.Client.DoMulti(ctx,
		vc.Client.B().Del().Key(resultKey(id)).Build(),
		vc.Client.B().Srem().Key(VALKEY_RESULT_INDEX_KEY).Member(id).Build(),
	)
	for _, r := range results {
		if err := r.Error(); err != nil {
			slog.Error("[ValkeyClient] Failed to discard partial result",
				slog.String("result_id", id),
				slog.String("error", err.Error()))
		}
	}
}

// List returns indexed IDs in lexical order. Expired results are pruned from
// the index lazily by Get.
func (vc *ValkeyClient) List(ctx context.Context) ([]string, error) {
	res := vc.DoWithRetry(ctx, vc.Client.B().Smembers().Key(VALKEY_RESULT_INDEX_KEY).Build(), MAX_RETRIES)
	ids, err := res.AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] list results: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (vc *ValkeyClient) Get(ctx context.Context, id string) (*models.AnalysisResult, error) {
	if err := storage.ValidateID(id); err != nil {
		return nil, err
	}

	res := vc.DoWithRetry(ctx, vc.Client.B().Get().Key(resultKey(id)).Build(), MAX_RETRIES)
	data, err := res.AsBytes()
	if valkey.IsValkeyNil(err) {
		vc.Client.Do(ctx, vc.Client.B().Srem().Key(VALKEY_RESULT_INDEX_KEY).Member(id).Build())
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] get result: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("[ValkeyClient] decode result %s: %w", id, err)
	}
	return &result, nil
}

func (vc *ValkeyClient) Ping(ctx context.Context) error {
	return vc.Client.Do(ctx, vc.Client.B().Ping().Build()).Error()
}

func resultKey(id string) string {
	return VALKEY_RESULT_KEY_PREFIX + id
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	for i := range completed {
		completed[i] = completed[i].Pin()
	}

	var results []valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		results = vc.Client.DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if err := r.Error(); err != nil && isConnectionError(err) {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", err.Error()))
				break
			}
		}
		if !hasErr || !sleepCtx(ctx, RETRY_BACKOFF) {
			break
		}
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	// pinned so the command survives being sent more than once
	completed = completed.Pin()

	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if !isConnectionError(result.Error()) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		if !sleepCtx(ctx, RETRY_BACKOFF) {
			break
		}
	}

	return result
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
