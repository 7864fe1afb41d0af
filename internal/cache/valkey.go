package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"sentiboard/internal/domain"
)

type ValkeyOptions struct {
	Address  string
	Password string
	TLS      bool
}

type Valkey struct {
	client valkey.Client
}

func NewValkey(ctx context.Context, opts ValkeyOptions) (*Valkey, error) {
	client, err := valkey.NewClient(clientOption(opts))
	if err != nil {
		return nil, fmt.Errorf("creating valkey client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging valkey: %w", err)
	}
	slog.Info("cache valkey connected", "address", opts.Address)
	return &Valkey{client: client}, nil
}

// clientOption targets a single node without client-side caching.
func clientOption(opts ValkeyOptions) valkey.ClientOption {
	clientOpts := valkey.ClientOption{
		InitAddress:       []string{opts.Address},
		Password:          opts.Password,
		ConnWriteTimeout:  5 * time.Second,
		ForceSingleClient: true,
		DisableCache:      true,
	}
	if opts.TLS {
		clientOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return clientOpts
}

func (v *Valkey) Get(ctx context.Context, key string) ([]domain.AnalysisResult, bool, error) {
	raw, err := v.client.Do(ctx, v.client.B().Get().Key(key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var results []domain.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, false, fmt.Errorf("decoding cached results: %w", err)
	}
	return results, true, nil
}

func (v *Valkey) Set(ctx context.Context, key string, results []domain.AnalysisResult, ttl time.Duration) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return v.client.Do(ctx, v.client.B().Setex().Key(key).Seconds(seconds).Value(string(data)).Build()).Error()
}

func (v *Valkey) Ping(ctx context.Context) error {
	return v.client.Do(ctx, v.client.B().Ping().Build()).Error()
}

func (v *Valkey) Close() {
	v.client.Close()
}
