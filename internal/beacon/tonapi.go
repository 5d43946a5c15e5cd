package beacon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"raffle/internal/logger"

	"github.com/tonkeeper/tonapi-go"
	"go.uber.org/zap"
)

const (
	rateLimitDelay    = 500 * time.Millisecond
	rateLimitAttempts = 10
)

type masterchainHeadClient interface {
	GetBlockchainMasterchainHead(ctx context.Context) (*tonapi.BlockchainBlock, error)
}

// TonapiSource seeds from the masterchain head as indexed by tonapi.
type TonapiSource struct {
	client masterchainHeadClient
}

func NewTonapiSource(client masterchainHeadClient) *TonapiSource {
	return &TonapiSource{client: client}
}

// NewTonapiClient builds a tonapi client against the public endpoint.
func NewTonapiClient(token string) (*tonapi.Client, error) {
	logger.Debug("initializing tonapi client...", zap.Bool("token", token != ""))
	return tonapi.NewClient(tonapi.TonApiURL, tonapi.WithToken(token))
}

func (s *TonapiSource) Name() string {
	return TonapiSourceName
}

func (s *TonapiSource) Seed(ctx context.Context) (Seed, error) {
	logger.Debug("getting masterchain head...")
	head, err := rateLimitRetry(ctx, func() (*tonapi.BlockchainBlock, error) {
		return s.client.GetBlockchainMasterchainHead(ctx)
	})
	if err != nil {
		return Seed{}, err
	}

	seed, err := ParseSeed(head.RootHash)
	if err != nil {
		return Seed{}, fmt.Errorf("masterchain head %d: %w", head.Seqno, err)
	}
	logger.Debug("getting masterchain head... done", zap.Int32("seqno", head.Seqno))
	return seed, nil
}

type Func[T any] func() (T, error)

// rateLimitRetry repeats fn while tonapi answers 429, up to rateLimitAttempts times.
func rateLimitRetry[T any](ctx context.Context, fn Func[T]) (T, error) {
	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil || !isRateLimited(err) || attempt >= rateLimitAttempts {
			return result, err
		}

		logger.Debug("tonapi rate limited, retrying...", zap.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(rateLimitDelay):
		}
	}
}

func isRateLimited(err error) bool {
	var e *tonapi.ErrorStatusCode
	return errors.As(err, &e) && e.StatusCode == http.StatusTooManyRequests
}
