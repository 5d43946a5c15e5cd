package beacon

import (
	"context"

	"raffle/internal/logger"

	"github.com/tonkeeper/tongo/liteclient"
	"go.uber.org/zap"
)

type masterchainInfoClient interface {
	GetMasterchainInfo(ctx context.Context) (liteclient.LiteServerMasterchainInfoC, error)
}

// LiteapiSource seeds from the root hash of the last masterchain block reported by lite servers.
type LiteapiSource struct {
	client masterchainInfoClient
}

func NewLiteapiSource(client masterchainInfoClient) *LiteapiSource {
	return &LiteapiSource{client: client}
}

func (s *LiteapiSource) Name() string {
	return LiteapiSourceName
}

func (s *LiteapiSource) Seed(ctx context.Context) (Seed, error) {
	logger.Debug("getting masterchain info...")
	info, err := s.client.GetMasterchainInfo(ctx)
	if err != nil {
		return Seed{}, err
	}

	logger.Debug("getting masterchain info... done", zap.Uint32("seqno", info.Last.Seqno))
	return Seed(info.Last.RootHash), nil
}
