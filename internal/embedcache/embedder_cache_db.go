package embedcache

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docgate-io/docgate/internal/ai"
	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/timeutil"
	"github.com/docgate-io/docgate/internal/repo"
)

// WrapDBCacheToEmbedder backs an embedder with the persistent
// embedding_cache table so re-indexing unchanged documents is free across
// restarts. Cache failures only cost a recompute, so they are logged and
// swallowed.
func WrapDBCacheToEmbedder(e ai.IEmbedder, cache *repo.EmbeddingCacheRepo) ai.IEmbedder {
	if e == nil || cache == nil {
		return e
	}
	return &dbEmbedder{next: e, cache: cache}
}

type dbEmbedder struct {
	next  ai.IEmbedder
	cache *repo.EmbeddingCacheRepo
}

func (d *dbEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	_, contentHash := buildCacheKey(d.next.ModelName(), taskType, text)
	cached, ok, err := d.cache.Get(ctx, d.next.ModelName(), taskType, contentHash)
	if err != nil {
		logutil.GetLogger(ctx).Warn("embedding cache lookup failed", zap.Error(err))
	} else if ok {
		logutil.GetLogger(ctx).Debug("embedding cache hit (db)", zap.String("task_type", taskType))
		return cached, nil
	}
	res, err := d.next.Embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	if err := d.cache.Save(ctx, &model.EmbeddingCache{
		ModelName:   d.next.ModelName(),
		TaskType:    taskType,
		ContentHash: contentHash,
		Embedding:   res,
		Ctime:       timeutil.NowUnix(),
	}); err != nil {
		logutil.GetLogger(ctx).Warn("embedding cache save failed", zap.Error(err))
	}
	return res, nil
}

func (d *dbEmbedder) ModelName() string {
	return d.next.ModelName()
}
