package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/repo"
	"github.com/docgate-io/docgate/internal/service"
)

// DocumentIndexJob drains the processing queue: every queued document gets
// extracted, chunked, embedded and indexed. One document failing does not
// stop the batch.
type DocumentIndexJob struct {
	docs      *repo.DocumentRepo
	processor *service.DocumentService
	batchSize int
}

func NewDocumentIndexJob(docs *repo.DocumentRepo, processor *service.DocumentService, batchSize int) *DocumentIndexJob {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &DocumentIndexJob{docs: docs, processor: processor, batchSize: batchSize}
}

func (j *DocumentIndexJob) Name() string {
	return "document_index"
}

func (j *DocumentIndexJob) Run(ctx context.Context) error {
	if j.docs == nil || j.processor == nil {
		return nil
	}
	pending, err := j.docs.ListByStatus(ctx, model.DocumentStatusProcessingRequested, j.batchSize)
	if err != nil {
		return err
	}
	for _, doc := range pending {
		if err := j.processor.Process(ctx, doc.ID); err != nil {
			logutil.GetLogger(ctx).Error("index document failed",
				zap.String("document_id", doc.ID), zap.Error(err))
		}
	}
	return nil
}
