package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/pkg/logger"
)

// Sink persists anomaly results from one detection run and returns the
// location they were written to. An empty location means no durable storage
// backend is configured.
type Sink interface {
	Save(ctx context.Context, results []anomaly.Result) (string, error)
}

// BlobSink writes anomaly result documents to Azure Blob Storage.
type BlobSink struct {
	client    *azblob.Client
	container string
	logger    *logger.Logger
}

// NewBlobSink creates a sink writing to the given container. When the
// connection string is empty the sink is unconfigured: Save becomes a no-op
// that reports no location.
func NewBlobSink(connectionString, container string, log *logger.Logger) (*BlobSink, error) {
	sink := &BlobSink{
		container: container,
		logger:    log,
	}

	if connectionString == "" {
		return sink, nil
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	sink.client = client

	return sink, nil
}

// Save serializes the anomalies to a JSON document and uploads it under a
// timestamped blob name. A write failure is fatal for the run; retrying is
// the caller's responsibility.
func (s *BlobSink) Save(ctx context.Context, results []anomaly.Result) (string, error) {
	if s.client == nil {
		s.logger.Warn("Blob storage not configured, skipping save")
		return "", nil
	}

	now := time.Now().UTC()
	data, err := MarshalResults(results, now)
	if err != nil {
		return "", fmt.Errorf("failed to serialize anomaly results: %w", err)
	}

	blobName := fmt.Sprintf("anomalies/anomaly-results-%s.json", now.Format("20060102-150405"))

	if _, err := s.client.UploadBuffer(ctx, s.container, blobName, data, nil); err != nil {
		return "", fmt.Errorf("failed to upload anomaly results: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"blob":      blobName,
		"container": s.container,
		"anomalies": len(results),
	}).Info("Saved anomaly results")

	return blobName, nil
}
