package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/civicquery/civicquery/internal/splitter"
)

// upsertBatchSize bounds one Upsert call.
const upsertBatchSize = 100

// Qdrant is a remote vector store backend. The collection is created lazily
// on first Add, since the vector dimension depends on the embedding model.
type Qdrant struct {
	client *qdrant.Client
	logger *slog.Logger
}

// NewQdrant connects to a Qdrant server and verifies it is reachable,
// retrying with exponential backoff before giving up.
func NewQdrant(ctx context.Context, host string, port int, logger *slog.Logger) (*Qdrant, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	s := &Qdrant{client: client, logger: logger}
	if err := s.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	logger.Info("vector store opened", "backend", "qdrant", "host", host, "port", port)
	return s, nil
}

func (s *Qdrant) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		result, err := s.client.HealthCheck(ctx)
		if err != nil {
			return err
		}
		if result == nil || result.Title == "" {
			return fmt.Errorf("health check returned invalid response")
		}
		return nil
	}, backoff.WithContext(b, ctx))
}

// ensureCollection creates the collection if it does not exist yet.
// Idempotent.
func (s *Qdrant) ensureCollection(ctx context.Context, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, collectionName)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

func (s *Qdrant) Add(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	dimension := len(records[0].Embedding)
	for i, rec := range records {
		if len(rec.Embedding) != dimension {
			return fmt.Errorf("%w: record %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(rec.Embedding), dimension)
		}
	}

	if err := s.ensureCollection(ctx, dimension); err != nil {
		return err
	}

	for i := 0; i < len(records); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(records))
		batch := records[i:end]

		points := make([]*qdrant.PointStruct, len(batch))
		for j, rec := range batch {
			points[j] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(uuid.New().String()),
				Vectors: qdrant.NewVectors(rec.Embedding...),
				Payload: qdrant.NewValueMap(map[string]any{
					"text":        rec.Chunk.Text,
					"source":      rec.Chunk.Source,
					"page":        rec.Chunk.Page,
					"chunk_index": rec.Chunk.Index,
				}),
			}
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

func (s *Qdrant) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collectionName,
			Points:         points,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

func (s *Qdrant) Search(ctx context.Context, vector []float32, k int) ([]Result, error) {
	exists, err := s.client.CollectionExists(ctx, collectionName)
	if err != nil {
		return nil, fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		// Nothing ingested yet: empty store, not an error.
		return nil, nil
	}

	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		payload := hit.Payload
		results = append(results, Result{
			Chunk: splitter.Chunk{
				Text:   payload["text"].GetStringValue(),
				Source: payload["source"].GetStringValue(),
				Page:   int(payload["page"].GetIntegerValue()),
				Index:  int(payload["chunk_index"].GetIntegerValue()),
			},
			Embedding:  hit.Vectors.GetVector().GetData(),
			Similarity: hit.Score,
		})
	}
	return results, nil
}

func (s *Qdrant) Count(ctx context.Context) (int, error) {
	exists, err := s.client.CollectionExists(ctx, collectionName)
	if err != nil {
		return 0, fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		return 0, nil
	}

	info, err := s.client.GetCollectionInfo(ctx, collectionName)
	if err != nil {
		return 0, fmt.Errorf("get collection: %w", err)
	}
	return int(info.GetPointsCount()), nil
}

func (s *Qdrant) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
