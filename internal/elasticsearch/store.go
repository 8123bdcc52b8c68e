package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"localcloud-tools-backend/config"
	"localcloud-tools-backend/internal/model"
)

// LogArchive stores parsed emulator log entries for later search. Archiving
// is best effort and fully optional.
type LogArchive interface {
	ArchiveLogs(ctx context.Context, logs []model.LogEntry) error
	Close(ctx context.Context) error
}

type elasticLogArchive struct {
	client          *elasticsearch.Client
	bulkIndexer     esutil.BulkIndexer
	indexPrefix     string
	countSuccessful uint64
	countFailed     uint64
}

type noopArchive struct{}

func (noopArchive) ArchiveLogs(ctx context.Context, logs []model.LogEntry) error { return nil }
func (noopArchive) Close(ctx context.Context) error                              { return nil }

func NewLogArchive(lc fx.Lifecycle, cfg *config.Config) (LogArchive, error) {
	if !cfg.Elasticsearch.Enabled {
		log.Info().Msg("Elasticsearch archiving disabled")
		return noopArchive{}, nil
	}
	if len(cfg.Elasticsearch.Addresses) == 0 {
		return nil, errors.New("elasticsearch enabled but no addresses configured")
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: time.Second * 10,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
	}
	esCfg := elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Transport: transport,
	}

	var esClient *elasticsearch.Client
	operation := func() error {
		var err error
		esClient, err = elasticsearch.NewClient(esCfg)
		if err != nil {
			log.Warn().Err(err).Msg("Attempt failed: Error creating the Elasticsearch client")
			return err
		}

		res, errPing := esClient.Info(esClient.Info.WithContext(context.Background()))
		if errPing != nil {
			log.Warn().Err(errPing).Msg("Attempt failed: Error during Elasticsearch Info() call")
			return errPing
		}
		defer res.Body.Close()
		if res.IsError() {
			errMsg := fmt.Errorf("elasticsearch Info() returned error status: %s", res.Status())
			log.Warn().Err(errMsg).Msg("Attempt failed: Elasticsearch ping returned error status")
			return errMsg
		}
		log.Info().Msg("Elasticsearch client initialized and connection verified")
		return nil
	}

	connectBackoff := backoff.NewExponentialBackOff()
	connectBackoff.InitialInterval = 2 * time.Second
	connectBackoff.MaxInterval = 15 * time.Second
	connectBackoff.MaxElapsedTime = 90 * time.Second

	log.Info().Msg("Attempting to connect to Elasticsearch with retries...")
	if err := backoff.Retry(operation, connectBackoff); err != nil {
		log.Error().Err(err).Msg("Failed to connect to Elasticsearch after multiple retries")
		return nil, err
	}

	archive := &elasticLogArchive{
		client:      esClient,
		indexPrefix: cfg.Elasticsearch.LogIndex,
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        esClient,
		Index:         archive.getIndexName(),
		NumWorkers:    cfg.Elasticsearch.BulkWorkers,
		FlushBytes:    cfg.Elasticsearch.FlushBytes,
		FlushInterval: cfg.Elasticsearch.FlushInterval,
		OnError: func(ctx context.Context, err error) {
			log.Error().Err(err).Msg("BulkIndexer error")
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("Error creating the BulkIndexer")
		return nil, err
	}
	archive.bulkIndexer = bi
	log.Info().Msg("Elasticsearch BulkIndexer initialized")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Elasticsearch BulkIndexer...")
			return archive.Close(ctx)
		},
	})

	return archive, nil
}

// ArchiveLogs queues entries on the bulk indexer; flushing happens on the
// indexer's own workers.
func (s *elasticLogArchive) ArchiveLogs(ctx context.Context, logs []model.LogEntry) error {
	if len(logs) == 0 {
		return nil
	}

	currentFailed := atomic.LoadUint64(&s.countFailed)

	for _, entry := range logs {
		data, err := json.Marshal(entry)
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal log entry for Elasticsearch")
			atomic.AddUint64(&s.countFailed, 1)
			continue
		}

		err = s.bulkIndexer.Add(ctx, esutil.BulkIndexerItem{
			Action: "index",
			Index:  s.getIndexName(),
			Body:   bytes.NewReader(data),
			OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
				atomic.AddUint64(&s.countSuccessful, 1)
			},
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				atomic.AddUint64(&s.countFailed, 1)
				log.Error().Err(err).Str("index", item.Index).Msg("BulkIndexer item failed")
			},
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to add item to BulkIndexer")
			atomic.AddUint64(&s.countFailed, 1)
		}
	}
	log.Debug().Int("count", len(logs)).Msg("Added log entries to Elasticsearch BulkIndexer queue")

	if atomic.LoadUint64(&s.countFailed) > currentFailed {
		return errors.New("one or more logs failed during bulk indexing attempt")
	}
	return nil
}

func (s *elasticLogArchive) Close(ctx context.Context) error {
	err := s.bulkIndexer.Close(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error closing BulkIndexer")
	}

	stats := s.bulkIndexer.Stats()
	log.Info().
		Uint64("indexed", stats.NumIndexed).
		Uint64("added", stats.NumAdded).
		Uint64("flushed", stats.NumFlushed).
		Uint64("failed", stats.NumFailed).
		Uint64("requests", stats.NumRequests).
		Uint64("callback_successful", atomic.LoadUint64(&s.countSuccessful)).
		Uint64("callback_failed", atomic.LoadUint64(&s.countFailed)).
		Msg("Elasticsearch BulkIndexer final stats")

	return err
}

// getIndexName generates the daily index name, e.g. "emulatorlogs-2024-05-01".
func (s *elasticLogArchive) getIndexName() string {
	return fmt.Sprintf("%s-%s", s.indexPrefix, time.Now().UTC().Format("2006-01-02"))
}
