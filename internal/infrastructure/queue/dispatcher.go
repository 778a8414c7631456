package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	revokeTimeout  = 10 * time.Second
	drainTimeout   = 5 * time.Second
)

// LogoutAPI is the single remote call the dispatcher makes.
type LogoutAPI interface {
	Logout(ctx context.Context, tokens domain.TokenPair) error
}

type revocation struct {
	profileID string
	tokens    domain.TokenPair
}

// RevocationDispatcher runs remote logouts in the background on a fixed set of
// workers. Jobs are sharded by profile id, so one profile's revocations run
// in the order they were enqueued.
type RevocationDispatcher struct {
	workers []chan revocation
	api     LogoutAPI
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.Revoker = (*RevocationDispatcher)(nil)

// NewRevocationDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewRevocationDispatcher(numWorkers int, api LogoutAPI, log zerolog.Logger) *RevocationDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &RevocationDispatcher{
		workers: make([]chan revocation, numWorkers),
		api:     api,
		log:     log.With().Str("component", "revocation").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan revocation, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. When ctx is cancelled each worker
// flushes what is left in its channel, bounded by drainTimeout.
func (d *RevocationDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *RevocationDispatcher) Wait() {
	d.wg.Wait()
}

// Revoke implements ports.Revoker. It never blocks: when the profile's shard
// is full the job is dropped and the refresh token simply lives out its
// lifetime upstream.
func (d *RevocationDispatcher) Revoke(_ context.Context, profileID string, tokens domain.TokenPair) {
	idx := d.shardIndex(profileID)
	select {
	case d.workers[idx] <- revocation{profileID: profileID, tokens: tokens}:
		metrics.RevocationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.RevocationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("profile", profileID).
			Int("worker_id", idx).
			Msg("revocation queue full, dropping logout")
	}
}

// shardIndex maps a profile id deterministically to a worker index.
func (d *RevocationDispatcher) shardIndex(profileID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(profileID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *RevocationDispatcher) runWorker(ctx context.Context, id int, ch <-chan revocation) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			metrics.RevocationQueueDepth.WithLabelValues(label).Set(0)
			return
		case job := <-ch:
			metrics.RevocationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, job)
		}
	}
}

func (d *RevocationDispatcher) drain(id int, ch <-chan revocation) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case job := <-ch:
			if ctx.Err() != nil {
				metrics.RevocationsTotal.WithLabelValues("dropped").Inc()
				continue
			}
			d.process(ctx, id, job)
		default:
			return
		}
	}
}

func (d *RevocationDispatcher) process(ctx context.Context, id int, job revocation) {
	callCtx, cancel := context.WithTimeout(ctx, revokeTimeout)
	defer cancel()

	if err := d.api.Logout(callCtx, job.tokens); err != nil {
		metrics.RevocationsTotal.WithLabelValues("failed").Inc()
		d.log.Warn().Err(err).
			Str("profile", job.profileID).
			Int("worker_id", id).
			Msg("remote logout failed")
		return
	}
	metrics.RevocationsTotal.WithLabelValues("ok").Inc()
}
