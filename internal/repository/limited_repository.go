package repository

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"phrasebook/internal/model"
)

// DefaultRemoteQPS is used when no positive QPS is configured.
const DefaultRemoteQPS = 10

type limitedRepository struct {
	next    KeywordRepository
	limiter *rate.Limiter
	timeout time.Duration
}

// NewLimitedRepository throttles calls to next and bounds each call by
// timeout (zero disables the bound). A call that cannot start or finish in
// time fails with ErrRemote like any other remote outage.
func NewLimitedRepository(next KeywordRepository, qps int, timeout time.Duration) KeywordRepository {
	if qps <= 0 {
		qps = DefaultRemoteQPS
	}
	return &limitedRepository{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(qps), qps),
		timeout: timeout,
	}
}

func (r *limitedRepository) begin(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	if err := r.limiter.Wait(ctx); err != nil {
		cancel()
		return nil, nil, remoteErr(op, err)
	}
	return ctx, cancel, nil
}

func (r *limitedRepository) FetchAll(ctx context.Context) ([]model.RemoteKeyword, error) {
	ctx, cancel, err := r.begin(ctx, "fetch keywords")
	if err != nil {
		return nil, err
	}
	defer cancel()
	return r.next.FetchAll(ctx)
}

func (r *limitedRepository) Insert(ctx context.Context, keyword model.Keyword) (int64, error) {
	ctx, cancel, err := r.begin(ctx, "insert keyword")
	if err != nil {
		return 0, err
	}
	defer cancel()
	return r.next.Insert(ctx, keyword)
}

func (r *limitedRepository) DeleteByID(ctx context.Context, id int64) error {
	ctx, cancel, err := r.begin(ctx, "delete keyword")
	if err != nil {
		return err
	}
	defer cancel()
	return r.next.DeleteByID(ctx, id)
}

func (r *limitedRepository) DeleteByContent(ctx context.Context, nativeText, targetText string) (int64, error) {
	ctx, cancel, err := r.begin(ctx, "delete keyword by content")
	if err != nil {
		return 0, err
	}
	defer cancel()
	return r.next.DeleteByContent(ctx, nativeText, targetText)
}
