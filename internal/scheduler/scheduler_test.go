package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clubcorra/internal/notify"
	"clubcorra/internal/service/mocks"
)

type recordPublisher struct {
	events []notify.Event
}

func (p *recordPublisher) Publish(_ context.Context, e notify.Event) error {
	p.events = append(p.events, e)
	return nil
}

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) (*Scheduler, *mocks.MockOTPService, *mocks.MockCoinService, *recordPublisher) {
	s, otp, coins, _, pub := newTestSchedulerWithReceipts(t)
	return s, otp, coins, pub
}

func newTestSchedulerWithReceipts(t *testing.T) (*Scheduler, *mocks.MockOTPService, *mocks.MockCoinService, *mocks.MockReceiptService, *recordPublisher) {
	otp := new(mocks.MockOTPService)
	coins := new(mocks.MockCoinService)
	receipts := new(mocks.MockReceiptService)
	pub := &recordPublisher{}
	s, err := New(otp, coins, receipts, pub)
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s, otp, coins, receipts, pub
}

func TestNewRegistersJobs(t *testing.T) {
	s, _, _, _ := newTestScheduler(t)
	assert.Len(t, s.cron.Entries(), 3)
}

func TestPurgeOTPsUsesRetentionCutoff(t *testing.T) {
	s, otp, _, _ := newTestScheduler(t)
	otp.On("Purge", mock.Anything, fixedNow.Add(-OTPRetention)).Return(int64(7), nil)

	require.NoError(t, s.PurgeOTPs(context.Background()))
	otp.AssertExpectations(t)
}

func TestPurgeOTPsPropagatesError(t *testing.T) {
	s, otp, _, _ := newTestScheduler(t)
	otp.On("Purge", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	assert.EqualError(t, s.PurgeOTPs(context.Background()), "db down")
}

func TestSweepStalePublishesCount(t *testing.T) {
	s, _, coins, pub := newTestScheduler(t)
	coins.On("CountStalePending", mock.Anything, fixedNow.Add(-StalePendingAge)).Return(int64(3), nil)

	require.NoError(t, s.SweepStale(context.Background()))
	require.Len(t, pub.events, 1)
	assert.Equal(t, notify.EventTransactionsStale, pub.events[0].Type)
	assert.Equal(t, int64(3), pub.events[0].Count)
}

func TestSweepStaleQuietWhenNothingPending(t *testing.T) {
	s, _, coins, pub := newTestScheduler(t)
	coins.On("CountStalePending", mock.Anything, mock.Anything).Return(int64(0), nil)

	require.NoError(t, s.SweepStale(context.Background()))
	assert.Empty(t, pub.events)
}

func TestPurgeReceiptsUsesOrphanCutoff(t *testing.T) {
	s, _, _, receipts, _ := newTestSchedulerWithReceipts(t)
	receipts.On("PurgeOrphans", mock.Anything, fixedNow.Add(-OrphanReceiptAge)).Return(2, nil).Once()

	require.NoError(t, s.PurgeReceipts(context.Background()))
	receipts.AssertExpectations(t)

	receipts.On("PurgeOrphans", mock.Anything, mock.Anything).Return(0, errors.New("bucket gone"))
	assert.EqualError(t, s.PurgeReceipts(context.Background()), "bucket gone")
}

func TestStartStop(t *testing.T) {
	s, _, _, _ := newTestScheduler(t)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
