package application

import (
	"context"
	"testing"

	"lambolotto/domain/entities"
	"lambolotto/domain/interfaces"
	"lambolotto/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeUnitOfWork backs the facade tests with testhelpers mocks and
// records transaction lifecycle calls.
type fakeUnitOfWork struct {
	rounds    *testhelpers.MockRoundRepository
	tickets   *testhelpers.MockTicketRepository
	purchases *testhelpers.MockPurchaseRepository
	winnings  *testhelpers.MockWinningRepository
	stats     *testhelpers.MockStatsRepository
	codes     *testhelpers.MockDailyCodeRepository
	tokens    *testhelpers.MockNotificationTokenRepository
	publisher *testhelpers.MockEventPublisher

	began      bool
	committed  bool
	rolledBack bool
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		rounds:    new(testhelpers.MockRoundRepository),
		tickets:   new(testhelpers.MockTicketRepository),
		purchases: new(testhelpers.MockPurchaseRepository),
		winnings:  new(testhelpers.MockWinningRepository),
		stats:     new(testhelpers.MockStatsRepository),
		codes:     new(testhelpers.MockDailyCodeRepository),
		tokens:    new(testhelpers.MockNotificationTokenRepository),
		publisher: new(testhelpers.MockEventPublisher),
	}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.began = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.committed = true
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}

func (u *fakeUnitOfWork) RoundRepository() interfaces.RoundRepository   { return u.rounds }
func (u *fakeUnitOfWork) TicketRepository() interfaces.TicketRepository { return u.tickets }
func (u *fakeUnitOfWork) PurchaseRepository() interfaces.PurchaseRepository {
	return u.purchases
}
func (u *fakeUnitOfWork) WinningRepository() interfaces.WinningRepository { return u.winnings }
func (u *fakeUnitOfWork) StatsRepository() interfaces.StatsRepository     { return u.stats }
func (u *fakeUnitOfWork) DailyCodeRepository() interfaces.DailyCodeRepository {
	return u.codes
}
func (u *fakeUnitOfWork) NotificationTokenRepository() interfaces.NotificationTokenRepository {
	return u.tokens
}
func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher { return u.publisher }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) Create() UnitOfWork { return f.uow }

// fakeVerifier approves or rejects every purchase
type fakeVerifier struct {
	err    error
	called bool
}

func (v *fakeVerifier) VerifyPurchase(ctx context.Context, txRef, playerAddress string) error {
	v.called = true
	return v.err
}

func testLotteryConfig() LotteryConfig {
	return LotteryConfig{
		TicketPrice:    100_000,
		BaseJackpot:    1_000_000,
		DailyGrantSize: 3,
	}
}

func TestLottery_PurchaseTickets_RejectsBeforeVerification(t *testing.T) {
	t.Parallel()
	uow := newFakeUnitOfWork()
	verifier := &fakeVerifier{}
	lottery := NewLottery(&fakeUowFactory{uow}, verifier, new(testhelpers.MockPayoutSender), &testhelpers.FixedRandomSource{}, testLotteryConfig())

	_, err := lottery.PurchaseTickets(context.Background(), 42, 0, []int{5, 5}, "0xplayer", "0xtx")

	assert.ErrorIs(t, err, entities.ErrDuplicateNumbers)
	// A malformed batch must not reach the chain or the database.
	assert.False(t, verifier.called)
	assert.False(t, uow.began)
}

func TestLottery_PurchaseTickets_VerificationFailureSkipsTransaction(t *testing.T) {
	t.Parallel()
	uow := newFakeUnitOfWork()
	verifier := &fakeVerifier{err: entities.ErrWrongRecipient}
	lottery := NewLottery(&fakeUowFactory{uow}, verifier, new(testhelpers.MockPayoutSender), &testhelpers.FixedRandomSource{}, testLotteryConfig())

	_, err := lottery.PurchaseTickets(context.Background(), 42, 0, []int{7}, "0xplayer", "0xtx")

	assert.ErrorIs(t, err, entities.ErrWrongRecipient)
	assert.NotErrorIs(t, err, entities.ErrPaymentNotCredited)
	assert.False(t, uow.began)
}

func TestLottery_PurchaseTickets_PostVerificationFailureFlagged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uow := newFakeUnitOfWork()
	uow.purchases.On("Get", ctx, "0xtx").Return(nil, nil)
	uow.rounds.On("GetActive", ctx).Return(nil, nil)
	lottery := NewLottery(&fakeUowFactory{uow}, &fakeVerifier{}, new(testhelpers.MockPayoutSender), &testhelpers.FixedRandomSource{}, testLotteryConfig())

	_, err := lottery.PurchaseTickets(ctx, 42, 0, []int{7}, "0xplayer", "0xtx")

	// The payment verified but nothing was persisted.
	assert.ErrorIs(t, err, entities.ErrPaymentNotCredited)
	assert.ErrorIs(t, err, entities.ErrNoActiveRound)
	assert.True(t, uow.rolledBack)
	assert.False(t, uow.committed)
}

func TestLottery_PurchaseTickets_ReplaySucceedsWithoutReinsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uow := newFakeUnitOfWork()
	existing := &entities.Purchase{TxRef: "0xtx", RoundID: 1, PlayerFid: 42, TicketCount: 1}
	round := &entities.Round{ID: 1, Status: entities.RoundStatusActive}
	tickets := []*entities.Ticket{{ID: 9, RoundID: 1, PlayerFid: 42, Number: 7}}
	uow.purchases.On("Get", ctx, "0xtx").Return(existing, nil)
	uow.rounds.On("GetByID", ctx, int64(1)).Return(round, nil)
	uow.tickets.On("GetByPlayerForRound", ctx, int64(1), int64(42)).Return(tickets, nil)
	lottery := NewLottery(&fakeUowFactory{uow}, &fakeVerifier{}, new(testhelpers.MockPayoutSender), &testhelpers.FixedRandomSource{}, testLotteryConfig())

	result, err := lottery.PurchaseTickets(ctx, 42, 0, []int{7}, "0xplayer", "0xtx")

	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.True(t, uow.committed)
	uow.tickets.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestLottery_Claim_CommitsAfterPayout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uow := newFakeUnitOfWork()
	payout := new(testhelpers.MockPayoutSender)

	winning := &entities.Winning{ID: 5, PlayerFid: 42, RoundID: 1, TicketID: 77, Amount: 2_000_000}
	ticket := &entities.Ticket{ID: 77, RoundID: 1, PlayerFid: 42, PlayerAddress: "0xdest", Number: 3}
	uow.winnings.On("GetByIDForUpdate", ctx, int64(5)).Return(winning, nil)
	uow.tickets.On("GetByID", ctx, int64(77)).Return(ticket, nil)
	payout.On("Transfer", ctx, "0xdest", int64(2_000_000)).Return("0xtransfer", nil)
	uow.winnings.On("MarkClaimed", ctx, int64(5), "0xtransfer", mock.Anything).Return(nil)
	uow.stats.On("AdjustTreasury", ctx, int64(-2_000_000)).Return(nil)
	uow.publisher.On("Publish", mock.Anything).Return(nil)

	lottery := NewLottery(&fakeUowFactory{uow}, &fakeVerifier{}, payout, &testhelpers.FixedRandomSource{}, testLotteryConfig())

	result, err := lottery.Claim(ctx, 5, 42)

	require.NoError(t, err)
	assert.True(t, result.IsClaimed())
	assert.True(t, uow.committed)
}

func TestLottery_Redeem_RollsBackOnFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uow := newFakeUnitOfWork()
	uow.codes.On("GetActiveByCode", ctx, "NOPE").Return(nil, nil)
	lottery := NewLottery(&fakeUowFactory{uow}, &fakeVerifier{}, new(testhelpers.MockPayoutSender), &testhelpers.FixedRandomSource{}, testLotteryConfig())

	_, err := lottery.Redeem(ctx, 42, "NOPE")

	assert.ErrorIs(t, err, entities.ErrInvalidCode)
	assert.True(t, uow.rolledBack)
	assert.False(t, uow.committed)
}

func TestLottery_CompleteDueRound_PropagatesNoActiveRound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uow := newFakeUnitOfWork()
	uow.rounds.On("GetActiveForUpdate", ctx).Return(nil, nil)
	lottery := NewLottery(&fakeUowFactory{uow}, &fakeVerifier{}, new(testhelpers.MockPayoutSender), &testhelpers.FixedRandomSource{}, testLotteryConfig())

	_, err := lottery.CompleteDueRound(ctx)

	assert.ErrorIs(t, err, entities.ErrNoActiveRound)
	assert.False(t, uow.committed)
}
