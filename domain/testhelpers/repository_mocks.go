package testhelpers

import (
	"context"
	"time"

	"lambolotto/domain/entities"
	"lambolotto/domain/events"
	"lambolotto/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockRoundRepository is a mock implementation of RoundRepository.
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) GetActive(ctx context.Context) (*entities.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetActiveForUpdate(ctx context.Context) (*entities.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetByID(ctx context.Context, id int64) (*entities.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) Create(ctx context.Context, round *entities.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRoundRepository) MarkCompleted(ctx context.Context, roundID int64, winningNumber *int) error {
	args := m.Called(ctx, roundID, winningNumber)
	return args.Error(0)
}

func (m *MockRoundRepository) IncrementTicketCount(ctx context.Context, roundID int64, delta int) error {
	args := m.Called(ctx, roundID, delta)
	return args.Error(0)
}

func (m *MockRoundRepository) NextSequence(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoundRepository) GetLastCompleted(ctx context.Context) (*entities.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetRecentCompleted(ctx context.Context, limit int) ([]*entities.Round, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Round), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository.
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id int64) (*entities.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByPlayerForRound(ctx context.Context, roundID, playerFid int64) ([]*entities.Ticket, error) {
	args := m.Called(ctx, roundID, playerFid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountByPlayer(ctx context.Context, roundID, playerFid int64) (int, error) {
	args := m.Called(ctx, roundID, playerFid)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepository) GetTakenNumbers(ctx context.Context, roundID int64) ([]int, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockTicketRepository) GetTakenAmong(ctx context.Context, roundID int64, numbers []int) ([]int, error) {
	args := m.Called(ctx, roundID, numbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockTicketRepository) GetByNumber(ctx context.Context, roundID int64, number int) (*entities.Ticket, error) {
	args := m.Called(ctx, roundID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

// MockPurchaseRepository is a mock implementation of PurchaseRepository.
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Get(ctx context.Context, txRef string) (*entities.Purchase, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) Record(ctx context.Context, purchase *entities.Purchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

// MockWinningRepository is a mock implementation of WinningRepository.
type MockWinningRepository struct {
	mock.Mock
}

func (m *MockWinningRepository) Create(ctx context.Context, winning *entities.Winning) error {
	args := m.Called(ctx, winning)
	return args.Error(0)
}

func (m *MockWinningRepository) GetByID(ctx context.Context, id int64) (*entities.Winning, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Winning), args.Error(1)
}

func (m *MockWinningRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Winning, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Winning), args.Error(1)
}

func (m *MockWinningRepository) GetByRound(ctx context.Context, roundID int64) (*entities.Winning, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Winning), args.Error(1)
}

func (m *MockWinningRepository) GetByPlayer(ctx context.Context, playerFid int64) ([]*entities.WinningDetail, error) {
	args := m.Called(ctx, playerFid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WinningDetail), args.Error(1)
}

func (m *MockWinningRepository) MarkClaimed(ctx context.Context, id int64, payoutTxRef string, claimedAt time.Time) error {
	args := m.Called(ctx, id, payoutTxRef, claimedAt)
	return args.Error(0)
}

func (m *MockWinningRepository) ResetClaim(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStatsRepository is a mock implementation of StatsRepository.
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) GetOrCreate(ctx context.Context, initialTreasury int64) (*entities.Stats, error) {
	args := m.Called(ctx, initialTreasury)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Stats), args.Error(1)
}

func (m *MockStatsRepository) RecordTicketSale(ctx context.Context, count int) error {
	args := m.Called(ctx, count)
	return args.Error(0)
}

func (m *MockStatsRepository) ApplyDrawCompletion(ctx context.Context, ticketsSold int, treasuryDelta int64) error {
	args := m.Called(ctx, ticketsSold, treasuryDelta)
	return args.Error(0)
}

func (m *MockStatsRepository) AdjustTreasury(ctx context.Context, delta int64) error {
	args := m.Called(ctx, delta)
	return args.Error(0)
}

// MockDailyCodeRepository is a mock implementation of DailyCodeRepository.
type MockDailyCodeRepository struct {
	mock.Mock
}

func (m *MockDailyCodeRepository) GetActiveByCode(ctx context.Context, code string) (*entities.DailyCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyCode), args.Error(1)
}

func (m *MockDailyCodeRepository) HasUsage(ctx context.Context, playerFid int64, code string) (bool, error) {
	args := m.Called(ctx, playerFid, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockDailyCodeRepository) CountDistinctUsers(ctx context.Context, code string) (int, error) {
	args := m.Called(ctx, code)
	return args.Int(0), args.Error(1)
}

func (m *MockDailyCodeRepository) HasUsageToday(ctx context.Context, playerFid int64) (bool, error) {
	args := m.Called(ctx, playerFid)
	return args.Bool(0), args.Error(1)
}

func (m *MockDailyCodeRepository) RecordUsage(ctx context.Context, playerFid int64, code string) error {
	args := m.Called(ctx, playerFid, code)
	return args.Error(0)
}

func (m *MockDailyCodeRepository) Create(ctx context.Context, code *entities.DailyCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// MockNotificationTokenRepository is a mock implementation of NotificationTokenRepository.
type MockNotificationTokenRepository struct {
	mock.Mock
}

func (m *MockNotificationTokenRepository) HasSubscription(ctx context.Context, playerFid int64) (bool, error) {
	args := m.Called(ctx, playerFid)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationTokenRepository) Save(ctx context.Context, token *entities.NotificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockNotificationTokenRepository) DeleteByFid(ctx context.Context, playerFid int64) error {
	args := m.Called(ctx, playerFid)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockChainQuerier is a mock implementation of ChainQuerier.
type MockChainQuerier struct {
	mock.Mock
}

func (m *MockChainQuerier) GetTransactionReceipt(ctx context.Context, txRef string) (*interfaces.TransactionReceipt, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TransactionReceipt), args.Error(1)
}

// MockPayoutSender is a mock implementation of PayoutSender.
type MockPayoutSender struct {
	mock.Mock
}

func (m *MockPayoutSender) Transfer(ctx context.Context, destinationAddress string, amount int64) (string, error) {
	args := m.Called(ctx, destinationAddress, amount)
	return args.String(0), args.Error(1)
}

// FixedRandomSource returns preset values in order, then zeros.
// Useful for forcing a particular draw outcome in tests.
type FixedRandomSource struct {
	Values []int
	next   int
}

func (f *FixedRandomSource) Intn(n int) int {
	if f.next >= len(f.Values) {
		return 0
	}
	v := f.Values[f.next] % n
	f.next++
	return v
}
