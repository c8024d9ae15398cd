package events

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTicketsPurchased EventType = "tickets_purchased"
	EventTypeCodeRedeemed     EventType = "code_redeemed"
	EventTypeRoundCompleted   EventType = "round_completed"
	EventTypePrizeClaimed     EventType = "prize_claimed"
	EventTypePrizeUnclaimed   EventType = "prize_unclaimed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TicketsPurchasedEvent represents a successful cash ticket purchase
type TicketsPurchasedEvent struct {
	RoundID   int64
	PlayerFid int64
	Numbers   []int
	TotalCost int64
	TxRef     string
}

func (e TicketsPurchasedEvent) Type() EventType {
	return EventTypeTicketsPurchased
}

// CodeRedeemedEvent represents a daily code redeemed for free tickets
type CodeRedeemedEvent struct {
	RoundID        int64
	PlayerFid      int64
	Code           string
	GrantedNumbers []int
}

func (e CodeRedeemedEvent) Type() EventType {
	return EventTypeCodeRedeemed
}

// RoundCompletedEvent represents a finished draw
type RoundCompletedEvent struct {
	RoundID       int64
	Sequence      int64
	WinningNumber *int
	WinnerFid     *int64
	Jackpot       int64
	TicketsSold   int
	NextRoundID   int64
	NextJackpot   int64
}

func (e RoundCompletedEvent) Type() EventType {
	return EventTypeRoundCompleted
}

// PrizeClaimedEvent represents a winning paid out to its owner
type PrizeClaimedEvent struct {
	WinningID   int64
	PlayerFid   int64
	Amount      int64
	PayoutTxRef string
}

func (e PrizeClaimedEvent) Type() EventType {
	return EventTypePrizeClaimed
}

// PrizeUnclaimedEvent represents an administrative claim reversal
type PrizeUnclaimedEvent struct {
	WinningID int64
	PlayerFid int64
	Amount    int64
}

func (e PrizeUnclaimedEvent) Type() EventType {
	return EventTypePrizeUnclaimed
}
