package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"lambolotto/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TicketRepository implements ticket data access
type TicketRepository struct {
	q Queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(q Queryable) *TicketRepository {
	return &TicketRepository{q: q}
}

const ticketColumns = `id, round_id, player_fid, player_address, number, price, tx_ref, created_at`

// detail looks like: Key (round_id, number)=(3, 42) already exists.
var duplicateNumberDetail = regexp.MustCompile(`\(round_id, number\)=\(\d+, (\d+)\)`)

// CreateBatch inserts all tickets or none. A unique violation on
// (round_id, number) is translated into NumberTakenError naming the
// contested numbers.
func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	query := `
		INSERT INTO lottery_tickets (round_id, player_fid, player_address, number, price, tx_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	for _, ticket := range tickets {
		err := r.q.QueryRow(ctx, query,
			ticket.RoundID,
			ticket.PlayerFid,
			ticket.PlayerAddress,
			ticket.Number,
			ticket.Price,
			ticket.TxRef,
		).Scan(&ticket.ID, &ticket.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				taken := []int{ticket.Number}
				if m := duplicateNumberDetail.FindStringSubmatch(pgErr.Detail); m != nil {
					if n, convErr := strconv.Atoi(m[1]); convErr == nil {
						taken = []int{n}
					}
				}
				return &entities.NumberTakenError{Numbers: taken}
			}
			return fmt.Errorf("failed to create ticket for number %d: %w", ticket.Number, err)
		}
	}
	return nil
}

// GetByID retrieves a ticket by its ID
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*entities.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM lottery_tickets WHERE id = $1`, ticketColumns)
	ticket, err := scanTicket(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %d: %w", id, err)
	}
	return ticket, nil
}

// GetByPlayerForRound retrieves a player's tickets in a round
func (r *TicketRepository) GetByPlayerForRound(ctx context.Context, roundID, playerFid int64) ([]*entities.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM lottery_tickets
		WHERE round_id = $1 AND player_fid = $2
		ORDER BY number
	`, ticketColumns)
	return r.queryTickets(ctx, query, roundID, playerFid)
}

// CountByPlayer counts a player's tickets in a round
func (r *TicketRepository) CountByPlayer(ctx context.Context, roundID, playerFid int64) (int, error) {
	query := `SELECT COUNT(*) FROM lottery_tickets WHERE round_id = $1 AND player_fid = $2`
	var count int
	if err := r.q.QueryRow(ctx, query, roundID, playerFid).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

// GetTakenNumbers returns every sold number in a round, ascending
func (r *TicketRepository) GetTakenNumbers(ctx context.Context, roundID int64) ([]int, error) {
	query := `SELECT number FROM lottery_tickets WHERE round_id = $1 ORDER BY number`
	return r.queryNumbers(ctx, query, roundID)
}

// GetTakenAmong returns which of the candidate numbers are already sold
func (r *TicketRepository) GetTakenAmong(ctx context.Context, roundID int64, numbers []int) ([]int, error) {
	query := `SELECT number FROM lottery_tickets WHERE round_id = $1 AND number = ANY($2) ORDER BY number`
	return r.queryNumbers(ctx, query, roundID, numbers)
}

// GetByNumber retrieves the ticket holding a number in a round, or nil
func (r *TicketRepository) GetByNumber(ctx context.Context, roundID int64, number int) (*entities.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM lottery_tickets WHERE round_id = $1 AND number = $2`, ticketColumns)
	ticket, err := scanTicket(r.q.QueryRow(ctx, query, roundID, number))
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket for number %d: %w", number, err)
	}
	return ticket, nil
}

func scanTicket(row pgx.Row) (*entities.Ticket, error) {
	var ticket entities.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.RoundID,
		&ticket.PlayerFid,
		&ticket.PlayerAddress,
		&ticket.Number,
		&ticket.Price,
		&ticket.TxRef,
		&ticket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) queryTickets(ctx context.Context, query string, args ...any) ([]*entities.Ticket, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*entities.Ticket
	for rows.Next() {
		var ticket entities.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.RoundID,
			&ticket.PlayerFid,
			&ticket.PlayerAddress,
			&ticket.Number,
			&ticket.Price,
			&ticket.TxRef,
			&ticket.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, &ticket)
	}
	return tickets, rows.Err()
}

func (r *TicketRepository) queryNumbers(ctx context.Context, query string, args ...any) ([]int, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query numbers: %w", err)
	}
	defer rows.Close()

	numbers := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}
