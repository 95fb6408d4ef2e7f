package repository

import (
	"context"
	"errors"
	"fmt"

	"votecast/internal/domain"
	votecast_errors "votecast/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPollRepository struct {
	pool *pgxpool.Pool
}

func NewPollRepository(pool *pgxpool.Pool) PollRepository {
	return &PostgresPollRepository{pool: pool}
}

func (r *PostgresPollRepository) Create(ctx context.Context, p *domain.Poll) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO polls (id, question, created_by, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Question, p.CreatedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}

	for i, opt := range p.Options {
		_, err = tx.Exec(ctx,
			`INSERT INTO poll_options (poll_id, position, answer, votes) VALUES ($1, $2, $3, $4)`,
			p.ID, i, opt.Answer, opt.Votes)
		if err != nil {
			return fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	return nil
}

func (r *PostgresPollRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Poll, error) {
	var p domain.Poll
	err := r.pool.QueryRow(ctx,
		`SELECT id, question, created_by, created_at FROM polls WHERE id = $1`, id).
		Scan(&p.ID, &p.Question, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Poll{}, votecast_errors.ErrNotFound
		}
		return domain.Poll{}, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}

	p.Options, err = r.loadOptions(ctx, id)
	if err != nil {
		return domain.Poll{}, err
	}
	p.Voters, err = r.loadVoters(ctx, id)
	if err != nil {
		return domain.Poll{}, err
	}
	return p, nil
}

func (r *PostgresPollRepository) List(ctx context.Context) ([]domain.Poll, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question, created_by, created_at FROM polls ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	defer rows.Close()

	var polls []domain.Poll
	for rows.Next() {
		var p domain.Poll
		if err := rows.Scan(&p.ID, &p.Question, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
		}
		polls = append(polls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}

	for i := range polls {
		polls[i].Options, err = r.loadOptions(ctx, polls[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return polls, nil
}

func (r *PostgresPollRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM polls`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	return count, nil
}

// ApplyVote runs both mutations in one transaction. The poll_voters primary key
// rejects a second vote by the same user; the tally UPDATE takes a row lock, so
// concurrent votes on the same option serialize without lost updates.
func (r *PostgresPollRepository) ApplyVote(ctx context.Context, pollID uuid.UUID, answer string, userID uuid.UUID) ([]domain.Option, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO poll_voters (poll_id, user_id, voted_at) VALUES ($1, $2, now())
		 ON CONFLICT (poll_id, user_id) DO NOTHING`,
		pollID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, votecast_errors.ErrAlreadyVoted
	}

	tag, err = tx.Exec(ctx,
		`UPDATE poll_options SET votes = votes + 1 WHERE poll_id = $1 AND answer = $2`,
		pollID, answer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, votecast_errors.ErrNotFound
	}

	options, err := loadOptionsTx(ctx, tx, pollID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	return options, nil
}

func (r *PostgresPollRepository) CountVotedBy(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM poll_voters WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	return count, nil
}

func (r *PostgresPollRepository) loadOptions(ctx context.Context, pollID uuid.UUID) ([]domain.Option, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT answer, votes FROM poll_options WHERE poll_id = $1 ORDER BY position`, pollID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	defer rows.Close()
	return scanOptions(rows)
}

func loadOptionsTx(ctx context.Context, tx pgx.Tx, pollID uuid.UUID) ([]domain.Option, error) {
	rows, err := tx.Query(ctx,
		`SELECT answer, votes FROM poll_options WHERE poll_id = $1 ORDER BY position`, pollID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	defer rows.Close()
	return scanOptions(rows)
}

func scanOptions(rows pgx.Rows) ([]domain.Option, error) {
	var options []domain.Option
	for rows.Next() {
		var o domain.Option
		if err := rows.Scan(&o.Answer, &o.Votes); err != nil {
			return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	return options, nil
}

func (r *PostgresPollRepository) loadVoters(ctx context.Context, pollID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM poll_voters WHERE poll_id = $1 ORDER BY voted_at`, pollID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	defer rows.Close()

	var voters []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
		}
		voters = append(voters, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", votecast_errors.ErrPersistence, err)
	}
	return voters, nil
}
