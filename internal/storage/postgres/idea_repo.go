package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"venturevet/internal/idea"
)

// IdeaRepository implements idea.Storage on a pgx pool. SWOT and suggestion
// lists are stored as JSONB.
type IdeaRepository struct {
	pool *pgxpool.Pool
}

// NewIdeaRepository creates the idea storage backed by the given pool.
func NewIdeaRepository(pool *pgxpool.Pool) *IdeaRepository {
	return &IdeaRepository{pool: pool}
}

func (r *IdeaRepository) CreateIdea(ctx context.Context, it *idea.Idea) error {
	swot, err := json.Marshal(it.Analysis.SWOT)
	if err != nil {
		return fmt.Errorf("encode swot: %w", err)
	}
	mvp, err := json.Marshal(it.Analysis.MVPSuggestions)
	if err != nil {
		return fmt.Errorf("encode mvp suggestions: %w", err)
	}
	bm, err := json.Marshal(it.Analysis.BusinessModelIdeas)
	if err != nil {
		return fmt.Errorf("encode business model ideas: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO ideas (id, user_id, title, problem, solution, audience, business_model,
		                    overall_score, market_score, feasibility_score,
		                    swot, mvp_suggestions, business_model_ideas, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		it.ID, it.UserID, it.Title, it.Problem, it.Solution, it.Audience, it.BusinessModel,
		it.Analysis.Score.Overall, it.Analysis.Score.MarketPotential, it.Analysis.Score.TechnicalFeasibility,
		swot, mvp, bm, it.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}
	return nil
}

func (r *IdeaRepository) GetIdea(ctx context.Context, id uuid.UUID) (*idea.Idea, error) {
	return r.scanIdea(r.pool.QueryRow(ctx, selectIdea+` WHERE id = $1`, id))
}

func (r *IdeaRepository) ListIdeasByUser(ctx context.Context, userID uuid.UUID) ([]*idea.Idea, error) {
	rows, err := r.pool.Query(ctx, selectIdea+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []*idea.Idea
	for rows.Next() {
		it, err := r.scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	return ideas, nil
}

func (r *IdeaRepository) DeleteIdea(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ideas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete idea: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return idea.ErrNotFound
	}
	return nil
}

const selectIdea = `SELECT id, user_id, title, problem, solution, audience, business_model,
       overall_score, market_score, feasibility_score,
       swot, mvp_suggestions, business_model_ideas, created_at
FROM ideas`

func (r *IdeaRepository) scanIdea(row pgx.Row) (*idea.Idea, error) {
	var (
		it   idea.Idea
		swot []byte
		mvp  []byte
		bm   []byte
	)
	err := row.Scan(&it.ID, &it.UserID, &it.Title, &it.Problem, &it.Solution, &it.Audience, &it.BusinessModel,
		&it.Analysis.Score.Overall, &it.Analysis.Score.MarketPotential, &it.Analysis.Score.TechnicalFeasibility,
		&swot, &mvp, &bm, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, idea.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan idea: %w", err)
	}
	if err := json.Unmarshal(swot, &it.Analysis.SWOT); err != nil {
		return nil, fmt.Errorf("decode swot: %w", err)
	}
	if err := json.Unmarshal(mvp, &it.Analysis.MVPSuggestions); err != nil {
		return nil, fmt.Errorf("decode mvp suggestions: %w", err)
	}
	if err := json.Unmarshal(bm, &it.Analysis.BusinessModelIdeas); err != nil {
		return nil, fmt.Errorf("decode business model ideas: %w", err)
	}
	return &it, nil
}

var _ idea.Storage = (*IdeaRepository)(nil)
