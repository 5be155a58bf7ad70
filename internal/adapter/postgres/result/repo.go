// Package result stores completed quizzes in PostgreSQL. A record is one
// quiz_results row plus its ordered quiz_answers rows, written in a single
// transaction.
package result

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/myvocab-backend/internal/adapter/postgres"
	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

const (
	tableResults = "quiz_results"
	tableAnswers = "quiz_answers"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides quiz history persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	tx   *postgres.TxManager
}

// New creates a new result repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, tx: postgres.NewTxManager(pool)}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Save inserts a completed quiz with its answer history.
// Returns domain.ErrAlreadyExists when the record ID is taken.
func (r *Repo) Save(ctx context.Context, rec domain.QuizRecord) error {
	if rec.ID == uuid.Nil {
		return domain.NewValidationError("id", "required")
	}
	if err := rec.Result.Validate(); err != nil {
		return err
	}
	completedAt := rec.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.pool)

		query, args, err := psql.Insert(tableResults).
			Columns("id", "session_id", "topic", "total", "correct", "incorrect", "completed_at").
			Values(rec.ID, rec.SessionID, rec.Topic.String(), rec.Result.Total, rec.Result.Correct, rec.Result.Incorrect, completedAt.UTC()).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert quiz_result: %w", err)
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			return postgres.MapError(err, "quiz_result", rec.ID)
		}

		if len(rec.Result.History) == 0 {
			return nil
		}

		ins := psql.Insert(tableAnswers).Columns("result_id", "position", "word", "is_correct")
		for i, a := range rec.Result.History {
			ins = ins.Values(rec.ID, i, a.Word, a.IsCorrect)
		}
		query, args, err = ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert quiz_answers: %w", err)
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			return postgres.MapError(err, "quiz_result", rec.ID)
		}
		return nil
	})
}

// DeleteBefore removes quizzes completed before threshold together with
// their answers and returns the number of quizzes removed.
func (r *Repo) DeleteBefore(ctx context.Context, threshold time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := psql.Delete(tableResults).
		Where(sq.Lt{"completed_at": threshold.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete quiz_results: %w", err)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete quiz_results: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListBySession returns the session's quizzes, newest first, each with its
// full answer history. limit <= 0 means no limit.
// Returns an empty slice (not nil) when the session has no records.
func (r *Repo) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.QuizRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sel := psql.Select("id", "session_id", "topic", "total", "correct", "incorrect", "completed_at").
		From(tableResults).
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("completed_at DESC", "id")
	if limit > 0 {
		sel = sel.Limit(uint64(limit))
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list quiz_results: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quiz_results: %w", err)
	}
	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("list quiz_results: %w", err)
	}
	if len(records) == 0 {
		return []domain.QuizRecord{}, nil
	}

	if err := r.attachHistory(ctx, q, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Summary aggregates every stored quiz per topic, ordered by topic.
func (r *Repo) Summary(ctx context.Context) ([]domain.TopicSummary, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	const pct = "(CASE WHEN total > 0 THEN correct * 100.0 / total ELSE 0 END)"

	query, args, err := psql.Select(
		"topic",
		"COUNT(*)",
		"AVG"+pct+"::float8",
		"MAX(ROUND"+pct+")::int",
	).
		From(tableResults).
		GroupBy("topic").
		OrderBy("topic").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build quiz summary: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quiz summary: %w", err)
	}
	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TopicSummary, error) {
		var (
			s     domain.TopicSummary
			topic string
		)
		err := row.Scan(&topic, &s.Attempts, &s.AvgPercent, &s.BestPercent)
		s.Topic = domain.Topic(topic)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("quiz summary: %w", err)
	}
	if summaries == nil {
		summaries = []domain.TopicSummary{}
	}
	return summaries, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) attachHistory(ctx context.Context, q postgres.Querier, records []domain.QuizRecord) error {
	ids := make([]uuid.UUID, len(records))
	byID := make(map[uuid.UUID]int, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		byID[rec.ID] = i
	}

	query, args, err := psql.Select("result_id", "word", "is_correct").
		From(tableAnswers).
		Where(sq.Eq{"result_id": ids}).
		OrderBy("result_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build list quiz_answers: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("list quiz_answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resultID uuid.UUID
			a        domain.AnswerRecord
		)
		if err := rows.Scan(&resultID, &a.Word, &a.IsCorrect); err != nil {
			return fmt.Errorf("scan quiz_answer: %w", err)
		}
		i := byID[resultID]
		records[i].Result.History = append(records[i].Result.History, a)
	}
	return rows.Err()
}

func scanRecord(row pgx.CollectableRow) (domain.QuizRecord, error) {
	var (
		rec   domain.QuizRecord
		topic string
	)
	err := row.Scan(&rec.ID, &rec.SessionID, &topic,
		&rec.Result.Total, &rec.Result.Correct, &rec.Result.Incorrect, &rec.CompletedAt)
	rec.Topic = domain.Topic(topic)
	rec.Result.History = []domain.AnswerRecord{}
	return rec, err
}
