package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendora/loan-origination/internal/domain/entity"
	"github.com/lendora/loan-origination/internal/domain/repository"
	"github.com/lendora/loan-origination/pkg/apperr"
)

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, type, amount, status, applicant_id, merchant_id, banker_id, notes, created_at, updated_at`

func scanLoan(row pgx.Row) (*entity.Loan, error) {
	l := &entity.Loan{}
	if err := row.Scan(&l.ID, &l.Type, &l.Amount, &l.Status, &l.ApplicantID,
		&l.MerchantID, &l.BankerID, &l.Notes, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("loan")
		}
		return nil, err
	}
	return l, nil
}

func (r *LoanRepository) Create(ctx context.Context, l *entity.Loan) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO loans (type, amount, status, applicant_id, merchant_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, l.Type, l.Amount, l.Status, l.ApplicantID, l.MerchantID, l.Notes)

	return row.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*entity.Loan, error) {
	return scanLoan(r.pool.QueryRow(ctx, `
		SELECT `+loanColumns+`
		FROM loans
		WHERE id = $1
	`, id))
}

func (r *LoanRepository) List(ctx context.Context, f repository.LoanListFilter) ([]*entity.Loan, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ApplicantID != "" {
		where = append(where, "applicant_id = "+arg(f.ApplicantID))
	}
	if f.ParticipantID != "" {
		p := arg(f.ParticipantID)
		where = append(where, "(applicant_id = "+p+" OR merchant_id = "+p+")")
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.Type != "" {
		where = append(where, "type = "+arg(f.Type))
	}
	if f.MinAmount != nil {
		where = append(where, "amount >= "+arg(*f.MinAmount))
	}

	q := `SELECT ` + loanColumns + ` FROM loans`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	q += " ORDER BY created_at DESC LIMIT " + arg(limit)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LoanRepository) Decide(ctx context.Context, id string, decision entity.LoanStatus, bankerID, notes string) (*entity.Loan, error) {
	// Status guard in the WHERE clause closes the concurrent double-decision
	// race: only one update can move the row out of PENDING.
	return scanLoan(r.pool.QueryRow(ctx, `
		UPDATE loans
		SET status = $2, banker_id = $3, notes = $4, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING `+loanColumns+`
	`, id, decision, bankerID, notes))
}

func (r *LoanRepository) MerchantStats(ctx context.Context, merchantID string, f repository.AnalyticsFilter) (*repository.MerchantStats, error) {
	var (
		where = []string{"merchant_id = $1"}
		args  = []any{merchantID}
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.FromDate != "" {
		where = append(where, "created_at >= "+arg(f.FromDate)+"::date")
	}
	if f.ToDate != "" {
		where = append(where, "created_at < "+arg(f.ToDate)+"::date + interval '1 day'")
	}

	q := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'APPROVED'),
		       COALESCE(SUM(amount) FILTER (WHERE status = 'APPROVED'), 0),
		       COALESCE(AVG(FLOOR(EXTRACT(EPOCH FROM (updated_at - created_at)) / 86400))
		                FILTER (WHERE status = 'APPROVED'), 0)
		FROM loans
		WHERE ` + strings.Join(where, " AND ")

	s := &repository.MerchantStats{}
	if err := r.pool.QueryRow(ctx, q, args...).Scan(
		&s.TotalLoans, &s.ApprovedLoans, &s.ApprovedAmount, &s.AvgApprovalDays); err != nil {
		return nil, err
	}
	return s, nil
}

var _ repository.LoanRepository = (*LoanRepository)(nil)
