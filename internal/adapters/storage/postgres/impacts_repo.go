package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"vendor-notices/internal/domain/impacts"
	"vendor-notices/internal/domain/targets"
)

type ImpactsRepo struct {
	db *sql.DB
}

func NewImpactsRepo(db *sql.DB) *ImpactsRepo {
	return &ImpactsRepo{db: db}
}

const impactColumns = `id, event_kind, event_id, target_kind, target_id, severity, created_at, updated_at`

func (r *ImpactsRepo) Create(ctx context.Context, i impacts.Impact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO impacts (`+impactColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		i.ID,
		string(i.Event.Kind),
		i.Event.ID,
		string(i.Target.Kind),
		i.Target.ID,
		string(i.Severity),
		i.CreatedAt,
		i.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return impacts.ErrDuplicate
	}
	return err
}

func (r *ImpactsRepo) GetByID(ctx context.Context, id string) (impacts.Impact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return impacts.Impact{}, impacts.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+impactColumns+` FROM impacts WHERE id = $1`, id)
	i, err := scanImpact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return impacts.Impact{}, impacts.ErrNotFound
		}
		return impacts.Impact{}, err
	}
	return i, nil
}

func (r *ImpactsRepo) Update(ctx context.Context, i impacts.Impact) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE impacts SET severity = $2, updated_at = $3 WHERE id = $1
	`, i.ID, string(i.Severity), i.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return impacts.ErrNotFound
	}
	return nil
}

func (r *ImpactsRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return impacts.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM impacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return impacts.ErrNotFound
	}
	return nil
}

func (r *ImpactsRepo) ListByEvents(ctx context.Context, refs []targets.Ref) (map[targets.Ref][]impacts.Impact, error) {
	out := make(map[targets.Ref][]impacts.Impact)
	if len(refs) == 0 {
		return out, nil
	}

	tuples := make([]string, 0, len(refs))
	args := make([]any, 0, len(refs)*2)
	argN := 1
	for _, ref := range refs {
		tuples = append(tuples, fmt.Sprintf("($%d,$%d)", argN, argN+1))
		args = append(args, string(ref.Kind), ref.ID)
		argN += 2
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+impactColumns+` FROM impacts
		WHERE (event_kind, event_id) IN (`+strings.Join(tuples, ",")+`)
		ORDER BY created_at ASC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		i, err := scanImpact(rows)
		if err != nil {
			return nil, err
		}
		out[i.Event] = append(out[i.Event], i)
	}
	return out, rows.Err()
}

func (r *ImpactsRepo) ListByTarget(ctx context.Context, target targets.Ref) ([]impacts.Impact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+impactColumns+` FROM impacts
		WHERE target_kind = $1 AND target_id = $2
		ORDER BY created_at ASC, id ASC
	`, string(target.Kind), target.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]impacts.Impact, 0)
	for rows.Next() {
		i, err := scanImpact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func scanImpact(row rowScanner) (impacts.Impact, error) {
	var (
		i                impacts.Impact
		evKind, tgtKind  string
		evID, tgtID, sev string
	)
	if err := row.Scan(&i.ID, &evKind, &evID, &tgtKind, &tgtID, &sev, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return impacts.Impact{}, err
	}
	i.Event = targets.NewRef(targets.Kind(evKind), evID)
	i.Target = targets.NewRef(targets.Kind(tgtKind), tgtID)
	i.Severity = impacts.Severity(sev)
	return i, nil
}
