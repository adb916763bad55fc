package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vendor-notices/internal/domain/events"
	"vendor-notices/internal/domain/events/details"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

const eventColumns = `
	id, kind, name, provider_id, status,
	start_at, end_at, original_timezone,
	summary, comments, internal_ticket, acknowledged,
	replaces_id, reported_at, estimated_time_to_repair,
	created_at, last_modified`

// rowQuerier cubre *sql.DB y *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *EventsRepo) Create(ctx context.Context, e events.Event) (events.Event, error) {
	return insertEvent(ctx, r.db, e)
}

// CreateReplacement: bloquea la fila reemplazada, inserta y la pasa a
// RE-SCHEDULED en la misma transacción.
func (r *EventsRepo) CreateReplacement(ctx context.Context, e events.Event, replacedID int64, at time.Time) (events.Event, error) {
	var created events.Event
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var lockedID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, replacedID).Scan(&lockedID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return events.ErrNotFound
			}
			return err
		}

		var replaced bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM events WHERE replaces_id = $1)`, replacedID,
		).Scan(&replaced); err != nil {
			return err
		}
		if replaced {
			return events.ErrAlreadyReplaced
		}

		created, err = insertEvent(ctx, tx, e)
		if err != nil {
			if isUniqueViolation(err) {
				return events.ErrAlreadyReplaced
			}
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE events SET status = $2, last_modified = $3 WHERE id = $1
		`, replacedID, string(events.StatusRescheduled), at)
		return err
	})
	if err != nil {
		return events.Event{}, err
	}
	return created, nil
}

func insertEvent(ctx context.Context, q rowQuerier, e events.Event) (events.Event, error) {
	var replaces *int64
	if rid, ok := e.Replaces(); ok {
		replaces = &rid
	}
	var reportedAt, etr *time.Time
	if e.Outage != nil {
		rep := e.Outage.ReportedAt
		reportedAt = &rep
		etr = e.Outage.EstimatedTimeToRepair
	}

	err := q.QueryRowContext(ctx, `
		INSERT INTO events (
			kind, name, provider_id, status,
			start_at, end_at, original_timezone,
			summary, comments, internal_ticket, acknowledged,
			replaces_id, reported_at, estimated_time_to_repair,
			created_at, last_modified
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id
	`,
		string(e.Kind),
		e.Name,
		e.ProviderID,
		string(e.Status),
		e.Start,
		e.End,
		e.OriginalTimezone,
		e.Summary,
		e.Comments,
		e.InternalTicket,
		e.Acknowledged,
		replaces,
		reportedAt,
		etr,
		e.Created,
		e.LastModified,
	).Scan(&e.ID)
	if err != nil {
		return events.Event{}, err
	}
	return e, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id int64) (events.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, err
	}
	return e, nil
}

// SetStatus toma el mismo lock de fila que CreateReplacement, así el chequeo
// de reemplazo y la escritura no se intercalan con un reschedule.
func (r *EventsRepo) SetStatus(ctx context.Context, id int64, status events.Status, at time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var lockedID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return events.ErrNotFound
			}
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE events SET status = $2, last_modified = $3
			WHERE id = $1
			  AND NOT EXISTS (SELECT 1 FROM events r WHERE r.replaces_id = $1)
		`, id, string(status), at)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return events.ErrStatusLocked
		}
		return nil
	})
}

func (r *EventsRepo) SetAcknowledged(ctx context.Context, id int64, ack bool, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events SET acknowledged = $2, last_modified = $3 WHERE id = $1
	`, id, ack, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) Find(ctx context.Context, f events.Filter) ([]events.Event, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + eventColumns + ` FROM events WHERE TRUE`)

	args := []any{}
	argN := 1

	if f.Since != nil {
		sb.WriteString(fmt.Sprintf(" AND start_at >= $%d", argN))
		args = append(args, *f.Since)
		argN++
	}
	if f.ProviderID != nil {
		sb.WriteString(fmt.Sprintf(" AND provider_id = $%d", argN))
		args = append(args, *f.ProviderID)
		argN++
	}
	if len(f.Statuses) > 0 {
		placeholders := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(s))
			argN++
		}
		sb.WriteString(" AND status IN (" + strings.Join(placeholders, ",") + ")")
	}
	if len(f.Kinds) > 0 {
		placeholders := make([]string, 0, len(f.Kinds))
		for _, k := range f.Kinds {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(k))
			argN++
		}
		sb.WriteString(" AND kind IN (" + strings.Join(placeholders, ",") + ")")
	}

	sb.WriteString(" ORDER BY start_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventsRepo) Touch(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events SET last_modified = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (events.Event, error) {
	var (
		e                  events.Event
		kind, status       string
		end, reported, etr sql.NullTime
		replaces           sql.NullInt64
	)
	if err := row.Scan(
		&e.ID,
		&kind,
		&e.Name,
		&e.ProviderID,
		&status,
		&e.Start,
		&end,
		&e.OriginalTimezone,
		&e.Summary,
		&e.Comments,
		&e.InternalTicket,
		&e.Acknowledged,
		&replaces,
		&reported,
		&etr,
		&e.Created,
		&e.LastModified,
	); err != nil {
		return events.Event{}, err
	}

	e.Kind = events.Kind(kind)
	e.Status = events.Status(status)
	e.Start = e.Start.UTC()
	if end.Valid {
		t := end.Time.UTC()
		e.End = &t
	}

	switch e.Kind {
	case events.KindMaintenance:
		m := &details.Maintenance{}
		if replaces.Valid {
			rid := replaces.Int64
			m.Replaces = &rid
		}
		e.Maintenance = m
	case events.KindOutage:
		o := &details.Outage{}
		if reported.Valid {
			o.ReportedAt = reported.Time.UTC()
		}
		if etr.Valid {
			t := etr.Time.UTC()
			o.EstimatedTimeToRepair = &t
		}
		e.Outage = o
	}
	return e, nil
}
