package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vendor-notices/internal/domain/events/details"
	"vendor-notices/internal/domain/providers"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("event not found")
	ErrStatusLocked    = errors.New("status locked: event was rescheduled")
	ErrAlreadyReplaced = errors.New("event already has a replacement")
)

// maxLineage corta cadenas corruptas en storage.
const maxLineage = 256

// ProviderLookup es lo que el servicio necesita de providers.
type ProviderLookup interface {
	GetByID(ctx context.Context, id int64) (providers.Provider, error)
}

type Service struct {
	repo      Repository
	providers ProviderLookup
	now       func() time.Time
}

func NewService(repo Repository, provs ProviderLookup) *Service {
	return &Service{
		repo:      repo,
		providers: provs,
		now:       time.Now,
	}
}

// CommonInput son los atributos compartidos por todas las variantes.
type CommonInput struct {
	Name             string
	ProviderID       int64
	Status           Status
	Start            time.Time
	End              *time.Time
	OriginalTimezone string
	Summary          string
	Comments         string
	InternalTicket   string
	Acknowledged     bool
}

type CreateMaintenanceInput struct {
	CommonInput
	Replaces *int64
}

type CreateOutageInput struct {
	CommonInput
	ReportedAt            time.Time
	EstimatedTimeToRepair *time.Time
}

func (s *Service) CreateMaintenance(ctx context.Context, in CreateMaintenanceInput) (Event, error) {
	e, err := s.newEvent(ctx, KindMaintenance, in.CommonInput)
	if err != nil {
		return Event{}, err
	}
	if e.End != nil && e.End.Before(e.Start) {
		return Event{}, fmt.Errorf("%w: end before start", ErrInvalidInput)
	}
	e.Maintenance = &details.Maintenance{}

	if in.Replaces == nil {
		return s.repo.Create(ctx, e)
	}

	replacedID := *in.Replaces
	old, err := s.repo.GetByID(ctx, replacedID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Event{}, fmt.Errorf("%w: replaced maintenance not found", ErrInvalidInput)
		}
		return Event{}, err
	}
	if old.Kind != KindMaintenance {
		return Event{}, fmt.Errorf("%w: only maintenances can be replaced", ErrInvalidInput)
	}

	e.Maintenance.Replaces = &replacedID
	return s.repo.CreateReplacement(ctx, e, replacedID, e.Created)
}

func (s *Service) CreateOutage(ctx context.Context, in CreateOutageInput) (Event, error) {
	e, err := s.newEvent(ctx, KindOutage, in.CommonInput)
	if err != nil {
		return Event{}, err
	}
	if e.Status == StatusCompleted && e.End == nil {
		return Event{}, fmt.Errorf("%w: end is required when status is COMPLETED", ErrInvalidInput)
	}
	if e.End != nil && e.End.Before(e.Start) {
		return Event{}, fmt.Errorf("%w: end before start", ErrInvalidInput)
	}

	reported := in.ReportedAt
	if reported.IsZero() {
		reported = e.Created
	}
	o := &details.Outage{ReportedAt: reported.UTC()}
	if in.EstimatedTimeToRepair != nil {
		etr := in.EstimatedTimeToRepair.UTC()
		o.EstimatedTimeToRepair = &etr
	}
	e.Outage = o

	return s.repo.Create(ctx, e)
}

func (s *Service) newEvent(ctx context.Context, kind Kind, in CommonInput) (Event, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Start.IsZero() || in.ProviderID <= 0 {
		return Event{}, ErrInvalidInput
	}

	status := in.Status
	if status == "" {
		status = StatusTentative
	}
	st, ok := ParseStatus(string(status))
	if !ok {
		return Event{}, fmt.Errorf("%w: unknown status", ErrInvalidInput)
	}
	// RE-SCHEDULED solo lo pone una reprogramación.
	if st == StatusRescheduled {
		return Event{}, fmt.Errorf("%w: RE-SCHEDULED is set by rescheduling only", ErrInvalidInput)
	}

	tz := strings.TrimSpace(in.OriginalTimezone)
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return Event{}, fmt.Errorf("%w: unknown timezone", ErrInvalidInput)
		}
	}

	if s.providers != nil {
		if _, err := s.providers.GetByID(ctx, in.ProviderID); err != nil {
			if errors.Is(err, providers.ErrNotFound) {
				return Event{}, fmt.Errorf("%w: provider not found", ErrInvalidInput)
			}
			return Event{}, err
		}
	}

	now := s.now().UTC()
	e := Event{
		Kind:             kind,
		Name:             name,
		ProviderID:       in.ProviderID,
		Status:           st,
		Start:            in.Start.UTC(),
		OriginalTimezone: tz,
		Summary:          strings.TrimSpace(in.Summary),
		Comments:         strings.TrimSpace(in.Comments),
		InternalTicket:   strings.TrimSpace(in.InternalTicket),
		Acknowledged:     in.Acknowledged,
		Created:          now,
		LastModified:     now,
	}
	if in.End != nil {
		end := in.End.UTC()
		e.End = &end
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Event, error) {
	if id <= 0 {
		return Event{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus cambia el estado manualmente. Bloqueado si ya existe un
// reemplazo; RE-SCHEDULED no se puede fijar a mano.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (Event, error) {
	st, ok := ParseStatus(string(status))
	if !ok || st == StatusRescheduled {
		return Event{}, ErrInvalidInput
	}

	e, err := s.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if e.Kind == KindOutage && st == StatusCompleted && e.End == nil {
		return Event{}, fmt.Errorf("%w: end is required when status is COMPLETED", ErrInvalidInput)
	}

	// El repo revalida el reemplazo al escribir: un reschedule concurrente gana.
	if err := s.repo.SetStatus(ctx, id, st, s.now().UTC()); err != nil {
		return Event{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// Acknowledge no toca el estado: un reschedule concurrente no se pisa.
func (s *Service) Acknowledge(ctx context.Context, id int64, ack bool) (Event, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if e.Acknowledged == ack {
		return e, nil
	}
	if err := s.repo.SetAcknowledged(ctx, id, ack, s.now().UTC()); err != nil {
		return Event{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// Lineage devuelve el evento y sus predecesores (más nuevo primero),
// siguiendo Replaces. Un ciclo o un eslabón faltante cortan la cadena.
func (s *Service) Lineage(ctx context.Context, id int64) ([]Event, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := []Event{e}
	seen := map[int64]struct{}{e.ID: {}}
	for len(out) < maxLineage {
		prev, ok := out[len(out)-1].Replaces()
		if !ok {
			break
		}
		if _, dup := seen[prev]; dup {
			break
		}
		p, err := s.repo.GetByID(ctx, prev)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				break
			}
			return nil, err
		}
		seen[prev] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Find(ctx context.Context, f Filter) ([]Event, error) {
	return s.repo.Find(ctx, f)
}

// Touch marca el evento como modificado (ej: cambió un impact).
func (s *Service) Touch(ctx context.Context, id int64) error {
	return s.repo.Touch(ctx, id, s.now().UTC())
}
