package impacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vendor-notices/internal/domain/events"
	"vendor-notices/internal/domain/targets"
	"vendor-notices/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("impact not found")
	ErrDuplicate       = errors.New("impact already exists for this event and target")
	ErrEventNotFound   = errors.New("event not found")
	ErrEventClosed     = errors.New("event is completed or cancelled")
	ErrTargetNotFound  = errors.New("target not found")
	ErrUnsupportedKind = targets.ErrUnsupportedKind
)

// EventLookup es lo que impacts necesita de events.
type EventLookup interface {
	GetByID(ctx context.Context, id int64) (events.Event, error)
	Touch(ctx context.Context, id int64) error
}

type Service struct {
	repo     Repository
	events   EventLookup
	registry *targets.Registry
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, ev EventLookup, registry *targets.Registry, log logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:     repo,
		events:   ev,
		registry: registry,
		log:      log,
		now:      time.Now,
	}
}

type CreateInput struct {
	Event    targets.Ref
	Target   targets.Ref
	Severity Severity
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Impact, error) {
	sev, ok := ParseSeverity(string(in.Severity))
	if !ok {
		return Impact{}, fmt.Errorf("%w: unknown severity", ErrInvalidInput)
	}
	evRef := targets.NewRef(in.Event.Kind, in.Event.ID)
	target := targets.NewRef(in.Target.Kind, in.Target.ID)
	if err := target.Validate(); err != nil {
		return Impact{}, ErrInvalidInput
	}

	ev, err := s.openEvent(ctx, evRef)
	if err != nil {
		return Impact{}, err
	}

	res, err := s.registry.Resolve(ctx, target)
	if err != nil {
		return Impact{}, err
	}
	if !res.Found {
		return Impact{}, ErrTargetNotFound
	}

	now := s.now().UTC()
	i := Impact{
		ID:        uuid.NewString(),
		Event:     ev.Ref(),
		Target:    target,
		Severity:  sev,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, i); err != nil {
		return Impact{}, err
	}
	s.touch(ctx, ev.ID)
	return i, nil
}

func (s *Service) UpdateSeverity(ctx context.Context, id string, severity Severity) (Impact, error) {
	sev, ok := ParseSeverity(string(severity))
	if !ok {
		return Impact{}, fmt.Errorf("%w: unknown severity", ErrInvalidInput)
	}
	i, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Impact{}, err
	}
	ev, err := s.openEvent(ctx, i.Event)
	if err != nil {
		return Impact{}, err
	}

	i.Severity = sev
	i.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, i); err != nil {
		return Impact{}, err
	}
	s.touch(ctx, ev.ID)
	return i, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	i, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ev, err := s.openEvent(ctx, i.Event)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.touch(ctx, ev.ID)
	return nil
}

// ListByEvent devuelve los impacts del evento con el target resuelto.
// Targets borrados o de tipos no admitidos se muestran como ausentes.
func (s *Service) ListByEvent(ctx context.Context, event targets.Ref) ([]View, error) {
	event = targets.NewRef(event.Kind, event.ID)
	byEvent, err := s.repo.ListByEvents(ctx, []targets.Ref{event})
	if err != nil {
		return nil, err
	}
	items := byEvent[event]

	out := make([]View, 0, len(items))
	for _, i := range items {
		out = append(out, View{Impact: i, Target: s.ResolveTarget(ctx, i.Target)})
	}
	return out, nil
}

// ListByEvents es la consulta en lote que usa el feed (sin resolver targets).
func (s *Service) ListByEvents(ctx context.Context, refs []targets.Ref) (map[targets.Ref][]Impact, error) {
	if len(refs) == 0 {
		return map[targets.Ref][]Impact{}, nil
	}
	return s.repo.ListByEvents(ctx, refs)
}

// ListByTarget arma el historial de eventos de un objeto. Eventos que ya no
// existen se omiten.
func (s *Service) ListByTarget(ctx context.Context, target targets.Ref) ([]HistoryEntry, error) {
	target = targets.NewRef(target.Kind, target.ID)
	if err := target.Validate(); err != nil {
		return nil, ErrInvalidInput
	}
	if !s.registry.Supports(target.Kind) {
		return nil, ErrUnsupportedKind
	}

	items, err := s.repo.ListByTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(items))
	for _, i := range items {
		id, err := events.ParseRefID(i.Event)
		if err != nil {
			continue
		}
		ev, err := s.events.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, events.ErrNotFound) {
				logger.FromContext(ctx, s.log).Debug("impact points to missing event", map[string]any{"impact": i.ID, "event": i.Event.String()})
				continue
			}
			return nil, err
		}
		out = append(out, HistoryEntry{Impact: i, Event: ev})
	}
	return out, nil
}

// ResolveTarget nunca falla: los huecos se loguean y se devuelven como ausentes.
func (s *Service) ResolveTarget(ctx context.Context, ref targets.Ref) targets.Resolution {
	log := logger.FromContext(ctx, s.log)
	res, err := s.registry.Resolve(ctx, ref)
	switch {
	case err == nil:
		if !res.Found {
			log.Debug("impact target missing", map[string]any{"target": ref.String()})
		}
		return res
	case errors.Is(err, targets.ErrUnsupportedKind):
		log.Warn("impact target kind not allowed", map[string]any{"target": ref.String()})
	default:
		log.Error("impact target lookup failed", map[string]any{"target": ref.String(), "err": err.Error()})
	}
	return targets.Resolution{Entity: targets.Entity{Ref: ref}}
}

// openEvent carga el evento de la ref y exige que no esté cerrado.
func (s *Service) openEvent(ctx context.Context, ref targets.Ref) (events.Event, error) {
	kind, ok := events.KindFromRef(ref.Kind)
	if !ok {
		return events.Event{}, fmt.Errorf("%w: event kind must be maintenance or outage", ErrInvalidInput)
	}
	id, err := events.ParseRefID(ref)
	if err != nil {
		return events.Event{}, ErrInvalidInput
	}

	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return events.Event{}, ErrEventNotFound
		}
		return events.Event{}, err
	}
	if ev.Kind != kind {
		return events.Event{}, ErrEventNotFound
	}
	if ev.Status.Closed() {
		return events.Event{}, ErrEventClosed
	}
	return ev, nil
}

// touch no falla la operación: el impact ya quedó persistido.
func (s *Service) touch(ctx context.Context, eventID int64) {
	if err := s.events.Touch(ctx, eventID); err != nil {
		logger.FromContext(ctx, s.log).Error("touch event failed", map[string]any{"event": eventID, "err": err.Error()})
	}
}

// EventByID expone el evento dueño de los impacts (para rutas por id numérico).
func (s *Service) EventByID(ctx context.Context, id int64) (events.Event, error) {
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return events.Event{}, ErrEventNotFound
		}
		return events.Event{}, err
	}
	return ev, nil
}
