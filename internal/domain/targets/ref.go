package targets

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRef      = errors.New("invalid reference")
	ErrUnsupportedKind = errors.New("unsupported kind")
	ErrNotFound        = errors.New("not found")
)

// Kind es el tag "app.model" de un tipo de entidad (ej: "dcim.device").
type Kind string

const (
	KindMaintenance Kind = "notices.maintenance"
	KindOutage      Kind = "notices.outage"

	KindCircuit        Kind = "circuits.circuit"
	KindDevice         Kind = "dcim.device"
	KindSite           Kind = "dcim.site"
	KindPowerFeed      Kind = "dcim.powerfeed"
	KindVirtualMachine Kind = "virtualization.virtualmachine"
)

// InventoryKinds son los tipos de inventario conocidos en compilación.
var InventoryKinds = []Kind{KindCircuit, KindDevice, KindSite, KindPowerFeed, KindVirtualMachine}

// ParseKind normaliza el tag (case-insensitive, sin espacios).
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

func (k Kind) IsEvent() bool {
	return k == KindMaintenance || k == KindOutage
}

// Ref apunta a "algún objeto de algún tipo conocido". No es dueño del objeto.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func NewRef(kind Kind, id string) Ref {
	return Ref{Kind: ParseKind(string(kind)), ID: strings.TrimSpace(id)}
}

func (r Ref) Validate() error {
	if r.Kind == "" || strings.TrimSpace(r.ID) == "" {
		return ErrInvalidRef
	}
	return nil
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// Entity es la vista mínima de un objeto resuelto, suficiente para render genérico.
type Entity struct {
	Ref     Ref    `json:"ref"`
	Display string `json:"display"`
	URL     string `json:"url,omitempty"`
}

// Resolution es el resultado de resolver una Ref. Found=false indica que el
// objeto ya no existe (drift normal, no es error).
type Resolution struct {
	Entity Entity `json:"entity"`
	Found  bool   `json:"found"`
}

// Display devuelve el texto a mostrar, con fallback para referencias colgantes.
func (r Resolution) Display() string {
	if !r.Found || strings.TrimSpace(r.Entity.Display) == "" {
		return "unknown"
	}
	return r.Entity.Display
}
