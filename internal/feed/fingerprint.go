package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint deriva el validador (ETag) de un resultado a partir de agregados:
// parámetros canónicos + cantidad + última modificación. No es un token de
// seguridad.
func Fingerprint(spec Spec, count int, latest *time.Time) string {
	var b strings.Builder
	b.WriteString("past_days=")
	b.WriteString(strconv.Itoa(spec.PastDays))

	b.WriteString(";provider=")
	if spec.Provider != nil {
		b.WriteString(strconv.FormatInt(spec.Provider.ID, 10))
	}

	b.WriteString(";status=")
	for i, s := range spec.Statuses {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(s))
	}

	b.WriteString(";count=")
	b.WriteString(strconv.Itoa(count))

	b.WriteString(";latest=")
	if latest == nil {
		b.WriteString("none")
	} else {
		b.WriteString(strconv.FormatInt(latest.UTC().UnixNano(), 10))
	}

	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}
