package auth

// Method indica cómo se estableció la identidad.
type Method string

const (
	MethodQueryToken  Method = "query_token"
	MethodHeaderToken Method = "header_token"
	MethodSession     Method = "session"
	MethodAnonymous   Method = "anonymous"
)

// Identity representa la información extraída del token o de la sesión.
type Identity struct {
	UserID    string
	Username  string
	Superuser bool
	Anonymous bool

	// Capabilities declaradas por el emisor del token/sesión (ej: "events:read").
	Capabilities []string

	Method Method
}

// Anonymous devuelve la identidad usada cuando no hay credenciales y el
// deployment permite lectura anónima.
func Anonymous() Identity {
	return Identity{Anonymous: true, Method: MethodAnonymous}
}

func (i Identity) IsZero() bool {
	return i.UserID == "" && !i.Anonymous
}
