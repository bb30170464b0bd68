package pkgrouter

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/chemvis/internal/pkg/pkglog"
)

// Generator produces correlation IDs for requests that arrive without one.
type Generator interface {
	Generate() string
}

const (
	// HeaderCorrelationID is read from requests and echoed on every response.
	// chemctl sends one per command so a failure can be traced in the logs.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is accepted when a proxy sets it instead.
	HeaderRequestID = "X-Request-ID"

	maxCIDLen = 128
)

// normalizeCID trims v and returns "" unless every byte is visible ASCII.
func normalizeCID(v string) string {
	v = strings.TrimSpace(v)
	for i := 0; i < len(v); i++ {
		if v[i] < '!' || v[i] > '~' {
			return ""
		}
	}
	if len(v) > maxCIDLen {
		v = v[:maxCIDLen]
	}
	return v
}

func middlewareCorrelationID(gen Generator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := normalizeCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = normalizeCID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(pkglog.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
