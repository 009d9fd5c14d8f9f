package middleware

import (
	"context"
	"net/http"

	"github.com/drstein77/storefront/internal/compress"
)

type ctxKey int

const archiveTypeKey ctxKey = iota

// ArchiveTypeMiddleware reads the archiveType query parameter (zip or tar,
// zip by default) and makes it available through ArchiveType.
func ArchiveTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind := compress.ParseKind(r.URL.Query().Get("archiveType"))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), archiveTypeKey, kind)))
	})
}

// ArchiveType returns the archive kind chosen for the request.
func ArchiveType(ctx context.Context) compress.Kind {
	if k, ok := ctx.Value(archiveTypeKey).(compress.Kind); ok {
		return k
	}
	return compress.Zip
}

// DecompressRequestMiddleware replaces a zip or tar request body, as named by
// Content-Encoding, with the CSV file it contains.
func DecompressRequestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoding := r.Header.Get("Content-Encoding")
		if encoding != string(compress.Zip) && encoding != string(compress.Tar) {
			next.ServeHTTP(w, r)
			return
		}

		cr, err := compress.NewReader(compress.Kind(encoding), r.Body)
		if err != nil {
			http.Error(w, "cannot read archive: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer cr.Close()

		r.Body = cr
		r.Header.Del("Content-Encoding")
		next.ServeHTTP(w, r)
	})
}
