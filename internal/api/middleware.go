package api

import (
	"net/http"

	"github.com/bobarin/lyricburn/internal/apierr"
	"github.com/bobarin/lyricburn/internal/db"
)

// ownerKeyAuth loads the video named by the {id} URL param and checks
// its owner_key against the X-Owner-Key header, storing the loaded
// video on the request context for the handler to reuse. Unlike the
// teacher's APIKeyAuth (one shared backend secret), authorization here
// is per-video: every video has its own owner credential minted at
// ingest time.
func ownerKeyAuth(database *db.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerKey := r.Header.Get("X-Owner-Key")
			if ownerKey == "" {
				respondAPIErr(w, apierr.New(apierr.KindUnauthorized, "X-Owner-Key header is required"))
				return
			}

			id, err := parseVideoID(r)
			if err != nil {
				respondAPIErr(w, err)
				return
			}

			video, err := database.GetVideo(r.Context(), id, ownerKey)
			if err != nil {
				respondAPIErr(w, err)
				return
			}

			ctx := withVideo(r.Context(), video)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
