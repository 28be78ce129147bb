package pagecache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// Key identifies a request: method, path, query and the viewer, since
// pages render differently for every signed in user.
func Key(r *http.Request, viewer string) string {
	h := sha256.New()
	for _, part := range []string{r.Method, r.URL.Path, r.URL.RawQuery, viewer} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
