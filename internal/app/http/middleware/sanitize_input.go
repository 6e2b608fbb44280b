package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// SanitizeAndCleanInputMiddleware strips markup from every string in a JSON
// body and trims surrounding whitespace. Keys listed in verbatim (at any depth)
// are passed through unchanged. Empty bodies pass through for the handler to
// reject.
func SanitizeAndCleanInputMiddleware(verbatim ...string) gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()
	keep := make(map[string]bool, len(verbatim))
	for _, k := range verbatim {
		keep[k] = true
	}

	var clean func(v any) any
	clean = func(v any) any {
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(policy.Sanitize(t))
		case map[string]any:
			for k, inner := range t {
				if !keep[k] {
					t[k] = clean(inner)
				}
			}
			return t
		case []any:
			for i, inner := range t {
				t[i] = clean(inner)
			}
			return t
		default:
			return v
		}
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body map[string]any
		dec := json.NewDecoder(bytes.NewReader(buf))
		// numbers stay json.Number so large ids survive the round trip
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		newBody, err := json.Marshal(clean(body))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}
