package leads

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// documentsField lists uploaded file names in a multipart payload. The
// files themselves are not kept.
const documentsField = "documents"

// readPayload returns the submitted fields as trimmed strings with empty
// values dropped. JSON and, when allowMultipart is set, multipart or
// urlencoded bodies are accepted. Bodies larger than maxBytes are rejected
// whatever their encoding.
func readPayload(c *gin.Context, allowMultipart bool, maxBytes int64) (map[string]interface{}, error) {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	switch {
	case allowMultipart && mediaType == "multipart/form-data":
		if err := c.Request.ParseMultipartForm(maxBytes); err != nil {
			return nil, fmt.Errorf("invalid multipart body: %w", err)
		}
		payload := formValues(c.Request.MultipartForm.Value)
		var docs []string
		for field, files := range c.Request.MultipartForm.File {
			for _, f := range files {
				docs = append(docs, field+":"+f.Filename)
			}
		}
		if len(docs) > 0 {
			sort.Strings(docs)
			payload[documentsField] = strings.Join(docs, ", ")
		}
		return payload, nil

	case allowMultipart && mediaType == "application/x-www-form-urlencoded":
		if err := c.Request.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form body: %w", err)
		}
		return formValues(c.Request.PostForm), nil
	}

	var raw map[string]interface{}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return normalize(raw), nil
}

func formValues(values map[string][]string) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		if len(v) == 0 {
			continue
		}
		if s := strings.TrimSpace(v[0]); s != "" {
			out[k] = s
		}
	}
	return out
}

// normalize flattens JSON scalars to strings. Nested values are kept as
// compact JSON text.
func normalize(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		var s string
		switch val := v.(type) {
		case nil:
			continue
		case string:
			s = strings.TrimSpace(val)
		case json.Number:
			s = val.String()
		case bool:
			s = strconv.FormatBool(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			s = string(b)
		}
		if s != "" {
			out[k] = s
		}
	}
	return out
}

func str(payload map[string]interface{}, key string) string {
	s, _ := payload[key].(string)
	return s
}
