package upstream

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/spf13/cast"
)

// Error flags of the response envelope
const (
	FlagOK   = "0"
	FlagFail = "1"
)

// Envelope is the uniform {error, message?, data?} response shape. It is a map
// so that extra keys sent by the webhook API are relayed untouched.
type Envelope map[string]any

// NewEnvelope builds an envelope with the given flag and optional message
func NewEnvelope(flag, message string) Envelope {
	env := Envelope{"error": flag}
	if message != "" {
		env["message"] = message
	}
	return env
}

// ErrorFlag returns "0" or "1"
func (e Envelope) ErrorFlag() string {
	flag, _ := e["error"].(string)
	if flag == FlagOK {
		return FlagOK
	}
	return FlagFail
}

// IsSuccess reports whether the envelope signals success
func (e Envelope) IsSuccess() bool {
	return e.ErrorFlag() == FlagOK
}

// Message returns the message field, if any
func (e Envelope) Message() string {
	return cast.ToString(e["message"])
}

// Data returns the data field, if any
func (e Envelope) Data() any {
	return e["data"]
}

// Result is a completed upstream call
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status
func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Envelope normalizes the response body
func (r *Result) Envelope() Envelope {
	return Normalize(r.StatusCode, r.ContentType, r.Body)
}

// Decode parses the JSON body into v
func (r *Result) Decode(v any) error {
	dec := json.NewDecoder(bytes.NewReader(r.Body))
	dec.UseNumber()
	return dec.Decode(v)
}

func statusFlag(status int) string {
	if status >= 200 && status < 300 {
		return FlagOK
	}
	return FlagFail
}

// IsBinary reports whether a content type carries a binary payload, such as
// the QR payment image.
func IsBinary(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/octet-stream"
}

// Normalize turns any upstream response into an Envelope:
//   - binary bodies become {data:{isImage, contentType, imageBase64}}
//   - JSON objects carrying "error" are relayed with the flag coerced to "0"/"1"
//   - other JSON is wrapped as data
//   - anything else becomes a message, falling back to the status text
func Normalize(status int, contentType string, body []byte) Envelope {
	flag := statusFlag(status)

	if IsBinary(contentType) {
		env := NewEnvelope(flag, "")
		env["data"] = map[string]any{
			"isImage":     true,
			"contentType": contentType,
			"imageBase64": base64.StdEncoding.EncodeToString(body),
		}
		return env
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		var parsed any
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&parsed); err == nil && !dec.More() {
			if obj, ok := parsed.(map[string]any); ok {
				if raw, has := obj["error"]; has {
					env := Envelope(obj)
					coerced, msg := coerceFlag(raw, flag)
					env["error"] = coerced
					if msg != "" && env.Message() == "" {
						env["message"] = msg
					}
					return env
				}
			}
			env := NewEnvelope(flag, "")
			env["data"] = parsed
			return env
		}
	}

	text := strings.TrimSpace(string(trimmed))
	if text == "" {
		text = http.StatusText(status)
	}
	return NewEnvelope(flag, text)
}

// coerceFlag maps the many shapes of upstream "error" values onto "0"/"1".
// A descriptive error string is returned as a message.
func coerceFlag(raw any, fallback string) (string, string) {
	switch v := raw.(type) {
	case nil:
		return fallback, ""
	case bool:
		if v {
			return FlagFail, ""
		}
		return FlagOK, ""
	case json.Number:
		if n, err := v.Float64(); err == nil && n == 0 {
			return FlagOK, ""
		}
		return FlagFail, ""
	case string:
		s := strings.TrimSpace(v)
		switch strings.ToLower(s) {
		case "":
			return fallback, ""
		case "0", "false":
			return FlagOK, ""
		case "1", "true":
			return FlagFail, ""
		default:
			return FlagFail, s
		}
	default:
		return FlagFail, ""
	}
}
