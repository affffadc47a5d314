package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every failed API response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// JSON sends a JSON response with the given status code. The body is encoded
// before the header is written, so an unencodable value becomes a 500.
func JSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(ErrorBody{Error: MsgEncode, Details: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
