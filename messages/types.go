package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"little-realm/server/errs"
)

// Response status codes. Zero is success; every failure is negative.
const (
	StatusOK             = 0
	StatusFailed         = -1
	StatusAuthFailed     = -2
	StatusUnknownCommand = -3
)

// Chat colors as RGB triples.
var (
	ColorNormal = [3]int{255, 255, 255}
	ColorOOC    = [3]int{120, 200, 255}
	ColorTell   = [3]int{230, 120, 230}
	ColorCombat = [3]int{255, 90, 90}
)

// requestKeys is the exact key set of a request envelope.
var requestKeys = []string{"args", "charactername", "id", "password", "request", "username"}

// Request is the envelope every client command arrives in.
type Request struct {
	Username      string          `json:"username"`
	CharacterName string          `json:"charactername"`
	Password      string          `json:"password"`
	ID            int64           `json:"id"`
	Request       string          `json:"request"`
	Args          json.RawMessage `json:"args"`
}

// Response is the envelope every command result leaves in.
type Response struct {
	Status   int `json:"status"`
	Response any `json:"response"`
}

// MessageBody is the usual response body for failures and acknowledgements.
type MessageBody struct {
	Message string `json:"message"`
}

// OK builds a success response.
func OK(body any) Response {
	return Response{Status: StatusOK, Response: body}
}

// Fail builds a failure response with a human-readable message.
func Fail(status int, message string) Response {
	return Response{Status: status, Response: MessageBody{Message: message}}
}

// DecodeRequest parses a request envelope. The envelope must carry exactly the
// six request keys with the right JSON types.
func DecodeRequest(data []byte) (Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Request{}, errs.Wrap(errs.MalformedRequest, "request is not a JSON object", err)
	}

	var missing, extra []string
	for _, key := range requestKeys {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	for key := range fields {
		if !isRequestKey(key) {
			extra = append(extra, key)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(extra)
		return Request{}, errs.New(errs.MalformedRequest, fmt.Sprintf(
			"request must have keys %s (missing: %s, unexpected: %s)",
			strings.Join(requestKeys, ", "), strings.Join(missing, ", "), strings.Join(extra, ", ")))
	}

	var req Request
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&req); err != nil {
		return Request{}, errs.Wrap(errs.MalformedRequest, "request has a field of the wrong type", err)
	}
	return req, nil
}

func isRequestKey(key string) bool {
	for _, k := range requestKeys {
		if k == key {
			return true
		}
	}
	return false
}

// DecodeArgs unmarshals request args into v.
func (r Request) DecodeArgs(v any) error {
	if len(r.Args) == 0 || string(r.Args) == "null" {
		return errs.New(errs.MalformedRequest, fmt.Sprintf("%s requires args", r.Request))
	}
	if err := json.Unmarshal(r.Args, v); err != nil {
		return errs.Wrap(errs.MalformedRequest, fmt.Sprintf("invalid args for %s", r.Request), err)
	}
	return nil
}

// Broadcast is a chat line queued for one character.
type Broadcast struct {
	Message       string `json:"message"`
	CharacterName string `json:"charactername"`
	Color         [3]int `json:"color"`
}

// Payload is structured data queued for one character. Tag tells the client
// how to interpret Data.
type Payload struct {
	Tag           string `json:"tag"`
	Data          any    `json:"data"`
	CharacterName string `json:"charactername"`
}
