package messages

import (
	"testing"

	"little-realm/server/errs"
)

func TestDecodeRequest(t *testing.T) {
	raw := `{"username":"leif","charactername":"Mike","password":"mypw","id":3,"request":"say","args":{"message":"hi"}}`

	req, err := DecodeRequest([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Username != "leif" || req.CharacterName != "Mike" || req.ID != 3 || req.Request != "say" {
		t.Fatalf("unexpected request %+v", req)
	}

	var args struct {
		Message string `json:"message"`
	}
	if err := req.DecodeArgs(&args); err != nil {
		t.Fatalf("args: %v", err)
	}
	if args.Message != "hi" {
		t.Fatalf("expected message hi, got %q", args.Message)
	}
}

func TestDecodeRequestRejectsBadEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `hello`},
		{"not an object", `[1,2]`},
		{"missing args", `{"username":"a","charactername":"b","password":"c","id":1,"request":"test"}`},
		{"extra key", `{"username":"a","charactername":"b","password":"c","id":1,"request":"test","args":null,"x":1}`},
		{"wrong type", `{"username":"a","charactername":"b","password":"c","id":"one","request":"test","args":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest([]byte(tt.raw))
			if !errs.IsKind(err, errs.MalformedRequest) {
				t.Fatalf("expected MalformedRequest, got %v", err)
			}
		})
	}
}

func TestDecodeArgsRequiresValue(t *testing.T) {
	req := Request{Request: "tell", Args: []byte("null")}
	var v map[string]string
	if err := req.DecodeArgs(&v); !errs.IsKind(err, errs.MalformedRequest) {
		t.Fatalf("expected MalformedRequest for null args, got %v", err)
	}
}
