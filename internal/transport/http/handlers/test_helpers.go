package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/go-api-starter/internal/pkg/reqctx"
)

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadJSON decodes JSON from r into out. Success bodies arrive in a
// {"data": ...} envelope, so the wrapper is tried first; bare JSON is
// the fallback.
func mustReadJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	wrapped := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 {
		if err := json.Unmarshal(wrapped.Data, out); err != nil {
			t.Fatalf("decode wrapped.data failed; body=%s err=%v", string(raw), err)
		}
		return
	}

	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode json failed; body=%s err=%v", string(raw), err)
	}
}

// readCookie finds cookie by name from response headers.
func readCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// withUserCtx injects user_id + role into the request context.
func withUserCtx(req *http.Request, userID, role string) *http.Request {
	ctx := reqctx.WithUser(req.Context(), userID, role)
	return req.WithContext(ctx)
}

// withURLParam injects a chi URL param (e.g. /users/{id}) into the request context.
func withURLParam(req *http.Request, key, val string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, val)
	return req
}

// mustMultipartFile builds a multipart body with a single "file" part.
func mustMultipartFile(t *testing.T, fieldName, fileName string, content []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func mustExtractUserIDFromRegisterBody(t *testing.T, body *bytes.Buffer) string {
	t.Helper()

	var raw any
	if err := json.Unmarshal(body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to unmarshal register response: %v; body=%s", err, body.String())
	}

	asMap := func(v any) (map[string]any, bool) {
		m, ok := v.(map[string]any)
		return m, ok
	}

	if root, ok := asMap(raw); ok {
		if u, ok := asMap(root["user"]); ok {
			if id, _ := u["id"].(string); id != "" {
				return id
			}
		}
		if d, ok := asMap(root["data"]); ok {
			if u, ok := asMap(d["user"]); ok {
				if id, _ := u["id"].(string); id != "" {
					return id
				}
			}
		}
	}

	t.Fatalf("expected user.id in register response; body=%s", body.String())
	return ""
}
