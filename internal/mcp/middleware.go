package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const sessionIDKey contextKey = iota

func getSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// sessionMiddleware tags the context with the caller's session: the
// Mcp-Session-Id header over HTTP, _meta.session_id over stdio, else the
// SDK session itself.
func sessionMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if id := requestSessionID(req); id != "" {
				ctx = context.WithValue(ctx, sessionIDKey, id)
			}
			return next(ctx, method, req)
		}
	}
}

func requestSessionID(req sdkmcp.Request) string {
	if extra := req.GetExtra(); extra != nil && extra.Header != nil {
		if id := extra.Header.Get("Mcp-Session-Id"); id != "" {
			return id
		}
	}
	if id := metaSessionID(req); id != "" {
		return id
	}
	return safeSessionID(req)
}

// metaSessionID reads _meta.session_id. Notifications may carry typed-nil
// params, on which GetMeta panics.
func metaSessionID(req sdkmcp.Request) (id string) {
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	params := req.GetParams()
	if params == nil {
		return ""
	}
	id, _ = params.GetMeta()["session_id"].(string)
	return id
}
