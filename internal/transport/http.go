package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MCPHandler dispatches one named method with raw params.
type MCPHandler interface {
	Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error)
}

// CodedError is implemented by handler errors that carry a
// machine-readable code. The error itself is serialized as the JSON-RPC
// error data.
type CodedError interface {
	error
	ErrorCode() string
}

// NewServer builds the JSON-RPC over HTTP router. A nil authMiddleware
// disables authentication entirely.
func NewServer(handler MCPHandler, authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	if authMiddleware != nil {
		r.Use(authMiddleware)
	}
	r.Use(SessionMiddleware)

	r.Post("/mcp", rpcEndpoint(handler))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func rpcEndpoint(handler MCPHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := ParseRequest(r.Body)
		if err != nil {
			WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
			return
		}

		tenantID, ok := TenantFromContext(r.Context())
		if !ok || tenantID == "" {
			http.Error(w, "missing tenant", http.StatusUnauthorized)
			return
		}
		sessionID, _ := SessionIDFromContext(r.Context())

		result, err := handler.Handle(r.Context(), tenantID, sessionID, req.Method, req.Params)
		switch {
		case err == nil:
			WriteResult(w, req.ID, result)
		case errors.Is(err, ErrUnauthorized):
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		default:
			writeHandlerError(w, req.ID, err)
		}
	}
}

func writeHandlerError(w http.ResponseWriter, id any, err error) {
	var coded CodedError
	if !errors.As(err, &coded) {
		WriteError(w, id, ErrInternal, err.Error(), nil)
		return
	}
	WriteError(w, id, jsonrpcCode(coded.ErrorCode()), err.Error(), coded)
}

func jsonrpcCode(code string) int {
	switch code {
	case "METHOD_NOT_FOUND":
		return ErrMethodNotFound
	case "INVALID_ARGUMENT":
		return ErrInvalidParams
	default:
		return ErrInternal
	}
}
