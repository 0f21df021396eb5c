package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/sessiongate/internal/core/domain"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

// request describes one API round trip.
type request struct {
	op     string
	method string
	path   string
	body   any
	auth   string // Authorization header value, empty for none
}

// do performs the round trip and decodes a 2xx body into out.
// It returns the HTTP status (0 without a response) and a normalized error.
func (g *Gateway) do(ctx context.Context, req request, out any) (int, error) {
	start := time.Now()
	status, err := g.roundTrip(ctx, req, out)
	g.metrics.ObserveGatewayCall(req.op, outcome(err), time.Since(start).Seconds())
	return status, err
}

func (g *Gateway) roundTrip(ctx context.Context, req request, out any) (int, error) {
	reqID := ulid.Make().String()
	ctx = logger.WithRequestID(ctx, reqID)
	log := logger.L(ctx).With("op", req.op)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return 0, normalizeTransport(req.op, fmt.Errorf("rate limit: %w", err))
		}
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return 0, normalizePayload(req.op, 0, fmt.Errorf("marshal body: %w", err))
		}
		body = bytes.NewReader(data)
	}

	cfg := g.config()
	httpReq, err := http.NewRequestWithContext(ctx, req.method, cfg.BaseURL+req.path, body)
	if err != nil {
		return 0, normalizeTransport(req.op, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", cfg.UserAgent)
	httpReq.Header.Set("X-Request-ID", reqID)
	if req.auth != "" {
		httpReq.Header.Set("Authorization", req.auth)
	}

	log.Debug("auth api request", "method", req.method, "path", req.path, "authorization", req.auth)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("auth api request canceled")
		} else {
			log.Warn("auth api unreachable", "error", err)
		}
		return 0, normalizeTransport(req.op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, normalizeTransport(req.op, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		aerr := normalizeStatus(req.op, resp.StatusCode, data)
		log.Debug("auth api rejected request", "status", resp.StatusCode, "kind", aerr.Kind)
		return resp.StatusCode, aerr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			log.Warn("auth api returned unreadable body", "status", resp.StatusCode, "error", err)
			return resp.StatusCode, normalizePayload(req.op, resp.StatusCode, err)
		}
	}
	return resp.StatusCode, nil
}

// isAuthFailure reports whether err means the server rejected the token.
func isAuthFailure(err error) bool {
	return domain.IsKind(err, domain.KindAuth)
}
