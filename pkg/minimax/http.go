package minimax

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "jm-minimax-nodes/1.0"

// httpClient handles HTTP communication with the MiniMax API.
type httpClient struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	groupID    string
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// newHTTPClient creates a new HTTP client.
func newHTTPClient(cfg *clientConfig) *httpClient {
	return &httpClient{
		client:     cfg.httpClient,
		baseURL:    strings.TrimRight(cfg.baseURL, "/"),
		apiKey:     cfg.apiKey,
		groupID:    cfg.groupID,
		maxRetries: cfg.maxRetries,
		retryDelay: cfg.retryDelay,
		logger:     cfg.logger,
	}
}

func truncateStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// endpoint joins the base URL, path and query, adding GroupId when set.
func (h *httpClient) endpoint(path string, query url.Values) string {
	if h.groupID != "" {
		if query == nil {
			query = url.Values{}
		}
		query.Set("GroupId", h.groupID)
	}
	u := h.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// request makes a JSON request and decodes the response into result.
//
// Transport errors are retried with a fixed delay when retries are
// configured. API business errors are returned as is.
func (h *httpClient) request(ctx context.Context, method, path string, query url.Values, body any, result any) error {
	var bodyData []byte
	if body != nil {
		var err error
		bodyData, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	target := h.endpoint(path, query)
	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			h.logger.Warn("minimax retrying request", "method", method, "path", path, "attempt", attempt, "err", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.retryDelay):
			}
		}

		lastErr = h.doRequest(ctx, method, target, bodyData, result)
		if lastErr == nil {
			return nil
		}

		var te *TransportError
		if !errors.As(lastErr, &te) || ctx.Err() != nil {
			break
		}
	}

	h.logger.Error("minimax request failed",
		"method", method,
		"path", path,
		"payload", truncateStr(string(bodyData), 200),
		"kind", KindOf(lastErr).String(),
		"err", lastErr)
	return lastErr
}

// doRequest performs a single HTTP request.
func (h *httpClient) doRequest(ctx context.Context, method, target string, bodyData []byte, result any) error {
	var bodyReader io.Reader
	if bodyData != nil {
		bodyReader = bytes.NewReader(bodyData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	h.setHeaders(req)
	if bodyData != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	h.logger.Debug("minimax request", "method", method, "url", redactURL(target), "body_len", len(bodyData))

	resp, err := h.client.Do(req)
	if err != nil {
		return &TransportError{Method: method, Endpoint: redactURL(target), Err: err}
	}
	defer resp.Body.Close()

	return h.handleResponse(method, target, resp, result)
}

// requestStream makes a streaming HTTP request to the API.
func (h *httpClient) requestStream(ctx context.Context, method, path string, body any) (*http.Response, error) {
	target := h.endpoint(path, nil)

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	h.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Endpoint: redactURL(target), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, h.parseError(method, target, body, resp.StatusCode)
	}

	return resp, nil
}

// uploadFile uploads a file using multipart form data with streaming.
// This avoids loading the entire file into memory.
func (h *httpClient) uploadFile(ctx context.Context, path string, file io.Reader, filename string, fields map[string]string, result any) error {
	target := h.endpoint(path, nil)

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()

		for key, value := range fields {
			if err := writer.WriteField(key, value); err != nil {
				errCh <- fmt.Errorf("write field %s: %w", key, err)
				pw.CloseWithError(err)
				return
			}
		}

		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			errCh <- fmt.Errorf("create form file: %w", err)
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			errCh <- fmt.Errorf("copy file: %w", err)
			pw.CloseWithError(err)
			return
		}

		if err := writer.Close(); err != nil {
			errCh <- fmt.Errorf("close writer: %w", err)
			return
		}

		errCh <- nil
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, pr)
	if err != nil {
		pr.Close()
		return fmt.Errorf("create request: %w", err)
	}

	h.setHeaders(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	h.logger.Debug("minimax upload", "url", redactURL(target), "filename", filename)

	resp, err := h.client.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		err = &TransportError{Method: http.MethodPost, Endpoint: redactURL(target), Err: err}
		h.logger.Error("minimax upload failed", "path", path, "filename", filename, "err", err)
		return err
	}
	defer resp.Body.Close()

	if writeErr := <-errCh; writeErr != nil {
		return writeErr
	}

	if err := h.handleResponse(http.MethodPost, target, resp, result); err != nil {
		h.logger.Error("minimax upload failed", "path", path, "filename", filename, "kind", KindOf(err).String(), "err", err)
		return err
	}
	return nil
}

// download GETs an absolute URL without API credentials. The caller must
// close the returned body.
func (h *httpClient) download(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		err = &TransportError{Method: http.MethodGet, Endpoint: redactURL(rawURL), Err: err}
		h.logger.Error("minimax download failed", "url", redactURL(rawURL), "err", err)
		return nil, 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := &TransportError{
			Method:     http.MethodGet,
			Endpoint:   redactURL(rawURL),
			HTTPStatus: resp.StatusCode,
			Body:       truncateStr(string(body), 200),
		}
		h.logger.Error("minimax download failed", "url", redactURL(rawURL), "status", resp.StatusCode)
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

// setHeaders sets common headers for API requests.
func (h *httpClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+h.apiKey)
	req.Header.Set("User-Agent", userAgent)
}

// handleResponse checks HTTP status and the response envelope, then
// decodes body into result.
func (h *httpClient) handleResponse(method, target string, resp *http.Response, result any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Endpoint: redactURL(target), HTTPStatus: resp.StatusCode, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return h.parseError(method, target, body, resp.StatusCode)
	}

	env, err := ParseEnvelope(body)
	if err != nil {
		return &TransportError{
			Method:     method,
			Endpoint:   redactURL(target),
			HTTPStatus: resp.StatusCode,
			Body:       truncateStr(string(body), 200),
			Err:        fmt.Errorf("decode JSON response: %w", err),
		}
	}
	if apiErr := env.Err(); apiErr != nil {
		apiErr.(*Error).HTTPStatus = resp.StatusCode
		return apiErr
	}

	h.logger.Debug("minimax response", "status", resp.StatusCode, "body_len", len(body), "trace_id", env.TraceID)

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return &TransportError{Method: method, Endpoint: redactURL(target), HTTPStatus: resp.StatusCode, Err: fmt.Errorf("unmarshal response: %w", err)}
		}
	}

	return nil
}

// parseError turns a non-2xx body into an API error when it carries an
// envelope, or a transport error otherwise.
func (h *httpClient) parseError(method, target string, body []byte, httpStatus int) error {
	if env, err := ParseEnvelope(body); err == nil && env.Present && !env.OK() {
		return &Error{
			StatusCode: env.StatusCode,
			StatusMsg:  env.StatusMsg,
			TraceID:    env.TraceID,
			HTTPStatus: httpStatus,
		}
	}

	return &TransportError{
		Method:     method,
		Endpoint:   redactURL(target),
		HTTPStatus: httpStatus,
		Body:       truncateStr(string(body), 200),
	}
}

// redactURL drops the query string, which may carry the group id.
func redactURL(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// sseReader helps read Server-Sent Events from a response.
type sseReader struct {
	reader *bufio.Reader
	resp   *http.Response
}

// newSSEReader creates a new SSE reader.
func newSSEReader(resp *http.Response) *sseReader {
	return &sseReader{
		reader: bufio.NewReader(resp.Body),
		resp:   resp,
	}
}

// readEvent reads the next SSE event. Multiple data lines of one event
// are joined with newlines.
// Returns (data, isDone, error).
func (r *sseReader) readEvent() ([]byte, bool, error) {
	var data []byte
	seen := false

	for {
		line, err := r.reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, false, err
		}
		eof := err == io.EOF

		line = bytes.TrimSpace(line)
		switch {
		case len(line) == 0:
			// Empty line marks end of event
			if seen {
				return data, false, nil
			}
		case bytes.HasPrefix(line, []byte("data:")):
			eventData := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
			if !seen && bytes.Equal(eventData, []byte("[DONE]")) {
				return nil, true, nil
			}
			if seen {
				data = append(data, '\n')
			}
			data = append(data, eventData...)
			seen = true
		}

		if eof {
			if seen {
				return data, false, nil
			}
			return nil, true, nil
		}
	}
}

// close closes the SSE reader.
func (r *sseReader) close() {
	r.resp.Body.Close()
}
