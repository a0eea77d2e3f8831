package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Meaning of the status codes the Riot API documents
var messages = map[int]string{
	http.StatusOK:                   "OK",
	http.StatusBadRequest:           "Bad request",
	http.StatusUnauthorized:         "Unauthorized, the api key is missing",
	http.StatusForbidden:            "Forbidden, the api key is invalid or expired",
	http.StatusNotFound:             "Data not found",
	http.StatusMethodNotAllowed:     "Method not allowed",
	http.StatusUnsupportedMediaType: "Unsupported media type",
	http.StatusTooManyRequests:      "Rate limit exceeded",
	http.StatusInternalServerError:  "Internal server error",
	http.StatusBadGateway:           "Bad gateway",
	http.StatusServiceUnavailable:   "Service unavailable",
	http.StatusGatewayTimeout:       "Gateway timeout",
}

// Back-off applied after a rate limit answer without a Retry-After header
const DEFAULT_RETRY_AFTER = 10 * time.Second

var (
	ErrNotFound        = errors.New("data not found")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrRequestRejected = errors.New("request rejected by the rate limiter")
)

// Any other answer from the server that is not a success
type StatusError struct {
	Url        string
	StatusCode int
}

func (e *StatusError) Error() string {
	message, ok := messages[e.StatusCode]
	if !ok {
		message = "Status code not understood"
	}
	return fmt.Sprintf("request to %s answered %d (%s)", e.Url, e.StatusCode, message)
}

type Proxy struct {
	header      map[string]string
	client      *http.Client
	rateLimiter *RateLimiter
}

func NewProxy(header map[string]string, restrictions []Restriction, timeout time.Duration) *Proxy {
	return &Proxy{header, &http.Client{Timeout: timeout}, NewRateLimiter(restrictions)}
}

// Make a request to the provided url, indicating if it is vital.
// The request will be performed depending on the status of the rate limiter
func (proxy *Proxy) Request(ctx context.Context, url string, vital bool) ([]byte, error) {

	// ask for permission to execute the request
	// and wait if necessary
	if !proxy.rateLimiter.Allowed(ctx, vital) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrRequestRejected
	}

	// Create the request and add the header
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request for url %s: %w", url, err)
	}
	for key, value := range proxy.header {
		request.Header.Set(key, value)
	}

	// Perform the request
	res, err := proxy.client.Do(request)
	if err != nil {
		log.Error().Err(err).Msg("Could not perform request")
		return nil, err
	}
	defer res.Body.Close()

	// Check if the status of the request is understood
	message, ok := messages[res.StatusCode]
	if !ok {
		log.Error().Msg(fmt.Sprintf("Status code of request (%d) is not understood", res.StatusCode))
		return nil, &StatusError{url, res.StatusCode}
	}
	log.Debug().Msg(fmt.Sprintf("%d %s", res.StatusCode, message))

	switch res.StatusCode {
	case http.StatusOK:
		// Read the response
		stream, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("could not extract the response for url %s: %w", url, err)
		}
		return stream, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		proxy.rateLimiter.ReceivedRateLimit(retryAfter(res.Header.Get("Retry-After")))
		return nil, ErrRateLimited
	default:
		return nil, &StatusError{url, res.StatusCode}
	}
}

func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return DEFAULT_RETRY_AFTER
	}
	return time.Duration(seconds) * time.Second
}
