package httpclient

import "context"

// Client abstracts the HTTP transport used by remote API clients.
type Client interface {
	Execute(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error)
}

// Response is the minimal response surface consumers need.
type Response interface {
	Body() []byte
	StatusCode() int
}
