package tablerouter

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/goliatone/go-router"
)

// forwardedHeaders are copied from the router context onto the request the
// table handler sees.
var forwardedHeaders = []string{"Accept", "Accept-Language", "Referer", "User-Agent"}

func newRequest(c router.Context) (*http.Request, error) {
	target := strings.TrimSpace(c.OriginalURL())
	if target == "" {
		target = c.Path()
	}
	if target == "" {
		target = "/"
	}
	method := c.Method()
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(c.Context(), method, target, nil)
	if err != nil {
		return nil, err
	}
	for _, name := range forwardedHeaders {
		if value := c.Header(name); value != "" {
			req.Header.Set(name, value)
		}
	}
	return req, nil
}

var _ http.ResponseWriter = (*bufferedResponse)(nil)

type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: http.Header{}}
}

func (res *bufferedResponse) Header() http.Header {
	return res.header
}

func (res *bufferedResponse) WriteHeader(status int) {
	if res.status == 0 {
		res.status = status
	}
}

func (res *bufferedResponse) Write(data []byte) (int, error) {
	if res.status == 0 {
		res.status = http.StatusOK
	}
	return res.body.Write(data)
}

func (res *bufferedResponse) flush(c router.Context) error {
	for name, values := range res.header {
		c.SetHeader(name, strings.Join(values, ", "))
	}
	status := res.status
	if status == 0 {
		status = http.StatusOK
	}
	c.Status(status)
	if res.body.Len() == 0 {
		return nil
	}
	return c.Send(res.body.Bytes())
}
