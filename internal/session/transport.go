package session

import (
	"io"
	"net/http"
	"net/url"
	"strings"
)

// tenancyTransport adds the tenancy field to form-encoded token requests
type tenancyTransport struct {
	base    http.RoundTripper
	tenancy string
}

func (t *tenancyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.tenancy == "" || req.Method != http.MethodPost || req.Body == nil {
		return base.RoundTrip(req)
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	form.Set("tenancy", t.tenancy)
	encoded := form.Encode()

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(strings.NewReader(encoded))
	out.ContentLength = int64(len(encoded))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(encoded)), nil
	}
	return base.RoundTrip(out)
}
