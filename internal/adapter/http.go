package adapter

import (
	"bufio"
	"bytes"
	"net/http"
)

var httpMethods = [][]byte{
	[]byte("GET "), []byte("POST "), []byte("PUT "), []byte("HEAD "),
	[]byte("DELETE "), []byte("OPTIONS "), []byte("PATCH "), []byte("CONNECT "),
}

// httpMetadata reads the Host and User-Agent of a request or the Server of
// a response at the start of payload. Headers split across segments are
// not reassembled.
func httpMetadata(payload []byte) (host, userAgent, server *string) {
	if len(payload) == 0 {
		return nil, nil, nil
	}
	br := bufio.NewReader(bytes.NewReader(payload))

	if bytes.HasPrefix(payload, []byte("HTTP/")) {
		resp, err := http.ReadResponse(br, nil)
		if err != nil {
			return nil, nil, nil
		}
		resp.Body.Close()
		return nil, nil, nonEmpty(resp.Header.Get("Server"))
	}

	for _, m := range httpMethods {
		if !bytes.HasPrefix(payload, m) {
			continue
		}
		req, err := http.ReadRequest(br)
		if err != nil {
			return nil, nil, nil
		}
		req.Body.Close()
		return nonEmpty(req.Host), nonEmpty(req.Header.Get("User-Agent")), nil
	}
	return nil, nil, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
