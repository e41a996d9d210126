package handler

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"mime"
	"net/http"
)

var errUnsupportedMediaType = errors.New("unsupported media type")

// decodeBody reads an XML or JSON document depending on Content-Type.
// A missing Content-Type is treated as XML.
func decodeBody(r *http.Request, v any) error {
	mt := "application/xml"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return errUnsupportedMediaType
		}
		mt = parsed
	}

	switch mt {
	case "application/xml", "text/xml":
		if err := xml.NewDecoder(r.Body).Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("empty body")
			}
			return err
		}
		return nil
	case "application/json":
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("empty body")
			}
			return err
		}
		return nil
	}
	return errUnsupportedMediaType
}

// drainBody fully reads and closes the request body.
func drainBody(r *http.Request) {
	if r.Body != nil {
		_, _ = io.Copy(io.Discard, r.Body)
		_ = r.Body.Close()
	}
}
