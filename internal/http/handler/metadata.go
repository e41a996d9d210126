package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"calendars/internal/logger"
	"calendars/internal/metadata"

	"github.com/go-chi/chi/v5"
)

type metadataReq struct {
	XMLName     xml.Name   `xml:"metadata" json:"-"`
	ID          string     `xml:"id,attr" json:"id"`
	Name        string     `xml:"name" json:"name"`
	Description string     `xml:"description" json:"description"`
	Info        *infoReq   `xml:"info" json:"info"`
	Entries     []entryReq `xml:"entries>entry" json:"entries"`
}

type infoReq struct {
	State           string `xml:"state" json:"state"`
	CreatedDate     string `xml:"created-date" json:"createdDate"`
	CreatedTime     string `xml:"created-time" json:"createdTime"`
	CreatedDatetime string `xml:"created-datetime" json:"createdDatetime"`
}

type entryReq struct {
	Name  string `xml:"name" json:"name"`
	Count *int   `xml:"count" json:"count"`
	Type  string `xml:"type" json:"type"`
}

func (req *metadataReq) toMetadata() (metadata.Metadata, fieldErrors) {
	fe := fieldErrors{}
	m := metadata.Metadata{
		ID:          strings.TrimSpace(req.ID),
		Name:        req.Name,
		Description: req.Description,
	}

	if in := req.Info; in != nil {
		info := &metadata.Info{}
		if strings.TrimSpace(in.State) != "" {
			if s, ok := metadata.LookupState(in.State); ok {
				info.State = s
			} else {
				fe.add("info.state", "must be one of unknown, active, inactive")
			}
		}
		info.CreatedDate = layoutField(fe, "info.createdDate", in.CreatedDate, metadata.DateLayout, "MM/dd/yyyy")
		info.CreatedTime = layoutField(fe, "info.createdTime", in.CreatedTime, metadata.TimeLayout, "HH:mm:ss")
		info.CreatedDatetime = layoutField(fe, "info.createdDatetime", in.CreatedDatetime, metadata.DatetimeLayout, "MM/dd/yyyy HH:mm:ss")
		m.Info = info
	}

	if req.Entries != nil {
		m.Entries = make([]metadata.Entry, 0, len(req.Entries))
	}
	for i, e := range req.Entries {
		entry := metadata.Entry{Name: e.Name, Count: e.Count}
		if strings.TrimSpace(e.Type) != "" {
			if t, ok := metadata.LookupEntryType(e.Type); ok {
				entry.Type = t
			} else {
				fe.add(fmt.Sprintf("entries[%d].type", i), "must be one of standard, premium, basic")
			}
		}
		m.Entries = append(m.Entries, entry)
	}

	if len(fe) > 0 {
		return metadata.Metadata{}, fe
	}
	return m, nil
}

// layoutField checks raw against layout and returns it trimmed; empty stays empty.
func layoutField(fe fieldErrors, field, raw, layout, human string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, err := time.Parse(layout, raw); err != nil {
		fe.add(field, "must use format "+human)
	}
	return raw
}

type metadataResp struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Info        *infoResp   `json:"info"`
	Entries     []entryResp `json:"entries"`
}

type infoResp struct {
	State           metadata.State `json:"state"`
	CreatedDate     *string        `json:"createdDate"`
	CreatedTime     *string        `json:"createdTime"`
	CreatedDatetime *string        `json:"createdDatetime"`
}

type entryResp struct {
	Name  string              `json:"name"`
	Count *int                `json:"count"`
	Type  *metadata.EntryType `json:"type"`
}

func toMetadataResp(m metadata.Metadata) metadataResp {
	out := metadataResp{ID: m.ID, Name: m.Name, Description: m.Description}
	if m.Info != nil {
		out.Info = &infoResp{
			State:           m.Info.State,
			CreatedDate:     nullable(m.Info.CreatedDate),
			CreatedTime:     nullable(m.Info.CreatedTime),
			CreatedDatetime: nullable(m.Info.CreatedDatetime),
		}
	}
	if m.Entries != nil {
		out.Entries = make([]entryResp, 0, len(m.Entries))
		for _, e := range m.Entries {
			er := entryResp{Name: e.Name, Count: e.Count}
			if e.Type != "" {
				t := e.Type
				er.Type = &t
			}
			out.Entries = append(out.Entries, er)
		}
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type MetadataHandler struct {
	Svc *metadata.Service
	Log *logger.Logger
}

func (h *MetadataHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer drainBody(r)

	var req metadataReq
	if err := decodeBody(r, &req); err != nil {
		h.Log.Warn("Metadata body rejected", "error", err)
		writeDecodeError(w, err)
		return
	}
	m, fe := req.toMetadata()
	if fe != nil {
		WriteProblem(w, http.StatusBadRequest, "validation failed", "one or more fields are invalid", fe)
		return
	}

	out, err := h.Svc.Create(r.Context(), m)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+out.ID)
	writeJSON(w, http.StatusCreated, toMetadataResp(out))
}

func (h *MetadataHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.Svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	out := make([]metadataResp, 0, len(all))
	for _, m := range all {
		out = append(out, toMetadataResp(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MetadataHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toMetadataResp(m))
}

func (h *MetadataHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
