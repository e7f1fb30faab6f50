package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/scrape/util"
	"github.com/leonfoeck/job-matcher/internal/store"
)

type JobsHandler struct {
	Store store.JobStore
}

// JobDetail is a stored job plus its description rendered for display.
type JobDetail struct {
	domain.JobPost
	DescriptionHTML string `json:"descriptionHtml"`
	DescriptionText string `json:"descriptionText"`
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseJobQuery(r)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidQuery, err.Error())
		return
	}

	page, err := h.Store.ListJobs(r.Context(), q)
	if errors.Is(err, store.ErrInvalidQuery) {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidQuery, err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	writeJSON(w, page)
}

func (h JobsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r.URL.Path, "/jobs/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid id")
		return
	}

	job, err := h.Store.FindJob(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "job not found")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	writeJSON(w, JobDetail{
		JobPost:         *job,
		DescriptionHTML: util.SanitizeHTML(job.RawText),
		DescriptionText: util.HTMLToText(job.RawText),
	})
}

func parseJobQuery(r *http.Request) (store.JobQuery, error) {
	v := r.URL.Query()
	q := store.JobQuery{
		Title:    strings.TrimSpace(v.Get("title")),
		Company:  strings.TrimSpace(v.Get("company")),
		Source:   strings.TrimSpace(v.Get("source")),
		DateFrom: strings.TrimSpace(v.Get("dateFrom")),
		DateTo:   strings.TrimSpace(v.Get("dateTo")),
		Sort:     strings.TrimSpace(v.Get("sort")),
	}

	var err error
	if q.Page, err = intParam(v.Get("page")); err != nil {
		return q, errors.New("page must be an integer")
	}
	if q.Limit, err = intParam(v.Get("limit")); err != nil {
		return q, errors.New("limit must be an integer")
	}
	if raw := strings.TrimSpace(v.Get("onlyStudent")); raw != "" {
		if q.OnlyStudent, err = strconv.ParseBool(raw); err != nil {
			return q, errors.New("onlyStudent must be a boolean")
		}
	}
	return q, nil
}

func intParam(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
