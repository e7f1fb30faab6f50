package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/scheduler"
	"github.com/leonfoeck/job-matcher/internal/scrape"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type IngestHandler struct {
	Tracker *scrape.Tracker
	Run     scrape.RunFunc
}

type companyRequest struct {
	Name    string `json:"name"`
	Website string `json:"website" validate:"required,url"`
}

// IngestRequest names the companies to ingest, either as bare websites or
// as company objects.
type IngestRequest struct {
	Websites  []string         `json:"websites"`
	Companies []companyRequest `json:"companies" validate:"omitempty,dive"`
}

func (req IngestRequest) check() error {
	if len(req.Companies) > 0 {
		if len(req.Websites) > 0 {
			if err := validate.Var(req.Websites, "dive,url"); err != nil {
				return err
			}
		}
		return validate.Struct(req)
	}
	return validate.Var(req.Websites, "required,min=1,dive,url")
}

func (req IngestRequest) inputs() []domain.CompanyInput {
	out := make([]domain.CompanyInput, 0, len(req.Websites)+len(req.Companies))
	for _, w := range req.Websites {
		out = append(out, domain.CompanyInput{Website: strings.TrimSpace(w)})
	}
	for _, c := range req.Companies {
		out = append(out, domain.CompanyInput{Name: strings.TrimSpace(c.Name), Website: strings.TrimSpace(c.Website)})
	}
	return out
}

func (h IngestHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Tracker.Status())
}

func (h IngestHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := req.check(); err != nil {
		WriteErrorDetails(w, r, http.StatusBadRequest, CodeBadRequest, "invalid request", validationDetails(err))
		return
	}

	res, err := h.Tracker.Run(r.Context(), h.Run, req.inputs())
	switch {
	case errors.Is(err, scrape.ErrAlreadyRunning), errors.Is(err, scheduler.ErrRunLocked):
		WriteError(w, r, http.StatusConflict, CodeAlreadyRunning, "already running")
	case err != nil:
		WriteErrorDetails(w, r, http.StatusInternalServerError, CodeIngestFailed, err.Error(), res)
	default:
		writeJSON(w, res)
	}
}

// validationDetails flattens validator errors into "field: rule" strings.
func validationDetails(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Namespace()
		if !strings.HasPrefix(field, "IngestRequest.") {
			field = "websites" + field
		}
		out = append(out, fmt.Sprintf("%s: %s", field, fe.Tag()))
	}
	return out
}
