package main

import (
	"context"
	_ "embed"
	"errors"
	"html/template"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/laborwatch/cluedash/config"
	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/dashboard"
	"github.com/laborwatch/cluedash/table"
	"github.com/laborwatch/cluedash/upload"
	"github.com/laborwatch/cluedash/workbook"
)

//go:embed index.html.tmpl
var indexTemplate string

var indexTmpl = template.Must(template.New("index").Parse(indexTemplate))

type app struct {
	cfg    *config.Config
	store  *dashboard.Store
	client *upload.Client
}

type indexView struct {
	Title      string
	Field12345 string
	FieldAnxin string
	Error      string
	Notice     string
	Download   string
	Workbook   *workbook.Summary
}

func (a *app) renderIndex(w http.ResponseWriter, status int, v indexView) {
	v.Title = consts.PageTitle
	v.Field12345 = consts.Field12345
	v.FieldAnxin = consts.FieldAnxin
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTmpl.Execute(w, v); err != nil {
		log.Printf("Error rendering upload page: %v", err)
	}
}

func (a *app) index(w http.ResponseWriter, _ *http.Request) {
	a.renderIndex(w, http.StatusOK, indexView{})
}

// logObserver writes the phases of a forwarded upload to the server log.
type logObserver struct {
	upload.NopObserver
}

func (logObserver) PhaseChanged(p upload.Phase) {
	log.Printf("Upload %s", p)
}

func (a *app) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, consts.MaxUploadBytes)
	form, err := readForm(r)
	if err != nil {
		log.Printf("Error reading upload form: %v", err)
		a.renderIndex(w, http.StatusBadRequest, indexView{Error: consts.MsgServerError})
		return
	}

	ctrl := upload.NewController(a.client, logObserver{})
	ctrl.SimulatedInterval = 0
	ctrl.ResetDelay = 0
	ctrl.HideDelay = 0
	res, err := ctrl.Submit(r.Context(), form)
	if err != nil {
		log.Printf("Error processing files: %v", err)
		a.renderIndex(w, uploadStatus(err), indexView{Error: upload.Message(err)})
		return
	}

	sess := &dashboard.Session{Payload: res.Payload, Workbook: res.Workbook, Filename: res.Filename}
	summary, err := workbook.Inspect(res.Workbook)
	if err != nil {
		log.Printf("Error inspecting workbook %s: %v", res.Filename, err)
	}
	if res.Payload != nil {
		d, err := dashboard.Render(res.Payload)
		if err != nil {
			log.Printf("Error rendering dashboard: %v", err)
		} else {
			d.Workbook = summary
			sess.Dashboard = d
		}
	}
	id := a.store.Put(sess)
	http.Redirect(w, r, dashboardURL(id)+"?uploaded=1", http.StatusSeeOther)
}

func readForm(r *http.Request) (upload.Form, error) {
	if err := r.ParseMultipartForm(consts.MaxUploadBytes); err != nil {
		return upload.Form{}, err
	}
	var form upload.Form
	var err error
	if form.File12345, err = readPart(r, consts.Field12345); err != nil {
		return upload.Form{}, err
	}
	if form.FileAnxin, err = readPart(r, consts.FieldAnxin); err != nil {
		return upload.Form{}, err
	}
	return form, nil
}

// readPart returns an empty part for a missing field; the controller rejects it.
func readPart(r *http.Request, field string) (upload.Part, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return upload.Part{}, nil
	}
	if err != nil {
		return upload.Part{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return upload.Part{}, err
	}
	return upload.Part{Name: header.Filename, Data: data}, nil
}

func uploadStatus(err error) int {
	var se *upload.ServerError
	var te *upload.TransportError
	switch {
	case errors.Is(err, upload.ErrMissingFile):
		return http.StatusBadRequest
	case errors.As(err, &se):
		if se.Status >= 400 && se.Status < 500 {
			return se.Status
		}
		return http.StatusBadGateway
	case errors.As(err, &te):
		if te.Kind == upload.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func dashboardURL(id string) string {
	return "/dashboards/" + id
}

type sessionKey struct{}

func (a *app) sessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := a.store.Get(chi.URLParam(r, "id"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	})
}

func session(r *http.Request) *dashboard.Session {
	return r.Context().Value(sessionKey{}).(*dashboard.Session)
}

// withDashboard answers 404 for uploads whose backend sent no dashboard data.
func withDashboard(fn func(w http.ResponseWriter, r *http.Request, s *dashboard.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := session(r)
		if s.Dashboard == nil {
			http.NotFound(w, r)
			return
		}
		fn(w, r, s)
	}
}

func (a *app) dashboard(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	var notice string
	if r.URL.Query().Get("uploaded") != "" {
		notice = consts.MsgSuccess
	}
	if s.Dashboard == nil {
		var summary *workbook.Summary
		if sum, err := workbook.Inspect(s.Workbook); err == nil {
			summary = sum
		}
		a.renderIndex(w, http.StatusOK, indexView{
			Notice:   notice,
			Download: dashboardURL(s.ID) + "/download",
			Workbook: summary,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.Dashboard.WriteHTML(w, dashboard.PageOptions{BaseURL: dashboardURL(s.ID), Notice: notice})
	if err != nil {
		log.Printf("Error rendering dashboard %s: %v", s.ID, err)
	}
}

func (a *app) download(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	w.Header().Set("Content-Type", consts.WorkbookContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": s.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(s.Workbook)))
	if _, err := w.Write(s.Workbook); err != nil {
		log.Printf("Error sending workbook %s: %v", s.Filename, err)
	}
}

func (a *app) chartsJSON(w http.ResponseWriter, r *http.Request) {
	withDashboard(func(w http.ResponseWriter, _ *http.Request, s *dashboard.Session) {
		w.Header().Set("Content-Type", "application/json")
		if err := s.Dashboard.Charts.WriteJSON(w); err != nil {
			log.Printf("Error writing charts JSON: %v", err)
		}
	})(w, r)
}

// table applies a sort or page request and sends the browser back to the table.
func (a *app) table(w http.ResponseWriter, r *http.Request) {
	withDashboard(func(w http.ResponseWriter, r *http.Request, s *dashboard.Session) {
		tableID := chi.URLParam(r, "table")
		q := r.URL.Query()
		if field := q.Get("sort"); field != "" {
			if _, err := s.Dashboard.Tables.Sort(tableID, field); err != nil {
				tableError(w, err)
				return
			}
		}
		if p := q.Get("page"); p != "" {
			page, err := strconv.Atoi(p)
			if err != nil {
				http.Error(w, "invalid page", http.StatusBadRequest)
				return
			}
			// Out-of-range pages leave the table where it was.
			if _, _, err := s.Dashboard.Tables.GoTo(tableID, page); err != nil {
				tableError(w, err)
				return
			}
		}
		http.Redirect(w, r, dashboardURL(s.ID)+"#"+tableID, http.StatusSeeOther)
	})(w, r)
}

func (a *app) row(w http.ResponseWriter, r *http.Request) {
	withDashboard(func(w http.ResponseWriter, r *http.Request, s *dashboard.Session) {
		tableID := chi.URLParam(r, "table")
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			http.Error(w, "invalid row", http.StatusBadRequest)
			return
		}
		if err := s.Dashboard.ShowRow(tableID, index); err != nil {
			tableError(w, err)
			return
		}
		http.Redirect(w, r, dashboardURL(s.ID)+"#detail_modal", http.StatusSeeOther)
	})(w, r)
}

func (a *app) closeModal(w http.ResponseWriter, r *http.Request) {
	withDashboard(func(w http.ResponseWriter, r *http.Request, s *dashboard.Session) {
		s.Dashboard.Modal.Hide()
		http.Redirect(w, r, dashboardURL(s.ID), http.StatusSeeOther)
	})(w, r)
}

func tableError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, table.ErrUnknownTable), errors.Is(err, dashboard.ErrNoRow):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, table.ErrUnknownField):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Error updating table: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
