package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/laborwatch/cluedash/config"
	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/dashboard"
	"github.com/laborwatch/cluedash/upload"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

func TestServer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Server Suite")
}

const dashboardData = `{
	"datetime": "2026-10-19",
	"xiansuo_count": 8,
	"district_counts": {"宜都市": 5, "枝江市": 3},
	"jianshe_large_projects": [
		{"project_name": "Beta", "amount": 300, "people_count": 2},
		{"project_name": "alpha", "amount": 100, "people_count": 7}
	]
}`

func summaryWorkbook() []byte {
	wb := excelize.NewFile()
	defer wb.Close()
	Expect(wb.SetSheetRow("Sheet1", "A1", &[]interface{}{"县市区", "线索数量"})).To(Succeed())
	buf, err := wb.WriteToBuffer()
	Expect(err).NotTo(HaveOccurred())
	return buf.Bytes()
}

func uploadRequest(fields ...string) *http.Request {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, field := range fields {
		w, err := mw.CreateFormFile(field, field+".xlsx")
		Expect(err).NotTo(HaveOccurred())
		_, _ = w.Write([]byte("rows of " + field))
	}
	Expect(mw.Close()).To(Succeed())
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var _ = Describe("Server", func() {
	var (
		backend  http.HandlerFunc
		workbook []byte
		a        *app
		router   http.Handler
	)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	get := func(path string) *httptest.ResponseRecorder {
		return serve(httptest.NewRequest(http.MethodGet, path, nil))
	}

	uploadOK := func() string {
		rec := serve(uploadRequest(consts.Field12345, consts.FieldAnxin))
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		location := rec.Header().Get("Location")
		Expect(location).To(HavePrefix("/dashboards/"))
		return strings.TrimSuffix(location, "?uploaded=1")
	}

	BeforeEach(func() {
		workbook = summaryWorkbook()
		backend = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Disposition", `attachment; filename="summary.xlsx"`)
			w.Header().Set(consts.DashboardDataHeader, strings.ReplaceAll(dashboardData, "\n", ""))
			w.Write(workbook)
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			backend(w, r)
		}))
		DeferCleanup(server.Close)

		cfg := config.DefaultConfig()
		cfg.Backend.URL = server.URL
		a = &app{cfg: cfg, store: dashboard.NewStore(), client: upload.NewClient(server.URL, time.Second)}
		router = newRouter(a)
	})

	It("serves the upload form", func() {
		rec := get("/")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`name="file_12345"`))
		Expect(rec.Body.String()).To(ContainSubstring(`name="file_anxin"`))
	})

	It("forwards an upload and renders its dashboard", func() {
		base := uploadOK()
		Expect(a.store.Len()).To(Equal(1))

		rec := get(base + "?uploaded=1")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(consts.MsgSuccess))
		Expect(rec.Body.String()).To(ContainSubstring("district_chart"))
		Expect(rec.Body.String()).To(ContainSubstring(base + "/download"))
	})

	It("offers the workbook for download", func() {
		base := uploadOK()
		rec := get(base + "/download")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal(consts.WorkbookContentType))
		Expect(upload.Filename(rec.Header().Get("Content-Disposition"))).To(Equal("summary.xlsx"))
		Expect(rec.Body.Bytes()).To(Equal(workbook))
	})

	It("serves the chart options as JSON", func() {
		base := uploadOK()
		rec := get(base + "/charts.json")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var doc struct {
			Charts []map[string]interface{} `json:"charts"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &doc)).To(Succeed())
		Expect(doc.Charts).NotTo(BeEmpty())
	})

	It("sorts tables and opens row details", func() {
		base := uploadOK()
		rec := get(base + "/tables/jianshe_large_projects?sort=project_name")
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(rec.Header().Get("Location")).To(Equal(base + "#jianshe_large_projects"))

		s, ok := a.store.Get(strings.TrimPrefix(base, "/dashboards/"))
		Expect(ok).To(BeTrue())
		state, err := s.Dashboard.Tables.State("jianshe_large_projects")
		Expect(err).NotTo(HaveOccurred())
		Expect(state.SortField).To(Equal("project_name"))

		rec = get(base + "/tables/jianshe_large_projects/rows/0")
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(s.Dashboard.Modal.Visible()).To(BeTrue())
		title, _ := s.Dashboard.Modal.Content()
		Expect(title).To(Equal("alpha"))

		rec = get(base + "/modal/close")
		Expect(rec.Code).To(Equal(http.StatusSeeOther))
		Expect(s.Dashboard.Modal.Visible()).To(BeFalse())
	})

	It("rejects unknown tables, fields and rows", func() {
		base := uploadOK()
		Expect(get(base + "/tables/nope?sort=amount").Code).To(Equal(http.StatusNotFound))
		Expect(get(base + "/tables/jianshe_large_projects?sort=nope").Code).To(Equal(http.StatusBadRequest))
		Expect(get(base + "/tables/jianshe_large_projects?page=x").Code).To(Equal(http.StatusBadRequest))
		Expect(get(base + "/tables/jianshe_large_projects/rows/9").Code).To(Equal(http.StatusNotFound))
		Expect(get(base + "/tables/jianshe_large_projects?page=4").Code).To(Equal(http.StatusSeeOther))
	})

	It("answers 404 for unknown dashboards", func() {
		Expect(get("/dashboards/missing").Code).To(Equal(http.StatusNotFound))
	})

	It("keeps the download when the dashboard header is malformed", func() {
		backend = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(consts.DashboardDataHeader, "{not json")
			w.Write(workbook)
		}
		base := uploadOK()
		rec := get(base)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(base + "/download"))
		Expect(get(base + "/charts.json").Code).To(Equal(http.StatusNotFound))
		Expect(get(base + "/download").Body.Bytes()).To(Equal(workbook))
	})

	It("shows the backend's detail on failure", func() {
		backend = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail": "12345文件格式不正确"}`))
		}
		rec := serve(uploadRequest(consts.Field12345, consts.FieldAnxin))
		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(rec.Body.String()).To(ContainSubstring("12345文件格式不正确"))
		Expect(a.store.Len()).To(BeZero())
	})

	It("requires both files", func() {
		rec := serve(uploadRequest(consts.Field12345))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(consts.MsgMissingFile))
	})

	It("evicts idle dashboards", func() {
		uploadOK()
		evictSessions(context.Background(), a.store, time.Hour)()
		Expect(a.store.Len()).To(Equal(1))
		evictSessions(context.Background(), a.store, -time.Second)()
		Expect(a.store.Len()).To(BeZero())
	})
})
