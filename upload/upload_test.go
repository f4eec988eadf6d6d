package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/laborwatch/cluedash/consts"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
)

func TestUpload(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Upload Suite")
}

type recorder struct {
	mu       sync.Mutex
	phases   []Phase
	progress []int
	done     []error
}

func (r *recorder) PhaseChanged(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, p)
}

func (r *recorder) Progress(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, percent)
}

func (r *recorder) Done(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = append(r.done, err)
}

func (r *recorder) Phases() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Phase(nil), r.phases...)
}

func (r *recorder) Percents() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.progress...)
}

func summaryWorkbook() []byte {
	wb := excelize.NewFile()
	defer wb.Close()
	Expect(wb.SetSheetRow("Sheet1", "A1", &[]interface{}{"县市区", "线索数量"})).To(Succeed())
	Expect(wb.SetSheetRow("Sheet1", "A2", &[]interface{}{"宜都市", 5})).To(Succeed())
	buf, err := wb.WriteToBuffer()
	Expect(err).NotTo(HaveOccurred())
	return buf.Bytes()
}

func testForm() Form {
	return Form{
		File12345: Part{Name: "12345.xlsx", Data: []byte("hotline rows")},
		FileAnxin: Part{Name: "anxin.xlsx", Data: []byte("warning rows")},
	}
}

var _ = Describe("Phase", func() {
	It("names every phase", func() {
		Expect(Idle.String()).To(Equal("idle"))
		Expect(Uploading.String()).To(Equal("uploading"))
		Expect(Processing.String()).To(Equal("processing"))
		Expect(Success.String()).To(Equal("success"))
		Expect(Failed.String()).To(Equal("failed"))
		Expect(Phase(42).String()).To(Equal("unknown"))
		Expect(Success.Terminal()).To(BeTrue())
		Expect(Processing.Terminal()).To(BeFalse())
	})
})

var _ = Describe("Filename", func() {
	It("reads a quoted filename", func() {
		Expect(Filename(`attachment; filename="summary.xlsx"`)).To(Equal("summary.xlsx"))
	})

	It("decodes RFC 5987 names", func() {
		Expect(Filename(`attachment; filename*=UTF-8''%E6%B1%87%E6%80%BB.xlsx`)).To(Equal("汇总.xlsx"))
	})

	It("percent-decodes plain names", func() {
		Expect(Filename(`attachment; filename=%E6%B1%87%E6%80%BB.xlsx`)).To(Equal("汇总.xlsx"))
	})

	It("decodes RFC 5987 names only once", func() {
		Expect(Filename(`attachment; filename*=UTF-8''report%2541.xlsx`)).To(Equal("report%41.xlsx"))
		Expect(Filename(`attachment; filename="fallback.xlsx"; filename*=UTF-8''%E6%B1%87%2541.xlsx`)).To(Equal("汇%41.xlsx"))
	})

	It("falls back to splitting unparsable headers", func() {
		Expect(Filename(`attachment filename='report.xlsx'`)).To(Equal("report.xlsx"))
	})

	It("returns nothing without a filename", func() {
		Expect(Filename("")).To(BeEmpty())
		Expect(Filename("attachment")).To(BeEmpty())
	})

	It("builds the default from the date", func() {
		now := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
		Expect(DefaultFilename(now)).To(Equal("20261019劳动监察线索汇总和统计.xlsx"))
	})
})

var _ = Describe("Message", func() {
	It("maps outcomes to user-facing text", func() {
		Expect(Message(nil)).To(Equal(consts.MsgSuccess))
		Expect(Message(&ServerError{Status: 400, Detail: "文件格式错误"})).To(Equal("文件格式错误"))
		Expect(Message(&TransportError{Kind: Timeout})).To(Equal(consts.MsgTimeoutError))
		Expect(Message(&TransportError{Kind: Network})).To(Equal(consts.MsgNetworkError))
		Expect(Message(testForm().Validate())).To(Equal(consts.MsgSuccess))
		Expect(Message(Form{}.Validate())).To(Equal(consts.MsgMissingFile))
		Expect(Message(ErrBusy)).To(Equal(consts.MsgBusy))
		Expect(Message(errors.New("boom"))).To(Equal(consts.MsgServerError))
	})
})

var _ = Describe("Controller", func() {
	var (
		handler    http.HandlerFunc
		server     *httptest.Server
		rec        *recorder
		controller *Controller
		workbook   []byte
	)

	BeforeEach(func() {
		workbook = summaryWorkbook()
		rec = &recorder{}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		controller = NewController(NewClient(server.URL, time.Second), rec)
		controller.SimulatedInterval = 0
		controller.ResetDelay = 0
		controller.HideDelay = 0
		controller.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local) }
	})

	Context("when the backend succeeds", func() {
		var received map[string]string

		BeforeEach(func() {
			received = map[string]string{}
			handler = func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal(consts.ProcessPath))
				Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
				for _, field := range []string{consts.Field12345, consts.FieldAnxin} {
					f, header, err := r.FormFile(field)
					Expect(err).NotTo(HaveOccurred())
					data, _ := io.ReadAll(f)
					f.Close()
					received[field] = header.Filename + ":" + string(data)
				}
				w.Header().Set("Content-Type", consts.WorkbookContentType)
				w.Header().Set("Content-Disposition", `attachment; filename="summary.xlsx"`)
				w.Header().Set(consts.DashboardDataHeader, `{"xiansuo_count": 8, "district_counts": {"宜都市": 5}}`)
				w.Write(workbook)
			}
		})

		It("forwards both files and returns the workbook with its payload", func() {
			res, err := controller.Submit(context.Background(), testForm())
			Expect(err).NotTo(HaveOccurred())
			Expect(received).To(Equal(map[string]string{
				consts.Field12345: "12345.xlsx:hotline rows",
				consts.FieldAnxin: "anxin.xlsx:warning rows",
			}))
			Expect(res.Workbook).To(Equal(workbook))
			Expect(res.Filename).To(Equal("summary.xlsx"))
			Expect(res.Payload).NotTo(BeNil())
			Expect(res.Payload.XiansuoCount.Value()).To(Equal(8.0))
			Expect(res.Payload.DistrictCounts.Keys()).To(Equal([]string{"宜都市"}))
		})

		It("walks through the phases back to idle", func() {
			_, err := controller.Submit(context.Background(), testForm())
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Phases()).To(Equal([]Phase{Uploading, Processing, Success, Idle}))
			Expect(controller.Phase()).To(Equal(Idle))
			Expect(rec.done).To(Equal([]error{nil}))

			percents := rec.Percents()
			Expect(percents[0]).To(Equal(0))
			Expect(percents[len(percents)-1]).To(Equal(100))
			for _, p := range percents {
				Expect(p).To(BeNumerically(">=", 0))
				Expect(p).To(BeNumerically("<=", 100))
			}
		})

		It("saves the workbook under its base name", func() {
			res, err := controller.Submit(context.Background(), testForm())
			Expect(err).NotTo(HaveOccurred())
			res.Filename = "../../escape.xlsx"

			dir := GinkgoT().TempDir()
			path, err := res.Save(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal(filepath.Join(dir, "escape.xlsx")))
			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal(workbook))
		})
	})

	It("still succeeds when the dashboard header is malformed", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(consts.DashboardDataHeader, `{"xiansuo_count": `)
			w.Write(workbook)
		}
		var (
			res *Result
			err error
		)
		Expect(func() {
			res, err = controller.Submit(context.Background(), testForm())
		}).NotTo(Panic())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Payload).To(BeNil())
		Expect(res.Workbook).To(Equal(workbook))
		Expect(rec.Phases()).To(Equal([]Phase{Uploading, Processing, Success, Idle}))
	})

	It("uses the dated default name without Content-Disposition", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Write(workbook)
		}
		res, err := controller.Submit(context.Background(), testForm())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Filename).To(Equal("20261019劳动监察线索汇总和统计.xlsx"))
		Expect(res.Payload).To(BeNil())
	})

	It("names the download for today when built without NewController", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Write(workbook)
		}
		bare := &Controller{Client: NewClient(server.URL, time.Second)}
		res, err := bare.Submit(context.Background(), testForm())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Filename).To(Equal(DefaultFilename(time.Now())))
	})

	It("surfaces the backend's detail message", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail": "安心薪文件缺少必要的列"}`))
		}
		res, err := controller.Submit(context.Background(), testForm())
		Expect(res).To(BeNil())
		var se *ServerError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Status).To(Equal(http.StatusBadRequest))
		Expect(se.Detail).To(Equal("安心薪文件缺少必要的列"))
		Expect(rec.Phases()).To(Equal([]Phase{Uploading, Processing, Failed, Idle}))
		Expect(rec.done).To(HaveLen(1))
		Expect(rec.done[0]).To(MatchError(se))
	})

	It("falls back to the generic message for other failures", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal", http.StatusInternalServerError)
		}
		_, err := controller.Submit(context.Background(), testForm())
		Expect(err).To(MatchError(consts.MsgServerError))
	})

	It("reports network failures", func() {
		server.Close()
		_, err := controller.Submit(context.Background(), testForm())
		var te *TransportError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Kind).To(Equal(Network))
		Expect(err).To(MatchError(consts.MsgNetworkError))
		Expect(rec.Phases()).To(Equal([]Phase{Uploading, Failed, Idle}))
	})

	It("reports timeouts", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}
		controller.Client.Timeout = 50 * time.Millisecond
		_, err := controller.Submit(context.Background(), testForm())
		var te *TransportError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Kind).To(Equal(Timeout))
		Expect(err).To(MatchError(consts.MsgTimeoutError))
	})

	It("rejects a form missing a file without leaving idle", func() {
		form := testForm()
		form.FileAnxin = Part{}
		_, err := controller.Submit(context.Background(), form)
		Expect(err).To(MatchError(ErrMissingFile))
		Expect(err.Error()).To(ContainSubstring(consts.FieldAnxin))
		Expect(rec.Phases()).To(BeEmpty())
		Expect(controller.Phase()).To(Equal(Idle))
	})

	It("refuses a second submission while one is running", func() {
		release := make(chan struct{})
		handler = func(w http.ResponseWriter, r *http.Request) {
			<-release
			w.Write(workbook)
		}

		done := make(chan error, 1)
		go func() {
			_, err := controller.Submit(context.Background(), testForm())
			done <- err
		}()
		Eventually(controller.Phase).Should(Equal(Uploading))

		_, err := controller.Submit(context.Background(), testForm())
		Expect(err).To(MatchError(ErrBusy))

		close(release)
		Eventually(done).Should(Receive(BeNil()))
		Expect(controller.Phase()).To(Equal(Idle))
	})

	It("animates processing until the body arrives", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.(http.Flusher).Flush()
			time.Sleep(100 * time.Millisecond)
			w.Write(workbook)
		}
		controller.SimulatedInterval = time.Millisecond
		_, err := controller.Submit(context.Background(), testForm())
		Expect(err).NotTo(HaveOccurred())
		percents := rec.Percents()
		Expect(percents).To(ContainElement(consts.SimulatedStart + 1))
		Expect(percents).NotTo(ContainElement(BeNumerically(">", 100)))
	})
})

var _ = Describe("LoadForm", func() {
	It("reads both files", func() {
		dir := GinkgoT().TempDir()
		a := filepath.Join(dir, "12345.xlsx")
		b := filepath.Join(dir, "anxin.xlsx")
		Expect(os.WriteFile(a, []byte("a"), 0600)).To(Succeed())
		Expect(os.WriteFile(b, []byte("bb"), 0600)).To(Succeed())

		form, err := LoadForm(a, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(form.File12345).To(Equal(Part{Name: "12345.xlsx", Data: []byte("a")}))
		Expect(form.Size()).To(Equal(3))
	})

	It("requires both paths", func() {
		_, err := LoadForm("", "anxin.xlsx")
		Expect(err).To(MatchError(ErrMissingFile))
	})
})
