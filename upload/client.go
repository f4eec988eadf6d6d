package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/laborwatch/cluedash/consts"
)

// Part is one uploaded spreadsheet. Its content is forwarded as-is.
type Part struct {
	Name string
	Data []byte
}

func (p Part) missing() bool {
	return p.Name == ""
}

// Form holds the two files the processing backend requires.
type Form struct {
	File12345 Part
	FileAnxin Part
}

func (f Form) Validate() error {
	if f.File12345.missing() {
		return fmt.Errorf("%w: %s", ErrMissingFile, consts.Field12345)
	}
	if f.FileAnxin.missing() {
		return fmt.Errorf("%w: %s", ErrMissingFile, consts.FieldAnxin)
	}
	return nil
}

// Size is the number of file bytes in the form.
func (f Form) Size() int {
	return len(f.File12345.Data) + len(f.FileAnxin.Data)
}

// LoadForm reads both files from disk.
func LoadForm(path12345, pathAnxin string) (Form, error) {
	var form Form
	var err error
	if form.File12345, err = readPart(path12345, consts.Field12345); err != nil {
		return Form{}, err
	}
	if form.FileAnxin, err = readPart(pathAnxin, consts.FieldAnxin); err != nil {
		return Form{}, err
	}
	return form, nil
}

func readPart(path, field string) (Part, error) {
	if path == "" {
		return Part{}, fmt.Errorf("%w: %s", ErrMissingFile, field)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Part{}, fmt.Errorf("reading %s: %w", field, err)
	}
	return Part{Name: filepath.Base(path), Data: data}, nil
}

// Client talks to the processing backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		Timeout:    timeout,
	}
}

func (c *Client) Endpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + consts.ProcessPath
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

// encode builds the multipart body in memory so its length is known up front.
func encode(form Form) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range []struct {
		field string
		part  Part
	}{
		{consts.Field12345, form.File12345},
		{consts.FieldAnxin, form.FileAnxin},
	} {
		w, err := mw.CreateFormFile(f.field, f.part.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := w.Write(f.part.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return body, mw.FormDataContentType(), nil
}

// post sends the form, calling progress with the share of the body sent so far.
func (c *Client) post(ctx context.Context, form Form, progress func(int)) (*http.Response, error) {
	body, contentType, err := encode(form)
	if err != nil {
		return nil, fmt.Errorf("encoding form: %w", err)
	}
	reader := &progressReader{r: body, total: int64(body.Len()), report: progress, last: -1}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), reader)
	if err != nil {
		return nil, err
	}
	req.ContentLength = reader.total
	req.Header.Set("Content-Type", contentType)
	return c.httpClient().Do(req)
}

type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.report != nil && p.total > 0 && n > 0 {
		percent := int(p.read * 100 / p.total)
		if percent != p.last {
			p.last = percent
			p.report(percent)
		}
	}
	return n, err
}

// DefaultFilename is the download name used when the backend does not supply one.
func DefaultFilename(now time.Time) string {
	return now.Format(consts.FileDateFormat) + consts.DefaultFileSuffix
}

// Filename takes the download name from a Content-Disposition header. A plain
// filename parameter is percent-decoded; filename* is already decoded by
// mime.ParseMediaType. Quotes are stripped. An empty result means none was given.
func Filename(contentDisposition string) string {
	var name string
	if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
		name = params["filename"]
		if !strings.Contains(strings.ToLower(contentDisposition), "filename*=") {
			name = unescape(name)
		}
	} else if _, rest, ok := strings.Cut(contentDisposition, "filename="); ok {
		name, _, _ = strings.Cut(rest, ";")
		name = unescape(name)
	}
	name = strings.NewReplacer(`"`, "", "'", "").Replace(name)
	return strings.TrimSpace(name)
}

func unescape(name string) string {
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}
