package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/laborwatch/cluedash/consts"
	"github.com/laborwatch/cluedash/payload"
)

// Result is what a successful submission yields: the summary workbook to save and,
// when the backend sent a readable one, the dashboard payload.
type Result struct {
	Payload  *payload.Payload
	Workbook []byte
	Filename string
}

// Save writes the workbook into dir and returns its path.
func (r *Result) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, consts.DirPermissions); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(r.Filename))
	if err := os.WriteFile(path, r.Workbook, consts.FilePermissions); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}
	return path, nil
}

// Controller runs one submission at a time and reports its phases to the observer.
type Controller struct {
	Client   *Client
	Observer Observer

	// SimulatedInterval paces the processing animation; zero disables it. The
	// animation is cosmetic and says nothing about the backend's real progress.
	SimulatedInterval time.Duration
	ResetDelay        time.Duration
	HideDelay         time.Duration

	busy  atomic.Bool
	mu    sync.Mutex
	phase Phase
	now   func() time.Time
}

func NewController(client *Client, observer Observer) *Controller {
	return &Controller{
		Client:            client,
		Observer:          observer,
		SimulatedInterval: consts.SimulatedInterval,
		ResetDelay:        consts.ResetDelay,
		HideDelay:         consts.HideDelay,
		now:               time.Now,
	}
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) observer() Observer {
	if c.Observer == nil {
		return NopObserver{}
	}
	return c.Observer
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = p
	c.observer().PhaseChanged(p)
}

// progress forwards percent only while the controller is still in phase.
func (c *Controller) progress(phase Phase, percent int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != phase {
		return
	}
	c.observer().Progress(percent)
}

// Submit sends form to the backend and waits for the workbook. An invalid form is
// rejected before anything is sent. Once the exchange ends the controller returns
// to Idle after the reset and hide delays, whatever the outcome.
func (c *Controller) Submit(ctx context.Context, form Form) (*Result, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.busy.Store(false)

	c.setPhase(Uploading)
	c.progress(Uploading, 0)

	res, err := c.exchange(ctx, form)
	if err != nil {
		c.setPhase(Failed)
	} else {
		c.setPhase(Success)
	}
	c.mu.Lock()
	c.observer().Done(err)
	c.mu.Unlock()

	c.wait(ctx, c.ResetDelay)
	c.mu.Lock()
	c.observer().Progress(100)
	c.mu.Unlock()
	c.wait(ctx, c.HideDelay)
	c.setPhase(Idle)
	return res, err
}

func (c *Controller) exchange(ctx context.Context, form Form) (*Result, error) {
	if c.Client.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Client.Timeout)
		defer cancel()
	}

	resp, err := c.Client.post(ctx, form, func(percent int) {
		c.progress(Uploading, percent)
	})
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	c.setPhase(Processing)
	stop := c.simulate()
	defer stop()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp.StatusCode, body)
	}

	res := &Result{
		Workbook: body,
		Filename: Filename(resp.Header.Get("Content-Disposition")),
	}
	if res.Filename == "" {
		now := c.now
		if now == nil {
			now = time.Now
		}
		res.Filename = DefaultFilename(now())
	}
	if raw := resp.Header.Get(consts.DashboardDataHeader); raw != "" {
		p, err := payload.Decode(raw)
		if err != nil {
			log.Printf("Error parsing dashboard data: %v", err)
		} else {
			res.Payload = p
		}
	}
	return res, nil
}

// simulate advances the progress indicator from 50% towards 99% until stopped.
func (c *Controller) simulate() func() {
	if c.SimulatedInterval <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(c.SimulatedInterval)
		defer ticker.Stop()
		percent := consts.SimulatedStart
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				percent++
				c.progress(Processing, percent)
				if percent >= consts.SimulatedEnd {
					return
				}
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func (c *Controller) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func transportError(err error) *TransportError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &TransportError{Kind: Timeout, Err: err}
	}
	return &TransportError{Kind: Network, Err: err}
}
