// Package agent implements the gate-PC print agent. The printer sits on a
// machine with no public address, so the agent pulls work from the server's
// job queue instead of the server pushing to it: claim one job, print it,
// report the outcome, repeat.
package agent

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures the agent.
type Options struct {
	ServerBaseURL string
	AgentKey      string
	DeviceID      string
	PollInterval  time.Duration
	ErrorBackoff  time.Duration
}

// Agent polls the server's print queue and drives the printer.
type Agent struct {
	client       *resty.Client
	printer      Printer
	deviceID     string
	pollInterval time.Duration
	errorBackoff time.Duration
}

// Job is the minimal payload the server hands out on a claim.
type Job struct {
	ID          int64  `json:"id"`
	PayloadText string `json:"payload_text"`
}

type claimResponse struct {
	OK  bool `json:"ok"`
	Job *Job `json:"job"`
}

// New creates an agent. The shared key authenticates every queue call.
func New(opts Options, printer Printer) *Agent {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = 5 * time.Second
	}
	if opts.DeviceID == "" {
		opts.DeviceID = "GATE-PC"
	}

	client := resty.New().
		SetBaseURL(opts.ServerBaseURL).
		SetTimeout(10 * time.Second).
		SetHeader("X-Print-Key", opts.AgentKey)

	return &Agent{
		client:       client,
		printer:      printer,
		deviceID:     opts.DeviceID,
		pollInterval: opts.PollInterval,
		errorBackoff: opts.ErrorBackoff,
	}
}

// Run polls until the context is cancelled.
func (a *Agent) Run(ctx context.Context) {
	log.Printf("print agent started (device %s)", a.deviceID)

	for {
		delay := a.pollInterval
		if err := a.Cycle(ctx); err != nil {
			log.Printf("poll cycle: %v", err)
			delay = a.errorBackoff
		}

		select {
		case <-ctx.Done():
			log.Println("print agent stopping")
			return
		case <-time.After(delay):
		}
	}
}

// Cycle claims at most one job and executes it. A print failure is reported
// to the server, not returned: the cycle itself succeeded.
func (a *Agent) Cycle(ctx context.Context) error {
	job, err := a.claim(ctx)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}

	log.Printf("printing job %d...", job.ID)
	if printErr := a.printer.Print(job.PayloadText); printErr != nil {
		log.Printf("job %d failed: %v", job.ID, printErr)
		return a.report(ctx, job.ID, "FAILED", printErr.Error())
	}

	log.Printf("job %d done", job.ID)
	return a.report(ctx, job.ID, "DONE", "")
}

func (a *Agent) claim(ctx context.Context) (*Job, error) {
	var result claimResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("device_id", a.deviceID).
		SetResult(&result).
		Get("/api/print/pending")
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("claim: server returned %s", resp.Status())
	}
	return result.Job, nil
}

func (a *Agent) report(ctx context.Context, jobID int64, status, errText string) error {
	body := map[string]string{"status": status}
	if errText != "" {
		body["error"] = errText
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/api/print/jobs/" + strconv.FormatInt(jobID, 10) + "/done")
	if err != nil {
		return fmt.Errorf("report job %d: %w", jobID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("report job %d: server returned %s", jobID, resp.Status())
	}
	return nil
}
