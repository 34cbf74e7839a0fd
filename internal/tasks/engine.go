// Package tasks executes multi-step background jobs for a session:
// each step is retried with bounded exponential backoff and a timeout,
// progress is pushed to a sink, and every run ends in exactly one
// terminal result value, never an escaped fault.
package tasks

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Maxservais/chat/internal/scrape"
	"github.com/Maxservais/chat/internal/session"
)

// StepStatus is the state of a step reported in a progress event.
type StepStatus string

const (
	StatusRunning  StepStatus = "running"
	StatusComplete StepStatus = "complete"
	StatusError    StepStatus = "error"
)

// Progress is one best-effort, at-least-once progress event. Consumers
// must tolerate duplicates and missing intermediate percentages; only
// the terminal result is authoritative.
type Progress struct {
	Step    string     `json:"step"`
	Status  StepStatus `json:"status"`
	Message string     `json:"message"`
	Percent float64    `json:"percent"`
}

// FailureReason classifies a terminal failure.
type FailureReason string

const (
	ReasonNoData          FailureReason = "no_data"
	ReasonFetchFailed     FailureReason = "fetch_failed"
	ReasonSummarizeFailed FailureReason = "summarize_failed"
	ReasonStoreFailed     FailureReason = "store_failed"
	ReasonInternal        FailureReason = "internal"
)

// Failure is the typed failure value a run terminates with when it
// cannot produce a profile.
type Failure struct {
	Reason FailureReason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Reason, f.Err)
	}
	return string(f.Reason)
}

// Result is a run's terminal output: exactly one of Profile or Failure
// is set.
type Result struct {
	Subject string
	Profile *session.Profile
	Failure *Failure
}

// ProgressFunc receives progress events for a session's run.
type ProgressFunc func(sessionKey string, p Progress)

// CompleteFunc receives the terminal result, exactly once per run.
type CompleteFunc func(sessionKey string, r Result)

// Summarizer turns scraped items into a bounded topic list and a short
// summary. Implemented by the LLM-backed summarizer in profile.go.
type Summarizer interface {
	Summarize(ctx context.Context, subject string, items []scrape.Item) (session.Profile, error)
}

// Engine runs profile-analysis jobs. Runs execute on their own
// goroutines and may complete at arbitrary times relative to the
// session's turn handling; they make no assumption about the session's
// current state.
type Engine struct {
	scraper    scrape.Scraper
	summarizer Summarizer
	store      *session.Store
	maxItems   int

	onProgress ProgressFunc
	onComplete CompleteFunc

	fetchPolicy     Policy
	summarizePolicy Policy
	sleep           sleepFunc
}

// NewEngine creates an Engine with the production retry policies.
func NewEngine(scraper scrape.Scraper, summarizer Summarizer, store *session.Store, maxItems int) *Engine {
	if maxItems <= 0 {
		maxItems = 50
	}
	return &Engine{
		scraper:    scraper,
		summarizer: summarizer,
		store:      store,
		maxItems:   maxItems,
		fetchPolicy: Policy{
			MaxAttempts:       3,
			BaseDelay:         5 * time.Second,
			BackoffMultiplier: 2,
			Timeout:           5 * time.Minute,
		},
		summarizePolicy: Policy{
			MaxAttempts:       2,
			BaseDelay:         3 * time.Second,
			BackoffMultiplier: 2,
			Timeout:           2 * time.Minute,
		},
		sleep: realSleep,
	}
}

// SetSinks registers the progress and completion callbacks. Must be
// called before any run starts.
func (e *Engine) SetSinks(onProgress ProgressFunc, onComplete CompleteFunc) {
	e.onProgress = onProgress
	e.onComplete = onComplete
}

// Run is one execution instance of a background job.
type Run struct {
	ID         string
	SessionKey string
	Subject    string

	once   sync.Once
	done   chan struct{}
	result Result
}

// Wait blocks until the run has delivered its terminal result.
func (r *Run) Wait() Result {
	<-r.done
	return r.result
}

// StartProfileAnalysis launches the profile-analysis pipeline for the
// given subject and returns immediately. The result is delivered to
// the completion sink (and via Run.Wait).
func (e *Engine) StartProfileAnalysis(sessionKey, subject string) *Run {
	run := &Run{
		ID:         uuid.New().String(),
		SessionKey: sessionKey,
		Subject:    subject,
		done:       make(chan struct{}),
	}
	go e.execute(run)
	return run
}

// complete records the terminal result and notifies the sink. Guarded
// by sync.Once so the result is written at most once even if a step
// and the panic handler both reach termination.
func (e *Engine) complete(run *Run, res Result) {
	run.once.Do(func() {
		res.Subject = run.Subject
		run.result = res
		if res.Failure != nil {
			log.Printf("tasks: run %s for %q failed: %v", run.ID, run.Subject, res.Failure)
		} else {
			log.Printf("tasks: run %s for %q complete (%d items)", run.ID, run.Subject, res.Profile.ItemsAnalyzed)
		}
		if e.onComplete != nil {
			e.onComplete(run.SessionKey, res)
		}
		close(run.done)
	})
}

func (e *Engine) emit(run *Run, p Progress) {
	if e.onProgress != nil {
		e.onProgress(run.SessionKey, p)
	}
}

// execute runs the fixed pipeline: fetch -> summarize -> store. Any
// fault is converted into a terminal failure value at the latest here.
func (e *Engine) execute(run *Run) {
	defer func() {
		if r := recover(); r != nil {
			e.complete(run, Result{Failure: &Failure{
				Reason: ReasonInternal,
				Err:    fmt.Errorf("panic: %v", r),
			}})
		}
	}()

	ctx := context.Background()

	// Step 1: fetch raw items.
	e.emit(run, Progress{Step: "fetch", Status: StatusRunning, Message: "Fetching recent posts for @" + run.Subject, Percent: 0.1})
	var items []scrape.Item
	err := runWithPolicy(ctx, e.fetchPolicy, e.sleep, func(ctx context.Context) error {
		var err error
		items, err = e.scraper.Scrape(ctx, run.Subject, e.maxItems)
		return err
	})
	if err != nil {
		e.emit(run, Progress{Step: "fetch", Status: StatusError, Message: "Could not fetch posts", Percent: 0.1})
		e.complete(run, Result{Failure: &Failure{Reason: ReasonFetchFailed, Err: err}})
		return
	}
	if len(items) == 0 {
		// Nothing to analyze; the rest of the pipeline is pointless.
		// This goes through the normal terminal path so the controller
		// is guaranteed to hear about it.
		e.emit(run, Progress{Step: "fetch", Status: StatusError, Message: "No public posts found", Percent: 0.4})
		e.complete(run, Result{Failure: &Failure{
			Reason: ReasonNoData,
			Err:    fmt.Errorf("no public posts for %q", run.Subject),
		}})
		return
	}
	e.emit(run, Progress{Step: "fetch", Status: StatusComplete, Message: fmt.Sprintf("Fetched %d posts", len(items)), Percent: 0.4})

	// Step 2: summarize.
	e.emit(run, Progress{Step: "summarize", Status: StatusRunning, Message: "Analyzing interests", Percent: 0.5})
	var profile session.Profile
	err = runWithPolicy(ctx, e.summarizePolicy, e.sleep, func(ctx context.Context) error {
		p, err := e.summarizer.Summarize(ctx, run.Subject, items)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		e.emit(run, Progress{Step: "summarize", Status: StatusError, Message: "Analysis failed", Percent: 0.5})
		e.complete(run, Result{Failure: &Failure{Reason: ReasonSummarizeFailed, Err: err}})
		return
	}
	e.emit(run, Progress{Step: "summarize", Status: StatusComplete, Message: "Interests identified", Percent: 0.8})

	// Step 3: merge into session state and report success.
	e.emit(run, Progress{Step: "store", Status: StatusRunning, Message: "Saving profile", Percent: 0.9})
	if err := e.store.SetProfile(ctx, run.SessionKey, profile); err != nil {
		e.emit(run, Progress{Step: "store", Status: StatusError, Message: "Could not save profile", Percent: 0.9})
		e.complete(run, Result{Failure: &Failure{Reason: ReasonStoreFailed, Err: err}})
		return
	}
	e.emit(run, Progress{Step: "store", Status: StatusComplete, Message: "Profile ready", Percent: 1.0})

	e.complete(run, Result{Profile: &profile})
}
