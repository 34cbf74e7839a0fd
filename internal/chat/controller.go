// Package chat orchestrates conversational turns: intent screening,
// the tool-calling reasoning loop, and asynchronous delivery of
// background analysis results into the same session history.
package chat

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/Maxservais/chat/internal/intent"
	"github.com/Maxservais/chat/internal/llm"
	"github.com/Maxservais/chat/internal/session"
	"github.com/Maxservais/chat/internal/tasks"
)

// Engine is the part of the task engine the controller needs; the
// concrete engine satisfies it.
type Engine interface {
	StartProfileAnalysis(sessionKey, subject string) *tasks.Run
}

// Controller owns all mutation of a session's history and profile.
// Per-session locks serialize the turn path and the background
// delivery path; across the two paths only deterministic message IDs
// guarantee no duplicate user-visible effects.
type Controller struct {
	store    *session.Store
	registry *session.Registry
	provider llm.Provider
	engine   Engine
	tools    *Tools

	model         string
	maxToolRounds int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Controller. Callers must wire the engine's sinks to
// OnTaskProgress and OnTaskComplete.
func New(store *session.Store, registry *session.Registry, provider llm.Provider, engine Engine, tools *Tools, model string, maxToolRounds int) *Controller {
	if maxToolRounds < 1 {
		maxToolRounds = 6
	}
	return &Controller{
		store:         store,
		registry:      registry,
		provider:      provider,
		engine:        engine,
		tools:         tools,
		model:         model,
		maxToolRounds: maxToolRounds,
		locks:         make(map[string]*sync.Mutex),
	}
}

// Registry exposes the live-connection registry for transport handlers.
func (c *Controller) Registry() *session.Registry { return c.registry }

// Store exposes the session store for transport handlers.
func (c *Controller) Store() *session.Store { return c.store }

// sessionLock returns the mutex serializing mutations for one session.
func (c *Controller) sessionLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// HandleTurn processes one inbound user turn and returns the reply
// text. Injection attempts and analysis requests short-circuit with
// fixed replies and never reach the model.
func (c *Controller) HandleTurn(ctx context.Context, key, text string) (string, error) {
	// Hard boundary: flagged text never reaches the reasoning engine.
	if intent.CheckInjection(text) {
		lock := c.sessionLock(key)
		lock.Lock()
		defer lock.Unlock()
		if err := c.store.AppendMessage(ctx, key, session.TextMessage(uuid.New().String(), session.RoleUser, text)); err != nil {
			return "", err
		}
		if err := c.store.AppendMessage(ctx, key, session.TextMessage(uuid.New().String(), session.RoleAssistant, refusalReply)); err != nil {
			return "", err
		}
		return refusalReply, nil
	}

	if subject, ok := intent.ExtractHandle(text); ok {
		return c.startAnalysis(ctx, key, text, subject)
	}

	return c.reasoningTurn(ctx, key, text)
}

// startAnalysis launches a background profile run and acknowledges
// immediately. This path is deterministic: it guarantees latency and
// keeps the model from inventing analysis results.
func (c *Controller) startAnalysis(ctx context.Context, key, text, subject string) (string, error) {
	lock := c.sessionLock(key)
	lock.Lock()

	// A profile for a different subject is stale the moment a new
	// analysis is requested; reasoning turns issued mid-run must not
	// see it.
	if p, err := c.store.GetProfile(ctx, key); err == nil && p != nil && p.Subject != subject {
		if err := c.store.ClearProfile(ctx, key); err != nil {
			lock.Unlock()
			return "", err
		}
	}

	if err := c.store.AppendMessage(ctx, key, session.TextMessage(uuid.New().String(), session.RoleUser, text)); err != nil {
		lock.Unlock()
		return "", err
	}
	reply := workingReply(subject)
	if err := c.store.AppendMessage(ctx, key, session.TextMessage(uuid.New().String(), session.RoleAssistant, reply)); err != nil {
		lock.Unlock()
		return "", err
	}
	lock.Unlock()

	c.engine.StartProfileAnalysis(key, subject)
	return reply, nil
}

// reasoningTurn runs the bounded tool-calling loop against the model.
func (c *Controller) reasoningTurn(ctx context.Context, key, text string) (string, error) {
	lock := c.sessionLock(key)
	lock.Lock()
	if err := c.store.AppendMessage(ctx, key, session.TextMessage(uuid.New().String(), session.RoleUser, text)); err != nil {
		lock.Unlock()
		return "", err
	}
	history, err := c.store.History(ctx, key)
	if err != nil {
		lock.Unlock()
		return "", err
	}
	profile, err := c.store.GetProfile(ctx, key)
	if err != nil {
		lock.Unlock()
		return "", err
	}
	lock.Unlock()

	msgs := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt + profileBlock(profile)}}
	msgs = append(msgs, historyToPrompt(history)...)

	var assistantParts []session.Part
	final := ""
	for round := 0; round < c.maxToolRounds; round++ {
		resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
			Model:    c.model,
			Messages: msgs,
			Tools:    c.tools.Definitions(),
		})
		if err != nil {
			return "", fmt.Errorf("reasoning turn: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			final = resp.Content
			break
		}

		msgs = append(msgs, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			result := c.tools.Execute(ctx, call.Name, call.Arguments)
			msgs = append(msgs, llm.Message{
				Role:       llm.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
			assistantParts = append(assistantParts,
				session.Part{Type: session.PartToolCall, ToolName: call.Name, ToolArgs: call.Arguments},
				session.Part{Type: session.PartToolResult, ToolName: call.Name, ToolResult: result},
			)
		}
	}
	if final == "" {
		final = "I needed more lookups than I'm allowed for one question. Could you narrow it down?"
	}
	assistantParts = append(assistantParts, session.Part{Type: session.PartText, Text: final})

	lock.Lock()
	defer lock.Unlock()
	err = c.store.AppendMessage(ctx, key, session.Message{
		ID:    uuid.New().String(),
		Role:  session.RoleAssistant,
		Parts: assistantParts,
	})
	if err != nil {
		return "", err
	}
	return final, nil
}

// historyToPrompt flattens stored messages into model messages. Tool
// parts from past turns are folded into their text representation so
// old tool call IDs never leak into a new request.
func historyToPrompt(history []session.Message) []llm.Message {
	var out []llm.Message
	for _, m := range history {
		var text string
		for _, p := range m.Parts {
			if p.Type == session.PartText {
				text += p.Text
			}
		}
		if text == "" {
			continue
		}
		role := llm.RoleUser
		if m.Role == session.RoleAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: text})
	}
	return out
}

// Push frame shapes for live connections.

type progressFrame struct {
	Type    string  `json:"type"`
	Step    string  `json:"step"`
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Percent float64 `json:"percent,omitempty"`
}

type profileResult struct {
	SubjectKey    string   `json:"subjectKey"`
	Topics        []string `json:"topics"`
	Summary       string   `json:"summary"`
	ItemsAnalyzed int      `json:"itemsAnalyzed"`
}

type completeFrame struct {
	Type   string        `json:"type"`
	Result profileResult `json:"result"`
}

type errorFrame struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// OnTaskProgress forwards progress events to live connections. Events
// are best-effort; dropped or duplicated frames are fine.
func (c *Controller) OnTaskProgress(key string, p tasks.Progress) {
	c.registry.Broadcast(key, progressFrame{
		Type:    "progress",
		Step:    p.Step,
		Status:  string(p.Status),
		Message: p.Message,
		Percent: p.Percent,
	})
}

// OnTaskComplete delivers a run's terminal result into the session.
// The appended message carries a deterministic ID keyed by subject, so
// duplicate deliveries collapse to a single user-visible message.
func (c *Controller) OnTaskComplete(key string, r tasks.Result) {
	ctx := context.Background()
	lock := c.sessionLock(key)

	if r.Failure != nil {
		id := "profile-error-" + r.Subject
		lock.Lock()
		inserted, err := c.store.AppendMessageIfAbsent(ctx, key,
			session.TextMessage(id, session.RoleAssistant, failureReply(r.Subject)))
		lock.Unlock()
		if err != nil {
			log.Printf("chat: delivering failure for %q: %v", r.Subject, err)
			return
		}
		if inserted {
			c.registry.Broadcast(key, errorFrame{Type: "error", Reason: string(r.Failure.Reason)})
		}
		return
	}

	id := "profile-" + r.Subject
	lock.Lock()
	inserted, err := c.store.AppendMessageIfAbsent(ctx, key,
		session.TextMessage(id, session.RoleAssistant, profileReadyReply(r.Profile)))
	lock.Unlock()
	if err != nil {
		log.Printf("chat: delivering completion for %q: %v", r.Subject, err)
		return
	}
	if inserted {
		c.registry.Broadcast(key, completeFrame{
			Type: "complete",
			Result: profileResult{
				SubjectKey:    r.Profile.Subject,
				Topics:        r.Profile.Topics,
				Summary:       r.Profile.Summary,
				ItemsAnalyzed: r.Profile.ItemsAnalyzed,
			},
		})
	}
}
