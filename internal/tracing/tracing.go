package tracing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/deepagent/deepagent/internal/config"
)

type ctxKey struct{}

type span struct {
	ID       string
	ParentID string
	Start    time.Time
}

// Tracer exports graph execution as a run tree to a LangSmith-compatible
// tracing endpoint. Every node, model call and tool call becomes a run;
// parent/child links follow the callback context.
type Tracer struct {
	callbacks.HandlerBuilder

	client  *resty.Client
	project string
	enabled bool
	debug   bool
}

// NewTracer builds a tracer from config. When tracing is disabled or no API
// key is set, the tracer is inert and adds no overhead beyond nil checks.
func NewTracer(cfg *config.Config) *Tracer {
	t := &Tracer{
		project: cfg.TracingProject,
		enabled: cfg.Status().TracingEnabled,
		debug:   cfg.Debug,
	}
	if !t.enabled {
		return t
	}

	t.client = resty.New()
	t.client.SetBaseURL(cfg.TracingEndpoint)
	t.client.SetTimeout(10 * time.Second)
	t.client.SetHeader("x-api-key", cfg.TracingAPIKey)
	t.client.SetHeader("Content-Type", "application/json")
	return t
}

// Enabled reports whether runs are being exported.
func (t *Tracer) Enabled() bool {
	return t.enabled
}

func runName(info *callbacks.RunInfo) string {
	if info == nil {
		return "unknown"
	}
	if info.Name != "" {
		return info.Name
	}
	return fmt.Sprintf("%s/%s", info.Component, info.Type)
}

func runType(info *callbacks.RunInfo) string {
	if info == nil {
		return "chain"
	}
	switch string(info.Component) {
	case "ChatModel":
		return "llm"
	case "Tool":
		return "tool"
	default:
		return "chain"
	}
}

func (t *Tracer) post(path string, body map[string]interface{}) {
	go func() {
		resp, err := t.client.R().SetBody(body).Post(path)
		if err != nil {
			if t.debug {
				log.Printf("[Tracing] export failed: %v", err)
			}
			return
		}
		if resp.StatusCode() >= 300 && t.debug {
			log.Printf("[Tracing] export HTTP %d", resp.StatusCode())
		}
	}()
}

func (t *Tracer) patch(path string, body map[string]interface{}) {
	go func() {
		if _, err := t.client.R().SetBody(body).Patch(path); err != nil && t.debug {
			log.Printf("[Tracing] update failed: %v", err)
		}
	}()
}

func (t *Tracer) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if !t.enabled {
		return ctx
	}

	parentID := ""
	if parent, ok := ctx.Value(ctxKey{}).(*span); ok {
		parentID = parent.ID
	}

	s := &span{ID: uuid.NewString(), ParentID: parentID, Start: time.Now()}

	body := map[string]interface{}{
		"id":           s.ID,
		"name":         runName(info),
		"run_type":     runType(info),
		"start_time":   s.Start.UTC().Format(time.RFC3339Nano),
		"session_name": t.project,
		"inputs":       map[string]interface{}{"input": fmt.Sprintf("%v", input)},
	}
	if parentID != "" {
		body["parent_run_id"] = parentID
	}
	t.post("/runs", body)

	return context.WithValue(ctx, ctxKey{}, s)
}

func (t *Tracer) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if !t.enabled {
		return ctx
	}
	s, ok := ctx.Value(ctxKey{}).(*span)
	if !ok {
		return ctx
	}

	t.patch("/runs/"+s.ID, map[string]interface{}{
		"end_time": time.Now().UTC().Format(time.RFC3339Nano),
		"outputs":  map[string]interface{}{"output": fmt.Sprintf("%v", output)},
	})
	return ctx
}

func (t *Tracer) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if !t.enabled {
		return ctx
	}
	s, ok := ctx.Value(ctxKey{}).(*span)
	if !ok {
		return ctx
	}

	t.patch("/runs/"+s.ID, map[string]interface{}{
		"end_time": time.Now().UTC().Format(time.RFC3339Nano),
		"error":    err.Error(),
	})
	return ctx
}

func (t *Tracer) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return t.OnEnd(ctx, info, nil)
}

func (t *Tracer) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return t.OnStart(ctx, info, nil)
}
