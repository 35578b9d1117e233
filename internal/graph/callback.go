package graph

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/cloudwego/eino/callbacks"
	ecmodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

// Event is one progress update emitted during a workflow run.
type Event struct {
	Type       string `json:"type"` // node_start | node_end | message_chunk | tool_call | tool_result | error
	Node       string `json:"node,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
	Content    string `json:"content,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	ToolArgs   string `json:"tool_args,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// EventCallback forwards graph execution progress to a channel so the CLI
// can render streaming output.
type EventCallback struct {
	callbacks.HandlerBuilder

	Out chan Event
}

func (cb *EventCallback) push(event Event) {
	if cb.Out == nil {
		return
	}
	select {
	case cb.Out <- event:
	default:
		// Never block graph execution on a slow consumer.
	}
}

func (cb *EventCallback) pushMsg(msgID string, msg *schema.Message) {
	if msg == nil {
		return
	}

	if msg.Role == schema.Tool {
		cb.push(Event{
			Type:       "tool_result",
			MessageID:  msgID,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		})
		return
	}

	if len(msg.ToolCalls) > 0 {
		for _, tc := range msg.ToolCalls {
			cb.push(Event{
				Type:       "tool_call",
				MessageID:  msgID,
				ToolName:   tc.Function.Name,
				ToolArgs:   tc.Function.Arguments,
				ToolCallID: tc.ID,
			})
		}
		return
	}

	if msg.Content != "" {
		cb.push(Event{Type: "message_chunk", MessageID: msgID, Content: msg.Content})
	}
}

func (cb *EventCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if info != nil {
		cb.push(Event{Type: "node_start", Node: info.Name})
	}
	return ctx
}

func (cb *EventCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if info != nil {
		cb.push(Event{Type: "node_end", Node: info.Name})
	}
	return ctx
}

func (cb *EventCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	name := ""
	if info != nil {
		name = info.Name
	}
	cb.push(Event{Type: "error", Node: name, Error: err.Error()})
	return ctx
}

func (cb *EventCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	msgID := uuid.NewString()
	go func() {
		defer output.Close()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[EventCallback] stream panic recovered: %v", r)
			}
		}()
		for {
			frame, err := output.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return
			}

			switch v := frame.(type) {
			case *schema.Message:
				cb.pushMsg(msgID, v)
			case *ecmodel.CallbackOutput:
				cb.pushMsg(msgID, v.Message)
			case []*schema.Message:
				for _, m := range v {
					cb.pushMsg(msgID, m)
				}
			}
		}
	}()
	return ctx
}

func (cb *EventCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}
