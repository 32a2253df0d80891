package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

// functionEnvelope is the response shape shared by all serverless
// functions: a success flag plus a domain payload.
type functionEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Invoke calls a serverless function via POST with bearer auth and a
// JSON body. A response with success=false is an upstream failure and
// is propagated as-is.
func (c *client) Invoke(ctx context.Context, name string, payload any) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "backend.invoke")
	defer span.End()
	span.SetAttributes(attribute.String("backend.function", name))

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &UpstreamError{Message: "marshal function payload: " + err.Error()}
	}

	body, status, err := c.send(ctx, timeoutInvoke, "invoke:"+name,
		"The "+name+" service took too long to respond. Please try again.",
		http.MethodPost, c.baseURL+"/functions/v1/"+name, data, nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		c.logger.Error("function call failed", "function", name, "status", status)
		return nil, &UpstreamError{Status: status, Message: restErrorMessage(body)}
	}

	var env functionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &UpstreamError{Status: status, Message: "decode function response: " + err.Error()}
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "function " + name + " reported failure"
		}
		c.logger.Error("function reported failure", "function", name, "error", msg)
		return nil, &UpstreamError{Status: status, Message: msg}
	}
	return env.Data, nil
}
