package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// generateMethod is the fixed full method name the LLM sidecar exposes.
// There is exactly one RPC, so unlike tarsy's pkg/llm/client.go (which
// dials a multi-method, code-generated LLMServiceClient) this adapter
// invokes it directly via ClientConn.Invoke.
const generateMethod = "/contentpipeline.llm.LLMService/Generate"

// generateRequest/generateResponse are the wire shapes exchanged via the
// JSON codec (codec.go). Field names are chosen to match the plain-JSON
// contract described in §6 of the spec ("JSON-in JSON-out payloads").
type generateRequest struct {
	SystemPrompt string  `json:"systemPrompt"`
	UserPrompt   string  `json:"userPrompt"`
	Temperature  float64 `json:"temperature"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// GRPCClient is the production LLM Port adapter: it dials an external LLM
// sidecar over gRPC, mirroring the transport choice of the teacher's
// pkg/llm/client.go, but talks plain JSON over the wire (see codec.go)
// rather than depending on generated protobuf message types.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// NewGRPCClient dials addr (insecure transport credentials, matching the
// reference client's local-sidecar deployment model) and returns a ready
// Client.
func NewGRPCClient(addr string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("llm: failed to dial %s: %w", addr, err)
	}
	return &GRPCClient{conn: conn}, nil
}

// Close closes the underlying gRPC connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// Generate implements Client.
func (c *GRPCClient) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := &generateRequest{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Temperature: temperature}
	resp := &generateResponse{}

	err := c.conn.Invoke(callCtx, generateMethod, req, resp, grpc.CallContentSubtype(jsonCodec{}.Name()))
	if err != nil {
		if status.Code(err) == codes.DeadlineExceeded || callCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp.Text, nil
}
