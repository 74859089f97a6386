package lambda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
)

// InvokeAPI is the part of the Lambda client the remote renderer uses
type InvokeAPI interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

// RemoteRenderer requests graphs from a deployed graph function
type RemoteRenderer struct {
	client       InvokeAPI
	functionName string
}

// NewRemoteRenderer creates a remote renderer using the default AWS configuration
func NewRemoteRenderer(ctx context.Context, functionName string) (*RemoteRenderer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewRemoteRendererWithClient(awslambda.NewFromConfig(cfg), functionName), nil
}

func NewRemoteRendererWithClient(client InvokeAPI, functionName string) *RemoteRenderer {
	return &RemoteRenderer{client: client, functionName: functionName}
}

// Render invokes the graph function synchronously
func (r *RemoteRenderer) Render(ctx context.Context, req GraphRequest) (GraphResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return GraphResponse{}, fmt.Errorf("failed to marshal graph request: %w", err)
	}

	out, err := r.client.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName: aws.String(r.functionName),
		Payload:      payload,
	})
	if err != nil {
		return GraphResponse{}, fmt.Errorf("failed to invoke %s: %w", r.functionName, err)
	}
	if out.FunctionError != nil {
		return GraphResponse{}, fmt.Errorf("%s failed: %s: %s", r.functionName, aws.ToString(out.FunctionError), string(out.Payload))
	}

	var resp GraphResponse
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		return GraphResponse{}, fmt.Errorf("failed to parse graph response: %w", err)
	}
	return resp, nil
}
