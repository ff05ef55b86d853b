package serverless

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// APIGatewayHandler adapts Trigger to API Gateway proxy events, for lambda.Start.
func APIGatewayHandler(tc TriggerContext) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		body := []byte(ev.Body)
		if ev.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(ev.Body)
			if err != nil {
				return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to decode request body: %w", err)
			}
			body = decoded
		}

		res := Trigger(ctx, tc, Request{
			Method: ev.HTTPMethod,
			Params: ev.PathParameters,
			Body:   body,
		})

		out := events.APIGatewayProxyResponse{StatusCode: res.Status}
		if res.Body == nil {
			return out, nil
		}

		encoded, err := json.Marshal(res.Body)
		if err != nil {
			return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to encode response body: %w", err)
		}

		out.Headers = map[string]string{"Content-Type": "application/json; charset=utf-8"}
		out.Body = string(encoded)
		return out, nil
	}
}
