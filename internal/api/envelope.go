package api

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/elewand/elewand-server/internal/errors"
	"github.com/elewand/elewand-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the shared envelope.
// Successful bodies become {"success":true,"data":...}; errors become
// {"success":false,"error":{...}}. Raw byte bodies (images) pass through.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case []byte:
		return body, nil
	case response.Envelope:
		return body, nil
	case *APIError:
		return response.Fail(body.ErrorBody), nil
	case *domainerrors.Error:
		return response.Fail(response.ErrorBody{
			Code:    string(body.Code),
			Message: body.Message,
			Details: body.Details,
		}), nil
	case error:
		_, eb, _ := response.FromError(body)
		return response.Fail(eb), nil
	}

	if strings.HasPrefix(status, "4") || strings.HasPrefix(status, "5") {
		return response.Envelope{Success: false, Data: v}, nil
	}
	return response.OK(v), nil
}
