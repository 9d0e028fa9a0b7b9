package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	contentTypeHeaderConstant          = "Content-Type"
	jsonContentTypeConstant            = "application/json"
	requestEncodingErrorTemplateConst  = "failed to encode %s request: %w"
	requestBuildErrorTemplateConstant  = "failed to build %s request: %w"
	requestSendErrorTemplateConstant   = "%s request failed: %w"
	responseReadErrorTemplateConstant  = "failed to read %s response: %w"
	responseDecodeErrorTemplateConst   = "failed to decode %s response: %w"
	providerErrorTemplateConstant      = "%s returned HTTP %d: %s"
	providerErrorBodyExcerptLimitConst = 512
	httpMethodPostConstant             = http.MethodPost
)

// ProviderError reports a non-success HTTP status returned by a provider.
type ProviderError struct {
	Provider   ProviderName
	StatusCode int
	Message    string
}

// Error describes the provider failure.
func (providerError ProviderError) Error() string {
	return fmt.Sprintf(providerErrorTemplateConstant, providerError.Provider, providerError.StatusCode, providerError.Message)
}

type providerErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// postJSON sends payload to endpoint and decodes a successful response into target.
func postJSON(executionContext context.Context, httpClient *http.Client, provider ProviderName, endpoint string, headers map[string]string, payload any, target any) error {
	encodedPayload, encodeError := json.Marshal(payload)
	if encodeError != nil {
		return fmt.Errorf(requestEncodingErrorTemplateConst, provider, encodeError)
	}

	httpRequest, buildError := http.NewRequestWithContext(executionContext, httpMethodPostConstant, endpoint, bytes.NewReader(encodedPayload))
	if buildError != nil {
		return fmt.Errorf(requestBuildErrorTemplateConstant, provider, buildError)
	}
	httpRequest.Header.Set(contentTypeHeaderConstant, jsonContentTypeConstant)
	for headerName, headerValue := range headers {
		httpRequest.Header.Set(headerName, headerValue)
	}

	httpResponse, sendError := httpClient.Do(httpRequest)
	if sendError != nil {
		return fmt.Errorf(requestSendErrorTemplateConstant, provider, sendError)
	}
	defer httpResponse.Body.Close()

	responseBody, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		return fmt.Errorf(responseReadErrorTemplateConstant, provider, readError)
	}

	if httpResponse.StatusCode < http.StatusOK || httpResponse.StatusCode >= http.StatusMultipleChoices {
		return ProviderError{Provider: provider, StatusCode: httpResponse.StatusCode, Message: describeErrorBody(responseBody)}
	}

	if decodeError := json.Unmarshal(responseBody, target); decodeError != nil {
		return fmt.Errorf(responseDecodeErrorTemplateConst, provider, decodeError)
	}
	return nil
}

func describeErrorBody(responseBody []byte) string {
	var decodedBody providerErrorBody
	if decodeError := json.Unmarshal(responseBody, &decodedBody); decodeError == nil && len(decodedBody.Error.Message) > 0 {
		return decodedBody.Error.Message
	}
	trimmedBody := strings.TrimSpace(string(responseBody))
	if len(trimmedBody) > providerErrorBodyExcerptLimitConst {
		return trimmedBody[:providerErrorBodyExcerptLimitConst]
	}
	return trimmedBody
}

// IsProviderError reports whether err carries a ProviderError with the given status code.
func IsProviderError(err error, statusCode int) bool {
	var providerError ProviderError
	return errors.As(err, &providerError) && providerError.StatusCode == statusCode
}
