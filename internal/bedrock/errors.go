package bedrock

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrNotConfigured is returned when no AWS credentials were supplied at
// construction time. It short-circuits before any network attempt.
var ErrNotConfigured = errors.New("bedrock client not initialized - configure AWS credentials")

// CapabilityError describes a failed model invocation, annotated with a
// remediation hint when the failure matches a known credential or access
// problem.
type CapabilityError struct {
	Code    string // AWS exception name, when one was identified
	Message string
	Hint    string
	Err     error
}

// Error implements the error interface for CapabilityError
func (e *CapabilityError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s\nHint: %s", msg, e.Hint)
	}
	return msg
}

// Unwrap returns the underlying SDK error
func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// classifyError converts an SDK failure into a CapabilityError, pulling the
// AWS exception name out when one is present.
func classifyError(err error) *CapabilityError {
	code := ""
	message := err.Error()

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
		message = apiErr.ErrorMessage()
	}

	return &CapabilityError{
		Code:    code,
		Message: message,
		Hint:    remediationHint(code, message),
		Err:     err,
	}
}

// remediationHint maps well-known Bedrock failure signatures to actionable
// advice. Unrecognized failures get no hint.
func remediationHint(code, message string) string {
	switch {
	case code == "UnrecognizedClientException",
		strings.Contains(message, "security token included in the request is invalid"):
		return "credentials were rejected - re-copy both keys without quotes or spaces, " +
			"verify the key is active in IAM, and supply AWS_SESSION_TOKEN for temporary (ASIA) keys"
	case code == "InvalidClientTokenId":
		return "the access key id is not recognized - it may have been deleted or belong to another partition"
	case code == "SignatureDoesNotMatch":
		return "the secret access key does not match the access key id - re-copy the secret"
	case code == "AccessDeniedException":
		return "model access is not enabled for this account - open the Bedrock console, " +
			"go to Model access, and request access to Anthropic Claude in this region"
	case code == "ExpiredTokenException":
		return "temporary credentials have expired - fetch a fresh set"
	case code == "ThrottlingException":
		return "request rate exceeded - lower REDLINE_BEDROCK_REQUESTS_PER_MINUTE or request a quota increase"
	case code == "ValidationException":
		return "the request was rejected - verify REDLINE_BEDROCK_MODEL_ID and that the model is available in the configured region"
	case code == "ResourceNotFoundException":
		return "the model id was not found - verify REDLINE_BEDROCK_MODEL_ID and the region"
	}
	return ""
}
