package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// StepStatus classifies a diagnostic check outcome.
type StepStatus string

const (
	// StepOK means the check passed
	StepOK StepStatus = "ok"
	// StepWarn means the check passed but something looks off
	StepWarn StepStatus = "warn"
	// StepFail means the check failed and reviews will not work
	StepFail StepStatus = "fail"
	// StepSkip means the check did not run
	StepSkip StepStatus = "skip"
)

// Step is one diagnostic check outcome
type Step struct {
	Name   string
	Status StepStatus
	Detail string
	Hint   string
}

// CallerIdentity is the STS identity the credentials resolve to
type CallerIdentity struct {
	Account string
	ARN     string
	UserID  string
}

// Report collects the outcomes of a diagnose run
type Report struct {
	Steps    []Step
	Identity *CallerIdentity // set when the identity check succeeded
}

func (r *Report) add(steps ...Step) {
	r.Steps = append(r.Steps, steps...)
}

// Healthy reports whether no step failed
func (r *Report) Healthy() bool {
	for _, s := range r.Steps {
		if s.Status == StepFail {
			return false
		}
	}
	return true
}

// probeMaxTokens keeps the preflight invocation cheap
const probeMaxTokens = 10

// Diagnose runs the credential preflight: local format checks, then an STS
// GetCallerIdentity call, then a minimal model invocation. Later steps are
// skipped when an earlier one rules them out.
func (c *Client) Diagnose(ctx context.Context) *Report {
	report := &Report{}

	report.add(c.checkCredentialFormat()...)
	if !c.Configured() {
		report.add(
			Step{Name: "caller identity", Status: StepSkip, Detail: "no credentials to verify"},
			Step{Name: "model invocation", Status: StepSkip, Detail: "no credentials to verify"},
		)
		return report
	}

	identity, step := c.checkCallerIdentity(ctx)
	report.Identity = identity
	report.add(step)
	if step.Status == StepFail {
		report.add(Step{Name: "model invocation", Status: StepSkip, Detail: "identity check failed"})
		return report
	}

	report.add(c.checkModelInvocation(ctx))
	return report
}

// checkCredentialFormat flags the copy-paste mistakes that account for most
// auth failures: truncated keys, embedded quotes, and temporary keys missing
// their session token.
func (c *Client) checkCredentialFormat() []Step {
	const name = "credential format"

	if c.accessKeyID == "" || c.secretKey == "" {
		return []Step{{
			Name:   name,
			Status: StepFail,
			Detail: "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not both set",
			Hint:   "export both variables or add them to the .env file in the config directory",
		}}
	}

	var steps []Step

	if strings.ContainsAny(c.accessKeyID, ` "'`) || strings.ContainsAny(c.secretKey, ` "'`) {
		steps = append(steps, Step{
			Name:   name,
			Status: StepFail,
			Detail: "a credential contains an embedded quote or space",
			Hint:   "re-copy the keys; quotes and spaces inside the value break request signing",
		})
	}
	if !strings.HasPrefix(c.accessKeyID, "AKIA") && !strings.HasPrefix(c.accessKeyID, "ASIA") {
		steps = append(steps, Step{
			Name:   name,
			Status: StepWarn,
			Detail: fmt.Sprintf("access key id starts with %q, expected AKIA (long-term) or ASIA (temporary)", keyPrefix(c.accessKeyID)),
		})
	}
	if len(c.accessKeyID) != 20 {
		steps = append(steps, Step{
			Name:   name,
			Status: StepWarn,
			Detail: fmt.Sprintf("access key id is %d characters long, expected 20", len(c.accessKeyID)),
		})
	}
	if len(c.secretKey) != 40 {
		steps = append(steps, Step{
			Name:   name,
			Status: StepWarn,
			Detail: fmt.Sprintf("secret access key is %d characters long, expected 40", len(c.secretKey)),
		})
	}
	if strings.HasPrefix(c.accessKeyID, "ASIA") && c.sessionToken == "" {
		steps = append(steps, Step{
			Name:   name,
			Status: StepFail,
			Detail: "temporary credentials (ASIA key) require AWS_SESSION_TOKEN",
			Hint:   "copy the session token alongside the key pair; all three values change together",
		})
	}

	if len(steps) == 0 {
		steps = append(steps, Step{
			Name:   name,
			Status: StepOK,
			Detail: fmt.Sprintf("access key %s... looks well-formed", keyPrefix(c.accessKeyID)),
		})
	}
	return steps
}

func (c *Client) checkCallerIdentity(ctx context.Context) (*CallerIdentity, Step) {
	const name = "caller identity"

	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		capErr := classifyError(err)
		return nil, Step{Name: name, Status: StepFail, Detail: capErr.Message, Hint: capErr.Hint}
	}

	identity := &CallerIdentity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}
	return identity, Step{
		Name:   name,
		Status: StepOK,
		Detail: fmt.Sprintf("authenticated as %s (account %s)", identity.ARN, identity.Account),
	}
}

func (c *Client) checkModelInvocation(ctx context.Context) Step {
	const name = "model invocation"

	reply, err := c.invoke(ctx, "Hi", probeMaxTokens)
	if err != nil {
		var capErr *CapabilityError
		if errors.As(err, &capErr) {
			return Step{Name: name, Status: StepFail, Detail: capErr.Message, Hint: capErr.Hint}
		}
		return Step{Name: name, Status: StepFail, Detail: err.Error()}
	}

	return Step{
		Name:   name,
		Status: StepOK,
		Detail: fmt.Sprintf("%s answered %q", c.modelID, strings.TrimSpace(reply)),
	}
}

// keyPrefix returns a safe-to-print prefix of a credential
func keyPrefix(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[:4]
}
