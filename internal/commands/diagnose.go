package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/vantorre/redline/internal/app"
	"github.com/vantorre/redline/internal/bedrock"
	"github.com/vantorre/redline/internal/utils"
)

// DiagnoseCommand returns the CLI command for the credential preflight
func DiagnoseCommand() *cli.Command {
	return &cli.Command{
		Name:  "diagnose",
		Usage: "Check AWS credentials and Bedrock model access",
		Description: "Runs the credential preflight: local key format checks, an STS\n" +
			"GetCallerIdentity call, and a minimal model invocation, with a hint\n" +
			"for each failure.",
		Action: diagnoseAction,
	}
}

var (
	passLabel = color.New(color.FgGreen, color.Bold).Sprint("PASS")
	warnLabel = color.New(color.FgYellow, color.Bold).Sprint("WARN")
	failLabel = color.New(color.FgRed, color.Bold).Sprint("FAIL")
	skipLabel = color.New(color.FgHiBlack).Sprint("SKIP")
)

func diagnoseAction(c *cli.Context) error {
	a, err := app.FromContext(c)
	if err != nil {
		return err
	}

	utils.PrintHeading("Bedrock preflight")
	utils.PrintKeyValue("Model", a.Config.Bedrock.ModelID)
	utils.PrintKeyValue("Region", a.Bedrock.Region())
	fmt.Println()

	report := a.Bedrock.Diagnose(c.Context)

	for _, step := range report.Steps {
		fmt.Printf("[%s] %s", stepLabel(step.Status), step.Name)
		if step.Detail != "" {
			fmt.Printf(": %s", step.Detail)
		}
		fmt.Println()
		if step.Hint != "" {
			fmt.Println(color.HiBlackString("       hint: %s", step.Hint))
		}
	}

	if report.Identity != nil {
		fmt.Println()
		utils.PrintKeyValue("Account", report.Identity.Account)
		utils.PrintKeyValue("Caller", report.Identity.ARN)
	}

	fmt.Println()
	if !report.Healthy() {
		utils.PrintError("Reviews will not work until the failing checks are fixed")
		return cli.Exit("", 1)
	}
	utils.PrintSuccess("All checks passed")
	return nil
}

func stepLabel(status bedrock.StepStatus) string {
	switch status {
	case bedrock.StepOK:
		return passLabel
	case bedrock.StepWarn:
		return warnLabel
	case bedrock.StepFail:
		return failLabel
	default:
		return skipLabel
	}
}
