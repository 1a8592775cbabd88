package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/go-oauth-simulator/observer"
	"github.com/jrsteele09/go-oauth-simulator/sessions"
	"github.com/jrsteele09/go-oauth-simulator/simulator"
	"github.com/jrsteele09/go-oauth-simulator/token"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type walkthroughOptions struct {
	username  string
	password  string
	consent   bool
	expire    bool
	refreshes int
	observe   time.Duration
	metrics   bool
}

// walkthroughOutput is the --json document.
type walkthroughOutput struct {
	Report       *simulator.Report             `json:"report"`
	Client       sessions.View                 `json:"client"`
	Ledger       token.Stats                   `json:"auth_server"`
	AccessTokens []simulator.AccessTokenStatus `json:"access_tokens"`
	Metrics      []metricLine                  `json:"metrics,omitempty"`
}

func newWalkthroughCmd(root *rootOptions) *cobra.Command {
	opts := &walkthroughOptions{}

	cmd := &cobra.Command{
		Use:   "walkthrough",
		Short: "Run the five client steps against the simulated servers",
		Long: `Runs, in order: authorization request, login and consent, code exchange,
protected resource call and token verification. With --expire the simulated
clock is moved past the access token lifetime so the resource server refuses
the token, after which the refresh grant obtains a new one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalkthrough(cmd.Context(), cmd.OutOrStdout(), cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.username, "username", "", "User to log in as (default: first fixture user)")
	cmd.Flags().StringVar(&opts.password, "password", "", "Password to log in with (default: the user's fixture password)")
	cmd.Flags().BoolVar(&opts.consent, "consent", true, "Whether the user approves the delegation")
	cmd.Flags().BoolVar(&opts.expire, "expire", false, "Let the access token expire, then refresh it")
	cmd.Flags().IntVar(&opts.refreshes, "refreshes", 0, "Number of extra refresh grants to perform")
	cmd.Flags().DurationVar(&opts.observe, "observe", 0, "Keep printing state snapshots for this long after the walkthrough")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print the collected metrics at the end")
	return cmd
}

func runWalkthrough(ctx context.Context, out io.Writer, cmd *cobra.Command, root *rootOptions, opts *walkthroughOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	simOptions := []simulator.Option{}
	var reader *sdkmetric.ManualReader
	if opts.metrics {
		reader = sdkmetric.NewManualReader()
		simOptions = append(simOptions, simulator.WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))))
	}
	if opts.observe > 0 && !root.jsonOutput {
		simOptions = append(simOptions, simulator.WithObserverSink(func(s observer.Snapshot) {
			printSnapshot(out, s)
		}))
	}

	sim, err := simulator.New(root.config, simOptions...)
	if err != nil {
		return err
	}
	defer sim.Close()

	if opts.observe > 0 {
		sim.StartObserver(ctx)
	}

	wo := simulator.WalkthroughOptions{
		Username:  opts.username,
		Password:  opts.password,
		Consent:   opts.consent,
		Expire:    opts.expire,
		Refreshes: opts.refreshes,
	}
	username, password := sim.DefaultUser()
	if !cmd.Flags().Changed("username") {
		wo.Username = username
	}
	if !cmd.Flags().Changed("password") && wo.Username == username {
		wo.Password = password
	}

	report, err := sim.Walkthrough(wo)
	if err != nil {
		return err
	}

	if opts.observe > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(opts.observe):
		}
	}

	var metrics []metricLine
	if reader != nil {
		if metrics, err = collectMetrics(context.Background(), reader); err != nil {
			return err
		}
	}
	// No more ticks once the summary starts printing.
	if err := sim.Close(); err != nil {
		return err
	}

	if root.jsonOutput {
		return printJSON(out, walkthroughOutput{
			Report:       report,
			Client:       sim.Client.View(root.showSecrets),
			Ledger:       sim.Ledger.Stats(),
			AccessTokens: sim.AccessTokens(),
			Metrics:      metrics,
		})
	}

	printReport(out, report)
	fmt.Fprintln(out, "Client state:")
	printIndented(out, sim.Client.View(root.showSecrets))
	fmt.Fprintln(out, "Auth server state:")
	printIndented(out, sim.Ledger.Stats())
	for _, t := range sim.AccessTokens() {
		fmt.Fprintf(out, "  %s user=%s expires=%s active=%t\n", t.Token, t.Username, t.ExpiresAt.Format(time.TimeOnly), t.Active)
	}
	if len(metrics) > 0 {
		printMetrics(out, metrics)
	}
	return nil
}

func printReport(out io.Writer, r *simulator.Report) {
	for _, step := range r.Steps {
		if step.Error != nil {
			fmt.Fprintf(out, "✗ %s: %s\n", step.Name, step.Error)
			printIndented(out, step.Error)
			continue
		}
		fmt.Fprintf(out, "✓ %s\n", step.Name)
		printIndented(out, step.Result)
	}
	if !r.Completed {
		fmt.Fprintln(out, "Walkthrough stopped early.")
	}
	fmt.Fprintln(out)
}

func printSnapshot(out io.Writer, s observer.Snapshot) {
	fmt.Fprintf(out, "[tick %s] flow=%s codes=%d access=%d refresh=%d\n",
		s.At.Format(time.TimeOnly), s.Session.FlowState,
		s.Ledger.OutstandingAuthCodes, s.Ledger.IssuedAccessTokens, s.Ledger.IssuedRefreshTokens)
}

func printIndented(out io.Writer, v any) {
	data, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		fmt.Fprintf(out, "  %v\n", v)
		return
	}
	fmt.Fprintf(out, "  %s\n", data)
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
