package simulator

import (
	"github.com/jrsteele09/go-oauth-simulator/internal/errors"
	"github.com/jrsteele09/go-oauth-simulator/oauth2"
	"github.com/jrsteele09/go-oauth-simulator/resource"
)

// Step names, in walkthrough order.
const (
	StepAuthorizationRequest = "1) Authorization request"
	StepApproveDelegation    = "2) Approve delegation"
	StepRequestTokens        = "3) Request tokens"
	StepAccessResource       = "4) Access resource"
	StepVerifyToken          = "5) Verify token"
	StepAdvanceClock         = "Advance clock"
	StepRefresh              = "Refresh access token"
)

type WalkthroughOptions struct {
	Username  string
	Password  string
	Consent   bool
	Expire    bool // advance past the access token lifetime, then refresh
	Refreshes int  // extra refresh grants at the end
}

// Step is one action of a walkthrough and what the simulated server said.
type Step struct {
	Name   string `json:"step"`
	Result any    `json:"result,omitempty"`
	Error  error  `json:"error,omitempty"`
}

type Report struct {
	Steps     []Step `json:"steps"`
	Completed bool   `json:"completed"`
}

// Failed reports whether any step was refused.
func (r *Report) Failed() bool {
	for _, s := range r.Steps {
		if s.Error != nil {
			return true
		}
	}
	return false
}

// record appends a step. Protocol errors are kept in the report and reported
// as refused; anything else is returned.
func (r *Report) record(name string, result any, err error) (refused bool, _ error) {
	if err == nil {
		r.Steps = append(r.Steps, Step{Name: name, Result: result})
		return false, nil
	}
	if !isProtocolError(err) {
		return true, err
	}
	r.Steps = append(r.Steps, Step{Name: name, Error: err})
	return true, nil
}

// Walkthrough runs the five client steps in order, optionally letting the
// access token expire and refreshing it. A refused authorization, exchange or
// refresh ends the walkthrough early with Completed false.
func (s *Simulator) Walkthrough(opts WalkthroughOptions) (*Report, error) {
	r := &Report{}

	authURL := s.Client.RequestAuthorization()
	r.record(StepAuthorizationRequest, authURL, nil)

	authResp, err := s.Client.SubmitConsent(opts.Username, opts.Password, opts.Consent)
	if refused, err := r.record(StepApproveDelegation, authResp, err); refused {
		return r, err
	}

	tokens, err := s.Client.ExchangeCode()
	if refused, err := r.record(StepRequestTokens, tokens, err); refused {
		return r, err
	}

	if err := s.useToken(r); err != nil {
		return r, err
	}

	if opts.Expire {
		ttl := s.config.GetDefaultAccessTokenExpiry()
		s.clock.Advance(ttl)
		r.record(StepAdvanceClock, map[string]string{"advanced_by": ttl.String()}, nil)

		if err := s.useToken(r); err != nil {
			return r, err
		}
		if refused, err := s.refresh(r); refused {
			return r, err
		}
		if err := s.useToken(r); err != nil {
			return r, err
		}
	}

	for i := 0; i < opts.Refreshes; i++ {
		if refused, err := s.refresh(r); refused {
			return r, err
		}
	}

	r.Completed = true
	return r, nil
}

// useToken calls the resource server and introspects. Refusals are recorded
// and do not stop the walkthrough.
func (s *Simulator) useToken(r *Report) error {
	resp, err := s.Client.CallProtectedResource()
	if _, err := r.record(StepAccessResource, resp, err); err != nil {
		return err
	}
	info, err := s.Client.VerifyToken()
	_, err = r.record(StepVerifyToken, info, err)
	return err
}

func (s *Simulator) refresh(r *Report) (bool, error) {
	resp, err := s.Client.Refresh()
	return r.record(StepRefresh, resp, err)
}

func isProtocolError(err error) bool {
	var oerr *oauth2.Error
	var rerr *resource.Error
	return errors.As(err, &oerr) || errors.As(err, &rerr)
}
