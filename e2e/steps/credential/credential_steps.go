package credential

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTAs(path string, body any, caller string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	SaveID(alias, id string)
	ResolveID(alias string) (string, error)
	LedgerBalance(account, id string) (uint64, bool, error)
}

// RegisterSteps registers credential lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &credentialSteps{tc: tc}

	// Lifecycle steps
	ctx.Step(`^"([^"]*)" issues a credential named "([^"]*)" to "([^"]*)"$`, steps.issue)
	ctx.Step(`^"([^"]*)" issues a credential named "([^"]*)" to "([^"]*)" saved as "([^"]*)"$`, steps.issueAndSave)
	ctx.Step(`^an unauthenticated client issues a credential to "([^"]*)"$`, steps.issueUnauthenticated)
	ctx.Step(`^"([^"]*)" opts in to credential "([^"]*)"$`, steps.optIn)
	ctx.Step(`^"([^"]*)" transfers credential "([^"]*)" to "([^"]*)"$`, steps.transfer)
	ctx.Step(`^"([^"]*)" revokes credential "([^"]*)" held by "([^"]*)"$`, steps.revoke)

	// Query steps
	ctx.Step(`^I check the status of credential "([^"]*)"$`, steps.status)
	ctx.Step(`^I look up credential "([^"]*)"$`, steps.lookup)
	ctx.Step(`^I list the credentials held by "([^"]*)"$`, steps.holderCredentials)

	// Ledger assertions
	ctx.Step(`^"([^"]*)" should hold (\d+) units? of credential "([^"]*)"$`, steps.shouldHold)
	ctx.Step(`^the holding of "([^"]*)" in credential "([^"]*)" should be frozen$`, steps.shouldBeFrozen)
}

type credentialSteps struct {
	tc TestContext
}

func (s *credentialSteps) issue(ctx context.Context, caller, name, holder string) error {
	return s.tc.POSTAs("/credentials", map[string]any{
		"holder":    holder,
		"name":      name,
		"unit_name": "CERT",
		"url":       "ipfs://" + name,
	}, caller)
}

func (s *credentialSteps) issueAndSave(ctx context.Context, caller, name, holder, alias string) error {
	if err := s.issue(ctx, caller, name, holder); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 201 {
		return fmt.Errorf("issue returned status %d", status)
	}
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.SaveID(alias, fmt.Sprint(id))
	return nil
}

func (s *credentialSteps) issueUnauthenticated(ctx context.Context, holder string) error {
	return s.issue(ctx, "", "Forged", holder)
}

func (s *credentialSteps) optIn(ctx context.Context, account, alias string) error {
	id, err := s.tc.ResolveID(alias)
	if err != nil {
		return err
	}
	return s.tc.POSTAs("/ledger/assets/"+id+"/opt-in", map[string]any{}, account)
}

func (s *credentialSteps) transfer(ctx context.Context, caller, alias, holder string) error {
	id, err := s.tc.ResolveID(alias)
	if err != nil {
		return err
	}
	return s.tc.POSTAs("/credentials/"+id+"/transfer", map[string]any{"holder": holder}, caller)
}

func (s *credentialSteps) revoke(ctx context.Context, caller, alias, holder string) error {
	id, err := s.tc.ResolveID(alias)
	if err != nil {
		return err
	}
	return s.tc.POSTAs("/credentials/"+id+"/revoke", map[string]any{"holder": holder}, caller)
}

func (s *credentialSteps) status(ctx context.Context, alias string) error {
	id, err := s.tc.ResolveID(alias)
	if err != nil {
		return err
	}
	return s.tc.GET("/credentials/"+id+"/status", nil)
}

func (s *credentialSteps) lookup(ctx context.Context, alias string) error {
	id, err := s.tc.ResolveID(alias)
	if err != nil {
		return err
	}
	return s.tc.GET("/credentials/"+id, nil)
}

func (s *credentialSteps) holderCredentials(ctx context.Context, holder string) error {
	return s.tc.GET("/holders/"+holder+"/credentials", nil)
}

func (s *credentialSteps) shouldHold(ctx context.Context, account string, units int, alias string) error {
	id, err := s.tc.ResolveID(alias)
	if err != nil {
		return err
	}
	amount, _, err := s.tc.LedgerBalance(account, id)
	if err != nil {
		return err
	}
	if amount != uint64(units) {
		return fmt.Errorf("%s holds %d units of %s, expected %d", account, amount, id, units)
	}
	return nil
}

func (s *credentialSteps) shouldBeFrozen(ctx context.Context, account, alias string) error {
	id, err := s.tc.ResolveID(alias)
	if err != nil {
		return err
	}
	_, frozen, err := s.tc.LedgerBalance(account, id)
	if err != nil {
		return err
	}
	if !frozen {
		return fmt.Errorf("holding of %s in %s is not frozen", account, id)
	}
	return nil
}
