package e2e

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the registry is running with issuer "([^"]*)"$`, tc.registryIsRunning)

	// Registry steps
	ctx.Step(`^"([^"]*)" issues credential (\d+) to "([^"]*)"$`, tc.issueCredential)
	ctx.Step(`^I issue credential (\d+) to "([^"]*)" without authorization$`, tc.issueWithoutAuth)
	ctx.Step(`^"([^"]*)" transfers credential (\d+) from "([^"]*)" to "([^"]*)"$`, tc.transferCredential)
	ctx.Step(`^"([^"]*)" safe transfers credential (\d+) from "([^"]*)" to "([^"]*)" with data "([^"]*)"$`, tc.safeTransferCredential)
	ctx.Step(`^"([^"]*)" revokes credential (\d+)$`, tc.revokeCredential)
	ctx.Step(`^"([^"]*)" burns credential (\d+)$`, tc.burnCredential)
	ctx.Step(`^I request the balance of "([^"]*)"$`, tc.requestBalance)
	ctx.Step(`^I request the owner of credential (\d+)$`, tc.requestOwner)
	ctx.Step(`^I query interface support for "([^"]*)"$`, tc.queryInterface)

	// Gate steps
	ctx.Step(`^"([^"]*)" increments the KYC counter$`, tc.incrementCounter)
	ctx.Step(`^I request the KYC count$`, tc.requestCount)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
}

func (tc *TestContext) registryIsRunning(ctx context.Context, issuer string) error {
	return tc.Start(ctx, issuer)
}

func (tc *TestContext) postAs(caller, path string, body interface{}) error {
	headers, err := tc.BearerFor(caller)
	if err != nil {
		return err
	}
	return tc.POSTWithHeaders(path, body, headers)
}

func (tc *TestContext) issueCredential(ctx context.Context, caller string, id uint64, owner string) error {
	return tc.postAs(caller, "/sbt/credentials", map[string]interface{}{
		"owner":    owner,
		"token_id": id,
	})
}

func (tc *TestContext) issueWithoutAuth(ctx context.Context, id uint64, owner string) error {
	return tc.POST("/sbt/credentials", map[string]interface{}{
		"owner":    owner,
		"token_id": id,
	})
}

func (tc *TestContext) transferCredential(ctx context.Context, caller string, id uint64, from, to string) error {
	return tc.postAs(caller, fmt.Sprintf("/sbt/credentials/%d/transfer", id), map[string]interface{}{
		"from": from,
		"to":   to,
	})
}

func (tc *TestContext) safeTransferCredential(ctx context.Context, caller string, id uint64, from, to, data string) error {
	return tc.postAs(caller, fmt.Sprintf("/sbt/credentials/%d/transfer", id), map[string]interface{}{
		"from": from,
		"to":   to,
		"data": data,
	})
}

func (tc *TestContext) revokeCredential(ctx context.Context, caller string, id uint64) error {
	return tc.postAs(caller, fmt.Sprintf("/sbt/credentials/%d/revoke", id), map[string]interface{}{})
}

func (tc *TestContext) burnCredential(ctx context.Context, caller string, id uint64) error {
	return tc.postAs(caller, fmt.Sprintf("/sbt/credentials/%d/burn", id), map[string]interface{}{})
}

func (tc *TestContext) requestBalance(ctx context.Context, account string) error {
	return tc.GET("/sbt/accounts/"+account+"/balance", nil)
}

func (tc *TestContext) requestOwner(ctx context.Context, id uint64) error {
	return tc.GET(fmt.Sprintf("/sbt/credentials/%d/owner", id), nil)
}

func (tc *TestContext) queryInterface(ctx context.Context, tag string) error {
	return tc.GET("/sbt/interfaces/"+tag, nil)
}

func (tc *TestContext) incrementCounter(ctx context.Context, caller string) error {
	return tc.postAs(caller, "/kyc/increment", map[string]interface{}{})
}

func (tc *TestContext) requestCount(ctx context.Context) error {
	return tc.GET("/kyc/count", nil)
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	if tc.LastResponse.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d but got %d: %s", expectedStatus, tc.LastResponse.StatusCode, tc.LastResponseBody)
	}
	return nil
}

func (tc *TestContext) responseShouldContain(ctx context.Context, field string) error {
	if !tc.ResponseContains(field) {
		return fmt.Errorf("response does not contain field: %s\nResponse: %s", field, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	actualValue, ok := data[field]
	if !ok {
		return fmt.Errorf("field %s not found in response", field)
	}

	if fmt.Sprint(actualValue) != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}
