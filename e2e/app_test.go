package e2e

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type expense struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

// E2ETestSuite drives the running server over HTTP with playwright's request context
type E2ETestSuite struct {
	suite.Suite
	pw  *playwright.Playwright
	api playwright.APIRequestContext
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	api, err := pw.Request.NewContext(playwright.APIRequestNewContextOptions{
		BaseURL: playwright.String(appURL),
	})
	require.NoError(suite.T(), err, "could not create request context")
	suite.api = api
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.api != nil {
		suite.api.Dispose()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

func (suite *E2ETestSuite) authHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func (suite *E2ETestSuite) register(username, password string) playwright.APIResponse {
	resp, err := suite.api.Post("/register", playwright.APIRequestContextPostOptions{
		Data: map[string]string{"username": username, "password": password},
	})
	require.NoError(suite.T(), err, "register request failed")
	return resp
}

func (suite *E2ETestSuite) login(username, password string) string {
	resp, err := suite.api.Post("/login", playwright.APIRequestContextPostOptions{
		Data: map[string]string{"username": username, "password": password},
	})
	require.NoError(suite.T(), err, "login request failed")
	require.Equal(suite.T(), http.StatusOK, resp.Status(), "login should succeed")

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(suite.T(), resp.JSON(&body))
	require.NotEmpty(suite.T(), body.AccessToken)
	return body.AccessToken
}

func (suite *E2ETestSuite) listExpenses(token string) []expense {
	resp, err := suite.api.Get("/expenses", playwright.APIRequestContextGetOptions{
		Headers: suite.authHeader(token),
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), http.StatusOK, resp.Status())

	var list []expense
	require.NoError(suite.T(), resp.JSON(&list))
	return list
}

func (suite *E2ETestSuite) TestCompleteUserFlow() {
	resp := suite.register("alice", "secret1")
	assert.Equal(suite.T(), http.StatusCreated, resp.Status())

	token := suite.login("alice", "secret1")

	// Create
	resp, err := suite.api.Post("/expenses", playwright.APIRequestContextPostOptions{
		Headers: suite.authHeader(token),
		Data:    map[string]any{"name": "Coffee", "amount": 4.5, "category": "Food"},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), http.StatusCreated, resp.Status())
	var created expense
	require.NoError(suite.T(), resp.JSON(&created))
	assert.Equal(suite.T(), expense{ID: created.ID, Name: "Coffee", Amount: 4.5, Category: "Food"}, created)
	assert.NotZero(suite.T(), created.ID)

	raw, err := resp.Text()
	require.NoError(suite.T(), err)
	assert.NotContains(suite.T(), raw, "user_id")

	// List
	list := suite.listExpenses(token)
	require.Len(suite.T(), list, 1)
	assert.Equal(suite.T(), created, list[0])

	// Update
	resp, err = suite.api.Put("/expenses/"+strconv.FormatInt(created.ID, 10), playwright.APIRequestContextPutOptions{
		Headers: suite.authHeader(token),
		Data:    map[string]any{"name": "Tea", "amount": 3.0, "category": "Food"},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), http.StatusOK, resp.Status())
	var updated expense
	require.NoError(suite.T(), resp.JSON(&updated))
	assert.Equal(suite.T(), "Tea", updated.Name)
	assert.Equal(suite.T(), 3.0, updated.Amount)

	// Delete
	resp, err = suite.api.Delete("/expenses/"+strconv.FormatInt(created.ID, 10), playwright.APIRequestContextDeleteOptions{
		Headers: suite.authHeader(token),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNoContent, resp.Status())

	assert.Empty(suite.T(), suite.listExpenses(token))

	resp, err = suite.api.Delete("/expenses/"+strconv.FormatInt(created.ID, 10), playwright.APIRequestContextDeleteOptions{
		Headers: suite.authHeader(token),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNotFound, resp.Status())
}

func (suite *E2ETestSuite) TestAdminBootstrap() {
	token := suite.login(adminUser, adminPassword)
	assert.NotNil(suite.T(), suite.listExpenses(token))
}

func (suite *E2ETestSuite) TestDuplicateRegistration() {
	assert.Equal(suite.T(), http.StatusCreated, suite.register("bob", "pw1").Status())
	assert.Equal(suite.T(), http.StatusBadRequest, suite.register("bob", "pw2").Status())
}

func (suite *E2ETestSuite) TestRejectsBadCredentialsAndTokens() {
	resp, err := suite.api.Post("/login", playwright.APIRequestContextPostOptions{
		Data: map[string]string{"username": adminUser, "password": "wrong"},
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.Status())

	resp, err = suite.api.Get("/expenses", playwright.APIRequestContextGetOptions{
		Headers: suite.authHeader("forged.token.value"),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.Status())
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
