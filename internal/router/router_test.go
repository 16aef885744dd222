package router

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/jobtrack/internal/auth"
	"github.com/patric-chuzhbe/jobtrack/internal/db/memorystorage"
	"github.com/patric-chuzhbe/jobtrack/internal/logger"
	"github.com/patric-chuzhbe/jobtrack/internal/models"
	"github.com/patric-chuzhbe/jobtrack/internal/service"
)

var testSigningKey = []byte("router-test-signing-key")

func TestMain(m *testing.M) {
	if err := logger.Init("info"); err != nil {
		fmt.Println("Error initializing the logger:", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := memorystorage.New()
	require.NoError(t, err)
	srv := httptest.NewServer(New(
		service.New(db),
		auth.New(testSigningKey, time.Minute),
	))
	t.Cleanup(srv.Close)
	return srv
}

func registerUser(t *testing.T, srv *httptest.Server, email string) models.AuthResponse {
	t.Helper()
	resp, err := resty.New().R().
		SetBody(map[string]string{
			"name":     "Test",
			"email":    email,
			"password": "qwerty123",
		}).
		Post(srv.URL + "/auth/register")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	var out models.AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	require.NotEmpty(t, out.Token)
	return out
}

func createJob(t *testing.T, srv *httptest.Server, token string, body map[string]string) map[string]map[string]interface{} {
	t.Helper()
	resp, err := resty.New().R().
		SetAuthToken(token).
		SetBody(body).
		Post(srv.URL + "/job/create-job")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	var out map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	return out
}

func TestRegister(t *testing.T) {
	t.Run("creates the user and issues a token", func(t *testing.T) {
		srv := newTestServer(t)
		resp, err := resty.New().R().
			SetBody(map[string]string{
				"name":     "Ada",
				"email":    "ada@example.com",
				"password": "qwerty123",
			}).
			Post(srv.URL + "/auth/register")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode())
		assert.NotContains(t, string(resp.Body()), "password")

		var out models.AuthResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.True(t, out.Success)
		assert.Equal(t, "User created successfully", out.Message)
		assert.NotEmpty(t, out.Token)
		require.NotNil(t, out.User)
		assert.Equal(t, "India", out.User.Location)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		srv := newTestServer(t)
		resp, err := resty.New().R().
			SetBody(map[string]string{
				"name":     "Ada",
				"email":    "ada@example.com",
				"password": "short",
			}).
			Post(srv.URL + "/auth/register")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

		var out models.APIError
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.False(t, out.Success)
		assert.Contains(t, out.Message, "at least 6 characters")
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		srv := newTestServer(t)
		resp, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(`{"name": "Ada"`).
			Post(srv.URL + "/auth/register")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		srv := newTestServer(t)
		registerUser(t, srv, "ada@example.com")

		resp, err := resty.New().R().
			SetBody(map[string]string{
				"name":     "Other",
				"email":    "ada@example.com",
				"password": "qwerty123",
			}).
			Post(srv.URL + "/auth/register")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

		var out models.APIError
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.Equal(t, "email field has to be unique", out.Message)
	})

	t.Run("accepts a gzip-compressed body", func(t *testing.T) {
		srv := newTestServer(t)

		payload, err := json.Marshal(map[string]string{
			"name":     "Ada",
			"email":    "ada@example.com",
			"password": "qwerty123",
		})
		require.NoError(t, err)

		var compressed bytes.Buffer
		gzipWriter := gzip.NewWriter(&compressed)
		_, err = gzipWriter.Write(payload)
		require.NoError(t, err)
		require.NoError(t, gzipWriter.Close())

		resp, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetHeader("Content-Encoding", "gzip").
			SetBody(compressed.Bytes()).
			Post(srv.URL + "/auth/register")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode())
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		srv := newTestServer(t)
		registerUser(t, srv, "ada@example.com")

		resp, err := resty.New().R().
			SetBody(map[string]string{
				"email":    "ada@example.com",
				"password": "qwerty123",
			}).
			Post(srv.URL + "/auth/login")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())

		var out models.AuthResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.True(t, out.Success)
		assert.Equal(t, "Login Successful", out.Message)
		assert.NotEmpty(t, out.Token)
	})

	t.Run("wrong password yields no token", func(t *testing.T) {
		srv := newTestServer(t)
		registerUser(t, srv, "ada@example.com")

		resp, err := resty.New().R().
			SetBody(map[string]string{
				"email":    "ada@example.com",
				"password": "not-the-password",
			}).
			Post(srv.URL + "/auth/login")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

		var out models.APIError
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.False(t, out.Success)
		assert.Equal(t, "Invalid Username or Password", out.Message)
		assert.NotContains(t, string(resp.Body()), "token")
	})

	t.Run("unknown email gets the same message", func(t *testing.T) {
		srv := newTestServer(t)

		resp, err := resty.New().R().
			SetBody(map[string]string{
				"email":    "nobody@example.com",
				"password": "qwerty123",
			}).
			Post(srv.URL + "/auth/login")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

		var out models.APIError
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.Equal(t, "Invalid Username or Password", out.Message)
	})
}

func TestUpdateUser(t *testing.T) {
	srv := newTestServer(t)
	registered := registerUser(t, srv, "ada@example.com")

	resp, err := resty.New().R().
		SetAuthToken(registered.Token).
		SetBody(map[string]string{
			"name":     "Ada",
			"lastName": "Lovelace",
			"email":    "countess@example.com",
			"location": "London",
		}).
		Put(srv.URL + "/user/update-user")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	var out models.AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	assert.True(t, out.Success)
	assert.NotEmpty(t, out.Token)
	require.NotNil(t, out.User)
	assert.Equal(t, "Lovelace", out.User.LastName)
	assert.Equal(t, "London", out.User.Location)
}

func TestAuthentication(t *testing.T) {
	for _, testCase := range []struct {
		name  string
		setup func(request *resty.Request)
	}{
		{
			name:  "missing authorization header",
			setup: func(request *resty.Request) {},
		},
		{
			name: "header without the bearer scheme",
			setup: func(request *resty.Request) {
				request.SetHeader("Authorization", "some-token")
			},
		},
		{
			name: "junk token",
			setup: func(request *resty.Request) {
				request.SetAuthToken("definitely-not-a-jwt")
			},
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			srv := newTestServer(t)
			request := resty.New().R()
			testCase.setup(request)

			resp, err := request.Get(srv.URL + "/job/get-job")
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())

			var out models.APIError
			require.NoError(t, json.Unmarshal(resp.Body(), &out))
			assert.False(t, out.Success)
			assert.Equal(t, "Authentication failed", out.Message)
		})
	}
}

func TestJobCRUD(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "ada@example.com")

	created := createJob(t, srv, owner.Token, map[string]string{
		"company":  "Initech",
		"position": "Engineer",
	})
	jobID, _ := created["job"]["id"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, "pending", created["job"]["status"])
	assert.Equal(t, "full-time", created["job"]["workType"])

	t.Run("update", func(t *testing.T) {
		resp, err := resty.New().R().
			SetAuthToken(owner.Token).
			SetBody(map[string]string{
				"company":  "Globex",
				"position": "Engineer",
				"status":   "interview",
			}).
			Put(srv.URL + "/job/update-job/" + jobID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())

		var out map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.Equal(t, "Globex", out["updateJob"]["company"])
		assert.Equal(t, "interview", out["updateJob"]["status"])
	})

	t.Run("update of an unknown id", func(t *testing.T) {
		resp, err := resty.New().R().
			SetAuthToken(owner.Token).
			SetBody(map[string]string{
				"company":  "Globex",
				"position": "Engineer",
			}).
			Put(srv.URL + "/job/update-job/no-such-id")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	})

	t.Run("delete", func(t *testing.T) {
		resp, err := resty.New().R().
			SetAuthToken(owner.Token).
			Delete(srv.URL + "/job/delete-job/" + jobID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())

		var out models.APIMessage
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.True(t, out.Success)
		assert.Equal(t, "Success, Job deleted!", out.Message)
	})
}

func TestJobOwnership(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "ada@example.com")
	stranger := registerUser(t, srv, "grace@example.com")

	created := createJob(t, srv, owner.Token, map[string]string{
		"company":  "Initech",
		"position": "Engineer",
	})
	jobID, _ := created["job"]["id"].(string)
	require.NotEmpty(t, jobID)

	t.Run("stranger cannot update", func(t *testing.T) {
		resp, err := resty.New().R().
			SetAuthToken(stranger.Token).
			SetBody(map[string]string{
				"company":  "Evil Corp",
				"position": "Mole",
			}).
			Put(srv.URL + "/job/update-job/" + jobID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode())
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		resp, err := resty.New().R().
			SetAuthToken(stranger.Token).
			Delete(srv.URL + "/job/delete-job/" + jobID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode())
	})

	t.Run("the record stays intact for the owner", func(t *testing.T) {
		resp, err := resty.New().R().
			SetAuthToken(owner.Token).
			Get(srv.URL + "/job/get-job")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())

		var out models.JobsListResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		require.Len(t, out.Jobs, 1)
		assert.Equal(t, "Initech", out.Jobs[0].Company)
	})

	t.Run("listings never mix owners", func(t *testing.T) {
		resp, err := resty.New().R().
			SetAuthToken(stranger.Token).
			Get(srv.URL + "/job/get-job")
		require.NoError(t, err)

		var out models.JobsListResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.Empty(t, out.Jobs)
	})
}

func TestGetJobs(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "ada@example.com")

	for _, seed := range []map[string]string{
		{"company": "Initech", "position": "Backend Engineer", "status": "pending"},
		{"company": "Globex", "position": "Data Analyst", "status": "interview"},
		{"company": "Hooli", "position": "Frontend Engineer", "status": "rejected"},
	} {
		createJob(t, srv, owner.Token, seed)
	}

	t.Run("z-a sorts positions descending", func(t *testing.T) {
		resp, err := resty.New().R().
			SetAuthToken(owner.Token).
			SetQueryParam("sort", "z-a").
			Get(srv.URL + "/job/get-job")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())

		var out models.JobsListResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		require.Len(t, out.Jobs, 3)
		assert.Equal(t, "Frontend Engineer", out.Jobs[0].Position)
		assert.Equal(t, "Backend Engineer", out.Jobs[2].Position)
	})

	t.Run("status filter", func(t *testing.T) {
		resp, err := resty.New().R().
			SetAuthToken(owner.Token).
			SetQueryParam("status", "interview").
			Get(srv.URL + "/job/get-job")
		require.NoError(t, err)

		var out models.JobsListResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.EqualValues(t, 1, out.TotalJobs)
		require.Len(t, out.Jobs, 1)
		assert.Equal(t, "Data Analyst", out.Jobs[0].Position)
	})

	t.Run("pagination reports the full total", func(t *testing.T) {
		resp, err := resty.New().R().
			SetAuthToken(owner.Token).
			SetQueryParams(map[string]string{
				"page":  "2",
				"limit": "2",
				"sort":  "a-z",
			}).
			Get(srv.URL + "/job/get-job")
		require.NoError(t, err)

		var out models.JobsListResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &out))
		assert.EqualValues(t, 3, out.TotalJobs)
		assert.EqualValues(t, 2, out.NumOfPage)
		assert.Len(t, out.Jobs, 1)
	})
}

func TestGetJobStats(t *testing.T) {
	srv := newTestServer(t)
	owner := registerUser(t, srv, "ada@example.com")

	for _, seed := range []map[string]string{
		{"company": "Initech", "position": "Engineer", "status": "pending"},
		{"company": "Globex", "position": "Analyst", "status": "pending"},
		{"company": "Hooli", "position": "Designer", "status": "rejected"},
	} {
		createJob(t, srv, owner.Token, seed)
	}

	resp, err := resty.New().R().
		SetAuthToken(owner.Token).
		Get(srv.URL + "/job/job-stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	var out models.JobStatsResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	assert.Equal(t, 2, out.TotalJob)
	assert.EqualValues(t, 2, out.DefaultStats.Pending)
	assert.EqualValues(t, 0, out.DefaultStats.Interview)
	assert.EqualValues(t, 1, out.DefaultStats.Rejected)
	require.Len(t, out.MonthlyApplications, 1)
	assert.Equal(t, time.Now().Format("Jan 2006"), out.MonthlyApplications[0].Date)
	assert.EqualValues(t, 3, out.MonthlyApplications[0].Count)
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)
	resp, err := resty.New().R().Get(srv.URL + "/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}
