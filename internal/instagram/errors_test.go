package instagram

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramctl-io/gramctl/internal/models"
)

// respond fabricates a resty response with the given status and body.
func respond(t *testing.T, status int, body string) *resty.Response {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	resp, err := resty.New().R().Get(server.URL)
	require.NoError(t, err)
	return resp
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected models.Classification
	}{
		{"too many requests", http.StatusTooManyRequests, `{"status":"fail"}`, models.ClassRateLimited},
		{"cooldown message", http.StatusBadRequest, `{"message":"Please wait a few minutes before you try again."}`, models.ClassRateLimited},
		{"unauthorized", http.StatusUnauthorized, `{}`, models.ClassAuthExpired},
		{"login required", http.StatusBadRequest, `{"message":"login_required"}`, models.ClassAuthExpired},
		{"challenge", http.StatusBadRequest, `{"message":"challenge_required"}`, models.ClassChallengeRequired},
		{"checkpoint", http.StatusBadRequest, `{"message":"checkpoint_required"}`, models.ClassChallengeRequired},
		{"two factor", http.StatusBadRequest, `{"two_factor_required":true}`, models.ClassChallengeRequired},
		{"not found", http.StatusNotFound, `{}`, models.ClassNotFound},
		{"user not found", http.StatusOK, `{"message":"User not found"}`, models.ClassNotFound},
		{"server error", http.StatusInternalServerError, ``, models.ClassTransient},
		{"bad gateway", http.StatusBadGateway, ``, models.ClassTransient},
		{"plain rejection", http.StatusBadRequest, `{"status":"fail"}`, models.ClassFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := classify("op", respond(t, test.status, test.body), nil)
			assert.Equal(t, test.expected, err.Class)
		})
	}
}

func TestClassify_TransportError(t *testing.T) {
	err := classify("op", nil, fmt.Errorf("dial tcp: connection refused"))
	assert.Equal(t, models.ClassTransient, err.Class)
}

func TestClassify_ChallengeCarriesGuidance(t *testing.T) {
	err := classify("login", respond(t, http.StatusBadRequest, `{"message":"challenge_required"}`), nil)
	assert.Contains(t, err.Message, "verification")
}
