package instagram

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/gramctl-io/gramctl/internal/models"
)

// challengeGuidance is shown verbatim when the platform demands
// out-of-band verification. Retrying cannot resolve a challenge.
const challengeGuidance = "Instagram requires additional verification. " +
	"Open the Instagram app or website, complete the verification challenge, then try again."

// classify maps one response (or transport error) to the single
// classified error the rest of the system understands. This is the only
// place platform error identity is inspected.
func classify(op string, resp *resty.Response, err error) *models.ClassifiedError {
	if err != nil {
		// Transport-level faults: DNS, connection resets, timeouts. All
		// retryable; resty wraps context deadline expiry in here too.
		return models.NewTransient(err, "%s: network error", op)
	}

	status := resp.StatusCode()
	body := strings.ToLower(string(resp.Body()))

	switch {
	case containsAny(body, "challenge_required", "checkpoint_required", "two_factor_required"):
		return models.NewChallengeRequired(platformError(op, status, body), challengeGuidance)

	case status == http.StatusTooManyRequests,
		containsAny(body, "please wait a few minutes", "rate_limit"):
		return models.NewRateLimited(platformError(op, status, body), "%s: rate limited by Instagram", op)

	case status == http.StatusUnauthorized,
		containsAny(body, "login_required", "loginrequired", "not_authorized"):
		return models.NewAuthExpired(platformError(op, status, body), "%s: session no longer valid", op)

	case status == http.StatusNotFound,
		containsAny(body, "user not found", "user_not_found"):
		return models.NewNotFound(platformError(op, status, body), "%s: not found", op)

	case status >= http.StatusInternalServerError:
		return models.NewTransient(platformError(op, status, body), "%s: Instagram server error (%d)", op, status)

	default:
		return models.NewFatal(platformError(op, status, body), "%s: request rejected (%d)", op, status)
	}
}

func platformError(op string, status int, body string) error {
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Errorf("%s: status %d: %s", op, status, body)
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
