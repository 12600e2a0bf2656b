package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/gramctl-io/gramctl/internal/models"
	"github.com/gramctl-io/gramctl/internal/sessions"
)

const (
	defaultBaseURL   = "https://www.instagram.com"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// webAppID identifies the first-party web client to the API.
	webAppID = "936619743392459"

	loginPagePath = "/accounts/login/"
	loginPath     = "/accounts/login/ajax/"
	profilePath   = "/api/v1/users/web_profile_info/"
	searchPath    = "/web/search/topsearch/"
	feedPath      = "/api/v1/feed/timeline/"
	uploadPath    = "/rupload_igphoto/"
	configurePath = "/api/v1/media/configure/"

	// feedPageSize is the page requested from the timeline endpoint;
	// larger limits walk the next_max_id cursor across pages.
	feedPageSize = 20
)

// Client talks to the Instagram web API. It implements
// sessions.RemoteAccount; every failure it returns is classified.
type Client struct {
	http      *resty.Client
	userAgent string
	device    Device
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different endpoint. Tests use this
// to target a local server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.http.SetBaseURL(baseURL) }
}

// WithTimeout bounds each request. Expiry classifies as transient.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.http.SetTimeout(timeout) }
}

// WithUserAgent overrides the presented browser identity.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) { c.userAgent = userAgent }
}

// NewClient builds a client with a stable device identity for this
// machine.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:      resty.New().SetBaseURL(defaultBaseURL).SetTimeout(defaultTimeout),
		userAgent: defaultUserAgent,
		device:    NewDevice(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.SetHeader("X-IG-App-ID", webAppID)

	return c
}

type loginResponse struct {
	Authenticated bool   `json:"authenticated"`
	User          bool   `json:"user"`
	UserID        string `json:"userId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// Authenticate performs the two-step web login: fetch a csrf token,
// then post the credentials. A rejected password classifies as
// AuthExpired, which the session manager presents as invalid
// credentials at login time.
func (c *Client) Authenticate(ctx context.Context, username, password string) (sessions.RemoteSession, error) {
	cookies := make(map[string]string)

	resp, err := c.request(ctx, cookies).Get(loginPagePath)
	if err != nil || resp.IsError() {
		return nil, classify("login", resp, err)
	}
	mergeCookies(cookies, resp.Cookies())

	csrf := cookies["csrftoken"]
	if len(csrf) == 0 {
		return nil, models.NewTransient(nil, "login: no csrf token issued")
	}

	// The browser login endpoint takes the password wrapped in the
	// plain-text envelope version 0.
	encPassword := fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", time.Now().Unix(), password)

	resp, err = c.request(ctx, cookies).
		SetHeader("X-CSRFToken", csrf).
		SetFormData(map[string]string{
			"username":     username,
			"enc_password": encPassword,
		}).
		Post(loginPath)
	if err != nil || resp.IsError() {
		return nil, classify("login", resp, err)
	}
	mergeCookies(cookies, resp.Cookies())

	var login loginResponse
	if err := json.Unmarshal(resp.Body(), &login); err != nil {
		return nil, models.NewTransient(err, "login: unreadable response")
	}

	if !login.Authenticated {
		return nil, models.NewAuthExpired(nil, "login: credentials rejected")
	}

	logrus.WithFields(logrus.Fields{
		"username": username,
		"user_id":  login.UserID,
	}).Debugln("Authenticated with Instagram")

	return &accountSession{
		client: c,
		state: sessionState{
			Username: username,
			UserID:   login.UserID,
			Device:   c.device,
			Cookies:  cookies,
		},
	}, nil
}

// Resume rebuilds a handle from a previously exported state blob. No
// network traffic happens here; a stale session surfaces as AuthExpired
// on the first real call. An unusable blob classifies as AuthExpired so
// the manager clears it and asks for a fresh login.
func (c *Client) Resume(ctx context.Context, state []byte) (sessions.RemoteSession, error) {
	decoded, err := decodeState(state)
	if err != nil {
		return nil, models.NewAuthExpired(err, "stored session is not usable")
	}

	// Present the device the session was created on.
	c.device = decoded.Device

	return &accountSession{client: c, state: decoded}, nil
}

// request starts a resty request carrying the session cookies and the
// browser identity.
func (c *Client) request(ctx context.Context, cookies map[string]string) *resty.Request {
	r := c.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", c.userAgent)

	for name, value := range cookies {
		r.SetCookie(&http.Cookie{Name: name, Value: value})
	}

	return r
}

func mergeCookies(into map[string]string, cookies []*http.Cookie) {
	for _, cookie := range cookies {
		if len(cookie.Value) > 0 {
			into[cookie.Name] = cookie.Value
		}
	}
}

// accountSession is the authenticated handle for one account. It
// implements sessions.RemoteSession.
type accountSession struct {
	client *Client
	state  sessionState
}

func (s *accountSession) Username() string {
	return s.state.Username
}

func (s *accountSession) Export() ([]byte, error) {
	return encodeState(s.state)
}

func (s *accountSession) request(ctx context.Context) *resty.Request {
	r := s.client.request(ctx, s.state.Cookies)
	if csrf, ok := s.state.Cookies["csrftoken"]; ok {
		r.SetHeader("X-CSRFToken", csrf)
	}
	return r
}

type profileResponse struct {
	Data struct {
		User *struct {
			ID         string `json:"id"`
			Username   string `json:"username"`
			FullName   string `json:"full_name"`
			Biography  string `json:"biography"`
			IsPrivate  bool   `json:"is_private"`
			IsVerified bool   `json:"is_verified"`
			External   string `json:"external_url"`
			PictureURL string `json:"profile_pic_url_hd"`
			Followers  struct {
				Count int `json:"count"`
			} `json:"edge_followed_by"`
			Following struct {
				Count int `json:"count"`
			} `json:"edge_follow"`
			Media struct {
				Count int `json:"count"`
			} `json:"edge_owner_to_timeline_media"`
		} `json:"user"`
	} `json:"data"`
}

func (s *accountSession) Profile(ctx context.Context, username string) (models.Profile, error) {
	resp, err := s.request(ctx).
		SetQueryParam("username", username).
		Get(profilePath)
	if err != nil || resp.IsError() {
		return models.Profile{}, classify("profile", resp, err)
	}

	var payload profileResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return models.Profile{}, models.NewTransient(err, "profile: unreadable response")
	}

	user := payload.Data.User
	if user == nil {
		return models.Profile{}, models.NewNotFound(nil, "user %q not found", username)
	}

	return models.Profile{
		UserID:      user.ID,
		Username:    user.Username,
		FullName:    user.FullName,
		Biography:   user.Biography,
		Followers:   user.Followers.Count,
		Following:   user.Following.Count,
		Posts:       user.Media.Count,
		Private:     user.IsPrivate,
		Verified:    user.IsVerified,
		ExternalURL: user.External,
		PictureURL:  user.PictureURL,
	}, nil
}

func (s *accountSession) AccountStats(ctx context.Context) (models.AccountStats, error) {
	profile, err := s.Profile(ctx, s.state.Username)
	if err != nil {
		return models.AccountStats{}, err
	}
	return profile.Stats(), nil
}

type searchResponse struct {
	Users []struct {
		User struct {
			Username      string `json:"username"`
			FullName      string `json:"full_name"`
			FollowerCount int    `json:"follower_count"`
			IsVerified    bool   `json:"is_verified"`
			IsPrivate     bool   `json:"is_private"`
		} `json:"user"`
	} `json:"users"`
}

// SearchUsers queries the single-page topsearch endpoint and truncates
// the ranked result to limit entries.
func (s *accountSession) SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	resp, err := s.request(ctx).
		SetQueryParam("query", query).
		SetQueryParam("context", "user").
		Get(searchPath)
	if err != nil || resp.IsError() {
		return nil, classify("search", resp, err)
	}

	var payload searchResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, models.NewTransient(err, "search: unreadable response")
	}

	results := make([]models.UserSummary, 0, limit)
	for _, entry := range payload.Users {
		if len(results) == limit {
			break
		}
		results = append(results, models.UserSummary{
			Username:  entry.User.Username,
			FullName:  entry.User.FullName,
			Followers: entry.User.FollowerCount,
			Verified:  entry.User.IsVerified,
			Private:   entry.User.IsPrivate,
		})
	}

	return results, nil
}

type feedResponse struct {
	Items []struct {
		ID   string `json:"id"`
		User struct {
			Username string `json:"username"`
			FullName string `json:"full_name"`
		} `json:"user"`
		Caption *struct {
			Text string `json:"text"`
		} `json:"caption"`
		LikeCount    int   `json:"like_count"`
		CommentCount int   `json:"comment_count"`
		TakenAt      int64 `json:"taken_at"`
	} `json:"items"`
	MoreAvailable bool   `json:"more_available"`
	NextMaxID     string `json:"next_max_id"`
}

// Feed walks the timeline cursor until limit entries are collected or
// the platform reports no further pages.
func (s *accountSession) Feed(ctx context.Context, limit int) ([]models.PostSummary, error) {
	posts := make([]models.PostSummary, 0, limit)
	cursor := ""

	for len(posts) < limit {
		req := s.request(ctx).SetQueryParam("count", fmt.Sprintf("%d", feedPageSize))
		if len(cursor) > 0 {
			req.SetQueryParam("max_id", cursor)
		}

		resp, err := req.Get(feedPath)
		if err != nil || resp.IsError() {
			return nil, classify("feed", resp, err)
		}

		var page feedResponse
		if err := json.Unmarshal(resp.Body(), &page); err != nil {
			return nil, models.NewTransient(err, "feed: unreadable response")
		}

		for _, item := range page.Items {
			if len(posts) == limit {
				break
			}
			post := models.PostSummary{
				ID:       item.ID,
				Username: item.User.Username,
				FullName: item.User.FullName,
				Likes:    item.LikeCount,
				Comments: item.CommentCount,
			}
			if item.Caption != nil {
				post.Caption = item.Caption.Text
			}
			if item.TakenAt > 0 {
				post.TakenAt = time.Unix(item.TakenAt, 0).UTC()
			}
			posts = append(posts, post)
		}

		if !page.MoreAvailable || len(page.NextMaxID) == 0 || len(page.Items) == 0 {
			break
		}
		cursor = page.NextMaxID
	}

	return posts, nil
}

type configureResponse struct {
	Media struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	} `json:"media"`
	Status string `json:"status"`
}

// UploadPhoto pushes the photo bytes to the upload endpoint, then
// configures the pending upload into a published post.
func (s *accountSession) UploadPhoto(ctx context.Context, path, caption string) (models.PostConfirmation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.PostConfirmation{}, models.NewFatal(err, "cannot read photo: %s", path)
	}

	uploadID := fmt.Sprintf("%d", time.Now().UnixMilli())
	entityName := fmt.Sprintf("fb_uploader_%s", uploadID)

	params, err := json.Marshal(map[string]any{
		"media_type":          1,
		"upload_id":           uploadID,
		"upload_media_height": 0,
		"upload_media_width":  0,
	})
	if err != nil {
		return models.PostConfirmation{}, models.NewFatal(err, "cannot encode upload parameters")
	}

	resp, err := s.request(ctx).
		SetHeader("Content-Type", "image/jpeg").
		SetHeader("X-Entity-Name", entityName).
		SetHeader("X-Entity-Length", fmt.Sprintf("%d", len(data))).
		SetHeader("X-Instagram-Rupload-Params", string(params)).
		SetHeader("Offset", "0").
		SetBody(data).
		Post(uploadPath + entityName)
	if err != nil || resp.IsError() {
		return models.PostConfirmation{}, classify("upload", resp, err)
	}

	resp, err = s.request(ctx).
		SetFormData(map[string]string{
			"upload_id":   uploadID,
			"caption":     caption,
			"source_type": "library",
			"device_id":   s.state.Device.DeviceID,
			"entity_name": filepath.Base(path),
		}).
		Post(configurePath)
	if err != nil || resp.IsError() {
		return models.PostConfirmation{}, classify("configure", resp, err)
	}

	var payload configureResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return models.PostConfirmation{}, models.NewTransient(err, "configure: unreadable response")
	}

	if len(payload.Media.ID) == 0 {
		return models.PostConfirmation{}, models.NewFatal(nil, "configure: upload was not published")
	}

	return models.PostConfirmation{
		MediaID: payload.Media.ID,
		Code:    payload.Media.Code,
	}, nil
}
