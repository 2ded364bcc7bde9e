package client

import (
	"bytes"
	"context"
	"crypto"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"code.superseriousbusiness.org/httpsig"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/metrics"
)

const (
	ProfilesPath  = "/api/profiles"
	DonationsPath = "/api/donations"
	// RevisionsSegment follows a profile path to address its revision history.
	RevisionsSegment = "revisions"
	// MaxBodySize bounds how much of a response body is read.
	MaxBodySize = 1 << 20
	// SignatureExpiry is the validity, in seconds, of request signatures.
	SignatureExpiry = 300
)

var (
	ErrNotFound  = errors.New("not found")
	ErrRejected  = errors.New("rejected")
	ErrTransport = errors.New("transport failure")
	ErrDecode    = errors.New("malformed response")
)

var (
	Algorithms  = []httpsig.Algorithm{httpsig.RSA_SHA256}
	getHeaders  = []string{httpsig.RequestTarget, "date"}
	postHeaders = []string{httpsig.RequestTarget, "date", "digest"}
)

//go:generate mockgen -source=client.go -destination=../mocks/mock_client.go -package=mocks

// Client reads and updates the records kept by the remote service. Every call either returns
// a typed value or fails; retry and error display are left to the caller.
type Client interface {
	GetProfile(ctx context.Context, address string) (domain.Profile, error)
	GetDonations(ctx context.Context, address string, role domain.Role) ([]domain.Donation, error)
	// UpdateProfile submits a whole-record update and returns the stored record.
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Profile, error)
	// GetRevisions lists the recorded changes of a profile, newest first.
	GetRevisions(ctx context.Context, address string) ([]domain.Revision, error)
}

// RejectedError is returned when the remote service refuses a write. Field is empty when the
// refusal is not tied to a single field.
type RejectedError struct {
	Status  int
	Field   string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// ErrorBody is the JSON document the remote service answers with on failure.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// HttpClient talks to the remote service over HTTP, signing every request with the instance
// key so the service can tell the request came from this front end.
type HttpClient struct {
	client          *http.Client
	base            *url.URL
	key             crypto.PrivateKey
	keyId           string
	metrics         *metrics.Metrics
	getSigner       httpsig.Signer
	getSignerMutex  sync.Mutex
	postSigner      httpsig.Signer
	postSignerMutex sync.Mutex
}

var _ Client = (*HttpClient)(nil)

func New(client *http.Client, base *url.URL, key crypto.PrivateKey, keyId string, m *metrics.Metrics) (*HttpClient, error) {
	getSigner, _, err := httpsig.NewSigner(Algorithms, httpsig.DigestSha256, getHeaders, httpsig.Signature, SignatureExpiry)
	if err != nil {
		return nil, err
	}

	postSigner, _, err := httpsig.NewSigner(Algorithms, httpsig.DigestSha256, postHeaders, httpsig.Signature, SignatureExpiry)
	if err != nil {
		return nil, err
	}

	return &HttpClient{
		client:     client,
		base:       base,
		key:        key,
		keyId:      keyId,
		metrics:    m,
		getSigner:  getSigner,
		postSigner: postSigner,
	}, nil
}

func (c *HttpClient) GetProfile(ctx context.Context, address string) (p domain.Profile, err error) {
	defer c.observe("get_profile", time.Now(), &err)

	u := c.base.JoinPath(ProfilesPath, address)
	err = c.do(ctx, http.MethodGet, u, nil, &p)
	return
}

func (c *HttpClient) GetDonations(ctx context.Context, address string, role domain.Role) (donations []domain.Donation, err error) {
	defer c.observe("get_donations", time.Now(), &err)

	u := c.base.JoinPath(DonationsPath)
	q := u.Query()
	q.Set("address", address)
	q.Set("role", string(role))
	u.RawQuery = q.Encode()

	err = c.do(ctx, http.MethodGet, u, nil, &donations)
	if donations == nil && err == nil {
		donations = []domain.Donation{}
	}
	return
}

func (c *HttpClient) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (p domain.Profile, err error) {
	defer c.observe("update_profile", time.Now(), &err)

	body, err := json.Marshal(update)
	if err != nil {
		return
	}

	u := c.base.JoinPath(ProfilesPath, update.Address)
	err = c.do(ctx, http.MethodPut, u, body, &p)
	return
}

func (c *HttpClient) GetRevisions(ctx context.Context, address string) (revisions []domain.Revision, err error) {
	defer c.observe("get_revisions", time.Now(), &err)

	u := c.base.JoinPath(ProfilesPath, address, RevisionsSegment)
	err = c.do(ctx, http.MethodGet, u, nil, &revisions)
	if revisions == nil && err == nil {
		revisions = []domain.Revision{}
	}
	return
}

func (c *HttpClient) observe(operation string, start time.Time, err *error) {
	c.metrics.ObserveCall(operation, *err, time.Since(start))
}

func (c *HttpClient) do(ctx context.Context, method string, u *url.URL, body []byte, dst any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err = c.sign(req, body); err != nil {
		log.Error().Err(err).Msg("error while signing request")
		return err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer res.Body.Close()

	content, err := io.ReadAll(io.LimitReader(res.Body, MaxBodySize))
	if err != nil {
		return fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		return statusError(method, res, content)
	}

	if err = json.Unmarshal(content, dst); err != nil {
		log.Error().Err(err).Str("url", u.String()).Msg("response body unmarshaling error")
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func (c *HttpClient) sign(req *http.Request, body []byte) error {
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	if body == nil {
		c.getSignerMutex.Lock()
		defer c.getSignerMutex.Unlock()
		return c.getSigner.SignRequest(c.key, c.keyId, req, nil)
	}

	c.postSignerMutex.Lock()
	defer c.postSignerMutex.Unlock()
	return c.postSigner.SignRequest(c.key, c.keyId, req, body)
}

func statusError(method string, res *http.Response, content []byte) error {
	var eb ErrorBody
	_ = json.Unmarshal(content, &eb)
	if eb.Error == "" {
		eb.Error = http.StatusText(res.StatusCode)
	}

	log.Error().
		Int("code", res.StatusCode).
		Str("method", method).
		Str("message", eb.Error).
		Msg("remote service error")

	switch {
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, eb.Error)
	case res.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %d %s", ErrTransport, res.StatusCode, eb.Error)
	case method == http.MethodGet:
		return fmt.Errorf("%w: %d %s", ErrTransport, res.StatusCode, eb.Error)
	default:
		return &RejectedError{Status: res.StatusCode, Field: eb.Field, Message: eb.Error}
	}
}
