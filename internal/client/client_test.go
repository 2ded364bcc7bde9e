package client

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net"
	"net/url"
	"testing"
	"time"

	"code.superseriousbusiness.org/httpsig"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/metrics"
)

const (
	address = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	keyId   = "test-key"
)

var key *rsa.PrivateKey
var algo = httpsig.RSA_SHA256
var ctx = context.Background()

func TestMain(m *testing.M) {
	var err error
	key, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatal().Err(err).Msg("tests setup failure")
		return
	}

	m.Run()
}

// verify wraps next with a check of the request signature.
func verify(t *testing.T, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verifier, err := httpsig.NewVerifier(r)
		if err != nil {
			t.Error(err)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		if verifier.KeyId() != keyId {
			t.Errorf("unexpected key id %s", verifier.KeyId())
		}
		if err = verifier.Verify(&key.PublicKey, algo); err != nil {
			t.Error("signature validation error:", err)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next(w, r)
	})
}

func newClient(t *testing.T, h http.Handler) *HttpClient {
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	base, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(server.Client(), base, key, keyId, metrics.New())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestGetProfile(t *testing.T) {
	expected := domain.Profile{
		Address: address,
		Name:    "Alice",
		FID:     42,
		Socials: domain.Socials{domain.GitHub: "alice"},
	}

	c := newClient(t, verify(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/api/profiles/"+address {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"address":"` + address + `","name":"Alice","fid":42,"email":null,"socials":{"github":"alice"}}`))
	}))

	p, err := c.GetProfile(ctx, address)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(expected, p); diff != "" {
		t.Error(diff)
	}
}

func TestGetDonations(t *testing.T) {
	c := newClient(t, verify(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("address") != address || q.Get("role") != "donor" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id":"d1","txHash":"0xabc","donor":"` + address + `","recipient":"0x01","amount":"10","recipientAmount":"9","fee":"1","blockNumber":7,"timestamp":1700000000}]`))
	}))

	donations, err := c.GetDonations(ctx, address, domain.Donor)
	if err != nil {
		t.Fatal(err)
	}
	expected := []domain.Donation{{
		ID:              "d1",
		TxHash:          "0xabc",
		Donor:           address,
		Recipient:       "0x01",
		Amount:          "10",
		RecipientAmount: "9",
		Fee:             "1",
		BlockNumber:     7,
		Timestamp:       1700000000,
	}}
	if diff := cmp.Diff(expected, donations); diff != "" {
		t.Error(diff)
	}
}

func TestGetDonations_NullIsEmpty(t *testing.T) {
	c := newClient(t, verify(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))

	donations, err := c.GetDonations(ctx, address, domain.Recipient)
	if err != nil {
		t.Fatal(err)
	}
	if donations == nil || len(donations) != 0 {
		t.Errorf("expected an empty, non nil collection, got %#v", donations)
	}
}

func TestUpdateProfile_PayloadHasNoFID(t *testing.T) {
	c := newClient(t, verify(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.Header.Get("Digest") == "" {
			t.Error("expected a digest header on a request with a body")
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Error(err)
			return
		}
		if _, ok := payload["fid"]; ok {
			t.Errorf("payload must not carry the fid: %s", body)
		}
		w.Write([]byte(`{"address":"` + address + `","name":"Bob","fid":42}`))
	}))

	p, err := c.UpdateProfile(ctx, domain.ProfileUpdate{Address: address, Name: "Bob"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Bob" || p.FID != 42 {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestErrors(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		update   bool
		expected error
	}{
		{"not found", http.StatusNotFound, `{"error":"no such profile"}`, false, ErrNotFound},
		{"server error", http.StatusInternalServerError, ``, false, ErrTransport},
		{"bad json", http.StatusOK, `{"address":`, false, ErrDecode},
		{"rejected write", http.StatusUnprocessableEntity, `{"error":"invalid email address","field":"email"}`, true, ErrRejected},
		{"server error on write", http.StatusBadGateway, ``, true, ErrTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, verify(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))

			var err error
			if tc.update {
				_, err = c.UpdateProfile(ctx, domain.ProfileUpdate{Address: address})
			} else {
				_, err = c.GetProfile(ctx, address)
			}
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestRejectedErrorCarriesField(t *testing.T) {
	c := newClient(t, verify(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"invalid email address","field":"email"}`))
	}))

	_, err := c.UpdateProfile(ctx, domain.ProfileUpdate{Address: address})
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected a RejectedError, got %v", err)
	}
	if rejected.Field != "email" || rejected.Message != "invalid email address" {
		t.Errorf("unexpected rejection %+v", rejected)
	}
}

func TestTransportFailure(t *testing.T) {
	base, _ := url.Parse("http://127.0.0.1:1")
	c, err := New(&http.Client{}, base, key, keyId, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = c.GetProfile(ctx, address); !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func TestGetRevisions(t *testing.T) {
	c := newClient(t, verify(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/profiles/"+address+"/revisions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":2,"address":"` + address + `","patch":"@@ -1 +1 @@","created":1700000000}]`))
	}))

	revisions, err := c.GetRevisions(ctx, address)
	if err != nil {
		t.Fatal(err)
	}
	expected := []domain.Revision{{ID: 2, Address: address, Patch: "@@ -1 +1 @@", Created: 1700000000}}
	if diff := cmp.Diff(expected, revisions); diff != "" {
		t.Error(diff)
	}
}

// slowServer answers only once the client has given up.
func slowServer(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
}

func TestDeadlineKeepsCause(t *testing.T) {
	c := newClient(t, slowServer(t))

	timeout, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err := c.GetProfile(timeout, address)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the deadline to be kept as the cause, got %v", err)
	}
}

func TestClientTimeoutKeepsCause(t *testing.T) {
	server := httptest.NewServer(slowServer(t))
	t.Cleanup(server.Close)
	base, _ := url.Parse(server.URL)
	c, err := New(&http.Client{Timeout: 50 * time.Millisecond}, base, key, keyId, metrics.New())
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.GetDonations(ctx, address, domain.Recipient)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
	var ne net.Error
	if !errors.As(err, &ne) || !ne.Timeout() {
		t.Errorf("expected a timeout error, got %v", err)
	}
}
