package editor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/domain"
	mock_client "github.com/sidereusnuntius/donata/internal/mocks"
	"github.com/sidereusnuntius/donata/internal/validate"
	"go.uber.org/mock/gomock"
)

const (
	alice = "0xab00000000000000000000000000000000000012"
	bob   = "0xb0b0000000000000000000000000000000000000"
)

var ctx = context.Background()

func aliceProfile() domain.Profile {
	return domain.Profile{
		Address: alice,
		Name:    "Alice",
		FID:     42,
		Socials: domain.Socials{domain.GitHub: "alice"},
	}
}

func authenticated(address string) domain.Auth {
	return domain.Auth{Address: address, Authenticated: true}
}

// loaded returns an editor in view mode showing Alice's profile.
func loaded(t *testing.T, c *mock_client.MockClient) *Editor {
	t.Helper()
	c.EXPECT().GetProfile(gomock.Any(), alice).Return(aliceProfile(), nil)

	e := New(c)
	if err := e.Load(ctx, authenticated(alice)); err != nil {
		t.Fatal(err)
	}
	return e
}

func editing(t *testing.T, c *mock_client.MockClient) *Editor {
	t.Helper()
	e := loaded(t, c)
	if err := e.Edit(); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestLoad_ShowsFetchedProfileInViewMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := loaded(t, mock_client.NewMockClient(ctrl))

	if e.Mode() != View {
		t.Errorf("expected view mode, got %s", e.Mode())
	}
	if diff := cmp.Diff(aliceProfile(), e.Record()); diff != "" {
		t.Error(diff)
	}
	expectedDraft := Draft{Name: "Alice", FID: "42", Socials: domain.Socials{domain.GitHub: "alice"}}
	if diff := cmp.Diff(expectedDraft, e.Draft()); diff != "" {
		t.Error(diff)
	}
}

func TestLoad_UnauthenticatedMakesNoRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := New(mock_client.NewMockClient(ctrl))

	if err := e.Load(ctx, domain.Auth{Loading: true}); err != nil {
		t.Fatal(err)
	}
	if e.Mode() != Idle {
		t.Errorf("expected idle mode, got %s", e.Mode())
	}
}

func TestLoad_FailureKeepsPreviousState(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock_client.NewMockClient(ctrl)
	e := loaded(t, c)

	c.EXPECT().GetProfile(gomock.Any(), alice).Return(domain.Profile{}, client.ErrTransport)
	err := e.Load(ctx, authenticated(alice))
	if !errors.Is(err, client.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}

	if e.Mode() != View {
		t.Errorf("expected view mode, got %s", e.Mode())
	}
	if diff := cmp.Diff(aliceProfile(), e.Record()); diff != "" {
		t.Error(diff)
	}
	if e.FormError() == "" {
		t.Error("expected a form error")
	}
}

func TestLoad_StaleResultIsDiscarded(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock_client.NewMockClient(ctrl)
	e := New(c)

	started := make(chan struct{})
	c.EXPECT().GetProfile(gomock.Any(), alice).DoAndReturn(func(ctx context.Context, _ string) (domain.Profile, error) {
		close(started)
		<-ctx.Done()
		return aliceProfile(), nil
	})
	bobProfile := domain.Profile{Address: bob, Name: "Bob", FID: 7}
	c.EXPECT().GetProfile(gomock.Any(), bob).Return(bobProfile, nil)

	result := make(chan error)
	go func() {
		result <- e.Load(ctx, authenticated(alice))
	}()

	<-started
	if err := e.Load(ctx, authenticated(bob)); err != nil {
		t.Fatal(err)
	}

	if err := <-result; !errors.Is(err, ErrStale) {
		t.Errorf("expected the first load to be stale, got %v", err)
	}
	if diff := cmp.Diff(bobProfile, e.Record()); diff != "" {
		t.Error(diff)
	}
	if e.Identity() != bob {
		t.Errorf("unexpected identity %s", e.Identity())
	}
}

func TestEdit_RequiresLoadedProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := New(mock_client.NewMockClient(ctrl))

	if err := e.Edit(); !errors.Is(err, ErrMode) {
		t.Errorf("expected ErrMode, got %v", err)
	}
	if err := e.Set(validate.FieldName, "x"); !errors.Is(err, ErrMode) {
		t.Errorf("expected ErrMode, got %v", err)
	}
	if err := e.Cancel(); !errors.Is(err, ErrMode) {
		t.Errorf("expected ErrMode, got %v", err)
	}
}

func TestSet_AddressIsReadOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := editing(t, mock_client.NewMockClient(ctrl))

	if err := e.Set(validate.FieldAddress, bob); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if err := e.Set("myspace", "tom"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
	if got := e.Record().Address; got != alice {
		t.Errorf("address changed to %s", got)
	}
}

func TestSave_ValidationBlocksSubmission(t *testing.T) {
	cases := []struct {
		name  string
		field string
		value string
	}{
		{"one character name", validate.FieldName, "A"},
		{"invalid email", validate.FieldEmail, "not-an-email"},
		{"non numeric fid", validate.FieldFID, "abc"},
		{"negative fid", validate.FieldFID, "-1"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// No UpdateProfile expectation: any call fails the test.
			e := editing(t, mock_client.NewMockClient(ctrl))

			if err := e.Set(c.field, c.value); err != nil {
				t.Fatal(err)
			}
			err := e.Save(ctx)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			var fe validate.FieldErrors
			if !errors.As(err, &fe) || fe[c.field] == "" {
				t.Errorf("the error should carry the field errors, got %v", err)
			}
			if e.Mode() != Edit {
				t.Errorf("expected edit mode, got %s", e.Mode())
			}
			if msg := e.Errors()[c.field]; msg == "" {
				t.Errorf("expected a message for field %s", c.field)
			}
		})
	}
}

func TestSave_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock_client.NewMockClient(ctrl)
	e := editing(t, c)

	form := url.Values{
		validate.FieldAddress: {bob},
		validate.FieldName:    {"  Alice B  "},
		validate.FieldEmail:   {"alice@example.com"},
		validate.FieldFID:     {"9999"},
		domain.Twitter:        {"@alice_b"},
		domain.GitHub:         {""},
	}
	if err := e.Apply(form); err != nil {
		t.Fatal(err)
	}

	expectedUpdate := domain.ProfileUpdate{
		Address: alice,
		Name:    "Alice B",
		Email:   "alice@example.com",
		Socials: domain.Socials{domain.Twitter: "alice_b"},
	}
	saved := domain.Profile{
		Address: alice,
		Name:    "Alice B",
		FID:     42,
		Email:   "alice@example.com",
		Socials: domain.Socials{domain.Twitter: "alice_b"},
	}
	c.EXPECT().UpdateProfile(gomock.Any(), expectedUpdate).Return(saved, nil)

	if err := e.Save(ctx); err != nil {
		t.Fatal(err)
	}
	if e.Mode() != View {
		t.Errorf("expected view mode, got %s", e.Mode())
	}
	if diff := cmp.Diff(saved, e.Record()); diff != "" {
		t.Error(diff)
	}
	if e.Draft().FID != "42" {
		t.Errorf("expected the draft to follow the saved record, got fid %s", e.Draft().FID)
	}
}

func TestSave_RemoteFailureStaysInEditMode(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		fieldError string
		formError  bool
	}{
		{"transport failure", fmt.Errorf("%w: connection refused", client.ErrTransport), "", true},
		{"rejected field", &client.RejectedError{Status: 422, Field: validate.FieldEmail, Message: "already in use"}, validate.FieldEmail, false},
		{"rejected form", &client.RejectedError{Status: 409, Message: "conflict"}, "", true},
		{"rejected request body", &client.RejectedError{Status: 422, Field: "body", Message: "malformed request"}, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock_client.NewMockClient(ctrl)
			e := editing(t, c)
			if err := e.Set(validate.FieldName, "Alicia"); err != nil {
				t.Fatal(err)
			}

			c.EXPECT().UpdateProfile(gomock.Any(), gomock.Any()).Return(domain.Profile{}, tc.err)
			if err := e.Save(ctx); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}

			if e.Mode() != Edit {
				t.Errorf("expected edit mode, got %s", e.Mode())
			}
			if e.Draft().Name != "Alicia" {
				t.Errorf("the draft was lost: %+v", e.Draft())
			}
			if tc.fieldError != "" && e.Errors()[tc.fieldError] == "" {
				t.Errorf("expected an error on %s", tc.fieldError)
			}
			for field := range e.Errors() {
				if field != tc.fieldError {
					t.Errorf("unexpected error on %s, the form has no such field", field)
				}
			}
			if tc.formError != (e.FormError() != "") {
				t.Errorf("unexpected form error %q", e.FormError())
			}
			if diff := cmp.Diff(aliceProfile(), e.Record()); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestCancel_RestoresLastRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := editing(t, mock_client.NewMockClient(ctrl))

	e.Set(validate.FieldName, "A")
	e.Set(validate.FieldEmail, "not-an-email")
	e.Set(domain.Lens, "alice.lens")
	if err := e.Save(ctx); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	if err := e.Cancel(); err != nil {
		t.Fatal(err)
	}
	if e.Mode() != View {
		t.Errorf("expected view mode, got %s", e.Mode())
	}
	if diff := cmp.Diff(draftOf(aliceProfile()), e.Draft()); diff != "" {
		t.Error(diff)
	}
	if len(e.Errors()) != 0 {
		t.Errorf("expected errors to be cleared, got %v", e.Errors())
	}
}

func TestLinks(t *testing.T) {
	socials := domain.Socials{
		domain.GitHub:   "alice",
		domain.Twitter:  "@alice",
		domain.Telegram: "",
		domain.Lens:     "https://hey.xyz/u/alice",
	}
	expected := []Link{
		{Network: domain.Twitter, Handle: "@alice", URL: "https://x.com/alice"},
		{Network: domain.GitHub, Handle: "alice", URL: "https://github.com/alice"},
		{Network: domain.Lens, Handle: "https://hey.xyz/u/alice", URL: "https://hey.xyz/u/alice"},
	}
	if diff := cmp.Diff(expected, LinksOf(socials)); diff != "" {
		t.Error(diff)
	}
}

func TestSnapshotRestore(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock_client.NewMockClient(ctrl)
	e := editing(t, c)
	e.Set(validate.FieldName, "Alicia")

	s := e.Snapshot()
	restored := Restore(c, s, alice)
	if restored.Mode() != Edit {
		t.Errorf("expected edit mode, got %s", restored.Mode())
	}
	if restored.Draft().Name != "Alicia" {
		t.Errorf("unexpected draft %+v", restored.Draft())
	}

	if other := Restore(c, s, bob); other.Mode() != Idle {
		t.Errorf("a snapshot for another identity must be discarded, got mode %s", other.Mode())
	}
}

func TestMessage(t *testing.T) {
	timeout := &url.Error{Op: "Get", URL: "http://api.example", Err: &net.DNSError{Err: "timeout", IsTimeout: true}}
	cases := []struct {
		name     string
		err      error
		expected string
	}{
		{"deadline", fmt.Errorf("%w: %w", client.ErrTransport, context.DeadlineExceeded), "The donation service took too long to answer. Try again."},
		{"client timeout", fmt.Errorf("%w: %w", client.ErrTransport, timeout), "The donation service took too long to answer. Try again."},
		{"refused", fmt.Errorf("%w: connection refused", client.ErrTransport), "The donation service could not be reached. Try again."},
		{"not found", fmt.Errorf("%w: no such profile", client.ErrNotFound), "No profile was found for this wallet."},
		{"rejected", &client.RejectedError{Status: http.StatusConflict, Message: "address already in use"}, "The profile was not saved: address already in use."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Message(tc.err); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
