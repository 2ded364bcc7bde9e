package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/donations"
	"github.com/sidereusnuntius/donata/internal/editor"
	"github.com/sidereusnuntius/donata/internal/validate"
)

const address = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatal(err)
	}
	return sb.String()
}

func TestDonationsURL(t *testing.T) {
	got := DonationsURL(address, domain.Donor)
	if got != "/donations/"+address+"?role=donor" {
		t.Errorf("unexpected url %s", got)
	}
	got = DonationListURL(address, domain.Recipient)
	if got != "/donations/"+address+"/list?role=recipient" {
		t.Errorf("unexpected url %s", got)
	}
}

func TestLayout_WalletStates(t *testing.T) {
	cases := []struct {
		name     string
		auth     domain.Auth
		state    string
		contains string
	}{
		{"disconnected", domain.Auth{}, "disconnected", "Connect wallet"},
		{"loading", domain.Auth{Loading: true}, "loading", "Connecting wallet…"},
		{"connected", domain.Auth{Address: address, Authenticated: true}, "connected", "0x5aAe...eAed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := render(t, Layout(PageData{SiteName: "Donata", Auth: tc.auth}))
			if !strings.Contains(out, `data-wallet-state="`+tc.state+`"`) {
				t.Errorf("missing wallet state %s", tc.state)
			}
			if !strings.Contains(out, tc.contains) {
				t.Errorf("expected %q in output", tc.contains)
			}
		})
	}
}

func TestLayout_EscapesQuery(t *testing.T) {
	out := render(t, Layout(PageData{SiteName: "Donata", Query: `"><script>`}))
	if strings.Contains(out, "<script>\"") || strings.Contains(out, `"><script>`) {
		t.Error("query was not escaped")
	}
}

func TestDonationList_Empty(t *testing.T) {
	out := render(t, DonationList(DonationListData{State: donations.Empty, Role: domain.Recipient}))
	if !strings.Contains(out, ">No donations found.<") {
		t.Errorf("missing empty message in %s", out)
	}
	if strings.Contains(out, "<table") {
		t.Error("the empty state must not render a table")
	}
}

func TestDonationList_Failed(t *testing.T) {
	out := render(t, DonationList(DonationListData{State: donations.Failed, Message: "The service is unreachable."}))
	if !strings.Contains(out, "The service is unreachable.") {
		t.Error("missing error message")
	}
	if strings.Contains(out, "<table") || strings.Contains(out, donations.EmptyMessage) {
		t.Error("the error state renders only the error")
	}
}

func TestDonationList_Populated(t *testing.T) {
	rows := []donations.Row{{
		ID:         "d1",
		TxHash:     "0x0123456789abcdef",
		Donor:      address,
		DonorShort: "0x5aae...eaed",
		Party:      "0x00000000000000000000000000000000000000aa",
		PartyShort: "0x0000...00aa",
		Date:       "Mar 5, 2024",
		Amount:     "1.5",
	}}

	out := render(t, DonationList(DonationListData{State: donations.Populated, Role: domain.Recipient, Rows: rows}))
	for _, s := range []string{"<table", "0x5aae...eaed", "Mar 5, 2024", "1.5"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in output", s)
		}
	}
	if strings.Contains(out, "<th>Recipient</th>") {
		t.Error("a recipient's list does not show the recipient column")
	}

	out = render(t, DonationList(DonationListData{State: donations.Populated, Role: domain.Donor, Rows: rows}))
	if !strings.Contains(out, "<th>Recipient</th>") || !strings.Contains(out, "0x0000...00aa") {
		t.Error("a donor's list shows who received each donation")
	}
}

func TestDonationsPage_LoadsFragment(t *testing.T) {
	out := render(t, DonationsPage(DonationsData{Address: address, Role: domain.Donor}))
	if !strings.Contains(out, `hx-get="/donations/`+address+`/list?role=donor"`) {
		t.Errorf("missing fragment request in %s", out)
	}
	if !strings.Contains(out, "Show donations as recipient") {
		t.Error("missing link to the counterpart role")
	}
}

func TestProfile_View(t *testing.T) {
	record := domain.Profile{
		Address: address,
		Name:    "Alice",
		FID:     42,
		Socials: domain.Socials{domain.GitHub: "alice"},
	}
	out := render(t, Profile(ProfileData{
		Auth:   domain.Auth{Address: address, Authenticated: true},
		Mode:   editor.View,
		Record: record,
		Links:  editor.LinksOf(record.Socials),
	}))

	for _, s := range []string{`data-mode="view"`, "Alice", "42", `href="https://github.com/alice"`, `action="/profile/edit"`} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in output", s)
		}
	}
	if strings.Contains(out, "<input") {
		t.Error("view mode has no inputs")
	}
}

func TestProfile_Edit(t *testing.T) {
	out := render(t, Profile(ProfileData{
		Auth:   domain.Auth{Address: address, Authenticated: true},
		Mode:   editor.Edit,
		Record: domain.Profile{Address: address, FID: 42},
		Draft:  editor.Draft{Name: "A", FID: "42"},
		Errors: validate.FieldErrors{validate.FieldName: "name must be at least 2 characters"},
	}))

	for _, s := range []string{
		`data-mode="edit"`,
		`name="name"`,
		`name="email"`,
		`name="github"`,
		"name must be at least 2 characters",
		`formaction="/profile/cancel"`,
	} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in output", s)
		}
	}
	if strings.Contains(out, `name="address"`) || strings.Contains(out, `name="fid"`) {
		t.Error("read-only fields must not be submitted")
	}
}

func TestProfile_Unauthenticated(t *testing.T) {
	out := render(t, Profile(ProfileData{Mode: editor.Idle}))
	if !strings.Contains(out, "Connect your wallet") {
		t.Error("missing connect notice")
	}
	if strings.Contains(out, "<form") {
		t.Error("no form is shown without a wallet")
	}
}

func TestProfile_ViewLinksHistory(t *testing.T) {
	out := render(t, Profile(ProfileData{
		Auth:   domain.Auth{Address: address, Authenticated: true},
		Mode:   editor.View,
		Record: domain.Profile{Address: address},
	}))
	if !strings.Contains(out, `href="`+ProfileHistoryPath+`"`) {
		t.Errorf("missing history link in %s", out)
	}
}

func TestProfile_EditShowsReadOnlyFieldErrors(t *testing.T) {
	out := render(t, Profile(ProfileData{
		Auth:   domain.Auth{Address: address, Authenticated: true},
		Mode:   editor.Edit,
		Record: domain.Profile{Address: address},
		Errors: validate.FieldErrors{validate.FieldFID: "farcaster id is taken"},
	}))
	if !strings.Contains(out, `<span class="field-error">farcaster id is taken</span>`) {
		t.Errorf("missing fid error in %s", out)
	}
}

func TestProfileHistory(t *testing.T) {
	out := render(t, ProfileHistory(HistoryData{
		Address: address,
		Entries: []HistoryEntry{
			{Date: "Mar 6, 2024", Changes: []string{"Name", "Github"}, Text: "name: Alice <3\ngithub: alice\n"},
			{Date: "Mar 5, 2024", Changes: []string{"Name"}, Text: "name: Al\n"},
		},
	}))

	for _, s := range []string{
		"0x5aAe...eAed",
		"<h2>Mar 6, 2024</h2>",
		"Changed: Name, Github",
		"<h2>Mar 5, 2024</h2>",
		"name: Alice &lt;3",
		`href="` + ProfilePath + `"`,
	} {
		if !strings.Contains(out, s) {
			t.Errorf("expected %q in output", s)
		}
	}
	if strings.Index(out, "Mar 6, 2024") > strings.Index(out, "Mar 5, 2024") {
		t.Error("entries are shown in the order given")
	}
	if strings.Contains(out, NoRevisions) {
		t.Error("a profile with revisions has no empty notice")
	}
}

func TestProfileHistory_Empty(t *testing.T) {
	out := render(t, ProfileHistory(HistoryData{Address: address}))
	if !strings.Contains(out, NoRevisions) {
		t.Errorf("missing empty notice in %s", out)
	}
	if strings.Contains(out, "<ol") {
		t.Error("no list without revisions")
	}
}
