package templates

import (
	"strconv"
	"strings"

	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/editor"
	"github.com/sidereusnuntius/donata/internal/format"
	"github.com/sidereusnuntius/donata/internal/validate"
)

const (
	ProfilePath        = "/profile"
	ProfileEditPath    = "/profile/edit"
	ProfileCancelPath  = "/profile/cancel"
	ProfileHistoryPath = "/profile/history"
)

const NoRevisions = "This profile has not been changed yet."

var networkLabels = map[string]string{
	domain.Twitter:  "X (Twitter)",
	domain.GitHub:   "GitHub",
	domain.Warpcast: "Warpcast",
	domain.Telegram: "Telegram",
	domain.Lens:     "Lens",
}

type ProfileData struct {
	Auth      domain.Auth
	Mode      editor.Mode
	Record    domain.Profile
	Draft     editor.Draft
	Errors    validate.FieldErrors
	FormError string
	Links     []editor.Link
}

func checksum(address string) string {
	if c, err := format.ChecksumAddress(address); err == nil {
		return c
	}
	return address
}

func fidText(fid int64) string {
	if fid <= 0 {
		return ""
	}
	return strconv.FormatInt(fid, 10)
}

// viewRow is one line of the read-only profile. URL is set for handles that link out.
type viewRow struct {
	Label string
	Value string
	URL   string
}

func viewRows(d ProfileData) []viewRow {
	rows := []viewRow{
		{Label: "Address", Value: checksum(d.Record.Address)},
		{Label: "Name", Value: d.Record.Name},
		{Label: "Farcaster ID", Value: fidText(d.Record.FID)},
		{Label: "Email", Value: d.Record.Email},
	}

	links := map[string]editor.Link{}
	for _, l := range d.Links {
		links[l.Network] = l
	}
	for _, network := range domain.SocialNetworks {
		l := links[network]
		rows = append(rows, viewRow{Label: networkLabels[network], Value: l.Handle, URL: l.URL})
	}
	return rows
}

type formField struct {
	ID       string
	Label    string
	Type     string
	Value    string
	Error    string
	ReadOnly bool
}

func formFields(d ProfileData) []formField {
	fields := []formField{
		{ID: validate.FieldAddress, Label: "Address", Type: "text", Value: checksum(d.Record.Address), ReadOnly: true},
		{ID: validate.FieldName, Label: "Name", Type: "text", Value: d.Draft.Name},
		{ID: validate.FieldFID, Label: "Farcaster ID", Type: "text", Value: d.Draft.FID, ReadOnly: true},
		{ID: validate.FieldEmail, Label: "Email", Type: "email", Value: d.Draft.Email},
	}
	for _, network := range domain.SocialNetworks {
		fields = append(fields, formField{ID: network, Label: networkLabels[network], Type: "text", Value: d.Draft.Socials[network]})
	}
	for i := range fields {
		fields[i].Error = d.Errors[fields[i].ID]
	}
	return fields
}

type HistoryData struct {
	Address string
	// Entries are ordered newest first.
	Entries []HistoryEntry
}

type HistoryEntry struct {
	Date string
	// Changes holds the labels of the fields this revision touched.
	Changes []string
	// Text is the profile as it read after the revision.
	Text string
}

func changes(e HistoryEntry) string {
	if len(e.Changes) == 0 {
		return "No visible changes"
	}
	return "Changed: " + strings.Join(e.Changes, ", ")
}
