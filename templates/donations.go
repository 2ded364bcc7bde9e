package templates

import (
	"net/url"

	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/donations"
)

// DonationsURL is the page listing the donations of address in role.
func DonationsURL(address string, role domain.Role) string {
	u := &url.URL{Path: "/donations/" + address}
	u.RawQuery = url.Values{"role": {string(role)}}.Encode()
	return u.String()
}

// DonationListURL is the fragment holding the list itself.
func DonationListURL(address string, role domain.Role) string {
	u := &url.URL{Path: "/donations/" + address + "/list"}
	u.RawQuery = url.Values{"role": {string(role)}}.Encode()
	return u.String()
}

type DonationsData struct {
	Address string
	Role    domain.Role
}

type DonationListData struct {
	State   donations.State
	Role    domain.Role
	Message string
	Rows    []donations.Row
}
