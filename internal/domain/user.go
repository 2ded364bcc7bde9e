package domain

// Social handle names, in display order.
const (
	Twitter  = "twitter"
	GitHub   = "github"
	Warpcast = "warpcast"
	Telegram = "telegram"
	Lens     = "lens"
)

// SocialNetworks lists every handle a profile may carry.
var SocialNetworks = []string{Twitter, GitHub, Warpcast, Telegram, Lens}

// Socials maps a network name to the user's handle on it. Handles are stored without any
// leading "@".
type Socials map[string]string

func (s Socials) Clone() Socials {
	c := make(Socials, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Profile is the identity data associated with a wallet address. Address is the primary key
// and is never user editable; FID is assigned by the remote service and is read only.
type Profile struct {
	Address string  `json:"address"`
	Name    string  `json:"name"`
	FID     int64   `json:"fid,omitempty"`
	Email   string  `json:"email"`
	Socials Socials `json:"socials"`
}

func (p Profile) Clone() Profile {
	p.Socials = p.Socials.Clone()
	return p
}

// ProfileUpdate is the whole-record write sent to the remote service. It deliberately has no
// FID field.
type ProfileUpdate struct {
	Address string  `json:"address"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Socials Socials `json:"socials"`
}

// Revision records one accepted profile update.
type Revision struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
	Patch   string `json:"patch"`
	Created int64  `json:"created"`
}
