// Package format holds the pure helpers used to present addresses, dates and amounts.
package format

import (
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DateLayout     = "Jan 2, 2006"
	MaxFractionLen = 4
	addressHexLen  = 40
	truncateHead   = 6
	truncateTail   = 4
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// NormalizeAddress validates a hex account address and returns it in lower case with its
// 0x prefix.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if len(address) != addressHexLen+2 || !strings.HasPrefix(strings.ToLower(address), "0x") {
		return "", ErrInvalidAddress
	}
	body := strings.ToLower(address[2:])
	if _, err := hex.DecodeString(body); err != nil {
		return "", ErrInvalidAddress
	}
	return "0x" + body, nil
}

// ChecksumAddress returns the mixed-case EIP-55 rendering of address.
func ChecksumAddress(address string) (string, error) {
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return "", err
	}
	body := normalized[2:]

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(body))
	digest := hex.EncodeToString(h.Sum(nil))

	var b strings.Builder
	b.WriteString("0x")
	for i, c := range body {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			b.WriteRune(c - 'a' + 'A')
		} else {
			b.WriteRune(c)
		}
	}
	return b.String(), nil
}

// TruncateAddress shortens an address to its first six and last four characters. Strings too
// short to shorten are returned unchanged.
func TruncateAddress(address string) string {
	if len(address) <= truncateHead+truncateTail+3 {
		return address
	}
	return address[:truncateHead] + "..." + address[len(address)-truncateTail:]
}

func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

func Unix(seconds int64) string {
	if seconds <= 0 {
		return ""
	}
	return Date(time.Unix(seconds, 0))
}

// Title capitalizes a label, such as a role name used as a column heading.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// Amounts renders base-unit integers as whole coins, grouping digits the way the configured
// language does.
type Amounts struct {
	decimals int
	symbol   string
	printer  *message.Printer
}

func NewAmounts(decimals int, symbol, lang string) Amounts {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return Amounts{
		decimals: decimals,
		symbol:   symbol,
		printer:  message.NewPrinter(tag),
	}
}

// Parse reads a non-negative base-unit amount.
func (a Amounts) Parse(amount string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(amount), 10)
	if !ok || n.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	return n, nil
}

// Format renders amount with at most MaxFractionLen fractional digits, trailing zeros
// removed. Unparseable input is returned as given.
func (a Amounts) Format(amount string) string {
	n, err := a.Parse(amount)
	if err != nil {
		return amount
	}

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(a.decimals)), nil)
	whole, rest := new(big.Int).QuoRem(n, unit, new(big.Int))

	var s string
	if whole.IsInt64() {
		s = a.printer.Sprintf("%d", whole.Int64())
	} else {
		s = whole.String()
	}

	if a.decimals > 0 && rest.Sign() > 0 {
		frac := rest.String()
		frac = strings.Repeat("0", a.decimals-len(frac)) + frac
		if len(frac) > MaxFractionLen {
			frac = frac[:MaxFractionLen]
		}
		frac = strings.TrimRight(frac, "0")
		if frac == "" && whole.Sign() == 0 {
			s = "<0." + strings.Repeat("0", MaxFractionLen-1) + "1"
		} else if frac != "" {
			s += "." + frac
		}
	}

	if a.symbol == "" {
		return s
	}
	return s + " " + a.symbol
}
