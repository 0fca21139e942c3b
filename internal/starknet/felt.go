package starknet

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

// ErrInvalidFelt is returned when a value is not a valid field element.
var ErrInvalidFelt = errors.New("invalid felt")

// Prime is the Starknet field modulus: 2^251 + 17·2^192 + 1.
var Prime = func() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 251)
	p.Add(p, new(big.Int).Mul(big.NewInt(17), new(big.Int).Lsh(big.NewInt(1), 192)))
	return p.Add(p, big.NewInt(1))
}()

// maxAddress bounds contract addresses (2^251).
var maxAddress = new(big.Int).Lsh(big.NewInt(1), 251)

var u128Mask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// ParseFelt parses a hex ("0x…") or decimal string into a field element.
func ParseFelt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidFelt)
	}
	if strings.HasPrefix(s, "0X") {
		s = "0x" + s[2:]
	}
	v, ok := math.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFelt, s)
	}
	if v.Sign() < 0 || v.Cmp(Prime) >= 0 {
		return nil, fmt.Errorf("%w: %q out of range", ErrInvalidFelt, s)
	}
	return v, nil
}

// FormatFelt renders a felt as minimal 0x-prefixed hex.
func FormatFelt(v *big.Int) string {
	if v == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(v)
}

// NormalizeAddress left-pads an address to 64 hex digits, lower case.
func NormalizeAddress(addr string) (string, error) {
	v, err := ParseFelt(addr)
	if err != nil {
		return "", err
	}
	if v.Cmp(maxAddress) >= 0 {
		return "", fmt.Errorf("%w: address %q exceeds 2^251", ErrInvalidFelt, addr)
	}
	return fmt.Sprintf("0x%064x", v), nil
}

// ValidateAddress reports whether addr is a usable contract address.
func ValidateAddress(addr string) error {
	_, err := NormalizeAddress(addr)
	return err
}

// SameAddress compares two addresses after normalisation.
func SameAddress(a, b string) bool {
	na, err := NormalizeAddress(a)
	if err != nil {
		return false
	}
	nb, err := NormalizeAddress(b)
	if err != nil {
		return false
	}
	return na == nb
}

// SplitU256 splits a 256-bit amount into its Cairo (low, high) u128 limbs.
func SplitU256(amount *big.Int) (low, high string, err error) {
	if amount == nil || amount.Sign() < 0 {
		return "", "", fmt.Errorf("%w: negative or missing amount", ErrInvalidFelt)
	}
	if amount.BitLen() > 256 {
		return "", "", fmt.Errorf("%w: amount exceeds u256", ErrInvalidFelt)
	}
	l := new(big.Int).And(amount, u128Mask)
	h := new(big.Int).Rsh(amount, 128)
	return FormatFelt(l), FormatFelt(h), nil
}

// JoinU256 is the inverse of SplitU256.
func JoinU256(low, high string) (*big.Int, error) {
	l, err := ParseFelt(low)
	if err != nil {
		return nil, err
	}
	h, err := ParseFelt(high)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Or(new(big.Int).Lsh(h, 128), l), nil
}

// EncodeShortString packs an ASCII string of at most 31 bytes into a felt.
func EncodeShortString(s string) (string, error) {
	if len(s) > 31 {
		return "", fmt.Errorf("short string %q longer than 31 bytes", s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return "", fmt.Errorf("short string %q is not ASCII", s)
		}
	}
	return FormatFelt(new(big.Int).SetBytes([]byte(s))), nil
}

// DecodeShortString unpacks a felt into its ASCII short string.
func DecodeShortString(felt string) (string, error) {
	v, err := ParseFelt(felt)
	if err != nil {
		return "", err
	}
	return string(v.Bytes()), nil
}
