package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Address identifies a pool participant by workchain and 256-bit account id.
type Address struct {
	Workchain int8
	Hash      common.Hash
}

// ParseAddress parses the raw form "<workchain>:<64 hex chars>".
func ParseAddress(input string) (Address, error) {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, ":", 2)
	if len(parts) != 2 {
		return Address{}, fmt.Errorf("invalid address: %s", input)
	}

	wc, err := strconv.ParseInt(parts[0], 10, 8)
	if err != nil {
		return Address{}, fmt.Errorf("invalid workchain: %s", input)
	}

	hexPart := strings.TrimPrefix(strings.ToLower(parts[1]), "0x")
	data, err := hexutil.Decode("0x" + hexPart)
	if err != nil {
		return Address{}, fmt.Errorf("invalid account id: %s", input)
	}
	if len(data) != common.HashLength {
		return Address{}, fmt.Errorf("invalid account id length: %s", input)
	}

	return Address{Workchain: int8(wc), Hash: common.BytesToHash(data)}, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(input string) Address {
	addr, err := ParseAddress(input)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) String() string {
	return fmt.Sprintf("%d:%x", a.Workchain, a.Hash.Bytes())
}

func (a Address) IsZero() bool {
	return a.Workchain == 0 && a.Hash == (common.Hash{})
}

// Less orders addresses by workchain, then account id.
func (a Address) Less(other Address) bool {
	if a.Workchain != other.Workchain {
		return a.Workchain < other.Workchain
	}
	return a.Hash.Cmp(other.Hash) < 0
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
