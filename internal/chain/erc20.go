package chain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Function selectors for the ERC-20 surface the dashboard touches.
var (
	selBalanceOf = Selector("balanceOf(address)")
	selAllowance = Selector("allowance(address,address)")
	selTransfer  = Selector("transfer(address,uint256)")
	selApprove   = Selector("approve(address,uint256)")
	selMint      = Selector("mint(address,uint256)")
)

// Selector computes the 4-byte function selector for a signature, hex-encoded
// with 0x prefix.
func Selector(sig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// BalanceOfCalldata builds calldata for balanceOf(owner).
func BalanceOfCalldata(owner string) string {
	return selBalanceOf + encodeAddress(owner)
}

// AllowanceCalldata builds calldata for allowance(owner, spender).
func AllowanceCalldata(owner, spender string) string {
	return selAllowance + encodeAddress(owner) + encodeAddress(spender)
}

// TransferCalldata builds calldata for transfer(to, amount).
func TransferCalldata(to string, amount *big.Int) []byte {
	return mustDecode(selTransfer + encodeAddress(to) + encodeUint(amount))
}

// ApproveCalldata builds calldata for approve(spender, amount).
func ApproveCalldata(spender string, amount *big.Int) []byte {
	return mustDecode(selApprove + encodeAddress(spender) + encodeUint(amount))
}

// MintCalldata builds calldata for mint(to, amount) on the test tokens.
func MintCalldata(to string, amount *big.Int) []byte {
	return mustDecode(selMint + encodeAddress(to) + encodeUint(amount))
}

// encodeAddress left-pads an address to a 32-byte hex word.
func encodeAddress(addr string) string {
	clean := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X"))
	return fmt.Sprintf("%064s", clean)
}

// encodeUint encodes an unsigned integer as a 32-byte hex word.
func encodeUint(n *big.Int) string {
	return fmt.Sprintf("%064x", n)
}

func mustDecode(calldata string) []byte {
	b, err := hex.DecodeString(strings.TrimPrefix(calldata, "0x"))
	if err != nil {
		panic(fmt.Sprintf("malformed calldata %q", calldata))
	}
	return b
}
