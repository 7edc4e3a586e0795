package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sepolia = int64(11155111)

func TestConnectAndDisconnect(t *testing.T) {
	s := NewSession(sepolia)
	assert.False(t, s.Connected())

	s.SetAccount("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	assert.True(t, s.Connected())
	assert.Equal(t, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", s.Account())

	s.Disconnect()
	assert.False(t, s.Connected())
	assert.Empty(t, s.Account())
}

func TestWrongNetwork(t *testing.T) {
	s := NewSession(sepolia)
	assert.False(t, s.WrongNetwork(), "unknown chain is not wrong")

	s.SetChainID(1)
	assert.True(t, s.WrongNetwork())

	s.SetChainID(sepolia)
	assert.False(t, s.WrongNetwork())
}

func TestAccountListenerFiresOnChangeOnly(t *testing.T) {
	s := NewSession(sepolia)
	var got []string
	s.OnAccountChanged(func(a string) { got = append(got, a) })

	s.SetAccount("0xaaa")
	s.SetAccount("0xAAA") // same account, different case
	s.SetAccount("0xbbb")
	s.Disconnect()

	assert.Equal(t, []string{"0xaaa", "0xbbb", ""}, got)
}

func TestChainListenerFiresOnChangeOnly(t *testing.T) {
	s := NewSession(sepolia)
	var got []int64
	s.OnChainChanged(func(id int64) { got = append(got, id) })

	s.SetChainID(1)
	s.SetChainID(1)
	s.SetChainID(sepolia)

	assert.Equal(t, []int64{1, sepolia}, got)
}
